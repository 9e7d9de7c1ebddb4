package userRepo

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"bloodlink/models"
	"bloodlink/utils"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

const bloodBankCachePrefix = "cache:bloodbank:"

// ProfileCache is the part of the Redis client the profile cache uses.
type ProfileCache interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// CachedUserRepo serves blood bank profiles from Redis. Donors are always read
// through so eligibility is never judged on a stale medical history.
type CachedUserRepo struct {
	next   UserRepository
	cache  ProfileCache
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedUserRepo wraps next with a read-through cache whose entries expire after ttl.
func NewCachedUserRepo(next UserRepository, cache ProfileCache, ttl time.Duration) UserRepository {
	return &CachedUserRepo{next: next, cache: cache, ttl: ttl, logger: utils.GetLogger()}
}

func bloodBankCacheKey(id string) string {
	return bloodBankCachePrefix + id
}

// GetByID returns a cached blood bank profile when present, otherwise loads the
// user and caches it if it is a blood bank.
func (r *CachedUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	key := bloodBankCacheKey(id)
	data, err := r.cache.Get(ctx, key).Result()
	switch {
	case err == nil:
		var user models.User
		if err := json.Unmarshal([]byte(data), &user); err == nil {
			return &user, nil
		}
		r.logger.Warn("Discarding undecodable cached profile", zap.String("userId", id))
	case !errors.Is(err, redis.Nil):
		r.logger.Warn("Profile cache read failed", zap.String("userId", id), zap.Error(err))
	}

	user, err := r.next.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Role != models.RoleBloodBank {
		return user, nil
	}
	payload, err := json.Marshal(user)
	if err != nil {
		r.logger.Warn("Failed to encode profile for cache", zap.String("userId", id), zap.Error(err))
		return user, nil
	}
	if err := r.cache.Set(ctx, key, payload, r.ttl).Err(); err != nil {
		r.logger.Warn("Profile cache write failed", zap.String("userId", id), zap.Error(err))
	}
	return user, nil
}

// GetByIDWithProjection is never cached.
func (r *CachedUserRepo) GetByIDWithProjection(ctx context.Context, id string, projection bson.M) (*models.User, error) {
	return r.next.GetByIDWithProjection(ctx, id, projection)
}
