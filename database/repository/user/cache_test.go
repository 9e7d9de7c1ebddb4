package userRepo

import (
	"context"
	"errors"
	"testing"
	"time"

	"bloodlink/models"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

type mapCache struct {
	entries map[string]string
	ttls    map[string]time.Duration
	failGet error
}

func newMapCache() *mapCache {
	return &mapCache{entries: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (c *mapCache) Get(_ context.Context, key string) *redis.StringCmd {
	if c.failGet != nil {
		return redis.NewStringResult("", c.failGet)
	}
	v, ok := c.entries[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (c *mapCache) Set(_ context.Context, key string, value interface{}, ttl time.Duration) *redis.StatusCmd {
	c.entries[key] = string(value.([]byte))
	c.ttls[key] = ttl
	return redis.NewStatusResult("OK", nil)
}

type countingUsers struct {
	users map[string]models.User
	calls int
}

func (u *countingUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	u.calls++
	user, ok := u.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

func (u *countingUsers) GetByIDWithProjection(ctx context.Context, id string, _ bson.M) (*models.User, error) {
	return u.GetByID(ctx, id)
}

func newCachedRepo(inner *countingUsers, cache *mapCache) *CachedUserRepo {
	return &CachedUserRepo{next: inner, cache: cache, ttl: 5 * time.Minute, logger: zap.NewNop()}
}

func TestCachedUserRepoServesBloodBanksFromCache(t *testing.T) {
	inner := &countingUsers{users: map[string]models.User{
		"bank-1": {
			ID: "bank-1", Role: models.RoleBloodBank, IsActive: true,
			OrganizationInfo: &models.OrganizationInfo{
				Name:           "Central",
				OperatingHours: models.WeeklyHours{Monday: &models.DayHours{Open: "09:00", Close: "17:00"}},
			},
		},
	}}
	cache := newMapCache()
	repo := newCachedRepo(inner, cache)
	ctx := context.Background()

	first, err := repo.GetByID(ctx, "bank-1")
	require.NoError(t, err)
	second, err := repo.GetByID(ctx, "bank-1")
	require.NoError(t, err)

	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.OrganizationInfo.Name, second.OrganizationInfo.Name)
	assert.True(t, second.IsActiveBloodBank())
	assert.Equal(t, "09:00", second.HoursOn(time.Monday).Open)
	assert.Equal(t, 5*time.Minute, cache.ttls[bloodBankCacheKey("bank-1")])
}

func TestCachedUserRepoReadsDonorsThrough(t *testing.T) {
	inner := &countingUsers{users: map[string]models.User{
		"donor-1": {ID: "donor-1", Role: models.RoleDonor, IsActive: true},
	}}
	cache := newMapCache()
	repo := newCachedRepo(inner, cache)

	for i := 0; i < 3; i++ {
		_, err := repo.GetByID(context.Background(), "donor-1")
		require.NoError(t, err)
	}
	assert.Equal(t, 3, inner.calls)
	assert.Empty(t, cache.entries)

	_, err := repo.GetByID(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCachedUserRepoFallsBackWhenRedisFails(t *testing.T) {
	inner := &countingUsers{users: map[string]models.User{
		"bank-1": {ID: "bank-1", Role: models.RoleBloodBank, IsActive: true},
	}}
	cache := newMapCache()
	cache.failGet = errors.New("connection refused")
	repo := newCachedRepo(inner, cache)

	user, err := repo.GetByID(context.Background(), "bank-1")
	require.NoError(t, err)
	assert.Equal(t, "bank-1", user.ID)
	assert.Equal(t, 1, inner.calls)

	// A corrupt entry is ignored and overwritten.
	cache.failGet = nil
	cache.entries[bloodBankCacheKey("bank-1")] = "{not json"
	_, err = repo.GetByID(context.Background(), "bank-1")
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
	assert.Contains(t, cache.entries[bloodBankCacheKey("bank-1")], `"id":"bank-1"`)
}
