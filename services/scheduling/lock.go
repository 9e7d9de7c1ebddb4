package scheduling

import (
	"context"
	"errors"
	"sync"
	"time"

	"bloodlink/utils"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// ErrLockNotAcquired is returned when a booking lock could not be taken before ctx expired.
var ErrLockNotAcquired = errors.New("booking lock not acquired")

// SlotLocker serialises check-and-write sequences for one blood bank on one date.
type SlotLocker interface {
	// Lock blocks until the key is held or ctx is done. The returned func releases it.
	Lock(ctx context.Context, key string) (func(), error)
}

// BookingLockKey is the lock key for a blood bank's calendar on a date.
func BookingLockKey(bloodBankID, date string) string {
	return utils.BookingLockPrefix + bloodBankID + ":" + date
}

// LocalLocker is an in-process SlotLocker for single-instance deployments and tests.
type LocalLocker struct {
	mu    sync.Mutex
	slots map[string]*localSlot
}

type localSlot struct {
	ch   chan struct{}
	refs int
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{slots: make(map[string]*localSlot)}
}

func (l *LocalLocker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	s, ok := l.slots[key]
	if !ok {
		s = &localSlot{ch: make(chan struct{}, 1)}
		l.slots[key] = s
	}
	s.refs++
	l.mu.Unlock()

	select {
	case s.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(key, s, false)
		return nil, ErrLockNotAcquired
	}

	var once sync.Once
	return func() {
		once.Do(func() { l.release(key, s, true) })
	}, nil
}

func (l *LocalLocker) release(key string, s *localSlot, held bool) {
	if held {
		<-s.ch
	}
	l.mu.Lock()
	s.refs--
	if s.refs == 0 {
		delete(l.slots, key)
	}
	l.mu.Unlock()
}

// releaseScript deletes the key only if it still carries our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker is a SlotLocker shared by every API instance.
type RedisLocker struct {
	Client *redis.Client
	TTL    time.Duration
	Retry  time.Duration
}

func NewRedisLocker(client *redis.Client, ttl time.Duration) *RedisLocker {
	return &RedisLocker{Client: client, TTL: ttl, Retry: 50 * time.Millisecond}
}

func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	token := uuid.New().String()
	retry := l.Retry
	if retry <= 0 {
		retry = 50 * time.Millisecond
	}

	for {
		ok, err := l.Client.SetNX(ctx, key, token, l.TTL).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, ErrLockNotAcquired
			}
			return nil, err
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ErrLockNotAcquired
		case <-time.After(retry):
		}
	}

	return func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, l.Client, []string{key}, token).Err(); err != nil && err != redis.Nil {
			utils.GetLogger().Sugar().Warnf("failed to release booking lock %s: %v", key, err)
		}
	}, nil
}
