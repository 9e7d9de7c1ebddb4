package scheduling

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseMutualExclusion(t *testing.T, locker SlotLocker, key string) {
	t.Helper()
	var (
		wg      sync.WaitGroup
		inside  int32
		maxSeen int32
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			unlock, err := locker.Lock(ctx, key)
			if !assert.NoError(t, err) {
				return
			}
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxSeen)
				if n <= m || atomic.CompareAndSwapInt32(&maxSeen, m, n) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			atomic.AddInt32(&inside, -1)
			unlock()
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), maxSeen)
}

func TestLocalLockerMutualExclusion(t *testing.T) {
	l := NewLocalLocker()
	exerciseMutualExclusion(t, l, BookingLockKey(bankID, "2026-03-09"))
	assert.Empty(t, l.slots)
}

func TestLocalLockerHonoursContext(t *testing.T) {
	l := NewLocalLocker()
	key := BookingLockKey(bankID, "2026-03-09")

	unlock, err := l.Lock(context.Background(), key)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, key)
	assert.ErrorIs(t, err, ErrLockNotAcquired)

	// Other keys are independent.
	unlockOther, err := l.Lock(context.Background(), BookingLockKey(bankID, "2026-03-10"))
	require.NoError(t, err)
	unlockOther()

	unlock()
	unlock()
	again, err := l.Lock(context.Background(), key)
	require.NoError(t, err)
	again()
}

func TestBookingLockKey(t *testing.T) {
	assert.Equal(t, "lock:appointments:bank-1:2026-03-09", BookingLockKey("bank-1", "2026-03-09"))
}

// Runs against a real Redis when BLOODLINK_TEST_REDIS_ADDR is set.
func TestRedisLocker(t *testing.T) {
	addr := os.Getenv("BLOODLINK_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("BLOODLINK_TEST_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr, DB: 15})
	defer client.Close()

	key := BookingLockKey("redis-test-bank", time.Now().Format("2006-01-02T15:04:05.000"))
	l := NewRedisLocker(client, 2*time.Second)
	exerciseMutualExclusion(t, l, key)

	unlock, err := l.Lock(context.Background(), key)
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, key)
	assert.ErrorIs(t, err, ErrLockNotAcquired)
	unlock()

	exists, err := client.Exists(context.Background(), key).Result()
	require.NoError(t, err)
	assert.Zero(t, exists)
}
