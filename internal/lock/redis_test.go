package lock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisLock(t *testing.T, ttl time.Duration) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	l := NewRedis(redis.NewClient(&redis.Options{Addr: mr.Addr()}), ttl)
	t.Cleanup(func() { _ = l.Close() })
	return l, mr
}

func TestRedisLockBlocksUntilRelease(t *testing.T) {
	l, mr := newRedisLock(t, 5*time.Second)
	key := keyPrefix + "user-1"

	unlock, err := l.Lock(context.Background(), "user-1")
	require.NoError(t, err)
	assert.True(t, mr.Exists(key))
	assert.Equal(t, 5*time.Second, mr.TTL(key))

	acquired := make(chan func(), 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		second, err := l.Lock(ctx, "user-1")
		if assert.NoError(t, err) {
			acquired <- second
		}
	}()

	select {
	case <-acquired:
		t.Fatal("second holder acquired while the first still holds the key")
	case <-time.After(150 * time.Millisecond):
	}

	unlock()
	select {
	case second := <-acquired:
		assert.True(t, mr.Exists(key))
		second()
		assert.False(t, mr.Exists(key))
	case <-time.After(2 * time.Second):
		t.Fatal("second holder never acquired after release")
	}
}

func TestRedisLockOtherKeysIndependent(t *testing.T) {
	l, _ := newRedisLock(t, 5*time.Second)

	a, err := l.Lock(context.Background(), "user-a")
	require.NoError(t, err)
	defer a()

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	b, err := l.Lock(ctx, "user-b")
	require.NoError(t, err)
	b()
}

func TestRedisLockHonoursContext(t *testing.T) {
	l, _ := newRedisLock(t, 5*time.Second)

	unlock, err := l.Lock(context.Background(), "user-1")
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, "user-1")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	cancelled, cancelNow := context.WithCancel(context.Background())
	cancelNow()
	_, err = l.Lock(cancelled, "user-1")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRedisStaleUnlockKeepsNewHolder(t *testing.T) {
	l, mr := newRedisLock(t, time.Second)
	key := keyPrefix + "user-1"

	stale, err := l.Lock(context.Background(), "user-1")
	require.NoError(t, err)

	mr.FastForward(2 * time.Second)
	require.False(t, mr.Exists(key), "ttl releases an abandoned lock")

	current, err := l.Lock(context.Background(), "user-1")
	require.NoError(t, err)
	held, err := mr.Get(key)
	require.NoError(t, err)

	stale()
	got, err := mr.Get(key)
	require.NoError(t, err, "expired holder must not delete the new token")
	assert.Equal(t, held, got)

	current()
	assert.False(t, mr.Exists(key))
}

func TestRedisLockServerDown(t *testing.T) {
	l, mr := newRedisLock(t, time.Second)
	mr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := l.Lock(ctx, "user-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "acquire "+keyPrefix+"user-1")
}
