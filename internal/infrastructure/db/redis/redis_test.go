package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})
	return mr, client
}

func TestConnect(t *testing.T) {
	mr, _ := newTestRedis(t)

	client, err := Connect(context.Background(), Config{Addr: mr.Addr()})
	require.NoError(t, err)
	assert.NoError(t, client.Close())

	addr := mr.Addr()
	mr.Close()
	_, err = Connect(context.Background(), Config{Addr: addr, Timeout: 200 * time.Millisecond})
	assert.Error(t, err)
}

func TestLoginThrottle(t *testing.T) {
	mr, client := newTestRedis(t)
	ctx := context.Background()
	th := NewLoginThrottle(client, 3, time.Minute)

	exceeded, err := th.Exceeded(ctx, "a@example.com")
	require.NoError(t, err)
	assert.False(t, exceeded)

	for i := 0; i < 3; i++ {
		require.NoError(t, th.RecordFailure(ctx, "a@example.com"))
	}
	exceeded, err = th.Exceeded(ctx, "a@example.com")
	require.NoError(t, err)
	assert.True(t, exceeded)
	assert.Equal(t, time.Minute, mr.TTL("login_failures:a@example.com"))

	exceeded, err = th.Exceeded(ctx, "b@example.com")
	require.NoError(t, err)
	assert.False(t, exceeded, "counters are per email")

	require.NoError(t, th.Reset(ctx, "a@example.com"))
	exceeded, err = th.Exceeded(ctx, "a@example.com")
	require.NoError(t, err)
	assert.False(t, exceeded)
}

func TestLoginThrottle_WindowExpires(t *testing.T) {
	mr, client := newTestRedis(t)
	ctx := context.Background()
	th := NewLoginThrottle(client, 1, time.Minute)

	require.NoError(t, th.RecordFailure(ctx, "a@example.com"))
	exceeded, _ := th.Exceeded(ctx, "a@example.com")
	assert.True(t, exceeded)

	mr.FastForward(2 * time.Minute)
	exceeded, err := th.Exceeded(ctx, "a@example.com")
	require.NoError(t, err)
	assert.False(t, exceeded)
}

func TestLoginThrottle_WindowStartsAtFirstFailure(t *testing.T) {
	mr, client := newTestRedis(t)
	ctx := context.Background()
	th := NewLoginThrottle(client, 5, time.Minute)

	require.NoError(t, th.RecordFailure(ctx, "a@example.com"))
	mr.FastForward(40 * time.Second)
	require.NoError(t, th.RecordFailure(ctx, "a@example.com"))

	assert.Equal(t, 20*time.Second, mr.TTL("login_failures:a@example.com"), "later failures must not extend the window")
}

func TestLoginThrottle_CounterWithoutTTLGetsOne(t *testing.T) {
	mr, client := newTestRedis(t)
	ctx := context.Background()
	th := NewLoginThrottle(client, 3, time.Minute)

	// A counter left behind without an expiry would lock the account for good.
	require.NoError(t, mr.Set("login_failures:a@example.com", "7"))
	require.NoError(t, th.RecordFailure(ctx, "a@example.com"))

	assert.Equal(t, time.Minute, mr.TTL("login_failures:a@example.com"))
	got, err := mr.Get("login_failures:a@example.com")
	require.NoError(t, err)
	assert.Equal(t, "8", got)

	mr.FastForward(2 * time.Minute)
	exceeded, err := th.Exceeded(ctx, "a@example.com")
	require.NoError(t, err)
	assert.False(t, exceeded)
}

func TestLoginThrottle_RecordFailureError(t *testing.T) {
	mr, client := newTestRedis(t)
	th := NewLoginThrottle(client, 3, time.Minute)

	mr.SetError("boom")
	assert.Error(t, th.RecordFailure(context.Background(), "a@example.com"))
}

func TestSnapshotStorage(t *testing.T) {
	mr, client := newTestRedis(t)
	ctx := context.Background()
	s := NewSnapshotStorage(client, "talentsphere-auth")

	data, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, data)

	require.NoError(t, s.Save(ctx, []byte(`{"isAuthenticated":false,"user":null}`)))
	got, err := mr.Get("talentsphere:talentsphere-auth")
	require.NoError(t, err)
	assert.Equal(t, `{"isAuthenticated":false,"user":null}`, got)

	data, err = s.Load(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"isAuthenticated":false,"user":null}`, string(data))

	mr.SetError("boom")
	_, err = s.Load(ctx)
	assert.Error(t, err)
}
