package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaborage/go-scriptkit/cache"
)

func setupTestRedis(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client, err := NewClient(&Config{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return client, mr
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "ok", cfg: Config{Addr: "localhost:6379"}},
		{name: "missing addr", cfg: Config{}, wantErr: "address is required"},
		{name: "no port", cfg: Config{Addr: "localhost"}, wantErr: "must be host:port"},
		{name: "bad port", cfg: Config{Addr: "localhost:99999"}, wantErr: "invalid port: 99999"},
		{name: "bad db", cfg: Config{Addr: "localhost:6379", DB: 16}, wantErr: "invalid database number: 16"},
		{name: "negative dial", cfg: Config{Addr: "localhost:6379", DialTimeout: -time.Second}, wantErr: "dial timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			var cfgErr *cache.ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewClient(t *testing.T) {
	t.Run("invalid config", func(t *testing.T) {
		_, err := NewClient(&Config{})
		assert.Error(t, err)
	})

	t.Run("unreachable server", func(t *testing.T) {
		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()

		_, err := NewClient(&Config{Addr: addr, DialTimeout: 200 * time.Millisecond})
		require.Error(t, err)
		var opErr *cache.OperationError
		require.ErrorAs(t, err, &opErr)
		assert.Equal(t, "ping", opErr.Op)
	})
}

func TestGetSetDelete(t *testing.T) {
	ctx := context.Background()
	client, mr := setupTestRedis(t)

	_, err := client.Get(ctx, "weather:oslo")
	assert.ErrorIs(t, err, cache.ErrNotFound)

	require.NoError(t, client.Set(ctx, "weather:oslo", []byte("cloudy"), time.Minute))
	got, err := client.Get(ctx, "weather:oslo")
	require.NoError(t, err)
	assert.Equal(t, []byte("cloudy"), got)

	stored, err := mr.Get(DefaultPrefix + "weather:oslo")
	require.NoError(t, err)
	assert.Equal(t, "cloudy", stored, "keys are namespaced")

	require.NoError(t, client.Delete(ctx, "weather:oslo"))
	require.NoError(t, client.Delete(ctx, "weather:oslo"))
	_, err = client.Get(ctx, "weather:oslo")
	assert.ErrorIs(t, err, cache.ErrNotFound)
}

func TestCustomPrefix(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := NewClient(&Config{Addr: mr.Addr(), Prefix: "test:"})
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, client.Set(context.Background(), "k", []byte("v"), 0))
	assert.True(t, mr.Exists("test:k"))
	assert.False(t, mr.Exists(DefaultPrefix+"k"))
}

func TestTTL(t *testing.T) {
	ctx := context.Background()
	client, mr := setupTestRedis(t)

	require.NoError(t, client.Set(ctx, "short", []byte("v"), 30*time.Second))
	require.NoError(t, client.Set(ctx, "forever", []byte("v"), 0))
	assert.Equal(t, 30*time.Second, mr.TTL(DefaultPrefix+"short"))
	assert.Zero(t, mr.TTL(DefaultPrefix+"forever"))

	mr.FastForward(31 * time.Second)
	_, err := client.Get(ctx, "short")
	assert.ErrorIs(t, err, cache.ErrNotFound)
	_, err = client.Get(ctx, "forever")
	assert.NoError(t, err)

	assert.ErrorIs(t, client.Set(ctx, "bad", []byte("v"), -time.Second), cache.ErrInvalidTTL)
}

func TestHealthAndClose(t *testing.T) {
	ctx := context.Background()
	client, _ := setupTestRedis(t)

	require.NoError(t, client.Health(ctx))
	require.NoError(t, client.Close())
	assert.ErrorIs(t, client.Close(), cache.ErrClosed)

	_, err := client.Get(ctx, "k")
	assert.ErrorIs(t, err, cache.ErrClosed)
	assert.ErrorIs(t, client.Set(ctx, "k", nil, 0), cache.ErrClosed)
	assert.ErrorIs(t, client.Delete(ctx, "k"), cache.ErrClosed)
	assert.ErrorIs(t, client.Health(ctx), cache.ErrClosed)
}

func TestServerErrorWrapped(t *testing.T) {
	ctx := context.Background()
	client, mr := setupTestRedis(t)
	mr.SetError("ERR injected failure")

	err := client.Set(ctx, "k", []byte("v"), time.Minute)
	var opErr *cache.OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, "set", opErr.Op)
	assert.Equal(t, "k", opErr.Key)

	_, err = client.Get(ctx, "k")
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, "get", opErr.Op)
}

func TestGetOrLoadWithRedis(t *testing.T) {
	ctx := context.Background()
	client, _ := setupTestRedis(t)

	calls := 0
	load := func(context.Context) ([]string, error) {
		calls++
		return []string{"Go", "Ruby"}, nil
	}

	for range 3 {
		got, err := cache.GetOrLoad(ctx, client, "langs", time.Minute, load)
		require.NoError(t, err)
		assert.Equal(t, []string{"Go", "Ruby"}, got)
	}
	assert.Equal(t, 1, calls)
}
