package cache

import (
	"context"
	"errors"
	"time"
)

// GetOrLoad returns the value cached under key, or calls load and caches its
// result for ttl. A nil cache always calls load. Cache failures and entries
// that no longer decode fall through to load; errors from load are returned
// as-is and nothing is cached.
func GetOrLoad[T any](ctx context.Context, c Cache, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	if c == nil {
		return load(ctx)
	}

	if data, err := c.Get(ctx, key); err == nil {
		if v, err := Unmarshal[T](data); err == nil {
			return v, nil
		}
		_ = c.Delete(ctx, key)
	} else if errors.Is(err, ErrClosed) {
		return load(ctx)
	}

	v, err := load(ctx)
	if err != nil {
		return v, err
	}
	if data, err := Marshal(v); err == nil {
		_ = c.Set(ctx, key, data, ttl)
	}
	return v, nil
}
