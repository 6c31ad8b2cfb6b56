package config

import (
	"github.com/gaborage/go-scriptkit/cache"
	"github.com/gaborage/go-scriptkit/cache/redis"
)

// Cache backends
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

// NewCache opens the configured cache backend. It returns a nil cache for
// CacheNone; API clients treat a nil cache as disabled.
func (c *Config) NewCache() (cache.Cache, error) {
	switch c.Cache.Backend {
	case CacheRedis:
		client, err := redis.NewClient(&redis.Config{
			Addr:     c.Cache.Addr,
			Password: c.Cache.Password,
			DB:       c.Cache.DB,
		})
		if err != nil {
			return nil, err
		}
		return client, nil
	case CacheNone:
		return nil, nil
	default:
		return cache.NewMemory(), nil
	}
}
