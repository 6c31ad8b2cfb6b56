package redis

import (
	"net"
	"strconv"
	"time"

	"github.com/gaborage/go-scriptkit/cache"
)

// DefaultPrefix namespaces every key written by scriptkit
const DefaultPrefix = "scriptkit:"

// Config holds the Redis connection settings.
type Config struct {
	// Addr is host:port
	Addr     string
	Password string //nolint:gosec // loaded from CACHE_REDIS_PASSWORD
	// DB is the logical database, 0-15
	DB int
	// Prefix is prepended to every key, DefaultPrefix when empty
	Prefix string

	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Validate fails fast on settings Redis would reject later.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return cache.NewConfigError("redis.addr", "address is required", nil)
	}

	_, port, err := net.SplitHostPort(c.Addr)
	if err != nil {
		return cache.NewConfigError("redis.addr", "must be host:port", err)
	}
	if p, err := strconv.Atoi(port); err != nil || p <= 0 || p > 65535 {
		return cache.NewConfigError("redis.addr", "invalid port: "+port, nil)
	}

	if c.DB < 0 || c.DB > 15 {
		return cache.NewConfigError("redis.db", "invalid database number: "+strconv.Itoa(c.DB)+" (must be 0-15)", nil)
	}

	if c.DialTimeout < 0 {
		return cache.NewConfigError("redis.dialtimeout", "dial timeout cannot be negative", nil)
	}

	return nil
}

func (c *Config) prefix() string {
	if c.Prefix == "" {
		return DefaultPrefix
	}
	return c.Prefix
}
