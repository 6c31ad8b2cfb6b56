package cache

import (
	"errors"
	"fmt"
)

// Sentinel errors for cache operations. Use errors.Is to match them.
var (
	// ErrNotFound is a cache miss, not a failure
	ErrNotFound = errors.New("cache: key not found")

	// ErrClosed is returned by every operation after Close
	ErrClosed = errors.New("cache: closed")

	// ErrInvalidTTL is returned for negative TTLs
	ErrInvalidTTL = errors.New("cache: invalid TTL")
)

// ConfigError reports an invalid backend setting.
type ConfigError struct {
	Field   string
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cache configuration error: %s: %s: %v", e.Field, e.Message, e.Err)
	}
	return fmt.Sprintf("cache configuration error: %s: %s", e.Field, e.Message)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new configuration error.
func NewConfigError(field, message string, err error) *ConfigError {
	return &ConfigError{Field: field, Message: message, Err: err}
}

// OperationError wraps a backend failure with the operation and key involved.
// Cache misses are never reported as OperationError.
type OperationError struct {
	Op  string // "get", "set", "delete", "ping"
	Key string
	Err error
}

func (e *OperationError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("cache %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("cache %s failed for key %q: %v", e.Op, e.Key, e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

// NewOperationError creates a new operation error.
func NewOperationError(op, key string, err error) *OperationError {
	return &OperationError{Op: op, Key: key, Err: err}
}
