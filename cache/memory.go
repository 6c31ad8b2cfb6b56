package cache

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	value      []byte
	expiration time.Time // zero means no expiry
}

func (e entry) expired(now time.Time) bool {
	return !e.expiration.IsZero() && !now.Before(e.expiration)
}

// Memory is a process-local Cache. Expired entries are dropped lazily on Get
// and by Prune.
type Memory struct {
	mu     sync.Mutex
	data   map[string]entry
	now    func() time.Time
	closed bool
}

// NewMemory creates an empty in-memory cache.
func NewMemory() *Memory {
	return newMemoryWithClock(time.Now)
}

func newMemoryWithClock(now func() time.Time) *Memory {
	return &Memory{data: make(map[string]entry), now: now}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrClosed
	}
	e, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	if e.expired(m.now()) {
		delete(m.data, key)
		return nil, ErrNotFound
	}
	// Callers may modify the returned slice
	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		return ErrInvalidTTL
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	e := entry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expiration = m.now().Add(ttl)
	}
	m.data[key] = e
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	delete(m.data, key)
	return nil
}

func (m *Memory) Health(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	return nil
}

// Close drops every entry. It returns ErrClosed when called twice.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	m.closed = true
	m.data = nil
	return nil
}

// Prune removes expired entries and returns how many were dropped
func (m *Memory) Prune() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	n := 0
	for k, e := range m.data {
		if e.expired(now) {
			delete(m.data, k)
			n++
		}
	}
	return n
}

// Len returns the number of stored entries, including expired ones not yet pruned
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data)
}
