package http

import (
	"context"
	"math"
	"time"
)

// Backoff returns the wait before the attempt following attempt (0-based):
// base * 2^attempt. The result saturates instead of overflowing.
func Backoff(base time.Duration, attempt int) time.Duration {
	if base <= 0 {
		return 0
	}
	if attempt < 0 {
		attempt = 0
	}
	// 2^62 already overflows any positive base
	if attempt >= 62 {
		return time.Duration(math.MaxInt64)
	}
	mult := time.Duration(1) << attempt
	if base > time.Duration(math.MaxInt64)/mult {
		return time.Duration(math.MaxInt64)
	}
	return base * mult
}

// sleepWithContext waits for d, returning early with ctx.Err() if ctx is done
func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
