package http

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// RateLimitedTransport waits for a token before handing an attempt to the
// wrapped transport.
type RateLimitedTransport struct {
	next    Transport
	limiter *rate.Limiter
}

// NewRateLimitedTransport allows perSecond attempts with bursts of burst
// (minimum 1) through next.
func NewRateLimitedTransport(next Transport, perSecond float64, burst int) *RateLimitedTransport {
	if burst < 1 {
		burst = 1
	}
	return &RateLimitedTransport{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
	}
}

// Send blocks until the limiter admits the attempt. An attempt whose deadline
// would pass while waiting fails as a timeout without reaching next.
func (t *RateLimitedTransport) Send(ctx context.Context, req *TransportRequest) (*TransportResponse, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("rate limit wait: %w", context.DeadlineExceeded)
	}
	return t.next.Send(ctx, req)
}
