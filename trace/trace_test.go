package trace

import (
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var uuidPattern = regexp.MustCompile(`^[a-f0-9]{8}-[a-f0-9]{4}-4[a-f0-9]{3}-[89ab][a-f0-9]{3}-[a-f0-9]{12}$`)

func TestHeaderConstants(t *testing.T) {
	assert.Equal(t, "X-Request-ID", HeaderXRequestID)
}

func TestEnsureTraceIDUsesExisting(t *testing.T) {
	ctx := WithTraceID(context.Background(), "existing-trace-id")
	assert.Equal(t, "existing-trace-id", EnsureTraceID(ctx))
}

func TestEnsureTraceIDGeneratesWhenMissing(t *testing.T) {
	got := EnsureTraceID(context.Background())
	assert.Regexp(t, uuidPattern, got)
	assert.NotEqual(t, got, EnsureTraceID(context.Background()))
}

func TestIDFromContext(t *testing.T) {
	_, ok := IDFromContext(context.Background())
	assert.False(t, ok)

	_, ok = IDFromContext(WithTraceID(context.Background(), ""))
	assert.False(t, ok, "empty IDs are treated as missing")
}

func TestWithNewTraceID(t *testing.T) {
	ctx, id := WithNewTraceID(context.Background())
	assert.Regexp(t, uuidPattern, id)

	stored, ok := IDFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, id, stored)

	again, sameID := WithNewTraceID(ctx)
	assert.Equal(t, id, sameID)
	assert.Equal(t, ctx, again)
}
