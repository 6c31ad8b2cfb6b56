package http

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net"
	nethttp "net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaborage/go-scriptkit/trace"
)

// Test constants to avoid string duplication
const (
	testBaseURL        = "https://api.example.com"
	testUsersPath      = "/users/1"
	testPostsPath      = "/posts"
	testAPIKey         = "X-API-Key"
	testAPIValue       = "test-key"
	testUserAgent      = "User-Agent"
	testAgentValue     = "test-agent"
	testCustomTrace    = "custom-trace-123"
	testContentTypeHdr = "Content-Type"
	testJSONType       = "application/json"
)

type step struct {
	resp *TransportResponse
	err  error
}

// scriptedTransport replays steps in order; the last step repeats
type scriptedTransport struct {
	mu    sync.Mutex
	steps []step
	calls []*TransportRequest
	ctxs  []context.Context
}

func newScriptedTransport(steps ...step) *scriptedTransport {
	return &scriptedTransport{steps: steps}
}

func (s *scriptedTransport) Send(ctx context.Context, req *TransportRequest) (*TransportResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := len(s.calls)
	s.calls = append(s.calls, req)
	s.ctxs = append(s.ctxs, ctx)
	if idx >= len(s.steps) {
		idx = len(s.steps) - 1
	}
	return s.steps[idx].resp, s.steps[idx].err
}

func (s *scriptedTransport) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

type recordingSleeper struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (s *recordingSleeper) Sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	s.delays = append(s.delays, d)
	s.mu.Unlock()
	return ctx.Err()
}

func (s *recordingSleeper) recorded() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.delays...)
}

func jsonResponse(status int, body string) step {
	return step{resp: &TransportResponse{
		StatusCode: status,
		Headers:    nethttp.Header{testContentTypeHdr: []string{testJSONType}},
		Body:       []byte(body),
	}}
}

func timeoutStep() step {
	return step{err: context.DeadlineExceeded}
}

func connectionStep() step {
	return step{err: errors.New("dial tcp 127.0.0.1:1: connect: connection refused")}
}

func newTestBuilder(tr Transport, sleeper *recordingSleeper) *Builder {
	return NewBuilder().
		WithBaseURL(testBaseURL).
		WithTransport(tr).
		withSleep(sleeper.Sleep)
}

// eventRecorder captures observer events
type eventRecorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *eventRecorder) OnEvent(_ context.Context, ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *eventRecorder) kinds() []EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	kinds := make([]EventKind, 0, len(r.events))
	for _, ev := range r.events {
		kinds = append(kinds, ev.Kind)
	}
	return kinds
}

func newIPv4TestServer(t *testing.T, handler nethttp.Handler) *httptest.Server {
	t.Helper()
	lc := net.ListenConfig{}
	listener, err := lc.Listen(context.Background(), "tcp4", "127.0.0.1:0")
	if err != nil {
		t.Skipf("skipping test: unable to bind IPv4 listener: %v", err)
		return &httptest.Server{}
	}

	server := &httptest.Server{
		Listener: listener,
		Config:   &nethttp.Server{Handler: handler},
	}
	server.Start()
	return server
}

func TestBuilder(t *testing.T) {
	t.Run("default configuration", func(t *testing.T) {
		exec := NewBuilder().WithBaseURL(testBaseURL).Build()
		require.NotNil(t, exec)

		req := exec.NewRequest("get", testUsersPath)
		assert.Equal(t, nethttp.MethodGet, req.Method)
		assert.Equal(t, testBaseURL+testUsersPath, req.Endpoint.String())
		assert.Equal(t, DefaultTimeout, req.Timeout)
		assert.Equal(t, DefaultMaxRetries, req.MaxRetries)
	})

	t.Run("custom configuration", func(t *testing.T) {
		exec := NewBuilder().
			WithBaseURL(testBaseURL+"/").
			WithTimeout(5*time.Second).
			WithRetries(5, 200*time.Millisecond).
			Build()

		req := exec.NewRequest(nethttp.MethodPost, "posts")
		assert.Equal(t, testBaseURL+testPostsPath, req.Endpoint.String())
		assert.Equal(t, 5*time.Second, req.Timeout)
		assert.Equal(t, 5, req.MaxRetries)
	})

	t.Run("built executor is not affected by later builder changes", func(t *testing.T) {
		tr := newScriptedTransport(jsonResponse(200, `{}`))
		b := newTestBuilder(tr, &recordingSleeper{}).WithDefaultHeader(testAPIKey, testAPIValue)
		exec := b.Build()
		b.WithDefaultHeader(testAPIKey, "changed")

		_, err := exec.Get(context.Background(), testUsersPath, nil)
		require.NoError(t, err)
		assert.Equal(t, testAPIValue, tr.calls[0].Headers.Get(testAPIKey))
	})
}

func TestNewExecutorAppliesDefaults(t *testing.T) {
	exec := NewExecutor(Config{BaseURL: testBaseURL + "//"})
	req := exec.NewRequest(nethttp.MethodGet, "status")

	assert.Equal(t, testBaseURL+"/status", req.Endpoint.String())
	assert.Equal(t, DefaultTimeout, req.Timeout)
	assert.Equal(t, DefaultMaxRetries, req.MaxRetries)
}

func TestExecuteSuccessOnFirstAttempt(t *testing.T) {
	tr := newScriptedTransport(jsonResponse(200, `{"name":"Alice"}`))
	sleeper := &recordingSleeper{}
	exec := newTestBuilder(tr, sleeper).Build()

	result, err := exec.Get(context.Background(), testUsersPath, nil)

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, map[string]any{"name": "Alice"}, result.Body)
	assert.Equal(t, 200, result.StatusCode)
	assert.Equal(t, 1, result.Attempts)
	assert.Equal(t, int64(1), result.Stats.CallCount)
	assert.Empty(t, sleeper.recorded())
	require.Len(t, tr.calls, 1)
	assert.Equal(t, nethttp.MethodGet, tr.calls[0].Method)
	assert.Equal(t, testBaseURL+testUsersPath, tr.calls[0].URL)
}

func TestExecuteRetriesTimeoutsWithExponentialBackoff(t *testing.T) {
	tr := newScriptedTransport(
		timeoutStep(),
		timeoutStep(),
		jsonResponse(200, `[{"id":1,"title":"first"}]`),
	)
	sleeper := &recordingSleeper{}
	exec := newTestBuilder(tr, sleeper).WithRetries(3, time.Second).Build()

	result, err := exec.Get(context.Background(), testPostsPath, nil)

	require.NoError(t, err)
	assert.Equal(t, 3, result.Attempts)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, sleeper.recorded())
	body, ok := result.Body.([]any)
	require.True(t, ok)
	assert.Len(t, body, 1)
}

func TestExecuteExhaustsRetries(t *testing.T) {
	tests := []struct {
		name       string
		steps      []step
		maxRetries int
		wantType   ErrorType
		wantDelays []time.Duration
	}{
		{
			name:       "connection failures",
			steps:      []step{connectionStep()},
			maxRetries: 3,
			wantType:   ConnectionError,
			wantDelays: []time.Duration{100 * time.Millisecond, 200 * time.Millisecond},
		},
		{
			name:       "timeouts",
			steps:      []step{timeoutStep()},
			maxRetries: 4,
			wantType:   TimeoutError,
			wantDelays: []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 400 * time.Millisecond},
		},
		{
			name:       "last cause wins",
			steps:      []step{timeoutStep(), timeoutStep(), connectionStep()},
			maxRetries: 3,
			wantType:   ConnectionError,
			wantDelays: []time.Duration{100 * time.Millisecond, 200 * time.Millisecond},
		},
		{
			name:       "single attempt never sleeps",
			steps:      []step{timeoutStep()},
			maxRetries: 1,
			wantType:   TimeoutError,
			wantDelays: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := newScriptedTransport(tt.steps...)
			sleeper := &recordingSleeper{}
			exec := newTestBuilder(tr, sleeper).WithRetries(tt.maxRetries, 100*time.Millisecond).Build()

			result, err := exec.Get(context.Background(), testPostsPath, nil)

			require.Error(t, err)
			assert.True(t, IsErrorType(err, tt.wantType), "got %v", err)
			assert.True(t, IsRetryable(err))
			require.NotNil(t, result)
			assert.Equal(t, tt.maxRetries, result.Attempts)
			assert.Equal(t, tt.maxRetries, tr.callCount())
			assert.Equal(t, tt.wantDelays, sleeper.recorded())
		})
	}
}

func TestExecuteErrorStatusIsTerminal(t *testing.T) {
	for _, status := range []int{400, 401, 404, 429, 500, 503} {
		t.Run(fmt.Sprintf("status %d", status), func(t *testing.T) {
			tr := newScriptedTransport(jsonResponse(status, `{"error":"nope"}`))
			sleeper := &recordingSleeper{}
			exec := newTestBuilder(tr, sleeper).Build()

			result, err := exec.Get(context.Background(), testUsersPath, nil)

			require.Error(t, err)
			assert.True(t, IsErrorType(err, ResponseError))
			assert.True(t, IsHTTPStatusError(err, status))
			assert.False(t, IsRetryable(err))
			require.NotNil(t, result)
			assert.Equal(t, 1, result.Attempts)
			assert.Equal(t, status, result.StatusCode)
			assert.Equal(t, []byte(`{"error":"nope"}`), result.Raw)
			assert.Nil(t, result.Body)
			assert.Equal(t, 1, tr.callCount())
			assert.Empty(t, sleeper.recorded())
		})
	}
}

func TestExecuteDecodeErrorIsTerminal(t *testing.T) {
	tr := newScriptedTransport(jsonResponse(200, `<html>not json</html>`))
	sleeper := &recordingSleeper{}
	exec := newTestBuilder(tr, sleeper).Build()

	result, err := exec.Get(context.Background(), testUsersPath, nil)

	require.Error(t, err)
	assert.True(t, IsErrorType(err, DecodeError))
	assert.Equal(t, 1, result.Attempts)
	assert.Equal(t, 200, result.StatusCode)
	assert.Equal(t, 1, tr.callCount())
	assert.Empty(t, sleeper.recorded())
}

func TestExecuteEmptyBody(t *testing.T) {
	tr := newScriptedTransport(step{resp: &TransportResponse{StatusCode: 204}})
	exec := newTestBuilder(tr, &recordingSleeper{}).Build()

	result, err := exec.Execute(context.Background(), exec.NewRequest(nethttp.MethodDelete, testUsersPath))

	require.NoError(t, err)
	assert.Nil(t, result.Body)
	assert.Equal(t, 204, result.StatusCode)
}

func TestExecuteDecodesIntoTarget(t *testing.T) {
	type user struct {
		Name string `json:"name"`
	}
	tr := newScriptedTransport(jsonResponse(200, `{"name":"Alice","extra":true}`))
	exec := newTestBuilder(tr, &recordingSleeper{}).Build()

	var u user
	req := exec.NewRequest(nethttp.MethodGet, testUsersPath)
	req.Into = &u
	result, err := exec.Execute(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, "Alice", u.Name)
	assert.Same(t, &u, result.Body)
}

func TestExecuteConfigurationErrors(t *testing.T) {
	valid := func() *Request {
		return &Request{
			Method:     nethttp.MethodGet,
			Endpoint:   NewEndpoint(testBaseURL, testUsersPath),
			Timeout:    time.Second,
			MaxRetries: 3,
		}
	}

	tests := []struct {
		name      string
		req       func() *Request
		wantField string
	}{
		{name: "nil request", req: func() *Request { return nil }, wantField: "request"},
		{name: "zero max retries", req: func() *Request { r := valid(); r.MaxRetries = 0; return r }, wantField: "max_retries"},
		{name: "negative max retries", req: func() *Request { r := valid(); r.MaxRetries = -1; return r }, wantField: "max_retries"},
		{name: "zero timeout", req: func() *Request { r := valid(); r.Timeout = 0; return r }, wantField: "timeout"},
		{name: "unsupported method", req: func() *Request { r := valid(); r.Method = "TRACE"; return r }, wantField: "method"},
		{name: "missing base", req: func() *Request { r := valid(); r.Endpoint = NewEndpoint("", "/x"); return r }, wantField: "base_url"},
		{name: "relative base", req: func() *Request { r := valid(); r.Endpoint = NewEndpoint("api.example.com", "/x"); return r }, wantField: "base_url"},
		{name: "unsupported param", req: func() *Request {
			r := valid()
			r.Params = Params{"ids": []int{1, 2}}
			return r
		}, wantField: "params.ids"},
		{name: "payload cannot be serialized", req: func() *Request {
			r := valid()
			r.Method = nethttp.MethodPost
			r.Payload = map[string]any{"ch": make(chan int)}
			return r
		}, wantField: "payload"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := newScriptedTransport(jsonResponse(200, `{}`))
			rec := &eventRecorder{}
			exec := newTestBuilder(tr, &recordingSleeper{}).WithObserver(rec).Build()

			result, err := exec.Execute(context.Background(), tt.req())

			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, IsErrorType(err, ConfigurationError), "got %v", err)
			var cfgErr *configurationError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.wantField, cfgErr.Field())
			assert.Equal(t, 0, tr.callCount())
			assert.Empty(t, rec.kinds())
		})
	}
}

func TestExecuteNegativeConfiguredRetries(t *testing.T) {
	tr := newScriptedTransport(jsonResponse(200, `{}`))
	exec := newTestBuilder(tr, &recordingSleeper{}).WithRetries(-1, time.Second).Build()

	_, err := exec.Get(context.Background(), testUsersPath, nil)

	assert.True(t, IsErrorType(err, ConfigurationError))
	assert.Equal(t, 0, tr.callCount())
}

func TestExecuteCancellation(t *testing.T) {
	t.Run("already cancelled context makes no attempt", func(t *testing.T) {
		tr := newScriptedTransport(jsonResponse(200, `{}`))
		exec := newTestBuilder(tr, &recordingSleeper{}).Build()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		result, err := exec.Get(ctx, testUsersPath, nil)

		require.Error(t, err)
		assert.True(t, IsErrorType(err, CancelledError))
		assert.ErrorIs(t, err, context.Canceled)
		require.NotNil(t, result)
		assert.Equal(t, 0, result.Attempts)
		assert.Equal(t, 0, tr.callCount())
	})

	t.Run("cancel during backoff stops retrying", func(t *testing.T) {
		tr := newScriptedTransport(timeoutStep())
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		var sleeps int32
		exec := NewBuilder().
			WithBaseURL(testBaseURL).
			WithTransport(tr).
			withSleep(func(ctx context.Context, _ time.Duration) error {
				atomic.AddInt32(&sleeps, 1)
				cancel()
				return ctx.Err()
			}).
			Build()

		result, err := exec.Get(ctx, testPostsPath, nil)

		require.Error(t, err)
		assert.True(t, IsErrorType(err, CancelledError))
		assert.Equal(t, 1, result.Attempts)
		assert.Equal(t, 1, tr.callCount())
		assert.Equal(t, int32(1), atomic.LoadInt32(&sleeps))
	})

	t.Run("cancel during attempt is not retried", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		var calls int32
		tr := TransportFunc(func(attemptCtx context.Context, _ *TransportRequest) (*TransportResponse, error) {
			atomic.AddInt32(&calls, 1)
			cancel()
			<-attemptCtx.Done()
			return nil, attemptCtx.Err()
		})
		sleeper := &recordingSleeper{}
		exec := newTestBuilder(tr, sleeper).Build()

		result, err := exec.Get(ctx, testPostsPath, nil)

		require.Error(t, err)
		assert.True(t, IsErrorType(err, CancelledError))
		assert.False(t, IsRetryable(err))
		assert.Equal(t, 1, result.Attempts)
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
		assert.Empty(t, sleeper.recorded())
	})

	t.Run("real backoff wait is interrupted", func(t *testing.T) {
		tr := newScriptedTransport(connectionStep())
		exec := NewBuilder().
			WithBaseURL(testBaseURL).
			WithTransport(tr).
			WithRetries(3, time.Hour).
			Build()

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		start := time.Now()
		_, err := exec.Get(ctx, testPostsPath, nil)

		assert.True(t, IsErrorType(err, CancelledError))
		assert.Less(t, time.Since(start), 5*time.Second)
		assert.Equal(t, 1, tr.callCount())
	})
}

func TestExecuteAppliesTimeoutPerAttempt(t *testing.T) {
	const timeout = 200 * time.Millisecond
	var remaining []time.Duration
	var mu sync.Mutex
	tr := TransportFunc(func(ctx context.Context, req *TransportRequest) (*TransportResponse, error) {
		deadline, ok := ctx.Deadline()
		require.True(t, ok)
		mu.Lock()
		remaining = append(remaining, time.Until(deadline))
		mu.Unlock()
		assert.Equal(t, timeout, req.Timeout)
		return nil, context.DeadlineExceeded
	})
	exec := newTestBuilder(tr, &recordingSleeper{}).WithTimeout(timeout).Build()

	_, err := exec.Get(context.Background(), testPostsPath, nil)

	require.True(t, IsErrorType(err, TimeoutError))
	require.Len(t, remaining, DefaultMaxRetries)
	for _, r := range remaining {
		assert.LessOrEqual(t, r, timeout)
		assert.Greater(t, r, timeout/2)
	}
}

func TestExecuteHeaders(t *testing.T) {
	t.Run("precedence and content type", func(t *testing.T) {
		tr := newScriptedTransport(jsonResponse(201, `{"id":101}`))
		exec := newTestBuilder(tr, &recordingSleeper{}).
			WithDefaultHeader(testUserAgent, testAgentValue).
			WithDefaultHeader(testAPIKey, "default").
			WithBearerToken("tok").
			Build()

		req := exec.NewRequest(nethttp.MethodPost, testPostsPath)
		req.Headers = map[string]string{testAPIKey: testAPIValue}
		req.Payload = map[string]any{"title": "hello"}
		_, err := exec.Execute(context.Background(), req)

		require.NoError(t, err)
		h := tr.calls[0].Headers
		assert.Equal(t, testAgentValue, h.Get(testUserAgent))
		assert.Equal(t, testAPIValue, h.Get(testAPIKey))
		assert.Equal(t, "Bearer tok", h.Get("Authorization"))
		assert.Equal(t, testJSONType, h.Get(testContentTypeHdr))
		assert.JSONEq(t, `{"title":"hello"}`, string(tr.calls[0].Body))
	})

	t.Run("no content type without payload", func(t *testing.T) {
		tr := newScriptedTransport(jsonResponse(200, `{}`))
		exec := newTestBuilder(tr, &recordingSleeper{}).Build()

		_, err := exec.Get(context.Background(), testUsersPath, nil)

		require.NoError(t, err)
		assert.Empty(t, tr.calls[0].Headers.Get(testContentTypeHdr))
		assert.Nil(t, tr.calls[0].Body)
	})

	t.Run("basic auth", func(t *testing.T) {
		tr := newScriptedTransport(jsonResponse(200, `{}`))
		exec := newTestBuilder(tr, &recordingSleeper{}).WithBasicAuth("user", "pass").Build()

		_, err := exec.Get(context.Background(), testUsersPath, nil)

		require.NoError(t, err)
		r := &nethttp.Request{Header: tr.calls[0].Headers}
		username, password, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "user", username)
		assert.Equal(t, "pass", password)
	})

	t.Run("request id is stable across attempts", func(t *testing.T) {
		tr := newScriptedTransport(timeoutStep(), jsonResponse(200, `{}`))
		exec := newTestBuilder(tr, &recordingSleeper{}).Build()

		ctx := trace.WithTraceID(context.Background(), testCustomTrace)
		result, err := exec.Get(ctx, testUsersPath, nil)

		require.NoError(t, err)
		require.Len(t, tr.calls, 2)
		assert.Equal(t, testCustomTrace, result.RequestID)
		assert.Equal(t, testCustomTrace, tr.calls[0].Headers.Get(trace.HeaderXRequestID))
		assert.Equal(t, testCustomTrace, tr.calls[1].Headers.Get(trace.HeaderXRequestID))
	})

	t.Run("generated request id and custom header", func(t *testing.T) {
		tr := newScriptedTransport(jsonResponse(200, `{}`))
		exec := newTestBuilder(tr, &recordingSleeper{}).WithTraceIDHeader("X-Correlation-ID").Build()

		result, err := exec.Get(context.Background(), testUsersPath, nil)

		require.NoError(t, err)
		assert.Len(t, result.RequestID, 36)
		assert.Equal(t, result.RequestID, tr.calls[0].Headers.Get("X-Correlation-ID"))
		assert.Empty(t, tr.calls[0].Headers.Get(trace.HeaderXRequestID))
	})
}

func TestExecuteEncodesParams(t *testing.T) {
	tr := newScriptedTransport(jsonResponse(200, `[]`))
	exec := newTestBuilder(tr, &recordingSleeper{}).Build()

	_, err := exec.Get(context.Background(), testPostsPath, Params{
		"userId": 1,
		"q":      "a b",
		"active": true,
		"ratio":  0.5,
	})

	require.NoError(t, err)
	assert.Equal(t, testBaseURL+testPostsPath+"?active=true&q=a+b&ratio=0.5&userId=1", tr.calls[0].URL)
}

func TestExecuteDoesNotMutateRequest(t *testing.T) {
	tr := newScriptedTransport(timeoutStep(), jsonResponse(200, `{}`))
	exec := newTestBuilder(tr, &recordingSleeper{}).WithDefaultHeader(testAPIKey, testAPIValue).Build()

	req := exec.NewRequest(nethttp.MethodGet, testUsersPath)
	req.Headers = map[string]string{testUserAgent: testAgentValue}
	req.Params = Params{"a": 1}
	snapshot := *req

	_, err := exec.Execute(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, snapshot.Method, req.Method)
	assert.Equal(t, snapshot.MaxRetries, req.MaxRetries)
	assert.Equal(t, snapshot.Timeout, req.Timeout)
	assert.Equal(t, map[string]string{testUserAgent: testAgentValue}, req.Headers)
	assert.Equal(t, Params{"a": 1}, req.Params)
}

func TestExecuteEmitsLifecycleEvents(t *testing.T) {
	t.Run("retry then success", func(t *testing.T) {
		tr := newScriptedTransport(timeoutStep(), timeoutStep(), jsonResponse(200, `{}`))
		rec := &eventRecorder{}
		exec := newTestBuilder(tr, &recordingSleeper{}).WithObserver(rec).Build()

		_, err := exec.Get(context.Background(), testPostsPath, nil)

		require.NoError(t, err)
		assert.Equal(t, []EventKind{
			EventRequest, EventResponse, EventRetry,
			EventRequest, EventResponse, EventRetry,
			EventRequest, EventResponse, EventSuccess,
		}, rec.kinds())

		retry := rec.events[2]
		assert.Equal(t, 0, retry.Attempt)
		assert.Equal(t, DefaultRetryDelay, retry.Delay)
		require.NotNil(t, retry.Outcome)
		assert.Equal(t, OutcomeRetryable, retry.Outcome.Kind)

		success := rec.events[8]
		assert.Equal(t, 2, success.Attempt)
		assert.Equal(t, OutcomeSuccess, success.Outcome.Kind)
	})

	t.Run("terminal failure", func(t *testing.T) {
		tr := newScriptedTransport(jsonResponse(500, `oops`))
		rec := &eventRecorder{}
		exec := newTestBuilder(tr, &recordingSleeper{}).WithObserver(rec).Build()

		_, err := exec.Get(context.Background(), testPostsPath, nil)

		require.Error(t, err)
		assert.Equal(t, []EventKind{EventRequest, EventResponse, EventFailure}, rec.kinds())
		failure := rec.events[2]
		assert.Equal(t, 500, failure.StatusCode)
		assert.Equal(t, OutcomeTerminal, failure.Outcome.Kind)
		assert.Equal(t, 1, failure.Attempts)
		assert.Equal(t, err, failure.Err)
	})

	t.Run("failure before any attempt reports zero attempts", func(t *testing.T) {
		tr := newScriptedTransport(jsonResponse(200, `{}`))
		rec := &eventRecorder{}
		exec := newTestBuilder(tr, &recordingSleeper{}).WithObserver(rec).Build()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		result, err := exec.Get(ctx, testPostsPath, nil)

		require.Error(t, err)
		assert.Equal(t, []EventKind{EventFailure}, rec.kinds())
		assert.Equal(t, result.Attempts, rec.events[0].Attempts)
		assert.Zero(t, rec.events[0].Attempts)
	})
}

func TestExecuteConcurrentCalls(t *testing.T) {
	tr := newScriptedTransport(jsonResponse(200, `{"ok":true}`))
	exec := newTestBuilder(tr, &recordingSleeper{}).Build()

	const workers = 20
	counts := make(chan int64, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := exec.Get(context.Background(), testUsersPath, nil)
			if assert.NoError(t, err) {
				counts <- result.Stats.CallCount
			}
		}()
	}
	wg.Wait()
	close(counts)

	seen := make(map[int64]bool)
	for c := range counts {
		seen[c] = true
	}
	assert.Len(t, seen, workers)
	assert.Equal(t, workers, tr.callCount())
}

func TestBackoff(t *testing.T) {
	tests := []struct {
		name    string
		base    time.Duration
		attempt int
		want    time.Duration
	}{
		{name: "first retry", base: time.Second, attempt: 0, want: time.Second},
		{name: "second retry", base: time.Second, attempt: 1, want: 2 * time.Second},
		{name: "third retry", base: time.Second, attempt: 2, want: 4 * time.Second},
		{name: "custom base", base: 250 * time.Millisecond, attempt: 3, want: 2 * time.Second},
		{name: "zero base", base: 0, attempt: 5, want: 0},
		{name: "negative attempt", base: time.Second, attempt: -1, want: time.Second},
		{name: "saturates", base: time.Hour, attempt: 40, want: time.Duration(math.MaxInt64)},
		{name: "huge attempt", base: time.Nanosecond, attempt: 100, want: time.Duration(math.MaxInt64)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Backoff(tt.base, tt.attempt))
		})
	}
}

func TestSleepWithContext(t *testing.T) {
	assert.NoError(t, sleepWithContext(context.Background(), time.Millisecond))
	assert.NoError(t, sleepWithContext(context.Background(), 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleepWithContext(ctx, time.Hour), context.Canceled)
}

func TestNewEndpoint(t *testing.T) {
	tests := []struct {
		base, path, want string
	}{
		{"https://x.test/", "users", "https://x.test/users"},
		{"https://x.test", "/users", "https://x.test/users"},
		{"https://x.test///", "", "https://x.test"},
		{" https://x.test ", " /a/b ", "https://x.test/a/b"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NewEndpoint(tt.base, tt.path).String())
	}
}

func TestHTTPTransportIntegration(t *testing.T) {
	t.Run("get and post round trip", func(t *testing.T) {
		server := newIPv4TestServer(t, nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
			w.Header().Set(testContentTypeHdr, testJSONType)
			switch r.Method {
			case nethttp.MethodGet:
				_, _ = fmt.Fprintf(w, `{"name":"Alice","id":%q}`, r.URL.Query().Get("id"))
			case nethttp.MethodPost:
				w.WriteHeader(nethttp.StatusCreated)
				_, _ = fmt.Fprintf(w, `{"content_type":%q}`, r.Header.Get(testContentTypeHdr))
			}
		}))
		defer server.Close()

		exec := NewBuilder().WithBaseURL(server.URL).WithHTTPClient(server.Client()).Build()

		got, err := exec.Get(context.Background(), testUsersPath, Params{"id": 7})
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"name": "Alice", "id": "7"}, got.Body)

		posted, err := exec.Post(context.Background(), testPostsPath, map[string]string{"title": "x"})
		require.NoError(t, err)
		assert.Equal(t, nethttp.StatusCreated, posted.StatusCode)
		assert.Equal(t, map[string]any{"content_type": testJSONType}, posted.Body)
	})

	t.Run("slow server times out every attempt", func(t *testing.T) {
		var hits int32
		release := make(chan struct{})
		server := newIPv4TestServer(t, nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
			atomic.AddInt32(&hits, 1)
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer server.Close()
		defer close(release)

		sleeper := &recordingSleeper{}
		exec := NewBuilder().
			WithBaseURL(server.URL).
			WithHTTPClient(server.Client()).
			WithTimeout(50*time.Millisecond).
			WithRetries(2, 10*time.Millisecond).
			withSleep(sleeper.Sleep).
			Build()

		result, err := exec.Get(context.Background(), testPostsPath, nil)

		require.Error(t, err)
		assert.True(t, IsErrorType(err, TimeoutError), "got %v", err)
		assert.Equal(t, 2, result.Attempts)
		assert.Equal(t, []time.Duration{10 * time.Millisecond}, sleeper.recorded())
	})

	t.Run("unreachable server is a connection error", func(t *testing.T) {
		server := newIPv4TestServer(t, nethttp.NotFoundHandler())
		addr := server.URL
		server.Close()

		sleeper := &recordingSleeper{}
		exec := NewBuilder().
			WithBaseURL(addr).
			WithRetries(2, time.Millisecond).
			withSleep(sleeper.Sleep).
			Build()

		result, err := exec.Get(context.Background(), testUsersPath, nil)

		require.Error(t, err)
		assert.True(t, IsErrorType(err, ConnectionError), "got %v", err)
		assert.Equal(t, 2, result.Attempts)
	})

	t.Run("server error is not retried", func(t *testing.T) {
		var hits int32
		server := newIPv4TestServer(t, nethttp.HandlerFunc(func(w nethttp.ResponseWriter, _ *nethttp.Request) {
			atomic.AddInt32(&hits, 1)
			w.WriteHeader(nethttp.StatusServiceUnavailable)
		}))
		defer server.Close()

		exec := NewBuilder().WithBaseURL(server.URL).WithHTTPClient(server.Client()).Build()

		_, err := exec.Get(context.Background(), testUsersPath, nil)

		assert.True(t, IsHTTPStatusError(err, nethttp.StatusServiceUnavailable))
		assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
	})
}
