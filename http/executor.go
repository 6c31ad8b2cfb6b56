package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	nethttp "net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gaborage/go-scriptkit/logger"
	"github.com/gaborage/go-scriptkit/trace"
)

const (
	// DefaultTimeout is the default per-attempt timeout
	DefaultTimeout = 10 * time.Second

	// DefaultMaxRetries is the default number of attempts per request
	DefaultMaxRetries = 3

	// DefaultRetryDelay is the default backoff base
	DefaultRetryDelay = 1 * time.Second

	headerContentType   = "Content-Type"
	headerAuthorization = "Authorization"
)

var supportedMethods = map[string]bool{
	nethttp.MethodGet:    true,
	nethttp.MethodPost:   true,
	nethttp.MethodPut:    true,
	nethttp.MethodPatch:  true,
	nethttp.MethodDelete: true,
}

// executor implements the Executor interface
type executor struct {
	config    Config
	transport Transport
	codec     Codec
	sleep     SleepFunc
	callCount int64
}

// NewExecutor creates an executor from cfg. Zero Timeout, MaxRetries and
// RetryDelay fall back to the package defaults.
func NewExecutor(cfg Config) Executor {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	if cfg.TraceIDHeader == "" {
		cfg.TraceIDHeader = trace.HeaderXRequestID
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")

	headers := make(map[string]string, len(cfg.DefaultHeaders))
	for k, v := range cfg.DefaultHeaders {
		headers[k] = v
	}
	cfg.DefaultHeaders = headers
	cfg.Observers = append([]Observer(nil), cfg.Observers...)
	if cfg.BasicAuth != nil {
		auth := *cfg.BasicAuth
		cfg.BasicAuth = &auth
	}

	e := &executor{
		config:    cfg,
		transport: cfg.Transport,
		codec:     cfg.Codec,
		sleep:     cfg.sleep,
	}
	if e.transport == nil {
		e.transport = NewHTTPTransport(nil)
	}
	if cfg.RateLimit > 0 {
		e.transport = NewRateLimitedTransport(e.transport, cfg.RateLimit, cfg.RateBurst)
	}
	if e.codec == nil {
		e.codec = JSONCodec{}
	}
	if e.sleep == nil {
		e.sleep = sleepWithContext
	}
	return e
}

// Builder provides a fluent interface for configuring the executor
type Builder struct {
	config Config
}

// NewBuilder creates a new executor builder
func NewBuilder() *Builder {
	return &Builder{
		config: Config{
			Timeout:        DefaultTimeout,
			MaxRetries:     DefaultMaxRetries,
			RetryDelay:     DefaultRetryDelay,
			DefaultHeaders: make(map[string]string),
			TraceIDHeader:  trace.HeaderXRequestID,
		},
	}
}

// WithBaseURL sets the base address requests are resolved against
func (b *Builder) WithBaseURL(baseURL string) *Builder {
	b.config.BaseURL = baseURL
	return b
}

// WithTimeout sets the per-attempt timeout
func (b *Builder) WithTimeout(timeout time.Duration) *Builder {
	b.config.Timeout = timeout
	return b
}

// WithRetries sets the number of attempts and the backoff base
func (b *Builder) WithRetries(maxRetries int, retryDelay time.Duration) *Builder {
	b.config.MaxRetries = maxRetries
	b.config.RetryDelay = retryDelay
	return b
}

// WithBearerToken sends "Authorization: Bearer <token>" on every request
func (b *Builder) WithBearerToken(token string) *Builder {
	b.config.BearerToken = token
	return b
}

// WithBasicAuth sets basic authentication credentials
func (b *Builder) WithBasicAuth(username, password string) *Builder {
	b.config.BasicAuth = &BasicAuth{
		Username: username,
		Password: password,
	}
	return b
}

// WithDefaultHeader adds a default header that will be sent with all requests
func (b *Builder) WithDefaultHeader(key, value string) *Builder {
	b.config.DefaultHeaders[key] = value
	return b
}

// WithTraceIDHeader sets the header used to propagate the request ID
func (b *Builder) WithTraceIDHeader(header string) *Builder {
	b.config.TraceIDHeader = header
	return b
}

// WithObserver registers an observer for lifecycle events
func (b *Builder) WithObserver(observer Observer) *Builder {
	if observer != nil {
		b.config.Observers = append(b.config.Observers, observer)
	}
	return b
}

// WithLogger registers a logging observer with the default LogConfig
func (b *Builder) WithLogger(log logger.Logger) *Builder {
	if log == nil {
		return b
	}
	return b.WithObserver(NewLoggingObserver(log, LogConfig{}))
}

// WithTransport replaces the network transport
func (b *Builder) WithTransport(transport Transport) *Builder {
	b.config.Transport = transport
	return b
}

// WithHTTPClient sends attempts through client
func (b *Builder) WithHTTPClient(client *nethttp.Client) *Builder {
	b.config.Transport = NewHTTPTransport(client)
	return b
}

// WithRateLimit spaces attempts so at most perSecond reach the transport,
// allowing bursts of burst. Retries count against the same budget.
func (b *Builder) WithRateLimit(perSecond float64, burst int) *Builder {
	b.config.RateLimit = perSecond
	b.config.RateBurst = burst
	return b
}

// WithCodec replaces the payload codec
func (b *Builder) WithCodec(codec Codec) *Builder {
	b.config.Codec = codec
	return b
}

func (b *Builder) withSleep(sleep SleepFunc) *Builder {
	b.config.sleep = sleep
	return b
}

// Build creates the executor with the configured options
func (b *Builder) Build() Executor {
	return NewExecutor(b.config)
}

// NewRequest creates a request against the configured base URL, carrying the
// executor's timeout and retry defaults
func (e *executor) NewRequest(method, path string) *Request {
	return &Request{
		Method:     strings.ToUpper(method),
		Endpoint:   NewEndpoint(e.config.BaseURL, path),
		Timeout:    e.config.Timeout,
		MaxRetries: e.config.MaxRetries,
	}
}

// Get performs a GET request with query params
func (e *executor) Get(ctx context.Context, path string, params Params) (*Result, error) {
	req := e.NewRequest(nethttp.MethodGet, path)
	req.Params = params
	return e.Execute(ctx, req)
}

// Post performs a POST request with payload as body
func (e *executor) Post(ctx context.Context, path string, payload any) (*Result, error) {
	req := e.NewRequest(nethttp.MethodPost, path)
	req.Payload = payload
	return e.Execute(ctx, req)
}

// prepared holds everything that stays fixed across the attempts of one call
type prepared struct {
	req       *Request
	method    string
	url       string
	headers   nethttp.Header
	body      []byte
	requestID string
}

// Execute runs req until it succeeds, fails terminally or runs out of attempts
func (e *executor) Execute(ctx context.Context, req *Request) (*Result, error) {
	p, err := e.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	callCount := atomic.AddInt64(&e.callCount, 1)
	result := &Result{RequestID: p.requestID}

	for attempt := 0; attempt < req.MaxRetries; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return e.fail(ctx, p, result, start, callCount, attempt, NewCancelledError("request cancelled", ctxErr))
		}

		result.Attempts = attempt + 1
		outcome, resp := e.attempt(ctx, p, attempt)
		if resp != nil {
			result.StatusCode = resp.StatusCode
			result.Headers = resp.Headers
			result.Raw = resp.Body
		}

		switch outcome.Kind {
		case OutcomeSuccess:
			result.Body = outcome.Body
			result.Stats = Stats{ElapsedTime: time.Since(start), CallCount: callCount}
			e.emit(ctx, Event{
				Kind:       EventSuccess,
				Method:     p.method,
				URL:        p.url,
				RequestID:  p.requestID,
				Attempt:    attempt,
				Attempts:   result.Attempts,
				MaxRetries: req.MaxRetries,
				StatusCode: result.StatusCode,
				Elapsed:    result.Stats.ElapsedTime,
				Outcome:    &outcome,
			})
			return result, nil

		case OutcomeTerminal:
			return e.fail(ctx, p, result, start, callCount, attempt, outcome.Err)

		case OutcomeRetryable:
			if attempt == req.MaxRetries-1 {
				return e.fail(ctx, p, result, start, callCount, attempt, outcome.Err)
			}

			delay := Backoff(e.config.RetryDelay, attempt)
			e.emit(ctx, Event{
				Kind:       EventRetry,
				Method:     p.method,
				URL:        p.url,
				RequestID:  p.requestID,
				Attempt:    attempt,
				MaxRetries: req.MaxRetries,
				Delay:      delay,
				Err:        outcome.Err,
				Outcome:    &outcome,
			})
			if sleepErr := e.sleep(ctx, delay); sleepErr != nil {
				return e.fail(ctx, p, result, start, callCount, attempt, NewCancelledError("backoff interrupted", sleepErr))
			}
		}
	}

	// MaxRetries >= 1 is enforced by prepare, so the loop always returns
	return e.fail(ctx, p, result, start, callCount, req.MaxRetries-1, NewConfigurationError("no attempts made", "max_retries", nil))
}

// attempt dispatches one attempt and classifies its outcome
func (e *executor) attempt(ctx context.Context, p *prepared, attempt int) (Outcome, *TransportResponse) {
	attemptCtx, cancel := context.WithTimeout(ctx, p.req.Timeout)
	defer cancel()

	e.emit(ctx, Event{
		Kind:        EventRequest,
		Method:      p.method,
		URL:         p.url,
		RequestID:   p.requestID,
		Attempt:     attempt,
		MaxRetries:  p.req.MaxRetries,
		Headers:     p.headers,
		RequestBody: p.body,
	})

	started := time.Now()
	resp, err := e.transport.Send(attemptCtx, &TransportRequest{
		Method:  p.method,
		URL:     p.url,
		Headers: p.headers.Clone(),
		Body:    p.body,
		Timeout: p.req.Timeout,
	})
	elapsed := time.Since(started)
	if err == nil && resp == nil {
		err = errors.New("transport returned no response")
	}

	if err != nil {
		cause := e.classifyTransportError(ctx, err, p.req.Timeout)
		e.emit(ctx, Event{
			Kind:       EventResponse,
			Method:     p.method,
			URL:        p.url,
			RequestID:  p.requestID,
			Attempt:    attempt,
			MaxRetries: p.req.MaxRetries,
			Elapsed:    elapsed,
			Err:        cause,
		})
		kind := OutcomeTerminal
		if IsRetryable(cause) {
			kind = OutcomeRetryable
		}
		return Outcome{Kind: kind, Attempt: attempt, Err: cause}, nil
	}

	e.emit(ctx, Event{
		Kind:         EventResponse,
		Method:       p.method,
		URL:          p.url,
		RequestID:    p.requestID,
		Attempt:      attempt,
		MaxRetries:   p.req.MaxRetries,
		StatusCode:   resp.StatusCode,
		Elapsed:      elapsed,
		Headers:      resp.Headers,
		ResponseBody: resp.Body,
	})

	if IsErrorStatus(resp.StatusCode) {
		cause := NewResponseError(
			fmt.Sprintf("HTTP request failed with status %d", resp.StatusCode),
			resp.StatusCode,
			resp.Body,
		)
		return Outcome{Kind: OutcomeTerminal, Attempt: attempt, Err: cause}, resp
	}

	body, err := e.decode(p.req, resp.Body)
	if err != nil {
		return Outcome{Kind: OutcomeTerminal, Attempt: attempt, Err: err}, resp
	}
	return Outcome{Kind: OutcomeSuccess, Attempt: attempt, Body: body}, resp
}

// fail finalizes a failed call: records stats and emits the failure event
func (e *executor) fail(ctx context.Context, p *prepared, result *Result, start time.Time, callCount int64, attempt int, cause error) (*Result, error) {
	result.Stats = Stats{ElapsedTime: time.Since(start), CallCount: callCount}
	e.emit(ctx, Event{
		Kind:       EventFailure,
		Method:     p.method,
		URL:        p.url,
		RequestID:  p.requestID,
		Attempt:    attempt,
		Attempts:   result.Attempts,
		MaxRetries: p.req.MaxRetries,
		StatusCode: result.StatusCode,
		Elapsed:    result.Stats.ElapsedTime,
		Err:        cause,
		Outcome:    &Outcome{Kind: OutcomeTerminal, Attempt: attempt, Err: cause},
	})
	return result, cause
}

func (e *executor) emit(ctx context.Context, ev Event) {
	for _, o := range e.config.Observers {
		o.OnEvent(ctx, ev)
	}
}

// classifyTransportError maps a transport failure onto the error taxonomy.
// Caller cancellation wins over the attempt's own deadline.
func (e *executor) classifyTransportError(ctx context.Context, err error, timeout time.Duration) ExecutionError {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return NewCancelledError("request cancelled", errors.Join(ctxErr, err))
	}
	if isTimeout(err) {
		return NewTimeoutError("request timeout", timeout, err)
	}
	return NewConnectionError("request execution failed", err)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// decode parses a non-error response body. An empty body decodes to nil.
func (e *executor) decode(req *Request, raw []byte) (any, error) {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil, nil
	}
	if req.Into != nil {
		if err := e.codec.Unmarshal(raw, req.Into); err != nil {
			return nil, NewDecodeError("failed to decode response body", err)
		}
		return req.Into, nil
	}
	var body any
	if err := e.codec.Unmarshal(raw, &body); err != nil {
		return nil, NewDecodeError("failed to decode response body", err)
	}
	return body, nil
}

// prepare validates req and computes the values shared by all attempts
func (e *executor) prepare(ctx context.Context, req *Request) (*prepared, error) {
	if req == nil {
		return nil, NewConfigurationError("request cannot be nil", "request", nil)
	}
	method := strings.ToUpper(req.Method)
	if !supportedMethods[method] {
		return nil, NewConfigurationError(fmt.Sprintf("unsupported method %q", req.Method), "method", nil)
	}
	if req.MaxRetries <= 0 {
		return nil, NewConfigurationError(fmt.Sprintf("max retries must be positive, got %d", req.MaxRetries), "max_retries", nil)
	}
	if req.Timeout <= 0 {
		return nil, NewConfigurationError(fmt.Sprintf("timeout must be positive, got %v", req.Timeout), "timeout", nil)
	}
	if err := validateBase(req.Endpoint.Base()); err != nil {
		return nil, err
	}

	target, err := buildURL(req.Endpoint, req.Params)
	if err != nil {
		return nil, err
	}

	var body []byte
	if req.Payload != nil {
		body, err = e.codec.Marshal(req.Payload)
		if err != nil {
			return nil, NewConfigurationError("payload cannot be serialized", "payload", err)
		}
	}

	headers := e.buildHeaders(req, body != nil)
	requestID := headers.Get(e.config.TraceIDHeader)
	if requestID == "" {
		requestID = trace.EnsureTraceID(ctx)
		headers.Set(e.config.TraceIDHeader, requestID)
	}

	return &prepared{
		req:       req,
		method:    method,
		url:       target,
		headers:   headers,
		body:      body,
		requestID: requestID,
	}, nil
}

// buildHeaders merges headers: defaults, then auth, then request headers
func (e *executor) buildHeaders(req *Request, hasBody bool) nethttp.Header {
	headers := make(nethttp.Header)
	for key, value := range e.config.DefaultHeaders {
		headers.Set(key, value)
	}

	switch {
	case e.config.BearerToken != "":
		headers.Set(headerAuthorization, "Bearer "+e.config.BearerToken)
	case e.config.BasicAuth != nil:
		r := &nethttp.Request{Header: headers}
		r.SetBasicAuth(e.config.BasicAuth.Username, e.config.BasicAuth.Password)
	}

	for key, value := range req.Headers {
		headers.Set(key, value)
	}

	if hasBody && headers.Get(headerContentType) == "" {
		headers.Set(headerContentType, e.codec.ContentType())
	}
	return headers
}

func validateBase(base string) error {
	if base == "" {
		return NewConfigurationError("base URL cannot be empty", "base_url", nil)
	}
	u, err := url.Parse(base)
	if err != nil {
		return NewConfigurationError("base URL is not valid", "base_url", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return NewConfigurationError(fmt.Sprintf("base URL %q must be an absolute http(s) address", base), "base_url", nil)
	}
	return nil
}

// buildURL joins the endpoint with its encoded query. Keys are sorted.
func buildURL(endpoint Endpoint, params Params) (string, error) {
	target := endpoint.String()
	if len(params) == 0 {
		return target, nil
	}

	values := make(url.Values, len(params))
	for key, value := range params {
		s, err := formatParam(value)
		if err != nil {
			return "", NewConfigurationError(err.Error(), "params."+key, nil)
		}
		values.Set(key, s)
	}

	sep := "?"
	if strings.Contains(target, "?") {
		sep = "&"
	}
	return target + sep + values.Encode(), nil
}

func formatParam(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	case int:
		return strconv.FormatInt(int64(v), 10), nil
	case int8:
		return strconv.FormatInt(int64(v), 10), nil
	case int16:
		return strconv.FormatInt(int64(v), 10), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case uint:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint8:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint16:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint64:
		return strconv.FormatUint(v, 10), nil
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("unsupported query parameter type %T", value)
	}
}
