package http

import (
	"context"
	nethttp "net/http"
	"strings"
	"time"
)

// Executor defines the retrying request executor
type Executor interface {
	Execute(ctx context.Context, req *Request) (*Result, error)
	Get(ctx context.Context, path string, params Params) (*Result, error)
	Post(ctx context.Context, path string, payload any) (*Result, error)
	NewRequest(method, path string) *Request
}

// Endpoint identifies a remote resource as base address plus path.
// The zero value is invalid; build one with NewEndpoint.
type Endpoint struct {
	base string
	path string
}

// NewEndpoint creates an Endpoint. Trailing slashes on base are dropped and
// path always starts with a slash (unless empty).
func NewEndpoint(base, path string) Endpoint {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	path = strings.TrimSpace(path)
	if path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return Endpoint{base: base, path: path}
}

// Base returns the base address
func (e Endpoint) Base() string { return e.base }

// Path returns the path relative to the base address
func (e Endpoint) Path() string { return e.path }

// String returns the joined address without query parameters
func (e Endpoint) String() string { return e.base + e.path }

// Params holds query parameters. Values must be strings, booleans, integers or floats.
type Params map[string]any

// Request describes one logical request. The executor does not modify it.
type Request struct {
	Method   string
	Endpoint Endpoint
	Params   Params
	Headers  map[string]string
	// Payload is serialized with the executor's Codec and sent as the body
	Payload any
	// Into receives the decoded body when set; otherwise the body decodes into an any
	Into       any
	Timeout    time.Duration
	MaxRetries int
}

// Result is the outcome of a successful Execute, and the partial record of a failed one
type Result struct {
	Body       any
	StatusCode int
	Headers    nethttp.Header
	Raw        []byte
	Attempts   int
	RequestID  string
	Stats      Stats
}

// Stats contains request execution statistics
type Stats struct {
	ElapsedTime time.Duration
	CallCount   int64
}

// BasicAuth contains basic authentication credentials
type BasicAuth struct {
	Username string
	Password string
}

// TransportRequest is what a Transport is asked to send for a single attempt
type TransportRequest struct {
	Method  string
	URL     string
	Headers nethttp.Header
	Body    []byte
	Timeout time.Duration
}

// TransportResponse is the raw answer to a single attempt
type TransportResponse struct {
	StatusCode int
	Headers    nethttp.Header
	Body       []byte
}

// Transport sends a single attempt over the network. Errors are classified by
// the executor; transports should return context errors and net.Error values unwrapped
// or wrapped with %w.
type Transport interface {
	Send(ctx context.Context, req *TransportRequest) (*TransportResponse, error)
}

// TransportFunc adapts a function to the Transport interface
type TransportFunc func(ctx context.Context, req *TransportRequest) (*TransportResponse, error)

// Send calls f(ctx, req)
func (f TransportFunc) Send(ctx context.Context, req *TransportRequest) (*TransportResponse, error) {
	return f(ctx, req)
}

// Codec serializes payloads and decodes response bodies
type Codec interface {
	ContentType() string
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// SleepFunc waits for d or until ctx is done
type SleepFunc func(ctx context.Context, d time.Duration) error

// Config holds the executor configuration
type Config struct {
	BaseURL        string
	Timeout        time.Duration
	MaxRetries     int
	RetryDelay     time.Duration
	BearerToken    string
	BasicAuth      *BasicAuth
	DefaultHeaders map[string]string
	// TraceIDHeader configures the header used for request ID propagation (default: X-Request-ID)
	TraceIDHeader string
	Observers     []Observer
	Transport     Transport
	Codec         Codec
	// RateLimit caps attempts per second across all requests; 0 disables it
	RateLimit float64
	RateBurst int

	sleep SleepFunc
}
