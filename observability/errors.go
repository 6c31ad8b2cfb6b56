package observability

import "errors"

// ErrMissingServiceName is returned when tracing is enabled but no service name is configured.
var ErrMissingServiceName = errors.New("observability: service name is required when tracing is enabled")

// ErrMissingEndpoint is returned when tracing is enabled without an export endpoint.
var ErrMissingEndpoint = errors.New("observability: endpoint is required when tracing is enabled")

// ErrInvalidSampleRate is returned when the sample rate is outside the valid range [0.0, 1.0].
var ErrInvalidSampleRate = errors.New("observability: sample rate must be between 0.0 and 1.0")

// ErrInvalidProtocol is returned when the protocol is not "http" or "grpc".
var ErrInvalidProtocol = errors.New("observability: protocol must be either 'http' or 'grpc'")
