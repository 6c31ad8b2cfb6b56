package observability

import (
	"fmt"
	"io"
	"os"
	"time"
)

const (
	// EndpointStdout prints spans instead of exporting them (for local development).
	EndpointStdout = "stdout"

	// ProtocolHTTP specifies OTLP over HTTP/protobuf.
	ProtocolHTTP = "http"

	// ProtocolGRPC specifies OTLP over gRPC.
	ProtocolGRPC = "grpc"

	// DefaultSampleRate records every span.
	DefaultSampleRate = 1.0

	// DefaultBatchTimeout bounds how long finished spans wait before export.
	DefaultBatchTimeout = 5 * time.Second
)

// Config defines how request spans are exported.
type Config struct {
	// Enabled controls whether spans are recorded at all.
	Enabled bool

	ServiceName    string
	ServiceVersion string
	Environment    string

	// Endpoint is an OTLP collector address or EndpointStdout.
	Endpoint string
	// Protocol selects OTLP over http or grpc; ignored for EndpointStdout.
	Protocol string
	// Insecure disables TLS towards the collector.
	Insecure bool
	// Headers are sent with every export, typically for authentication.
	Headers map[string]string

	SampleRate   float64
	BatchTimeout time.Duration

	// Writer receives spans for EndpointStdout (default: os.Stdout).
	Writer io.Writer
}

// ApplyDefaults fills unset optional fields.
func (c *Config) ApplyDefaults() {
	if c.Protocol == "" {
		c.Protocol = ProtocolHTTP
	}
	if c.BatchTimeout <= 0 {
		c.BatchTimeout = DefaultBatchTimeout
	}
	if c.Writer == nil {
		c.Writer = os.Stdout
	}
}

// Validate checks an enabled configuration. Disabled configurations are always valid.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.ServiceName == "" {
		return ErrMissingServiceName
	}
	if c.Endpoint == "" {
		return ErrMissingEndpoint
	}
	if c.SampleRate < 0 || c.SampleRate > 1 {
		return fmt.Errorf("%w: got %v", ErrInvalidSampleRate, c.SampleRate)
	}
	if c.Endpoint != EndpointStdout && c.Protocol != ProtocolHTTP && c.Protocol != ProtocolGRPC {
		return fmt.Errorf("protocol '%s': %w", c.Protocol, ErrInvalidProtocol)
	}
	return nil
}
