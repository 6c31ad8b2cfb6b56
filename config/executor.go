package config

import (
	"github.com/gaborage/go-scriptkit/http"
	"github.com/gaborage/go-scriptkit/logger"
	"github.com/gaborage/go-scriptkit/observability"
)

// ExecutorLogConfig returns the executor logging options derived from the log section
func (c *Config) ExecutorLogConfig() http.LogConfig {
	return http.LogConfig{
		LogPayloads:        c.Log.Payloads,
		MaxPayloadLogBytes: c.Log.MaxPayloadBytes,
	}
}

// NewExecutorBuilder returns a builder preloaded with the http section and,
// when log is not nil, a logging observer. Callers add credentials and extra
// headers before Build.
func (c *Config) NewExecutorBuilder(baseURL string, log logger.Logger) *http.Builder {
	b := http.NewBuilder().
		WithBaseURL(baseURL).
		WithTimeout(c.HTTP.Timeout).
		WithRetries(c.HTTP.MaxRetries, c.HTTP.RetryDelay)

	if c.HTTP.RateLimit > 0 {
		b = b.WithRateLimit(c.HTTP.RateLimit, c.HTTP.RateBurst)
	}
	if c.HTTP.UserAgent != "" {
		b = b.WithDefaultHeader("User-Agent", c.HTTP.UserAgent)
	}
	if log != nil {
		b = b.WithObserver(http.NewLoggingObserver(log, c.ExecutorLogConfig()))
	}
	return b
}

// ObservabilityConfig maps the trace section onto the span export settings
func (c *Config) ObservabilityConfig() observability.Config {
	return observability.Config{
		Enabled:        c.Trace.Enabled,
		ServiceName:    c.App.Name,
		ServiceVersion: c.App.Version,
		Environment:    c.App.Env,
		Endpoint:       c.Trace.Endpoint,
		Protocol:       c.Trace.Protocol,
		Insecure:       c.Trace.Insecure,
		SampleRate:     c.Trace.SampleRate,
	}
}
