package http

import (
	"context"
	"errors"
	nethttp "net/http"

	"github.com/gaborage/go-scriptkit/logger"
)

const (
	// DefaultMaxPayloadLogBytes caps logged body previews when LogConfig leaves it unset
	DefaultMaxPayloadLogBytes = 1024

	msgRequest  = "REST client request"
	msgResponse = "REST client response"
	msgRetry    = "REST client retry"
	msgFailure  = "REST client failure"
)

// LogConfig controls what the logging observer writes
type LogConfig struct {
	// LogPayloads enables debug-level logging of headers and body payloads
	LogPayloads bool
	// MaxPayloadLogBytes caps the number of body bytes logged when LogPayloads is enabled
	MaxPayloadLogBytes int
}

// LoggingObserver writes executor events as structured log entries
type LoggingObserver struct {
	logger logger.Logger
	config LogConfig
}

// NewLoggingObserver creates an observer that logs through log
func NewLoggingObserver(log logger.Logger, cfg LogConfig) *LoggingObserver {
	if cfg.MaxPayloadLogBytes <= 0 {
		cfg.MaxPayloadLogBytes = DefaultMaxPayloadLogBytes
	}
	return &LoggingObserver{logger: log, config: cfg}
}

// OnEvent implements Observer
func (o *LoggingObserver) OnEvent(_ context.Context, ev Event) {
	switch ev.Kind {
	case EventRequest:
		o.logRequest(ev)
	case EventResponse:
		o.logResponse(ev)
	case EventRetry:
		o.logger.Warn().
			Str("method", ev.Method).
			Str("url", ev.URL).
			Str("request_id", ev.RequestID).
			Int("attempt", ev.Attempt+1).
			Int("max_retries", ev.MaxRetries).
			Dur("delay", ev.Delay).
			Err(ev.Err).
			Msg(msgRetry)
	case EventFailure:
		logEvent := o.logger.Error().
			Str("method", ev.Method).
			Str("url", ev.URL).
			Str("request_id", ev.RequestID).
			Int("attempts", ev.Attempts).
			Dur("elapsed", ev.Elapsed)
		var execErr ExecutionError
		if errors.As(ev.Err, &execErr) {
			logEvent = logEvent.Str("error_type", string(execErr.Type()))
		}
		if ev.StatusCode != 0 {
			logEvent = logEvent.Int("status", ev.StatusCode)
		}
		logEvent.Err(ev.Err).Msg(msgFailure)
	}
}

// logRequest logs the outgoing attempt
func (o *LoggingObserver) logRequest(ev Event) {
	logEvent := o.logger.Info().
		Str("direction", "outbound").
		Str("method", ev.Method).
		Str("url", ev.URL).
		Str("request_id", ev.RequestID).
		Int("attempt", ev.Attempt+1)

	if len(ev.Headers) > 0 {
		logEvent = logEvent.Int("header_count", len(ev.Headers))
	}
	if len(ev.RequestBody) > 0 {
		logEvent = logEvent.Int("body_size", len(ev.RequestBody))
	}
	logEvent.Msg(msgRequest)

	if o.config.LogPayloads {
		o.logPayload(o.logger.Debug().
			Str("direction", "outbound").
			Str("method", ev.Method).
			Str("request_id", ev.RequestID), ev.Headers, ev.RequestBody).
			Msg(msgRequest)
	}
}

// logResponse logs the result of one attempt
func (o *LoggingObserver) logResponse(ev Event) {
	logEvent := o.logger.Info().
		Str("direction", "inbound").
		Str("request_id", ev.RequestID).
		Int("attempt", ev.Attempt+1).
		Dur("elapsed", ev.Elapsed)

	if ev.Err != nil {
		logEvent.Err(ev.Err).Msg(msgResponse)
		return
	}

	logEvent = logEvent.Int("status", ev.StatusCode)
	if len(ev.ResponseBody) > 0 {
		logEvent = logEvent.Int("body_size", len(ev.ResponseBody))
	}
	logEvent.Msg(msgResponse)

	if o.config.LogPayloads {
		o.logPayload(o.logger.Debug().
			Str("direction", "inbound").
			Int("status", ev.StatusCode).
			Str("request_id", ev.RequestID), ev.Headers, ev.ResponseBody).
			Msg(msgResponse)
	}
}

// logPayload adds headers and a truncated body preview to a debug entry.
// Headers go through Interface so the sensitive data filter can mask them.
func (o *LoggingObserver) logPayload(logEvent logger.LogEvent, headers nethttp.Header, body []byte) logger.LogEvent {
	if len(headers) > 0 {
		logEvent = logEvent.Interface("headers", headerFields(headers))
	}
	if len(body) == 0 {
		return logEvent
	}

	preview := body
	truncated := "false"
	if len(preview) > o.config.MaxPayloadLogBytes {
		preview = preview[:o.config.MaxPayloadLogBytes]
		truncated = "true"
	}
	return logEvent.
		Int("body_size", len(body)).
		Str("body_truncated", truncated).
		Bytes("body_preview", preview)
}

func headerFields(headers nethttp.Header) map[string]any {
	fields := make(map[string]any, len(headers))
	for key, values := range headers {
		if len(values) == 1 {
			fields[key] = values[0]
			continue
		}
		fields[key] = values
	}
	return fields
}
