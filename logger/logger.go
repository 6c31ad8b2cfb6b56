package logger

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	reqtrace "github.com/gaborage/go-scriptkit/trace"
)

// ZeroLogger wraps zerolog.Logger to implement the Logger interface.
type ZeroLogger struct {
	zlog   *zerolog.Logger
	filter *SensitiveDataFilter
	pretty bool
}

// Ensure ZeroLogger implements the interface
var _ Logger = (*ZeroLogger)(nil)

var callerMarshalOnce sync.Once

// New creates a logger writing to stderr. Unknown levels fall back to info.
// If pretty is true, output is formatted for humans instead of JSON.
func New(level string, pretty bool) *ZeroLogger {
	return NewWithWriter(os.Stderr, level, pretty)
}

// NewWithWriter creates a logger writing to w with the default filter
func NewWithWriter(w io.Writer, level string, pretty bool) *ZeroLogger {
	return NewWithFilter(w, level, pretty, DefaultFilterConfig())
}

// NewWithFilter creates a logger with a custom sensitive field configuration
func NewWithFilter(w io.Writer, level string, pretty bool, filterConfig *FilterConfig) *ZeroLogger {
	callerMarshalOnce.Do(func() {
		zerolog.CallerMarshalFunc = func(_ uintptr, file string, line int) string {
			base := filepath.Base(file)
			parent := filepath.Base(filepath.Dir(file))
			if parent != "." && parent != "" {
				return parent + "/" + base + ":" + strconv.Itoa(line)
			}
			return base + ":" + strconv.Itoa(line)
		}
	})

	if w == nil {
		w = os.Stderr
	}
	if pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	l := zerolog.New(w).With().Timestamp().Logger().Level(ParseLevel(level))

	return &ZeroLogger{
		zlog:   &l,
		filter: NewSensitiveDataFilter(filterConfig),
		pretty: pretty,
	}
}

// NewNop returns a logger that discards everything
func NewNop() *ZeroLogger {
	l := zerolog.Nop()
	return &ZeroLogger{zlog: &l, filter: NewSensitiveDataFilter(nil)}
}

// ParseLevel converts a level name to a zerolog level, defaulting to info
func ParseLevel(level string) zerolog.Level {
	zLevel, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		return zerolog.InfoLevel
	}
	return zLevel
}

// WithCaller returns a logger that annotates entries with the calling file and line
func (l *ZeroLogger) WithCaller() *ZeroLogger {
	zl := l.zlog.With().CallerWithSkipFrameCount(3).Logger()
	return &ZeroLogger{zlog: &zl, filter: l.filter, pretty: l.pretty}
}

// WithContext returns a logger carrying the request ID and the active span of ctx.
// Anything that is not a context.Context, or a context with neither, returns l.
func (l *ZeroLogger) WithContext(ctx any) Logger {
	c, ok := ctx.(context.Context)
	if !ok || c == nil {
		return l
	}

	fields := make(map[string]any, 3)
	if id, ok := reqtrace.IDFromContext(c); ok {
		fields["request_id"] = id
	}
	if sc := trace.SpanContextFromContext(c); sc.IsValid() {
		fields["trace_id"] = sc.TraceID().String()
		fields["span_id"] = sc.SpanID().String()
	}
	if len(fields) == 0 {
		return l
	}

	zl := l.zlog.With().Fields(fields).Logger()
	return &ZeroLogger{zlog: &zl, filter: l.filter, pretty: l.pretty}
}

// WithFields returns a logger with additional fields attached to all log entries.
func (l *ZeroLogger) WithFields(fields map[string]any) Logger {
	if l.filter != nil {
		fields = l.filter.FilterFields(fields)
	}
	zl := l.zlog.With().Fields(fields).Logger()
	return &ZeroLogger{zlog: &zl, filter: l.filter, pretty: l.pretty}
}
