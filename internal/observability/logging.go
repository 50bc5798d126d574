package observability

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"git.home.luguber.info/inful/coursesite/internal/logfields"
)

// LogContext holds request-scoped values attached to log records.
type LogContext struct {
	RequestID string
	Locale    string
	Route     string
}

type logContextKey struct{}

// WithRequestID stores a request ID in ctx.
func WithRequestID(ctx context.Context, id string) context.Context {
	lc := GetContext(ctx)
	lc.RequestID = id
	return context.WithValue(ctx, logContextKey{}, lc)
}

// WithLocale stores the resolved locale in ctx.
func WithLocale(ctx context.Context, locale string) context.Context {
	lc := GetContext(ctx)
	lc.Locale = locale
	return context.WithValue(ctx, logContextKey{}, lc)
}

// WithRoute stores the matched route in ctx.
func WithRoute(ctx context.Context, route string) context.Context {
	lc := GetContext(ctx)
	lc.Route = route
	return context.WithValue(ctx, logContextKey{}, lc)
}

// GetContext returns the LogContext in ctx, or the zero value.
func GetContext(ctx context.Context) LogContext {
	if lc, ok := ctx.Value(logContextKey{}).(LogContext); ok {
		return lc
	}
	return LogContext{}
}

// Attrs returns the log attributes for ctx, including the trace ID of an
// active sampled span.
func Attrs(ctx context.Context) []slog.Attr {
	lc := GetContext(ctx)
	var attrs []slog.Attr
	if lc.RequestID != "" {
		attrs = append(attrs, logfields.RequestID(lc.RequestID))
	}
	if lc.Locale != "" {
		attrs = append(attrs, logfields.Locale(lc.Locale))
	}
	if lc.Route != "" {
		attrs = append(attrs, logfields.Route(lc.Route))
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		attrs = append(attrs, slog.String("trace_id", sc.TraceID().String()))
	}
	return attrs
}

// Logger returns base enriched with the request context of ctx.
func Logger(ctx context.Context, base *slog.Logger) *slog.Logger {
	if base == nil {
		base = slog.Default()
	}
	attrs := Attrs(ctx)
	if len(attrs) == 0 {
		return base
	}
	args := make([]any, len(attrs))
	for i, a := range attrs {
		args[i] = a
	}
	return base.With(args...)
}
