package logging

import (
	"context"

	"go.opentelemetry.io/otel/trace"
)

// Context keys for trace and span IDs
type contextKey string

const (
	traceIDKey contextKey = "trace_id"
	spanIDKey  contextKey = "span_id"
	requestKey contextKey = "request_id"
)

// TraceIDKey returns the context key for an explicit trace ID
func TraceIDKey() interface{} {
	return traceIDKey
}

// SpanIDKey returns the context key for an explicit span ID
func SpanIDKey() interface{} {
	return spanIDKey
}

// WithRequestID stores an HTTP request ID for log correlation
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestKey, id)
}

// RequestID returns the request ID stored by WithRequestID, if any
func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestKey).(string)
	return id
}

// extractContextFields collects trace_id, span_id and request_id.
// A valid OpenTelemetry span context takes precedence over explicit values.
// Returns nil if nothing is found.
func extractContextFields(ctx context.Context) map[string]interface{} {
	if ctx == nil {
		return nil
	}

	fields := make(map[string]interface{})

	if traceID := ctx.Value(traceIDKey); traceID != nil {
		fields["trace_id"] = traceID
	}
	if spanID := ctx.Value(spanIDKey); spanID != nil {
		fields["span_id"] = spanID
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		fields["trace_id"] = sc.TraceID().String()
		fields["span_id"] = sc.SpanID().String()
	}
	if id := RequestID(ctx); id != "" {
		fields["request_id"] = id
	}

	if len(fields) == 0 {
		return nil
	}
	return fields
}
