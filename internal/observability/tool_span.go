package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/yungbote/neurobridge-voice/voice"

// ToolSpan wraps one tool call. End is nil-safe so callers can defer it
// unconditionally.
type ToolSpan struct {
	span trace.Span
}

// StartToolSpan opens "voice.tool/<name>" under ctx. Without an installed
// provider the global no-op tracer is used.
func StartToolSpan(ctx context.Context, name, mode string) (context.Context, *ToolSpan) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "voice.tool/"+name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("tool.name", name),
			attribute.String("voice.mode", mode),
		),
	)
	return ctx, &ToolSpan{span: span}
}

// End records the outcome. code is empty on success.
func (s *ToolSpan) End(success bool, code string) {
	if s == nil || s.span == nil {
		return
	}
	s.span.SetAttributes(
		attribute.Bool("tool.success", success),
		attribute.String("tool.code", code),
	)
	if !success && code == "internal" {
		s.span.SetStatus(codes.Error, code)
	}
	s.span.End()
}
