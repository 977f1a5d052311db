package core

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// TracerName is the instrumentation name used for session spans.
const TracerName = "github.com/auth0/go-session-middleware/core"

// Span names.
const (
	SpanEstablish = "session.establish"
	SpanResolve   = "session.resolve"
	SpanDestroy   = "session.destroy"
)

// Span attribute keys.
const (
	AttrOutcome   = attribute.Key("session.outcome")
	AttrSubject   = attribute.Key("session.subject")
	AttrErrorCode = attribute.Key("session.error_code")
)

// OutcomeSuccess is the outcome recorded for a successful operation.
const OutcomeSuccess = "success"

func defaultTracer() oteltrace.Tracer {
	return noop.NewTracerProvider().Tracer(TracerName)
}

func (m *Manager) startSpan(ctx context.Context, name string) (context.Context, oteltrace.Span) {
	return m.tracer.Start(ctx, name, oteltrace.WithSpanKind(oteltrace.SpanKindInternal))
}

// endSpan records the outcome of an operation and ends the span.
func endSpan(span oteltrace.Span, err error) string {
	defer span.End()

	if err == nil {
		span.SetAttributes(AttrOutcome.String(OutcomeSuccess))
		span.SetStatus(codes.Ok, "")
		return OutcomeSuccess
	}

	outcome := outcomeOf(err)
	span.SetAttributes(AttrOutcome.String(outcome), AttrErrorCode.String(ErrorCode(err)))
	span.RecordError(err)
	span.SetStatus(codes.Error, outcome)
	return outcome
}

// outcomeOf maps an error to a bounded label value.
func outcomeOf(err error) string {
	if code := ErrorCode(err); code != "" {
		return code
	}
	return "error"
}
