package onboardingapi

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var clientTracer = otel.Tracer("onboarding-client/external/onboardingapi")
var clientNoopSpan = trace.SpanFromContext(context.Background())

type spanRecorder interface {
	RecordError(err error, options ...trace.EventOption)
	SetStatus(code codes.Code, description string)
}

// startSpan only opens a span under an existing trace.
func startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	parent := trace.SpanFromContext(ctx)
	if !parent.SpanContext().IsValid() {
		return ctx, clientNoopSpan
	}
	return clientTracer.Start(ctx, name, trace.WithSpanKind(trace.SpanKindClient))
}
