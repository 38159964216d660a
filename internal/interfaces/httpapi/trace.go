package httpapi

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

var (
	apiTracer = otel.Tracer("competition-sync/internal/interfaces/httpapi")
	noopSpan  = noop.Span{}
)

// startSpan only opens child spans for handlers and auth guards. Response
// helpers and untraced routes such as /healthz get a no-op span.
func startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if !trace.SpanContextFromContext(ctx).IsValid() || !spanWorthy(name) {
		return ctx, noopSpan
	}
	return apiTracer.Start(ctx, name)
}

func spanWorthy(name string) bool {
	return strings.HasPrefix(name, "httpapi.Handler.") || strings.HasPrefix(name, "httpapi.Require")
}
