// Package telemetry carries the ambient logging/tracing stack that every
// component threads through: structured logs via logrus, and spans via
// opentracing when a query sets TraceEnabled (§6). Neither is a scoped
// component of the spec itself (logging is named an external collaborator
// in spec.md §1); this package exists purely so the rest of the core logs
// and traces the way the teacher's stack does.
package telemetry

import (
	"context"

	opentracing "github.com/opentracing/opentracing-go"
	"github.com/sirupsen/logrus"
)

// Log is the package-wide structured logger. Callers should use
// Log.WithFields rather than the bare logrus default logger so every line
// carries a consistent field set.
var Log = logrus.StandardLogger()

// StartSpan starts a child span under name if tracing is enabled for the
// query, else returns a no-op span so call sites never have to branch.
func StartSpan(ctx context.Context, traceEnabled bool, name string) (opentracing.Span, context.Context) {
	if !traceEnabled {
		return opentracing.NoopTracer{}.StartSpan(name), ctx
	}
	return opentracing.StartSpanFromContext(ctx, name)
}
