package objectstore

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/flowmesh/objectstore/internal/tracing"
)

const tracerName = "flowmesh.objectstore"

// operation tracks one store call for tracing and metrics
type operation struct {
	name  string
	span  trace.Span
	start time.Time
}

// begin starts a span for a store operation
func (s *Store) begin(ctx context.Context, name, key string) (context.Context, *operation) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "objectstore."+name,
		trace.WithSpanKind(trace.SpanKindClient),
	)
	span.SetAttributes(
		attribute.String(tracing.AttrOperation, name),
		attribute.String(tracing.AttrLocation, s.location),
		attribute.String(tracing.AttrDBSystem, "sqlite"),
	)
	if key != "" {
		span.SetAttributes(attribute.String(tracing.AttrKey, key))
	}
	return ctx, &operation{name: name, span: span, start: time.Now()}
}

// finish records the outcome on the span and the observer
func (s *Store) finish(op *operation, err error) {
	if err != nil {
		op.span.RecordError(err)
		op.span.SetStatus(codes.Error, err.Error())
	} else {
		op.span.SetStatus(codes.Ok, "")
	}
	op.span.End()
	s.observer.ObserveOp(op.name, time.Since(op.start).Seconds(), err)
}
