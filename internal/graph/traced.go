package graph

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/SainandaG/badmintion-stringing/internal/types"
)

// TracedClient wraps a GraphClient with OpenTelemetry tracing.
// Each operation gets a span named "stringing.graph.<op>" carrying the
// statement shape (label or relationship type), never parameter values.
//
// Thread-safety: safe for concurrent access (delegates to the inner client).
type TracedClient struct {
	inner  GraphClient
	tracer trace.Tracer
}

// NewTracedClient creates a tracing decorator around the given client.
func NewTracedClient(inner GraphClient, tracer trace.Tracer) *TracedClient {
	return &TracedClient{
		inner:  inner,
		tracer: tracer,
	}
}

// Connect delegates to the inner client under a span.
func (t *TracedClient) Connect(ctx context.Context) error {
	ctx, span := t.tracer.Start(ctx, "stringing.graph.connect")
	defer span.End()

	err := t.inner.Connect(ctx)
	recordSpanError(span, err)
	return err
}

// Close delegates to the inner client under a span.
func (t *TracedClient) Close(ctx context.Context) error {
	ctx, span := t.tracer.Start(ctx, "stringing.graph.close")
	defer span.End()

	err := t.inner.Close(ctx)
	recordSpanError(span, err)
	return err
}

// Health delegates to the inner client. Health probes are not traced.
func (t *TracedClient) Health(ctx context.Context) types.HealthStatus {
	return t.inner.Health(ctx)
}

// Query delegates to the inner client under a span.
func (t *TracedClient) Query(ctx context.Context, cypher string, params map[string]any) (QueryResult, error) {
	ctx, span := t.tracer.Start(ctx, "stringing.graph.query",
		trace.WithAttributes(attribute.Int("graph.param_count", len(params))))
	defer span.End()

	result, err := t.inner.Query(ctx, cypher, params)
	if err == nil {
		span.SetAttributes(attribute.Int("graph.record_count", len(result.Records)))
	}
	recordSpanError(span, err)
	return result, err
}

// Write delegates to the inner client under a span.
func (t *TracedClient) Write(ctx context.Context, cypher string, params map[string]any) (QueryResult, error) {
	ctx, span := t.tracer.Start(ctx, "stringing.graph.write",
		trace.WithAttributes(attribute.Int("graph.param_count", len(params))))
	defer span.End()

	result, err := t.inner.Write(ctx, cypher, params)
	recordSpanError(span, err)
	return result, err
}

// UpsertNode delegates to the inner client under a span.
func (t *TracedClient) UpsertNode(ctx context.Context, n NodeUpsert) error {
	ctx, span := t.tracer.Start(ctx, "stringing.graph.upsert_node",
		trace.WithAttributes(attribute.String("graph.label", n.Label)))
	defer span.End()

	err := t.inner.UpsertNode(ctx, n)
	recordSpanError(span, err)
	return err
}

// UpsertRelationship delegates to the inner client under a span.
func (t *TracedClient) UpsertRelationship(ctx context.Context, r RelationshipUpsert) error {
	ctx, span := t.tracer.Start(ctx, "stringing.graph.upsert_relationship",
		trace.WithAttributes(attribute.String("graph.rel_type", r.Type)))
	defer span.End()

	err := t.inner.UpsertRelationship(ctx, r)
	recordSpanError(span, err)
	return err
}

func recordSpanError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
