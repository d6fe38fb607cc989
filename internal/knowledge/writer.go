package knowledge

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/SainandaG/badmintion-stringing/internal/extraction"
	"github.com/SainandaG/badmintion-stringing/internal/graph"
)

// Writer persists extracted query knowledge into the graph store.
//
// Every statement is an independently idempotent upsert, sequenced so that
// entities exist before the relationships that reference them. Counter
// increments happen inside the MERGE statement, so concurrent writers for
// the same key never lose updates. A failed step is collected and the
// remaining steps still run; partial writes are safe to retry.
type Writer struct {
	client graph.GraphClient
	logger *slog.Logger
}

// NewWriter creates a Writer on the given graph client.
func NewWriter(client graph.GraphClient, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{
		client: client,
		logger: logger.With("component", "knowledge.writer"),
	}
}

// Record upserts the query and its detected entities into the knowledge
// graph. The returned error joins the failures of any sub-steps; callers
// treat it as a degradation signal, never as a reason to fail the response.
func (w *Writer) Record(ctx context.Context, query string, e extraction.Entities) error {
	text := truncateQuery(query)
	now := time.Now().UTC().Format(time.RFC3339)

	var errs []error
	fail := func(step string, err error) {
		w.logger.Error("knowledge write step failed", "step", step, "error", err)
		errs = append(errs, err)
	}

	// 1. Query pattern, keyed by truncated text.
	if err := w.client.UpsertNode(ctx, graph.NodeUpsert{
		Label:    labelQueryPattern,
		KeyField: "text",
		KeyValue: text,
		OnCreate: map[string]any{
			"count":      int64(1),
			"first_seen": now,
		},
		Increment: []string{"count"},
		Set: map[string]any{
			"last_seen": now,
		},
	}); err != nil {
		fail("query_pattern", err)
	}

	// 2. Issue node and the pattern's ASKS_ABOUT edge.
	if e.HasIssue() {
		if err := w.client.UpsertNode(ctx, graph.NodeUpsert{
			Label:    labelIssue,
			KeyField: "type",
			KeyValue: e.IssueType,
			OnCreate: map[string]any{
				"frequency":  int64(1),
				"severity":   severityFor(e.IssueType),
				"first_seen": now,
			},
			Increment: []string{"frequency"},
			Set: map[string]any{
				"last_seen": now,
				// Last-write-wins: every detection refreshes the sample.
				"sample_query": text,
			},
		}); err != nil {
			fail("issue", err)
		}

		if err := w.client.UpsertRelationship(ctx, graph.RelationshipUpsert{
			FromLabel: labelQueryPattern, FromKeyField: "text", FromKeyValue: text,
			ToLabel: labelIssue, ToKeyField: "type", ToKeyValue: e.IssueType,
			Type: relAsksAbout,
			OnCreate: map[string]any{
				"count":       int64(1),
				"first_asked": now,
			},
			Increment: []string{"count"},
			Set: map[string]any{
				"last_asked": now,
			},
		}); err != nil {
			fail("asks_about", err)
		}
	}

	// 3. Brand node and the pattern's MENTIONS edge.
	if e.HasBrand() {
		if err := w.client.UpsertNode(ctx, graph.NodeUpsert{
			Label:    labelBrand,
			KeyField: "name",
			KeyValue: e.Brand,
			OnCreate: map[string]any{
				"query_count":     int64(1),
				"first_mentioned": now,
			},
			Increment: []string{"query_count"},
			Set: map[string]any{
				"last_mentioned": now,
			},
		}); err != nil {
			fail("brand", err)
		}

		if err := w.client.UpsertRelationship(ctx, graph.RelationshipUpsert{
			FromLabel: labelQueryPattern, FromKeyField: "text", FromKeyValue: text,
			ToLabel: labelBrand, ToKeyField: "name", ToKeyValue: e.Brand,
			Type: relMentions,
			OnCreate: map[string]any{
				"count":           int64(1),
				"first_mentioned": now,
			},
			Increment: []string{"count"},
			Set: map[string]any{
				"last_mentioned": now,
			},
		}); err != nil {
			fail("mentions", err)
		}
	}

	// 4. Brand-to-issue co-occurrence, the retriever's primary signal.
	if e.HasBrand() && e.HasIssue() {
		if err := w.client.UpsertRelationship(ctx, graph.RelationshipUpsert{
			FromLabel: labelBrand, FromKeyField: "name", FromKeyValue: e.Brand,
			ToLabel: labelIssue, ToKeyField: "type", ToKeyValue: e.IssueType,
			Type: relHasIssue,
			OnCreate: map[string]any{
				"frequency":      int64(1),
				"first_reported": now,
			},
			Increment: []string{"frequency"},
			Set: map[string]any{
				"last_reported": now,
			},
		}); err != nil {
			fail("has_issue", err)
		}
	}

	// 5. Timeframe node, plus the issue co-occurrence edge when both exist.
	if e.HasTimeframe() {
		if err := w.client.UpsertNode(ctx, graph.NodeUpsert{
			Label:    labelTimeframe,
			KeyField: "duration",
			KeyValue: e.Timeframe,
			OnCreate: map[string]any{
				"mention_count": int64(1),
			},
			Increment: []string{"mention_count"},
		}); err != nil {
			fail("timeframe", err)
		}

		if e.HasIssue() {
			if err := w.client.UpsertRelationship(ctx, graph.RelationshipUpsert{
				FromLabel: labelIssue, FromKeyField: "type", FromKeyValue: e.IssueType,
				ToLabel: labelTimeframe, ToKeyField: "duration", ToKeyValue: e.Timeframe,
				Type: relOccursWithin,
				OnCreate: map[string]any{
					"frequency": int64(1),
				},
				Increment: []string{"frequency"},
			}); err != nil {
				fail("occurs_within", err)
			}
		}
	}

	// 6. Denormalized copies of the latest detection on the query pattern.
	// Overwrite, not merge: a later query sharing the same truncated text
	// but with fewer detected entities nulls out previously recorded values.
	if err := w.client.UpsertNode(ctx, graph.NodeUpsert{
		Label:    labelQueryPattern,
		KeyField: "text",
		KeyValue: text,
		Set: map[string]any{
			"brand_mentioned":     e.Brand,
			"issue_mentioned":     e.IssueType,
			"timeframe_mentioned": e.Timeframe,
		},
	}); err != nil {
		fail("denormalized_fields", err)
	}

	return errors.Join(errs...)
}
