package knowledge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SainandaG/badmintion-stringing/internal/extraction"
	"github.com/SainandaG/badmintion-stringing/internal/graph"
)

// Bounds on what each retrieval sub-query contributes.
const (
	maxBrandsInSummary     = 5
	maxTimeframesInSummary = 3
	maxBrandIssues         = 5
	similarQueriesShown    = 2
)

// Retriever assembles a natural-language context string from the knowledge
// graph. Its five sub-queries run in a fixed order so output sentence order
// is deterministic for identical graph state; each sub-query fails soft and
// a failure in one never blocks the remaining ones.
type Retriever struct {
	client graph.GraphClient
	logger *slog.Logger
}

// NewRetriever creates a Retriever on the given graph client.
func NewRetriever(client graph.GraphClient, logger *slog.Logger) *Retriever {
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{
		client: client,
		logger: logger.With("component", "knowledge.retriever"),
	}
}

// Retrieve gathers historical context for the detected entities. The result
// may legitimately be empty; callers must treat an empty string as "no
// context", never as an error. The returned error joins sub-query failures
// and accompanies whatever partial context was gathered.
func (r *Retriever) Retrieve(ctx context.Context, e extraction.Entities) (string, error) {
	var sentences []string
	var errs []error

	run := func(step string, fn func(context.Context) ([]string, error)) {
		lines, err := fn(ctx)
		if err != nil {
			r.logger.Error("context sub-query failed", "step", step, "error", err)
			errs = append(errs, err)
			return
		}
		sentences = append(sentences, lines...)
	}

	if e.HasIssue() {
		run("issue_aggregate", func(ctx context.Context) ([]string, error) {
			return r.issueAggregate(ctx, e.IssueType)
		})
	}
	if e.HasBrand() {
		run("brand_history", func(ctx context.Context) ([]string, error) {
			return r.brandHistory(ctx, e.Brand)
		})
	}
	if e.HasIssue() {
		run("similar_queries", func(ctx context.Context) ([]string, error) {
			return r.similarQueries(ctx, e.IssueType)
		})
	}
	if e.HasBrand() && e.HasIssue() {
		run("brand_issue", func(ctx context.Context) ([]string, error) {
			return r.brandIssueSeverity(ctx, e.Brand, e.IssueType)
		})
	}
	if e.HasIssue() && e.HasTimeframe() {
		run("issue_timeframe", func(ctx context.Context) ([]string, error) {
			return r.issueTimeframe(ctx, e.IssueType, e.Timeframe)
		})
	}

	return strings.Join(sentences, "\n"), errors.Join(errs...)
}

// issueAggregate summarizes an issue across all brands, timeframes, and past
// query patterns.
func (r *Retriever) issueAggregate(ctx context.Context, issueType string) ([]string, error) {
	cypher := `
		MATCH (i:Issue {type: $issue})
		OPTIONAL MATCH (b:Brand)-[hi:HAS_ISSUE]->(i)
		WITH i, collect(DISTINCT b.name) AS brands, sum(hi.frequency) AS total_reports
		OPTIONAL MATCH (i)-[:OCCURS_WITHIN]->(t:Timeframe)
		WITH i, brands, total_reports, collect(DISTINCT t.duration) AS timeframes
		OPTIONAL MATCH (q:QueryPattern)-[:ASKS_ABOUT]->(i)
		RETURN brands,
		       timeframes,
		       total_reports,
		       count(DISTINCT q) AS ask_count
	`

	result, err := r.client.Query(ctx, cypher, map[string]any{"issue": issueType})
	if err != nil {
		return nil, err
	}
	if len(result.Records) == 0 {
		return nil, nil
	}

	row := result.Records[0]
	totalReports, _ := toInt64(row["total_reports"])
	askCount, _ := toInt64(row["ask_count"])
	brands := toStringSlice(row["brands"])
	timeframes := toStringSlice(row["timeframes"])

	lines := []string{fmt.Sprintf(
		"The issue %q has been asked about %d times and reported %d times across %d brands.",
		issueType, askCount, totalReports, len(brands),
	)}

	if len(brands) > 0 {
		if len(brands) > maxBrandsInSummary {
			brands = brands[:maxBrandsInSummary]
		}
		lines = append(lines, fmt.Sprintf("Affected brands include: %s.", strings.Join(brands, ", ")))
	}

	if len(timeframes) > 0 {
		if len(timeframes) > maxTimeframesInSummary {
			timeframes = timeframes[:maxTimeframesInSummary]
		}
		lines = append(lines, fmt.Sprintf("It typically shows up within: %s.", strings.Join(timeframes, ", ")))
	}

	return lines, nil
}

// brandHistory lists the most frequent issues recorded against a brand.
// An empty history gets an explicit sentence rather than silence.
func (r *Retriever) brandHistory(ctx context.Context, brand string) ([]string, error) {
	cypher := `
		MATCH (b:Brand {name: $brand})-[hi:HAS_ISSUE]->(i:Issue)
		RETURN i.type AS issue, hi.frequency AS frequency
		ORDER BY hi.frequency DESC
		LIMIT 5
	`

	result, err := r.client.Query(ctx, cypher, map[string]any{"brand": brand})
	if err != nil {
		return nil, err
	}

	if len(result.Records) == 0 {
		return []string{fmt.Sprintf("No historical issues recorded for %s.", brand)}, nil
	}

	parts := make([]string, 0, maxBrandIssues)
	for _, row := range result.Records {
		issue, _ := row["issue"].(string)
		frequency, _ := toInt64(row["frequency"])
		parts = append(parts, fmt.Sprintf("%s (%dx)", issue, frequency))
		if len(parts) == maxBrandIssues {
			break
		}
	}

	return []string{fmt.Sprintf("Past issues reported for %s: %s.", brand, strings.Join(parts, ", "))}, nil
}

// similarQueries surfaces the most-asked past query patterns for an issue.
func (r *Retriever) similarQueries(ctx context.Context, issueType string) ([]string, error) {
	cypher := `
		MATCH (q:QueryPattern)-[:ASKS_ABOUT]->(i:Issue {type: $issue})
		RETURN q.text AS text, q.count AS count
		ORDER BY q.count DESC
		LIMIT 3
	`

	result, err := r.client.Query(ctx, cypher, map[string]any{"issue": issueType})
	if err != nil {
		return nil, err
	}
	if len(result.Records) == 0 {
		return nil, nil
	}

	parts := make([]string, 0, similarQueriesShown)
	for _, row := range result.Records {
		text, _ := row["text"].(string)
		count, _ := toInt64(row["count"])
		parts = append(parts, fmt.Sprintf("%q (asked %d times)", text, count))
		if len(parts) == similarQueriesShown {
			break
		}
	}

	return []string{fmt.Sprintf("Customers previously asked: %s.", strings.Join(parts, ", "))}, nil
}

// brandIssueSeverity reports the co-occurrence count for one brand and issue.
func (r *Retriever) brandIssueSeverity(ctx context.Context, brand, issueType string) ([]string, error) {
	cypher := `
		MATCH (b:Brand {name: $brand})-[hi:HAS_ISSUE]->(i:Issue {type: $issue})
		RETURN hi.frequency AS frequency
	`

	result, err := r.client.Query(ctx, cypher, map[string]any{
		"brand": brand,
		"issue": issueType,
	})
	if err != nil {
		return nil, err
	}
	if len(result.Records) == 0 {
		return nil, nil
	}

	frequency, _ := toInt64(result.Records[0]["frequency"])
	return []string{fmt.Sprintf(
		"%s rackets have had %s reported %d times.", brand, issueType, frequency,
	)}, nil
}

// issueTimeframe reports how often an issue was seen within a timeframe.
func (r *Retriever) issueTimeframe(ctx context.Context, issueType, timeframe string) ([]string, error) {
	cypher := `
		MATCH (i:Issue {type: $issue})-[ow:OCCURS_WITHIN]->(t:Timeframe {duration: $timeframe})
		RETURN ow.frequency AS frequency
	`

	result, err := r.client.Query(ctx, cypher, map[string]any{
		"issue":     issueType,
		"timeframe": timeframe,
	})
	if err != nil {
		return nil, err
	}
	if len(result.Records) == 0 {
		return nil, nil
	}

	frequency, _ := toInt64(result.Records[0]["frequency"])
	return []string{fmt.Sprintf(
		"%s has been reported within %s on %d occasions.", issueType, timeframe, frequency,
	)}, nil
}
