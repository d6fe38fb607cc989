package knowledge

import (
	"github.com/SainandaG/badmintion-stringing/internal/extraction"
)

// Node labels and relationship types of the knowledge graph schema.
const (
	labelQueryPattern = "QueryPattern"
	labelIssue        = "Issue"
	labelBrand        = "Brand"
	labelTimeframe    = "Timeframe"

	relAsksAbout    = "ASKS_ABOUT"
	relMentions     = "MENTIONS"
	relHasIssue     = "HAS_ISSUE"
	relOccursWithin = "OCCURS_WITHIN"
)

// maxQueryPatternLen bounds the identity key of a QueryPattern node.
// Two queries differing only beyond this length are the same pattern.
const maxQueryPatternLen = 200

// ContextResult is the orchestration response for a context request.
// RAGUsed=false means no knowledge-graph interaction was attempted;
// RAGUsed=true with an empty Context means attempted, found nothing.
type ContextResult struct {
	Context  string              `json:"context"`
	Entities extraction.Entities `json:"entities_detected"`
	Keywords []string            `json:"keywords"`
	RAGUsed  bool                `json:"rag_used"`
}

// ChatResult is the orchestration response for a chat message.
type ChatResult struct {
	Response string              `json:"response"`
	Entities extraction.Entities `json:"entities_detected"`
}

// issueSeverity maps each issue type code to its reported severity.
var issueSeverity = map[string]string{
	extraction.IssueStringDamage:   "medium",
	extraction.IssueStringBreakage: "high",
	extraction.IssueFrameBuzzing:   "low",
	extraction.IssueTensionLoss:    "medium",
	extraction.IssueFrameDamage:    "high",
	extraction.IssueFrameCrack:     "high",
}

func severityFor(issueType string) string {
	if sev, ok := issueSeverity[issueType]; ok {
		return sev
	}
	return "medium"
}

// truncateQuery bounds a query text to the QueryPattern identity length.
// Truncation is by character, not byte, so multi-byte text stays valid.
func truncateQuery(query string) string {
	runes := []rune(query)
	if len(runes) <= maxQueryPatternLen {
		return query
	}
	return string(runes[:maxQueryPatternLen])
}

// toInt64 safely converts various numeric types to int64.
// The Neo4j driver returns int64, but other sources may return float64.
func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case float64:
		return int64(n), true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	default:
		return 0, false
	}
}

// toStringSlice converts a collect() result to a string slice, dropping
// nulls and empty values produced by optional traversals.
func toStringSlice(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}
