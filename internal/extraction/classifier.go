package extraction

// ShouldUseContext decides whether a query should consult and update the
// long-term knowledge graph. Issue inquiries and recommendation requests
// always do; anything else qualifies only when it carries a detectable
// product or issue signal. Plain chit-chat stays out of the graph.
func ShouldUseContext(e Entities) bool {
	if e.Category == CategoryIssueInquiry || e.Category == CategoryRecommendation {
		return true
	}
	return e.HasBrand() || e.HasIssue()
}
