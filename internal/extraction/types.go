package extraction

// Category classifies what a customer query is about.
type Category string

const (
	CategoryIssueInquiry   Category = "issue_inquiry"
	CategoryServiceInfo    Category = "service_info"
	CategoryRecommendation Category = "recommendation"
	CategoryCasual         Category = "casual"
	CategoryGeneric        Category = "generic"
)

// String returns the string representation of the category.
func (c Category) String() string {
	return string(c)
}

// Issue type codes. The detection order in issueKeywords is part of the
// contract: a query matching several keywords resolves to the first hit.
const (
	IssueStringDamage   = "string_damage"
	IssueStringBreakage = "string_breakage"
	IssueFrameBuzzing   = "frame_buzzing"
	IssueTensionLoss    = "tension_loss"
	IssueFrameDamage    = "frame_damage"
	IssueFrameCrack     = "frame_crack"
)

// Entities holds the typed attributes extracted from a single query.
// Empty string means the attribute was not detected.
type Entities struct {
	Brand     string   `json:"brand,omitempty"`
	IssueType string   `json:"issue_type,omitempty"`
	Timeframe string   `json:"timeframe,omitempty"`
	Category  Category `json:"category"`
}

// HasBrand reports whether a brand was detected.
func (e Entities) HasBrand() bool {
	return e.Brand != ""
}

// HasIssue reports whether an issue type was detected.
func (e Entities) HasIssue() bool {
	return e.IssueType != ""
}

// HasTimeframe reports whether a timeframe was detected.
func (e Entities) HasTimeframe() bool {
	return e.Timeframe != ""
}
