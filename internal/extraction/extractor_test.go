package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtract_FullQuery(t *testing.T) {
	e := Extract("Why does my Yonex string break after 2 weeks?")

	assert.Equal(t, "Yonex", e.Brand)
	assert.Equal(t, IssueStringDamage, e.IssueType)
	assert.Equal(t, "2 weeks", e.Timeframe)
	assert.Equal(t, CategoryIssueInquiry, e.Category)
}

func TestExtract_BrandCaseInsensitive(t *testing.T) {
	cases := []string{
		"my YONEX racket",
		"my yonex racket",
		"my YoNeX racket",
	}
	for _, q := range cases {
		e := Extract(q)
		assert.Equal(t, "Yonex", e.Brand, "query: %s", q)
	}
}

func TestExtract_BrandListOrder(t *testing.T) {
	// Both brands present: the first in list order wins.
	e := Extract("comparing my yonex against a victor racket")
	assert.Equal(t, "Yonex", e.Brand)

	e = Extract("no racket brand here")
	assert.Empty(t, e.Brand)
}

func TestExtract_IssueKeywordOrder(t *testing.T) {
	// "string" is checked before "break": a query with both resolves to
	// string_damage, never string_breakage.
	e := Extract("the string might break soon")
	assert.Equal(t, IssueStringDamage, e.IssueType)

	// "frame" is checked before "crack".
	e = Extract("the frame has a crack")
	assert.Equal(t, IssueFrameDamage, e.IssueType)

	e = Extract("there is a crack near the head")
	assert.Equal(t, IssueFrameCrack, e.IssueType)

	e = Extract("losing tension quickly")
	assert.Equal(t, IssueTensionLoss, e.IssueType)

	e = Extract("weird buzzing sound when I hit")
	assert.Equal(t, IssueFrameBuzzing, e.IssueType)

	e = Extract("it plays perfectly")
	assert.Empty(t, e.IssueType)
}

func TestExtract_CategoryPriorityOrder(t *testing.T) {
	// Issue vocabulary beats service vocabulary even when both match.
	e := Extract("how much does it cost to fix a broken frame")
	assert.Equal(t, CategoryIssueInquiry, e.Category)

	e = Extract("how much does restringing cost")
	assert.Equal(t, CategoryServiceInfo, e.Category)

	e = Extract("which racket should I get next")
	assert.Equal(t, CategoryRecommendation, e.Category)

	e = Extract("thanks, goodbye")
	assert.Equal(t, CategoryCasual, e.Category)

	e = Extract("racket")
	assert.Equal(t, CategoryGeneric, e.Category)
}

func TestExtract_Timeframe(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"it lasted 10 days", "10 days"},
		{"broke after 2weeks", "2 weeks"},
		{"about 3 months old", "3 months"},
		{"only 5 sessions in", "5 sessions"},
		{"broke after one week", ""}, // spelled-out numbers are not parsed
	}

	for _, tt := range tests {
		e := Extract(tt.query)
		assert.Equal(t, tt.want, e.Timeframe, "query: %s", tt.query)
	}
}

func TestExtract_TimeframeUnitOrder(t *testing.T) {
	// days is tried before weeks: with both present, days wins.
	e := Extract("3 days or 2 weeks")
	assert.Equal(t, "3 days", e.Timeframe)
}

func TestKeywords(t *testing.T) {
	kws := Keywords("Why does my Yonex string break after 2 weeks?")
	assert.Equal(t, []string{"yonex", "string", "break", "weeks"}, kws)
}

func TestKeywords_CapAtFive(t *testing.T) {
	kws := Keywords("racket string frame grip grommet handle shaft")
	assert.Len(t, kws, 5)
	assert.Equal(t, []string{"racket", "string", "frame", "grip", "grommet"}, kws)
}

func TestKeywords_DropsShortAndStopwords(t *testing.T) {
	kws := Keywords("is it the and for a racket")
	assert.Equal(t, []string{"racket"}, kws)
}

func TestShouldUseContext(t *testing.T) {
	tests := []struct {
		name string
		e    Entities
		want bool
	}{
		{"issue inquiry", Entities{Category: CategoryIssueInquiry}, true},
		{"recommendation", Entities{Category: CategoryRecommendation}, true},
		{"casual no entities", Entities{Category: CategoryCasual}, false},
		{"casual with brand", Entities{Category: CategoryCasual, Brand: "Yonex"}, true},
		{"service info with issue", Entities{Category: CategoryServiceInfo, IssueType: IssueTensionLoss}, true},
		{"generic no entities", Entities{Category: CategoryGeneric}, false},
		{"generic with timeframe only", Entities{Category: CategoryGeneric, Timeframe: "2 weeks"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldUseContext(tt.e))
		})
	}
}
