package extraction

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// categoryRule pairs a vocabulary with the category it resolves to.
// Rules are evaluated in slice order and the first matching bucket wins,
// regardless of which vocabulary matches more words.
type categoryRule struct {
	keywords []string
	category Category
}

var categoryRules = []categoryRule{
	{
		keywords: []string{
			"broke", "broken", "break", "snap", "damag", "crack",
			"problem", "issue", "buzz", "rattle", "loose", "tear", "worn",
			"not working", "fault",
		},
		category: CategoryIssueInquiry,
	},
	{
		keywords: []string{
			"cost", "price", "how much", "charge", "fee", "how long",
			"turnaround", "pickup", "pick up", "deliver", "drop off",
			"hours", "open", "location", "where", "when",
		},
		category: CategoryServiceInfo,
	},
	{
		keywords: []string{
			"recommend", "suggest", "which", "better", "best",
			"compare", "versus", " vs ", "should i", "worth",
		},
		category: CategoryRecommendation,
	},
	{
		keywords: []string{
			"hello", "hi ", "hey", "thanks", "thank you", "bye",
			"goodbye", "good morning", "good evening", "see you",
		},
		category: CategoryCasual,
	},
}

// knownBrands is scanned in order; the first case-insensitive substring hit
// wins.
var knownBrands = []string{
	"yonex",
	"victor",
	"li-ning",
	"lining",
	"carlton",
	"apacs",
	"ashaway",
	"forza",
	"babolat",
	"wilson",
}

// issueKeyword pairs a detection keyword with an issue type code.
type issueKeyword struct {
	keyword string
	issue   string
}

// issueKeywords is evaluated in order; the first keyword found in the query
// decides the issue type even when several keywords are present. Note that
// "frame" and "crack" map to adjacent but distinct codes; the order here is
// the contract.
var issueKeywords = []issueKeyword{
	{"string", IssueStringDamage},
	{"break", IssueStringBreakage},
	{"buzz", IssueFrameBuzzing},
	{"tension", IssueTensionLoss},
	{"frame", IssueFrameDamage},
	{"crack", IssueFrameCrack},
}

// timeframePattern pairs a duration regex with its canonical unit.
type timeframePattern struct {
	re   *regexp.Regexp
	unit string
}

var timeframePatterns = []timeframePattern{
	{regexp.MustCompile(`(\d+)\s*days?`), "days"},
	{regexp.MustCompile(`(\d+)\s*weeks?`), "weeks"},
	{regexp.MustCompile(`(\d+)\s*months?`), "months"},
	{regexp.MustCompile(`(\d+)\s*sessions?`), "sessions"},
}

var wordRe = regexp.MustCompile(`[a-z0-9]+`)

var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "that": {}, "this": {},
	"from": {}, "have": {}, "has": {}, "had": {}, "was": {}, "were": {},
	"will": {}, "would": {}, "could": {}, "should": {}, "does": {},
	"did": {}, "can": {}, "what": {}, "when": {}, "where": {}, "why": {},
	"how": {}, "are": {}, "you": {}, "your": {}, "after": {}, "about": {},
	"there": {}, "their": {}, "been": {}, "being": {}, "into": {},
}

const maxKeywords = 5

// Extract parses a raw user query into its typed attributes.
func Extract(query string) Entities {
	lower := strings.ToLower(query)

	return Entities{
		Brand:     detectBrand(lower),
		IssueType: detectIssue(lower),
		Timeframe: detectTimeframe(lower),
		Category:  classifyCategory(lower),
	}
}

func classifyCategory(lower string) Category {
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.category
			}
		}
	}
	return CategoryGeneric
}

func detectBrand(lower string) string {
	for _, brand := range knownBrands {
		if strings.Contains(lower, brand) {
			return capitalize(brand)
		}
	}
	return ""
}

func detectIssue(lower string) string {
	for _, ik := range issueKeywords {
		if strings.Contains(lower, ik.keyword) {
			return ik.issue
		}
	}
	return ""
}

func detectTimeframe(lower string) string {
	for _, tp := range timeframePatterns {
		if m := tp.re.FindStringSubmatch(lower); m != nil {
			return fmt.Sprintf("%s %s", m[1], tp.unit)
		}
	}
	return ""
}

// Keywords returns up to five significant tokens from the query in original
// order, for display and debugging only; classification never uses them.
func Keywords(query string) []string {
	tokens := wordRe.FindAllString(strings.ToLower(query), -1)

	keywords := make([]string, 0, maxKeywords)
	for _, tok := range tokens {
		if len(tok) <= 2 {
			continue
		}
		if _, stop := stopwords[tok]; stop {
			continue
		}
		keywords = append(keywords, tok)
		if len(keywords) == maxKeywords {
			break
		}
	}
	return keywords
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
