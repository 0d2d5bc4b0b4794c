package prompt

import (
	"regexp"
	"strings"
)

// QueryType represents the answer shape a question calls for
type QueryType string

const (
	QueryTypeDefinition QueryType = "definition" // "what is", "define"
	QueryTypeExplain    QueryType = "explain"    // "explain", "how does"
	QueryTypeCompare    QueryType = "compare"    // "compare", "difference", "list"
	QueryTypeWhy        QueryType = "why"        // "why"
	QueryTypeSummarize  QueryType = "summarize"  // "summarize", "summary", "tl;dr"
	QueryTypeGeneral    QueryType = "general"    // Anything else
)

type classifierRule struct {
	queryType QueryType
	patterns  []*regexp.Regexp
}

// Rules are checked in order; the first match wins
var classifierRules = []classifierRule{
	{
		queryType: QueryTypeSummarize,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\bsummari[sz]e\b`),
			regexp.MustCompile(`(?i)\bsummary\b`),
			regexp.MustCompile(`(?i)\btl;?dr\b`),
			regexp.MustCompile(`(?i)\bkey\s+(points|takeaways)\b`),
		},
	},
	{
		queryType: QueryTypeCompare,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\bcompare\b`),
			regexp.MustCompile(`(?i)\bcomparison\b`),
			regexp.MustCompile(`(?i)\bdifferences?\s+between\b`),
			regexp.MustCompile(`(?i)\bvs\.?\b|\bversus\b`),
			regexp.MustCompile(`(?i)^\s*list\b`),
			regexp.MustCompile(`(?i)\b(what|which)\s+are\s+the\s+(types|kinds|steps|advantages|disadvantages|features)\b`),
		},
	},
	{
		queryType: QueryTypeWhy,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)^\s*why\b`),
			regexp.MustCompile(`(?i)\bwhat\s+is\s+the\s+reason\b`),
		},
	},
	{
		queryType: QueryTypeExplain,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\bexplain\b`),
			regexp.MustCompile(`(?i)\bhow\s+(does|do|is|are|can|to)\b`),
			regexp.MustCompile(`(?i)\bdescribe\b`),
			regexp.MustCompile(`(?i)\bwalk\s+me\s+through\b`),
		},
	},
	{
		queryType: QueryTypeDefinition,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)^\s*what\s+(is|are)\b`),
			regexp.MustCompile(`(?i)^\s*(define|definition\s+of)\b`),
			regexp.MustCompile(`(?i)\bwhat\s+does\s+.+\s+mean\b`),
			regexp.MustCompile(`(?i)\bmeaning\s+of\b`),
		},
	},
}

// ClassifyQuery maps a question onto the answer shape the instructions ask for
func ClassifyQuery(question string) QueryType {
	q := strings.TrimSpace(question)
	if q == "" {
		return QueryTypeGeneral
	}

	for _, rule := range classifierRules {
		for _, pattern := range rule.patterns {
			if pattern.MatchString(q) {
				return rule.queryType
			}
		}
	}

	return QueryTypeGeneral
}
