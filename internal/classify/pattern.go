package classify

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/praveensiddu/rentledger/internal/model"
)

// CreditEqualsTolerance is how far an amount may sit from a credit_equals
// target and still match.
var CreditEqualsTolerance = decimal.RequireFromString("0.10")

var (
	descContainsRE   = regexp.MustCompile(`(?i)desc_contains\s*=\s*([^&]+)`)
	descStartswithRE = regexp.MustCompile(`(?i)desc_startswith\s*=\s*([^&]+)`)
	creditEqualsRE   = regexp.MustCompile(`(?i)credit_equals\s*=\s*([-+]?[0-9]*\.?[0-9]+)`)
)

type subPattern struct {
	kind  string // "contains", "startswith", "equals"
	text  string
	value decimal.Decimal
}

// parsePattern extracts the sub-patterns of a pattern expression in their
// order of appearance.
func parsePattern(expr string) []subPattern {
	type hit struct {
		pos int
		sp  subPattern
	}
	var hits []hit

	if loc := descContainsRE.FindStringSubmatchIndex(expr); loc != nil {
		text := strings.TrimSpace(expr[loc[2]:loc[3]])
		if text != "" {
			hits = append(hits, hit{loc[0], subPattern{kind: "contains", text: strings.ToLower(text)}})
		}
	}
	if loc := descStartswithRE.FindStringSubmatchIndex(expr); loc != nil {
		text := strings.TrimSpace(expr[loc[2]:loc[3]])
		if text != "" {
			hits = append(hits, hit{loc[0], subPattern{kind: "startswith", text: strings.ToLower(text)}})
		}
	}
	if loc := creditEqualsRE.FindStringSubmatchIndex(expr); loc != nil {
		if v, err := decimal.NewFromString(expr[loc[2]:loc[3]]); err == nil {
			hits = append(hits, hit{loc[0], subPattern{kind: "equals", value: v}})
		}
	}

	for i := 0; i < len(hits); i++ {
		for j := i + 1; j < len(hits); j++ {
			if hits[j].pos < hits[i].pos {
				hits[i], hits[j] = hits[j], hits[i]
			}
		}
	}
	out := make([]subPattern, len(hits))
	for i, h := range hits {
		out[i] = h.sp
	}
	return out
}

// Matches reports whether a rule's pattern expression matches a row. The
// first sub-pattern, in order of appearance in the expression, that matches
// decides.
func Matches(rule model.Rule, row model.Row) bool {
	desc := strings.ToLower(row.Description)
	for _, sp := range parsePattern(rule.Pattern) {
		switch sp.kind {
		case "contains":
			if strings.Contains(desc, sp.text) {
				return true
			}
		case "startswith":
			if strings.HasPrefix(desc, sp.text) {
				return true
			}
		case "equals":
			if row.Amount == "" {
				continue
			}
			amt, err := decimal.NewFromString(row.Amount)
			if err != nil {
				continue
			}
			if amt.Sub(sp.value).Abs().LessThan(CreditEqualsTolerance) {
				return true
			}
		}
	}
	return false
}
