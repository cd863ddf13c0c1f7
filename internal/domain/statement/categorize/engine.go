// Package categorize proposes expense categories for statement
// transactions: an exact merchant-alias lookup first, then a keyword rule
// engine over the description. Suggestions are advisory; only the category
// the user finally picks is persisted.
package categorize

import (
	"sort"

	"github.com/cloudflare/ahocorasick"

	"github.com/fmcardoso/splitledger/internal/domain/alias"
)

// multiHitBoost is added per extra keyword hit within the same category.
const multiHitBoost = 0.05

// engineCap keeps heuristic confidence strictly below the 1.0 reserved for
// alias matches.
const engineCap = 0.92

// Rule binds one keyword to a category with a base confidence weight.
type Rule struct {
	Category string
	Keyword  string
	Weight   float64
}

// Score is one category's aggregate match strength for a description.
type Score struct {
	Category   string
	Confidence float64
	Keyword    string // strongest matched keyword, for reasoning
}

// Engine matches descriptions against a fixed rule set with a single
// Aho-Corasick pass over all keywords.
type Engine struct {
	matcher *ahocorasick.Matcher
	rules   []Rule // index-aligned with the matcher's patterns
}

// NewEngine compiles the rule set. Keywords are matched against the
// normalized description, so rules should use lowercase bare words.
func NewEngine(rules []Rule) *Engine {
	patterns := make([]string, len(rules))
	normalized := make([]Rule, len(rules))
	for i, r := range rules {
		r.Keyword = alias.NormalizeKey(r.Keyword)
		patterns[i] = r.Keyword
		normalized[i] = r
	}
	return &Engine{
		matcher: ahocorasick.NewStringMatcher(patterns),
		rules:   normalized,
	}
}

// Classify scores every category with at least one keyword hit, strongest
// first. Equal confidences order by category key so the result is stable.
func (e *Engine) Classify(description string) []Score {
	text := alias.NormalizeKey(description)
	if text == "" {
		return nil
	}

	hits := e.matcher.Match([]byte(text))
	if len(hits) == 0 {
		return nil
	}

	best := make(map[string]Score)
	extra := make(map[string]int)
	for _, idx := range hits {
		rule := e.rules[idx]
		s, seen := best[rule.Category]
		if !seen || rule.Weight > s.Confidence {
			best[rule.Category] = Score{Category: rule.Category, Confidence: rule.Weight, Keyword: rule.Keyword}
		}
		if seen {
			extra[rule.Category]++
		}
	}

	scores := make([]Score, 0, len(best))
	for category, s := range best {
		s.Confidence += multiHitBoost * float64(extra[category])
		if s.Confidence > engineCap {
			s.Confidence = engineCap
		}
		scores = append(scores, s)
	}

	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Confidence != scores[j].Confidence {
			return scores[i].Confidence > scores[j].Confidence
		}
		return scores[i].Category < scores[j].Category
	})
	return scores
}
