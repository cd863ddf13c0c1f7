package dedup

import (
	"strings"
	"unicode"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Similarity scores two merchant descriptions in [0,1]. Exact matches after
// normalization score 1; containment scores high because bank exports
// truncate and decorate the same merchant differently ("WHOLE FOODS" vs
// "WHOLE FOODS MARKET #123"); otherwise the best of edit distance and token
// overlap decides, with a floor for subsequence matches.
func Similarity(a, b string) float64 {
	na, nb := normalizeText(a), normalizeText(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1
	}

	shorter, longer := na, nb
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	if strings.Contains(longer, shorter) {
		return 0.75 + 0.25*float64(len(shorter))/float64(len(longer))
	}

	score := levenshteinRatio(na, nb)
	if tok := tokenOverlap(na, nb); tok > score {
		score = tok
	}
	// An in-order subsequence match still suggests the same merchant even
	// when edit distance is poor.
	if score < 0.5 && fuzzy.MatchNormalizedFold(shorter, longer) {
		score = 0.5
	}
	return score
}

// normalizeText lowercases, strips punctuation and collapses whitespace.
func normalizeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	lastSpace := true
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		case !lastSpace:
			b.WriteByte(' ')
			lastSpace = true
		}
	}
	return strings.TrimSpace(b.String())
}

// levenshteinRatio is 1 - distance/maxLen over runes.
func levenshteinRatio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	longest := len(ra)
	if len(rb) > longest {
		longest = len(rb)
	}
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein(ra, rb))/float64(longest)
}

// levenshtein computes edit distance with the two-row method.
func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

// tokenOverlap is the Jaccard index over whitespace tokens.
func tokenOverlap(a, b string) float64 {
	ta, tb := strings.Fields(a), strings.Fields(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	set := make(map[string]struct{}, len(ta))
	for _, t := range ta {
		set[t] = struct{}{}
	}
	union := make(map[string]struct{}, len(ta)+len(tb))
	for _, t := range ta {
		union[t] = struct{}{}
	}
	shared := 0
	for _, t := range tb {
		if _, ok := set[t]; ok {
			delete(set, t) // count each shared token once
			shared++
		}
		union[t] = struct{}{}
	}
	return float64(shared) / float64(len(union))
}
