// Package alias maps raw merchant text to user-curated names and bound
// categories. An alias hit is the strongest categorization signal the
// pipeline has, so lookups happen before any heuristic.
package alias

import (
	"context"
	"strings"
	"unicode"
)

// Alias binds a normalized merchant key to a display name and category.
type Alias struct {
	Key      string // normalized merchant key, see NormalizeKey
	Name     string // user-facing alias, e.g. "Whole Foods"
	Original string // raw merchant text the alias was created from
	Category string
}

// Lookup resolves a normalized description to a known alias. Implemented by
// Store; the categorizer depends on this narrow read side only.
type Lookup interface {
	Lookup(ctx context.Context, normalizedDescription string) (*Alias, error)
}

// Store is the full alias persistence contract.
type Store interface {
	Lookup
	Create(ctx context.Context, originalText, aliasName, category string) (*Alias, error)
}

// NormalizeKey canonicalizes merchant text for alias matching: lowercase,
// punctuation stripped, whitespace collapsed. "WHOLE-FOODS  #123" and
// "whole foods 123" map to the same key.
func NormalizeKey(s string) string {
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
