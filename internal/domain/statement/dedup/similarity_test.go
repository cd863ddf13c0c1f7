package dedup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimilarity(t *testing.T) {
	t.Run("identical after normalization", func(t *testing.T) {
		assert.Equal(t, 1.0, Similarity("WHOLE FOODS", "whole-foods"))
		assert.Equal(t, 1.0, Similarity("  Pingo   Doce ", "PINGO DOCE"))
	})

	t.Run("containment scores high", func(t *testing.T) {
		s := Similarity("WHOLE FOODS", "WHOLE FOODS MARKET #123")
		assert.Greater(t, s, 0.75)
		assert.Less(t, s, 1.0)
	})

	t.Run("unrelated merchants score low", func(t *testing.T) {
		assert.Less(t, Similarity("GALP ENERGIA", "NETFLIX.COM"), 0.5)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Equal(t, 0.0, Similarity("", "SHOP"))
		assert.Equal(t, 0.0, Similarity("SHOP", ""))
	})

	t.Run("symmetric", func(t *testing.T) {
		a, b := "CONTINENTE MATOSINHOS", "CONTINENTE BOM DIA"
		assert.InDelta(t, Similarity(a, b), Similarity(b, a), 1e-9)
	})

	t.Run("shared tokens lift the score", func(t *testing.T) {
		near := Similarity("UBER TRIP LISBOA", "UBER TRIP PORTO")
		far := Similarity("UBER TRIP LISBOA", "FARMACIA CENTRAL")
		assert.Greater(t, near, far)
	})
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"same", "same", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, levenshtein([]rune(tt.a), []rune(tt.b)), "%s vs %s", tt.a, tt.b)
	}
}

func TestNormalizeText(t *testing.T) {
	assert.Equal(t, "whole foods 123", normalizeText("WHOLE-FOODS  #123!"))
	assert.Equal(t, "cafe", normalizeText("  Cafe.  "))
	assert.Equal(t, "", normalizeText("!!! ---"))
}
