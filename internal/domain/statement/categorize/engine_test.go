package categorize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_Classify(t *testing.T) {
	t.Run("brand keyword wins over generic", func(t *testing.T) {
		engine := NewEngine([]Rule{
			{Category: "groceries", Keyword: "whole foods", Weight: 0.85},
			{Category: "groceries", Keyword: "market", Weight: 0.45},
			{Category: "dining", Keyword: "cafe", Weight: 0.6},
		})

		scores := engine.Classify("WHOLE FOODS MARKET #123")
		require.NotEmpty(t, scores)
		assert.Equal(t, "groceries", scores[0].Category)
		assert.Equal(t, "whole foods", scores[0].Keyword)
		// Base weight plus one extra hit ("market") in the same category.
		assert.InDelta(t, 0.90, scores[0].Confidence, 1e-9)
	})

	t.Run("competing categories rank by weight", func(t *testing.T) {
		engine := NewEngine([]Rule{
			{Category: "groceries", Keyword: "wholefds", Weight: 0.6},
			{Category: "household", Keyword: "whl", Weight: 0.3},
		})

		scores := engine.Classify("WHOLEFDS WHL 42")
		require.Len(t, scores, 2)
		assert.Equal(t, "groceries", scores[0].Category)
		assert.InDelta(t, 0.6, scores[0].Confidence, 1e-9)
		assert.Equal(t, "household", scores[1].Category)
		assert.InDelta(t, 0.3, scores[1].Confidence, 1e-9)
	})

	t.Run("no hits yields no scores", func(t *testing.T) {
		engine := NewEngine(DefaultRules())
		assert.Empty(t, engine.Classify("XKCD 1234"))
		assert.Empty(t, engine.Classify(""))
	})

	t.Run("confidence stays below alias certainty", func(t *testing.T) {
		engine := NewEngine([]Rule{
			{Category: "dining", Keyword: "pizza", Weight: 0.9},
			{Category: "dining", Keyword: "lisboa", Weight: 0.9},
			{Category: "dining", Keyword: "napoli", Weight: 0.9},
		})

		scores := engine.Classify("PIZZA NAPOLI LISBOA")
		require.NotEmpty(t, scores)
		assert.LessOrEqual(t, scores[0].Confidence, engineCap)
		assert.Less(t, scores[0].Confidence, 1.0)
	})

	t.Run("equal confidence breaks ties by category key", func(t *testing.T) {
		engine := NewEngine([]Rule{
			{Category: "beta", Keyword: "zzz", Weight: 0.7},
			{Category: "alpha", Keyword: "qqq", Weight: 0.7},
		})

		scores := engine.Classify("qqq zzz")
		require.Len(t, scores, 2)
		assert.Equal(t, "alpha", scores[0].Category)
		assert.Equal(t, "beta", scores[1].Category)
	})

	t.Run("matching is case and punctuation insensitive", func(t *testing.T) {
		engine := NewEngine([]Rule{{Category: "entertainment", Keyword: "netflix", Weight: 0.9}})

		scores := engine.Classify("NETFLIX.COM 123-456")
		require.NotEmpty(t, scores)
		assert.Equal(t, "entertainment", scores[0].Category)
	})
}
