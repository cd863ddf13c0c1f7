package dedup

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fmcardoso/splitledger/internal/domain/ledger"
	"github.com/fmcardoso/splitledger/internal/domain/statement/normalizer"
)

const groupID = "trip-2026"

func seedEntry(t *testing.T, store *ledger.MemoryStore, day int, desc string, cents int64) {
	t.Helper()
	_, err := store.Insert(context.Background(), ledger.Entry{
		GroupID:     groupID,
		Date:        time.Date(2026, 3, day, 0, 0, 0, 0, time.UTC),
		Description: desc,
		AmountCents: cents,
		Currency:    "EUR",
	})
	require.NoError(t, err)
}

func tx(day int, desc string, cents int64) normalizer.Transaction {
	return normalizer.Transaction{
		Date:        time.Date(2026, 3, day, 0, 0, 0, 0, time.UTC),
		Description: desc,
		AmountCents: cents,
		Currency:    "EUR",
	}
}

func TestDetector_Detect(t *testing.T) {
	ctx := context.Background()

	t.Run("same day, same description, same amount auto-skips", func(t *testing.T) {
		store := ledger.NewMemoryStore()
		seedEntry(t, store, 10, "WHOLE FOODS MARKET", 4200)

		verdicts, soft := New(store, 3, nil).Detect(ctx, groupID, []normalizer.Transaction{
			tx(10, "WHOLE FOODS MARKET", 4200),
		}, 0)

		require.Empty(t, soft)
		require.Len(t, verdicts, 1)
		v := verdicts[0]
		assert.True(t, v.HasDuplicates)
		assert.Equal(t, 1, v.Count)
		assert.GreaterOrEqual(t, v.HighestConfidence, AutoSkipThreshold)
		assert.True(t, v.AutoSkip)
		assert.False(t, v.NeedsReview)
	})

	t.Run("same description at window edge needs review", func(t *testing.T) {
		store := ledger.NewMemoryStore()
		seedEntry(t, store, 10, "GALP ENERGIA", 4550)

		verdicts, soft := New(store, 3, nil).Detect(ctx, groupID, []normalizer.Transaction{
			tx(13, "GALP ENERGIA", 4550),
		}, 0)

		require.Empty(t, soft)
		v := verdicts[0]
		assert.True(t, v.NeedsReview)
		assert.False(t, v.AutoSkip)
		assert.GreaterOrEqual(t, v.HighestConfidence, ReviewThreshold)
		assert.Less(t, v.HighestConfidence, AutoSkipThreshold)
	})

	t.Run("unrelated description is not flagged", func(t *testing.T) {
		store := ledger.NewMemoryStore()
		seedEntry(t, store, 10, "NETFLIX.COM", 4200)

		verdicts, _ := New(store, 3, nil).Detect(ctx, groupID, []normalizer.Transaction{
			tx(10, "GALP ENERGIA", 4200),
		}, 0)

		v := verdicts[0]
		assert.False(t, v.HasDuplicates)
		assert.False(t, v.AutoSkip)
		assert.False(t, v.NeedsReview)
	})

	t.Run("different amount never matches", func(t *testing.T) {
		store := ledger.NewMemoryStore()
		seedEntry(t, store, 10, "WHOLE FOODS MARKET", 4200)

		verdicts, _ := New(store, 3, nil).Detect(ctx, groupID, []normalizer.Transaction{
			tx(10, "WHOLE FOODS MARKET", 4201),
		}, 0)

		assert.False(t, verdicts[0].HasDuplicates)
		assert.Zero(t, verdicts[0].HighestConfidence)
	})

	t.Run("outside the date window never matches", func(t *testing.T) {
		store := ledger.NewMemoryStore()
		seedEntry(t, store, 1, "WHOLE FOODS MARKET", 4200)

		verdicts, _ := New(store, 3, nil).Detect(ctx, groupID, []normalizer.Transaction{
			tx(10, "WHOLE FOODS MARKET", 4200),
		}, 0)

		assert.False(t, verdicts[0].HasDuplicates)
	})

	t.Run("per-run window override widens the search", func(t *testing.T) {
		store := ledger.NewMemoryStore()
		seedEntry(t, store, 1, "WHOLE FOODS MARKET", 4200)
		detector := New(store, 3, nil)
		newTx := []normalizer.Transaction{tx(10, "WHOLE FOODS MARKET", 4200)}

		verdicts, _ := detector.Detect(ctx, groupID, newTx, 0)
		assert.False(t, verdicts[0].HasDuplicates, "9 days apart is outside the default window")

		verdicts, _ = detector.Detect(ctx, groupID, newTx, 14)
		assert.True(t, verdicts[0].HasDuplicates)
		assert.True(t, verdicts[0].NeedsReview, "a distant match is probable, not certain")
	})

	t.Run("count reports all candidates over the review floor", func(t *testing.T) {
		store := ledger.NewMemoryStore()
		seedEntry(t, store, 10, "UBER TRIP", 800)
		seedEntry(t, store, 11, "UBER TRIP", 800)

		verdicts, _ := New(store, 3, nil).Detect(ctx, groupID, []normalizer.Transaction{
			tx(10, "UBER TRIP", 800),
		}, 0)

		v := verdicts[0]
		assert.Equal(t, 2, v.Count)
		assert.True(t, v.AutoSkip, "the same-day exact match decides the verdict")
	})

	t.Run("query failure degrades to an empty verdict plus soft error", func(t *testing.T) {
		verdicts, soft := New(failingSource{}, 3, nil).Detect(ctx, groupID, []normalizer.Transaction{
			tx(10, "ANYTHING", 100),
			tx(11, "ELSE", 200),
		}, 0)

		require.Len(t, verdicts, 2)
		assert.Equal(t, Verdict{}, verdicts[0])
		assert.Equal(t, Verdict{}, verdicts[1])
		require.Len(t, soft, 2)
		assert.Equal(t, 0, soft[0].Index)
		assert.Equal(t, 1, soft[1].Index)
	})
}

type failingSource struct{}

func (failingSource) QueryCandidates(context.Context, string, time.Time, time.Time, int64) ([]ledger.Entry, error) {
	return nil, errors.New("connection refused")
}

// Decreasing date distance or increasing similarity never decreases the
// confidence.
func TestConfidence_Monotonic(t *testing.T) {
	const window = 3
	sims := []float64{0, 0.25, 0.5, 0.75, 0.9, 1}

	for _, sim := range sims {
		for dist := 1; dist <= window; dist++ {
			closer := Confidence(dist-1, sim, window)
			further := Confidence(dist, sim, window)
			assert.GreaterOrEqual(t, closer, further, "sim=%v dist=%d", sim, dist)
		}
	}
	for dist := 0; dist <= window; dist++ {
		for i := 1; i < len(sims); i++ {
			lower := Confidence(dist, sims[i-1], window)
			higher := Confidence(dist, sims[i], window)
			assert.GreaterOrEqual(t, higher, lower, "dist=%d sim=%v", dist, sims[i])
		}
	}
}

func TestConfidence_Bounds(t *testing.T) {
	assert.Equal(t, 1.0, Confidence(0, 1, 3))
	assert.Equal(t, 0.0, Confidence(4, 1, 3), "outside the window scores zero")

	for dist := 0; dist <= 3; dist++ {
		for _, sim := range []float64{0, 0.5, 1} {
			c := Confidence(dist, sim, 3)
			assert.GreaterOrEqual(t, c, 0.0)
			assert.LessOrEqual(t, c, 1.0)
		}
	}
}
