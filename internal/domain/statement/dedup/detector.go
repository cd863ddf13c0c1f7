// Package dedup flags statement transactions that already exist in the
// group ledger. Detection is read-only: every preview recomputes verdicts
// from the current ledger snapshot and nothing is persisted.
package dedup

import (
	"context"
	"log/slog"
	"time"

	"github.com/fmcardoso/splitledger/internal/domain/ledger"
	"github.com/fmcardoso/splitledger/internal/domain/statement/normalizer"
)

const (
	// AutoSkipThreshold: near-certain duplicate, dropped from the default
	// selection. The user must opt back in explicitly.
	AutoSkipThreshold = 0.95
	// ReviewThreshold: probable duplicate, imported by default but flagged.
	ReviewThreshold = 0.55

	// candidateFloor is the minimum description similarity for an
	// amount-and-date match to count as a candidate at all.
	candidateFloor = 0.5

	// DefaultWindowDays bounds how far apart the dates of a duplicate pair
	// can be. Settled transactions often post a day or two late.
	DefaultWindowDays = 3
)

// Verdict annotates one transaction with its duplicate assessment.
type Verdict struct {
	HasDuplicates     bool
	Count             int
	HighestConfidence float64
	AutoSkip          bool
	NeedsReview       bool
}

// SoftError records a per-transaction detection failure. The transaction
// keeps a conservative empty verdict and the preview continues.
type SoftError struct {
	Index int
	Err   error
}

// CandidateSource supplies existing ledger entries with an exact amount
// inside a date range. ledger.Store satisfies it.
type CandidateSource interface {
	QueryCandidates(ctx context.Context, groupID string, from, to time.Time, amountCents int64) ([]ledger.Entry, error)
}

// Detector scores new transactions against the existing ledger.
type Detector struct {
	source     CandidateSource
	windowDays int
	logger     *slog.Logger
}

func New(source CandidateSource, windowDays int, logger *slog.Logger) *Detector {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Detector{source: source, windowDays: windowDays, logger: logger}
}

// Detect returns one verdict per transaction, index-aligned with the input.
// windowDays overrides the detector default for this run when positive.
// Query failures degrade to empty verdicts and are reported as soft errors.
func (d *Detector) Detect(ctx context.Context, groupID string, txs []normalizer.Transaction, windowDays int) ([]Verdict, []SoftError) {
	if windowDays <= 0 {
		windowDays = d.windowDays
	}
	verdicts := make([]Verdict, len(txs))
	var soft []SoftError

	for i, tx := range txs {
		from := tx.Date.AddDate(0, 0, -windowDays)
		to := tx.Date.AddDate(0, 0, windowDays)

		candidates, err := d.source.QueryCandidates(ctx, groupID, from, to, tx.AmountCents)
		if err != nil {
			d.logger.Warn("duplicate candidate query failed",
				slog.Int("index", i), slog.String("group_id", groupID), slog.Any("error", err))
			soft = append(soft, SoftError{Index: i, Err: err})
			continue
		}
		verdicts[i] = score(tx, candidates, windowDays)
	}
	return verdicts, soft
}

// score evaluates one transaction against its amount-matched candidates.
// The strongest candidate alone determines the verdict; Count reports how
// many cleared the review floor.
func score(tx normalizer.Transaction, candidates []ledger.Entry, windowDays int) Verdict {
	var v Verdict
	for _, c := range candidates {
		sim := Similarity(tx.Description, c.Description)
		if sim < candidateFloor {
			continue
		}
		conf := Confidence(dateDistanceDays(tx.Date, c.Date), sim, windowDays)
		if conf >= ReviewThreshold {
			v.Count++
		}
		if conf > v.HighestConfidence {
			v.HighestConfidence = conf
		}
	}

	v.HasDuplicates = v.Count > 0
	v.AutoSkip = v.HighestConfidence >= AutoSkipThreshold
	v.NeedsReview = v.HighestConfidence >= ReviewThreshold && !v.AutoSkip
	return v
}

// Confidence combines date proximity and description similarity for an
// amount-exact candidate. Amount is a hard gate upstream, never partial
// credit. Closer dates and higher similarity only ever raise the score.
func Confidence(dateDistance int, similarity float64, windowDays int) float64 {
	if dateDistance > windowDays {
		return 0
	}
	proximity := 1 - float64(dateDistance)/float64(windowDays+1)
	score := 0.4*proximity + 0.6*similarity
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

func dateDistanceDays(a, b time.Time) int {
	days := int(a.Sub(b).Hours() / 24)
	if days < 0 {
		days = -days
	}
	return days
}
