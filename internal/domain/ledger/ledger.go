// Package ledger holds the shared expense ledger: persisted entries per
// account-holder group and the store contract the import pipeline writes
// through.
package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Entry is one persisted expense in a group ledger.
type Entry struct {
	ID          uuid.UUID
	GroupID     string
	Date        time.Time
	Description string
	AmountCents int64
	Currency    string
	Category    string
	Payer       string
	// Shares maps participant to their owed cents. The shares of an entry
	// always sum to AmountCents.
	Shares    map[string]int64
	CreatedAt time.Time
}

// Store is the persistence contract consumed by the pipeline. Duplicate
// detection only reads; commit inserts, and deletes on rollback.
type Store interface {
	// QueryCandidates returns entries in the group with the exact amount and
	// a date inside [from, to], ordered by date.
	QueryCandidates(ctx context.Context, groupID string, from, to time.Time, amountCents int64) ([]Entry, error)
	Insert(ctx context.Context, entry Entry) (uuid.UUID, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
