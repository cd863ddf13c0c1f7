package importer

import (
	"fmt"

	"github.com/google/uuid"
)

// ValidationError rejects a bad import config before any I/O happens.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid import config: %s: %s", e.Field, e.Message)
}

// PersistenceError is fatal to a commit: the write for the transaction at
// Index failed and rollback was triggered.
type PersistenceError struct {
	Index int
	Err   error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to persist transaction %d: %v", e.Index, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// ReconciliationError means rollback itself failed: the listed entries were
// written by the failed commit but could not be deleted. The ledger needs
// manual attention.
type ReconciliationError struct {
	Remaining []uuid.UUID
	Err       error
}

func (e *ReconciliationError) Error() string {
	return fmt.Sprintf("rollback left %d entries behind: %v", len(e.Remaining), e.Err)
}

func (e *ReconciliationError) Unwrap() error { return e.Err }
