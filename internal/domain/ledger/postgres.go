package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of pgxpool.Pool the store needs. Satisfied by *pgxpool.Pool
// and by pgxmock in tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore persists ledger entries in the expenses table.
type PostgresStore struct {
	db DB
}

func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

var _ Store = (*PostgresStore)(nil)

func (s *PostgresStore) QueryCandidates(ctx context.Context, groupID string, from, to time.Time, amountCents int64) ([]Entry, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, group_id, expense_date, description, amount_cents, currency, category, payer, shares, created_at
		FROM expenses
		WHERE group_id = $1
		  AND amount_cents = $2
		  AND expense_date BETWEEN $3 AND $4
		ORDER BY expense_date, id`,
		groupID, amountCents, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query duplicate candidates: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e         Entry
			sharesRaw []byte
		)
		if err := rows.Scan(&e.ID, &e.GroupID, &e.Date, &e.Description, &e.AmountCents,
			&e.Currency, &e.Category, &e.Payer, &sharesRaw, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		if len(sharesRaw) > 0 {
			if err := json.Unmarshal(sharesRaw, &e.Shares); err != nil {
				return nil, fmt.Errorf("failed to decode shares for entry %s: %w", e.ID, err)
			}
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *PostgresStore) Insert(ctx context.Context, entry Entry) (uuid.UUID, error) {
	id := entry.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	shares, err := json.Marshal(entry.Shares)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to encode shares: %w", err)
	}

	if err := s.db.QueryRow(ctx, `
		INSERT INTO expenses (id, group_id, expense_date, description, amount_cents, currency, category, payer, shares, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		RETURNING id`,
		id, entry.GroupID, entry.Date, entry.Description, entry.AmountCents,
		entry.Currency, entry.Category, entry.Payer, shares).Scan(&id); err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert ledger entry: %w", err)
	}
	return id, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete ledger entry %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("ledger entry %s not found", id)
	}
	return nil
}
