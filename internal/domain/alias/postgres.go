package alias

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// DB is the subset of pgxpool.Pool the store needs.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore keeps aliases in the merchant_aliases table, one row per
// normalized key per group of users sharing a ledger.
type PostgresStore struct {
	db DB
}

func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

var _ Store = (*PostgresStore)(nil)

// Lookup returns the alias for a normalized description, or nil when none
// exists. The input is normalized again so callers may pass raw text.
func (s *PostgresStore) Lookup(ctx context.Context, normalizedDescription string) (*Alias, error) {
	key := NormalizeKey(normalizedDescription)
	if key == "" {
		return nil, nil
	}

	var a Alias
	err := s.db.QueryRow(ctx, `
		SELECT merchant_key, alias_name, original_text, category
		FROM merchant_aliases
		WHERE merchant_key = $1`,
		key).Scan(&a.Key, &a.Name, &a.Original, &a.Category)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up merchant alias: %w", err)
	}
	return &a, nil
}

// Create upserts an alias. Re-creating an alias for the same merchant key
// replaces the previous name and category.
func (s *PostgresStore) Create(ctx context.Context, originalText, aliasName, category string) (*Alias, error) {
	key := NormalizeKey(originalText)
	if key == "" {
		return nil, fmt.Errorf("merchant text normalizes to empty key")
	}

	var a Alias
	err := s.db.QueryRow(ctx, `
		INSERT INTO merchant_aliases (merchant_key, alias_name, original_text, category, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (merchant_key) DO UPDATE
		SET alias_name = EXCLUDED.alias_name,
		    original_text = EXCLUDED.original_text,
		    category = EXCLUDED.category,
		    updated_at = NOW()
		RETURNING merchant_key, alias_name, original_text, category`,
		key, aliasName, originalText, category).Scan(&a.Key, &a.Name, &a.Original, &a.Category)
	if err != nil {
		return nil, fmt.Errorf("failed to create merchant alias: %w", err)
	}
	return &a, nil
}
