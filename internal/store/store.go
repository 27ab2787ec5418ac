// Package store is the durable key/value layer every collection persists
// through. It carries raw text only; callers own serialization, and a value
// that fails to parse must be treated the same as an absent key.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

type Store struct {
	db     *sql.DB
	logger zerolog.Logger
}

func New(db *sql.DB, logger zerolog.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// Get returns the raw value for key. A key that was never set reports
// found=false with no error.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM store WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("store get %q: %w", key, err)
	}
	return value, true, nil
}

// Set writes the raw value for key, replacing any previous value. Last
// writer wins; there is no versioning.
func (s *Store) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO store (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, key, value)
	if err != nil {
		return fmt.Errorf("store set %q: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM store WHERE key = ?`, key); err != nil {
		return fmt.Errorf("store delete %q: %w", key, err)
	}
	return nil
}
