package recordstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SQLiteBackend stores documents as rows of the records table
// (see migrations/20260301_090000_records.up.sql).
type SQLiteBackend struct {
	db *sql.DB
}

// NewSQLiteBackend wraps an open, migrated database. The caller keeps
// ownership of db; Close on the backend does not close it.
func NewSQLiteBackend(db *sql.DB) *SQLiteBackend {
	return &SQLiteBackend{db: db}
}

// Name implements Backend.
func (b *SQLiteBackend) Name() string { return "sqlite" }

// Load implements Backend.
func (b *SQLiteBackend) Load(ctx context.Context, key string) ([]byte, error) {
	var value string
	err := b.db.QueryRowContext(ctx, "SELECT value FROM records WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying record %s: %w", key, err)
	}
	return []byte(value), nil
}

// Save implements Backend.
func (b *SQLiteBackend) Save(ctx context.Context, key string, data []byte) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	_, err := b.db.ExecContext(ctx, `
		INSERT INTO records (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, string(data), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("upserting record %s: %w", key, err)
	}
	return nil
}

// Close implements Backend. The database is owned by the caller.
func (b *SQLiteBackend) Close() error { return nil }
