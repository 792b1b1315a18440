package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ncruces/go-sqlite3"
)

// SQLiteMedium stores values in the kv_entries table.
type SQLiteMedium struct {
	conn *sql.DB
	opts options
}

// NewSQLiteMedium creates a medium on an open, migrated connection.
func NewSQLiteMedium(conn *sql.DB, opts ...Option) *SQLiteMedium {
	return &SQLiteMedium{
		conn: conn,
		opts: newOptions(opts),
	}
}

// Get returns the value stored under key.
func (s *SQLiteMedium) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.conn.QueryRowContext(ctx,
		`SELECT value FROM kv_entries WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting %q: %w", key, err)
	}
	return value, nil
}

// Put upserts value under key.
func (s *SQLiteMedium) Put(ctx context.Context, key string, value []byte) error {
	if err := s.opts.checkQuota(key, value); err != nil {
		return err
	}

	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO kv_entries (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UnixMilli())
	if err != nil {
		if errors.Is(err, sqlite3.FULL) {
			return fmt.Errorf("putting %q: %w: %v", key, ErrQuotaExceeded, err)
		}
		return fmt.Errorf("putting %q: %w", key, err)
	}
	return nil
}

// Delete removes key.
func (s *SQLiteMedium) Delete(ctx context.Context, key string) error {
	if _, err := s.conn.ExecContext(ctx, `DELETE FROM kv_entries WHERE key = ?`, key); err != nil {
		return fmt.Errorf("deleting %q: %w", key, err)
	}
	return nil
}
