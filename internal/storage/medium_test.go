package storage

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/guilhermegouw/bioexplorer/internal/db"
)

// openTestDB opens a migrated database in a temp dir.
func openTestDB(t *testing.T) *db.DB {
	t.Helper()

	database, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() }) //nolint:errcheck // Intentionally ignoring close error in test cleanup

	return database
}

// mediumFactories builds every Medium implementation with the given options.
func mediumFactories(t *testing.T) map[string]func(opts ...Option) Medium {
	t.Helper()
	return map[string]func(opts ...Option) Medium{
		"memory": func(opts ...Option) Medium { return NewMemoryMedium(opts...) },
		"file": func(opts ...Option) Medium {
			return NewFileMedium(filepath.Join(t.TempDir(), "data"), opts...)
		},
		"sqlite": func(opts ...Option) Medium {
			return NewSQLiteMedium(openTestDB(t).Conn(), opts...)
		},
	}
}

func TestMedium(t *testing.T) {
	ctx := context.Background()

	for name, newMedium := range mediumFactories(t) {
		t.Run(name, func(t *testing.T) {
			t.Run("get absent key returns ErrNotFound", func(t *testing.T) {
				m := newMedium()
				_, err := m.Get(ctx, "missing")
				if !errors.Is(err, ErrNotFound) {
					t.Errorf("Get() error = %v, want ErrNotFound", err)
				}
			})

			t.Run("put then get", func(t *testing.T) {
				m := newMedium()
				if err := m.Put(ctx, "k", []byte(`[{"id":"1"}]`)); err != nil {
					t.Fatalf("Put() error = %v", err)
				}
				got, err := m.Get(ctx, "k")
				if err != nil {
					t.Fatalf("Get() error = %v", err)
				}
				if string(got) != `[{"id":"1"}]` {
					t.Errorf("Get() = %s", got)
				}
			})

			t.Run("put overwrites", func(t *testing.T) {
				m := newMedium()
				if err := m.Put(ctx, "k", []byte("one")); err != nil {
					t.Fatalf("Put() error = %v", err)
				}
				if err := m.Put(ctx, "k", []byte("two")); err != nil {
					t.Fatalf("Put() error = %v", err)
				}
				got, err := m.Get(ctx, "k")
				if err != nil {
					t.Fatalf("Get() error = %v", err)
				}
				if string(got) != "two" {
					t.Errorf("Get() = %s, want two", got)
				}
			})

			t.Run("delete", func(t *testing.T) {
				m := newMedium()
				if err := m.Put(ctx, "k", []byte("v")); err != nil {
					t.Fatalf("Put() error = %v", err)
				}
				if err := m.Delete(ctx, "k"); err != nil {
					t.Fatalf("Delete() error = %v", err)
				}
				if _, err := m.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
					t.Errorf("Get() after Delete error = %v, want ErrNotFound", err)
				}
				if err := m.Delete(ctx, "k"); err != nil {
					t.Errorf("Delete() of absent key error = %v", err)
				}
			})

			t.Run("quota exceeded keeps previous value", func(t *testing.T) {
				m := newMedium(WithQuota(16))
				if err := m.Put(ctx, "k", []byte("small")); err != nil {
					t.Fatalf("Put() error = %v", err)
				}
				err := m.Put(ctx, "k", bytes.Repeat([]byte("x"), 17))
				if !errors.Is(err, ErrQuotaExceeded) {
					t.Fatalf("Put() error = %v, want ErrQuotaExceeded", err)
				}
				got, err := m.Get(ctx, "k")
				if err != nil {
					t.Fatalf("Get() error = %v", err)
				}
				if string(got) != "small" {
					t.Errorf("Get() = %s, want small", got)
				}
			})
		})
	}
}

func TestMemoryMedium_CopiesValues(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryMedium()

	value := []byte("abc")
	if err := m.Put(ctx, "k", value); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	value[0] = 'z'

	got, _ := m.Get(ctx, "k") //nolint:errcheck // Checked by content below
	if string(got) != "abc" {
		t.Errorf("stored value mutated through caller slice: %s", got)
	}
}

func TestFileMedium_FlattensKeys(t *testing.T) {
	dir := t.TempDir()
	m := NewFileMedium(dir)

	if err := m.Put(context.Background(), "a/b", []byte("v")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if got := m.path("a/b"); !strings.HasPrefix(got, dir) || filepath.Base(got) != "a_b.json" {
		t.Errorf("path() = %q, want file a_b.json inside %q", got, dir)
	}
}

func TestSQLiteMedium_DatabaseFull(t *testing.T) {
	ctx := context.Background()
	conn := openTestDB(t).Conn()
	conn.SetMaxOpenConns(1)

	// Clamp the database to its current size so any growth fails.
	if _, err := conn.ExecContext(ctx, "PRAGMA max_page_count = 1"); err != nil {
		t.Fatalf("setting max_page_count: %v", err)
	}

	m := NewSQLiteMedium(conn)
	err := m.Put(ctx, "k", bytes.Repeat([]byte("x"), 1<<20))
	if !errors.Is(err, ErrQuotaExceeded) {
		t.Errorf("Put() error = %v, want ErrQuotaExceeded", err)
	}
}
