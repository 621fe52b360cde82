package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"
)

// SQLiteKV stores every key as one row of kv_store.
type SQLiteKV struct {
	// mu guards db; readers hold it for the whole query so Close waits for them.
	mu      sync.RWMutex
	db      *sql.DB
	queries *Queries
}

var _ KV = (*SQLiteKV)(nil)

func NewSQLiteKV(dbPath string) (*SQLiteKV, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// A single connection keeps writes serialized and visible to the next read.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteKV{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteKV) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.db != nil {
		err := r.db.Close()
		r.db = nil
		return err
	}
	return nil
}

func (r *SQLiteKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.db == nil {
		return nil, false, ErrClosed
	}
	value, err := r.queries.GetValue(ctx, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", key, err)
	}
	return []byte(value), true, nil
}

func (r *SQLiteKV) Set(ctx context.Context, key string, value []byte) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.db == nil {
		return ErrClosed
	}
	if err := r.queries.UpsertValue(ctx, key, string(value)); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	slog.DebugContext(ctx, "Value saved to SQLite", "key", key, "bytes", len(value))
	return nil
}

func (r *SQLiteKV) Delete(ctx context.Context, key string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.db == nil {
		return ErrClosed
	}
	if err := r.queries.DeleteValue(ctx, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}
