package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

// Queries holds the statements run against the kv_store table.
type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

const getValue = `SELECT value FROM kv_store WHERE key = ?`

func (q *Queries) GetValue(ctx context.Context, key string) (string, error) {
	var value string
	err := q.db.QueryRowContext(ctx, getValue, key).Scan(&value)
	return value, err
}

const upsertValue = `INSERT INTO kv_store (key, value, updated_at)
VALUES (?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`

func (q *Queries) UpsertValue(ctx context.Context, key, value string) error {
	_, err := q.db.ExecContext(ctx, upsertValue, key, value)
	return err
}

const deleteValue = `DELETE FROM kv_store WHERE key = ?`

func (q *Queries) DeleteValue(ctx context.Context, key string) error {
	_, err := q.db.ExecContext(ctx, deleteValue, key)
	return err
}
