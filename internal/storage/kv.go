// Package storage provides the key-value persistence used by the record store.
package storage

import (
	"context"
	"errors"
)

// Logical keys. Each collection lives under its own key so that a corrupt
// or missing entry never affects the other.
const (
	KeyTasks    = "tasks"
	KeyExpenses = "expenses"
	KeyTheme    = "theme"
)

// ErrClosed is returned by operations on a closed backend.
var ErrClosed = errors.New("storage closed")

// KV is a durable string-keyed byte store. Set must be complete when it returns.
type KV interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}
