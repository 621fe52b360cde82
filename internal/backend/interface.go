package backend

import (
	"context"

	"prodhub/internal/storage"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the key-value backend and its cleanup function
type BackendResult struct {
	KV      storage.KV
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Memory backend seed directory; empty means start blank.
	DataDirectory string
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
