package backend

import (
	"context"
	"fmt"
	"log/slog"

	"prodhub/internal/storage"
	"prodhub/internal/storage/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(ctx, config)
	case MemoryBackend:
		return f.createMemoryBackend(ctx, config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteBackend(ctx context.Context, config Config) (*BackendResult, error) {
	kv, err := storage.NewSQLiteKV(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite backend: %w", err)
	}

	f.logger.InfoContext(ctx, "Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	return &BackendResult{
		KV:      kv,
		Cleanup: kv.Close,
	}, nil
}

func (f *DefaultFactory) createMemoryBackend(ctx context.Context, config Config) (*BackendResult, error) {
	var kv *memory.KV
	if config.DataDirectory != "" {
		kv = memory.NewFromDir(config.DataDirectory)
	} else {
		kv = memory.New()
	}

	f.logger.InfoContext(ctx, "Initialized memory backend", "data_directory", config.DataDirectory)

	return &BackendResult{
		KV:      kv,
		Cleanup: kv.Close,
	}, nil
}
