package sheets

import (
	"context"

	"prodhub/internal/export"
)

// Ports for outbound adapters.
type (
	// SnapshotWriter mirrors a full export snapshot to an external destination.
	// Each call replaces what the previous call wrote.
	SnapshotWriter interface {
		WriteSnapshot(ctx context.Context, snap export.Snapshot) error
	}
)
