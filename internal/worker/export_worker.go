package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"prodhub/internal/amqp"
	"prodhub/internal/export"
	applog "prodhub/internal/log"
	"prodhub/internal/sheets"
	"prodhub/internal/store"
)

// Source is the store as seen by the worker: reloadable and readable.
type Source interface {
	export.Source
	Load(ctx context.Context) error
}

// Consumer delivers record change notifications.
type Consumer interface {
	ConsumeRecordChanges(ctx context.Context, handler func(context.Context, *amqp.RecordChangedMessage) error) error
}

// ExportWorker mirrors the stored collections to a snapshot writer whenever a
// change is announced, and periodically as a backstop for lost messages.
type ExportWorker struct {
	source   Source
	writer   sheets.SnapshotWriter
	interval time.Duration
	logger   *slog.Logger

	mu       sync.Mutex
	lastSync time.Time
	syncs    int
}

func NewExportWorker(source Source, writer sheets.SnapshotWriter, interval time.Duration, logger *slog.Logger) *ExportWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExportWorker{
		source:   source,
		writer:   writer,
		interval: interval,
		logger:   logger.With(applog.FieldComponent, applog.ComponentWorker),
	}
}

// HandleRecordChanged processes a single change message from AMQP. Theme
// changes are not part of the export and are acknowledged without work.
func (w *ExportWorker) HandleRecordChanged(ctx context.Context, msg *amqp.RecordChangedMessage) error {
	w.logger.InfoContext(ctx, "Processing change message",
		applog.FieldCollection, msg.Collection,
		"action", msg.Action,
		applog.FieldRecordID, msg.ID,
		applog.FieldRevision, msg.Revision)

	if msg.Collection == store.CollectionTheme {
		return nil
	}
	return w.Sync(ctx)
}

// Sync reloads the collections from the backend and writes a fresh snapshot.
// Concurrent calls are serialized so snapshots land in order.
func (w *ExportWorker) Sync(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.source.Load(ctx); err != nil {
		return fmt.Errorf("reload store: %w", err)
	}
	snap := export.New(w.source)
	if err := w.writer.WriteSnapshot(ctx, snap); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	w.lastSync = time.Now()
	w.syncs++
	w.logger.InfoContext(ctx, "Snapshot exported",
		applog.FieldOperation, applog.OpExport,
		"tasks", len(snap.Tasks),
		"expenses", len(snap.Expenses))
	return nil
}

// LastSync returns when the last successful snapshot was written and how many
// have been written since start.
func (w *ExportWorker) LastSync() (time.Time, int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastSync, w.syncs
}

// Run performs a startup sync, then consumes change messages (when a consumer
// is given) and syncs on every tick until ctx is done.
func (w *ExportWorker) Run(ctx context.Context, consumer Consumer) error {
	if err := w.Sync(ctx); err != nil {
		// Startup failures are retried by the periodic sync.
		w.logger.ErrorContext(ctx, "Startup export failed", applog.FieldError, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	if consumer != nil {
		g.Go(func() error {
			return consumer.ConsumeRecordChanges(gctx, w.HandleRecordChanged)
		})
	}
	if w.interval > 0 {
		g.Go(func() error {
			return w.tick(gctx)
		})
	}

	err := g.Wait()
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

func (w *ExportWorker) tick(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.Sync(ctx); err != nil {
				w.logger.ErrorContext(ctx, "Periodic export failed", applog.FieldError, err)
			}
		}
	}
}
