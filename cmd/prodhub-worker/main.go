package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"prodhub/internal/cli"
	"prodhub/internal/config"
	"prodhub/internal/export"
	applog "prodhub/internal/log"
	"prodhub/internal/sheets"
	gsheet "prodhub/internal/sheets/google"
	"prodhub/internal/worker"
)

func main() {
	// Optional in production/docker
	if err := cli.LoadEnvFile(); err != nil {
		fail(err)
	}
	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		fail(err)
	}
	level, _ := cfg.SlogLevel()
	logger := cli.SetupLogger(level, os.Stdout, applog.ComponentWorker)

	if err := run(cfg, logger); err != nil {
		logger.Error("Worker failed", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}

func fail(err error) {
	cli.SetupLogger(slog.LevelInfo, nil, applog.ComponentWorker).Error("Startup failed", applog.FieldError, err)
	os.Exit(1)
}

func run(cfg *config.Config, logger *applog.Logger) (err error) {
	logger.Info("Starting prodhub-worker",
		"backend", cfg.DataBackend,
		"interval", cfg.ExportInterval)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	rt, err := cli.Bootstrap(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initialize runtime: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if cerr := rt.Close(closeCtx); cerr != nil && err == nil {
			err = cerr
		}
	}()

	writer, err := snapshotWriter(ctx, cfg, logger)
	if err != nil {
		return err
	}
	w := worker.NewExportWorker(rt.Store, writer, cfg.ExportInterval, logger.Slog())

	var consumer worker.Consumer
	if rt.Notifier != nil {
		consumer = rt.Notifier
	} else {
		logger.Info("AMQP disabled, relying on periodic export only")
	}

	if err := w.Run(ctx, consumer); err != nil {
		return err
	}
	<-done
	return nil
}

func snapshotWriter(ctx context.Context, cfg *config.Config, logger *applog.Logger) (sheets.SnapshotWriter, error) {
	if !cfg.SheetsEnabled() {
		logger.Info("Google Sheets disabled, exporting to directory", applog.FieldPath, cfg.ExportDir)
		return export.DirWriter{Dir: cfg.ExportDir}, nil
	}
	client, err := gsheet.NewClient(ctx, gsheet.Config{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		TasksSheet:      cfg.GoogleTasksSheetName,
		ExpensesSheet:   cfg.GoogleExpensesSheetName,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
	})
	if err != nil {
		return nil, fmt.Errorf("google sheets client: %w", err)
	}
	logger.Info("Google Sheets export enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	return client, nil
}
