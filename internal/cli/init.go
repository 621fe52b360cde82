// Package cli provides the initialization shared by cmd/prodhub and
// cmd/prodhub-worker.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"prodhub/internal/amqp"
	"prodhub/internal/app"
	"prodhub/internal/backend"
	"prodhub/internal/config"
	applog "prodhub/internal/log"
	"prodhub/internal/stats"
	"prodhub/internal/store"
)

// LoadEnvFile loads environment files for local development. With no paths
// it reads ./.env and ignores a missing file; explicit paths must exist.
func LoadEnvFile(paths ...string) error {
	if len(paths) == 0 {
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load .env: %w", err)
		}
		return nil
	}
	if err := godotenv.Load(paths...); err != nil {
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

// SetupLogger builds the process logger and installs it as the slog default.
// A nil writer logs to stderr.
func SetupLogger(level slog.Level, w io.Writer, component string) *applog.Logger {
	logger := applog.New(applog.Config{
		Level:     level,
		Component: component,
		Output:    w,
	})
	applog.SetDefault(logger)
	return logger
}

// LoadAndValidateConfig loads configuration from the environment and
// validates it.
func LoadAndValidateConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration: %w", err)
	}
	return cfg, nil
}

// Runtime holds the long-lived resources of one process.
type Runtime struct {
	Config   *config.Config
	Logger   *applog.Logger
	Store    *store.Store
	Notifier *amqp.Client

	cleanup backend.CleanupFunc
}

// Bootstrap opens the configured backend, connects the optional change
// notifier and loads the store. An unreachable broker only disables
// notifications.
func Bootstrap(ctx context.Context, cfg *config.Config, logger *applog.Logger) (*Runtime, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	if err := cfg.EnsureDataDir(); err != nil {
		return nil, err
	}

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger.WithComponent(applog.ComponentBackend).Slog()).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, fmt.Errorf("open backend: %w", err)
	}

	rt := &Runtime{Config: cfg, Logger: logger, cleanup: res.Cleanup}
	opts := []store.Option{
		store.WithLogger(logger.WithComponent(applog.ComponentStore).Slog()),
		store.WithLocation(loc),
	}
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.WarnContext(ctx, "AMQP unavailable, change notifications disabled",
				applog.FieldError, err)
		} else {
			rt.Notifier = client
			opts = append(opts, store.WithNotifier(client))
		}
	}

	rt.Store = store.New(res.KV, opts...)
	if err := rt.Store.Load(ctx); err != nil {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("load store: %w", err)
	}
	return rt, nil
}

// NewHub builds the action hub on top of the runtime store.
func (r *Runtime) NewHub() (*app.Hub, error) {
	budget, err := r.Config.Budget()
	if err != nil {
		return nil, err
	}
	loc, err := r.Config.Location()
	if err != nil {
		return nil, err
	}
	engine := stats.NewEngine(budget, stats.WithLocation(loc))
	return app.New(r.Store, engine,
		app.WithExportDir(r.Config.ExportDir),
		app.WithLogger(r.Logger.Slog())), nil
}

// Close flushes the store and releases the notifier and backend. Every step
// runs even when an earlier one fails.
func (r *Runtime) Close(ctx context.Context) error {
	var errs []error
	if r.Store != nil {
		if err := r.Store.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if r.Notifier != nil {
		if err := r.Notifier.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close amqp: %w", err))
		}
	}
	if r.cleanup != nil {
		if err := r.cleanup(); err != nil {
			errs = append(errs, fmt.Errorf("close backend: %w", err))
		}
	}
	return errors.Join(errs...)
}

// GracefulShutdown returns a context cancelled on SIGINT or SIGTERM. cleanup
// runs once after the signal with a context bounded by timeout; the returned
// channel closes when it has finished.
func GracefulShutdown(logger *applog.Logger, timeout time.Duration, cleanup func(context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()
		if cleanup != nil {
			cleanup(shutdownCtx)
		}
		if shutdownCtx.Err() != nil {
			logger.Warn("Shutdown timeout reached")
			return
		}
		logger.Info("Shutdown complete")
	}()

	return ctx, done
}
