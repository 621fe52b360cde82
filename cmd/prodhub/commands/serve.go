package commands

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	apphttp "prodhub/internal/http"
	applog "prodhub/internal/log"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(s *session) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API on a local address",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := s.rt.Config
			if addr == "" {
				addr = cfg.HTTPAddr
			}
			srv := apphttp.NewServer(s.hub, apphttp.Config{
				Addr:              addr,
				RequestsPerMinute: cfg.RateLimitPerMinute,
				Logger:            s.rt.Logger,
			})

			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("listen on %s: %w", addr, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Listening on http://%s\n", ln.Addr())
			return serve(cmd.Context(), srv, ln, s.rt.Logger)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default HTTP_ADDR)")
	return cmd
}

// serve runs srv on ln until ctx is cancelled, then drains open requests.
func serve(ctx context.Context, srv *apphttp.Server, ln net.Listener, logger *applog.Logger) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down HTTP server", applog.FieldOperation, applog.OpShutdown)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}
