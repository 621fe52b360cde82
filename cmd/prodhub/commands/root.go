package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"prodhub/internal/app"
	"prodhub/internal/cli"
	applog "prodhub/internal/log"
)

// session carries the runtime opened for one invocation.
type session struct {
	envFiles []string
	rt       *cli.Runtime
	hub      *app.Hub
}

func (s *session) open(cmd *cobra.Command) error {
	if err := cli.LoadEnvFile(s.envFiles...); err != nil {
		return err
	}
	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		return err
	}
	level, err := cfg.SlogLevel()
	if err != nil {
		return err
	}
	logger := cli.SetupLogger(level, cmd.ErrOrStderr(), applog.ComponentCLI)

	rt, err := cli.Bootstrap(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	s.rt = rt
	if s.hub, err = rt.NewHub(); err != nil {
		return err
	}
	return nil
}

func (s *session) close(ctx context.Context) error {
	if s.rt == nil {
		return nil
	}
	err := s.rt.Close(ctx)
	s.rt, s.hub = nil, nil
	return err
}

// NewRootCmd creates the root command
func NewRootCmd() (*cobra.Command, func(context.Context) error) {
	s := &session{}

	rootCmd := &cobra.Command{
		Use:           "prodhub",
		Short:         "Track tasks and expenses from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return s.open(cmd)
		},
	}
	rootCmd.PersistentFlags().StringSliceVar(&s.envFiles, "env-file", nil, "environment files to load (default .env)")

	rootCmd.AddCommand(
		newTaskCommand(s),
		newExpenseCommand(s),
		newStatsCommand(s),
		newExportCommand(s),
		newThemeCommand(s),
		newServeCommand(s),
	)

	return rootCmd, s.close
}

// Execute runs the command line and always releases the runtime, even when
// the command fails.
func Execute(ctx context.Context, args []string) error {
	root, closeSession := NewRootCmd()
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if cerr := closeSession(ctx); cerr != nil {
		err = errors.Join(err, fmt.Errorf("shutdown: %w", cerr))
	}
	return err
}
