package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"prodhub/internal/app"
)

func newStatsCommand(s *session) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show the productivity dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d := s.hub.Dashboard(cmd.Context())
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), d)
			}

			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintf(tw, "Tasks\t%d total, %d completed (%d%%), %d today\n",
				d.Tasks.Total, d.Tasks.Completed, d.Tasks.CompletionRate, d.Tasks.CompletedToday)
			fmt.Fprintf(tw, "Spent this week\t%s\n", d.Expenses.Weekly)
			fmt.Fprintf(tw, "Spent this month\t%s (avg %s/day)\n", d.Expenses.Monthly, d.Expenses.AverageDaily)
			fmt.Fprintf(tw, "Budget\t%s of %s used (%d%%), %s remaining\n",
				d.Budget.Spent, d.Budget.Limit, d.Budget.UsedPercent, d.Budget.Remaining)
			fmt.Fprintf(tw, "Productivity score\t%d\n", d.Productivity)
			for _, c := range d.Expenses.ByCategory {
				if c.Amount.Cents != 0 {
					fmt.Fprintf(tw, "  %s\t%s\n", c.Category.Label(), c.Amount)
				}
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func newExportCommand(s *session) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write all tasks and expenses to a JSON file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			hub := s.hub
			if dir != "" {
				hub = app.New(s.rt.Store, hub.Engine(), app.WithExportDir(dir), app.WithLogger(s.rt.Logger.Slog()))
			}
			res, err := hub.Dispatch(cmd.Context(), app.Command{Action: app.ExportData})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", res.Message, res.Path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "o", "", "output directory (default EXPORT_DIR)")
	return cmd
}

func newThemeCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:       "theme [light|dark]",
		Short:     "Show or set the display theme",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"light", "dark"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				if _, err := s.hub.Dispatch(cmd.Context(), app.Command{Action: app.SetTheme, Theme: args[0]}); err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), s.hub.Store().Theme())
			return nil
		},
	}
}
