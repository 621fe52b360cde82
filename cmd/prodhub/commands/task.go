package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"prodhub/internal/app"
	"prodhub/internal/core"
	"prodhub/internal/services"
)

func newTaskCommand(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "task",
		Aliases: []string{"tasks", "t"},
		Args:    cobra.NoArgs,
		Short:   "Manage tasks",
	}

	cmd.AddCommand(
		newTaskAddCommand(s),
		newTaskListCommand(s),
		newTaskToggleCommand(s),
		newTaskDeleteCommand(s),
		newTaskEditCommand(s),
		newTaskSortCommand(s),
	)
	return cmd
}

func newTaskAddCommand(s *session) *cobra.Command {
	var in core.TaskInput

	cmd := &cobra.Command{
		Use:   "add TITLE...",
		Short: "Add a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Title = strings.Join(args, " ")
			res, err := s.hub.Dispatch(cmd.Context(), app.Command{Action: app.AddTask, Task: in})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (id %s)\n", res.Message, res.Task.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&in.Category, "category", "c", "", "work, personal, health, learning, shopping or other")
	cmd.Flags().StringVarP(&in.Priority, "priority", "p", "", "urgent, high, medium or low")
	cmd.Flags().StringVarP(&in.DueDate, "due", "d", "", "due date (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&in.Tags, "tags", "t", "", "comma-separated tags")
	return cmd
}

func newTaskListCommand(s *session) *cobra.Command {
	var (
		filter   string
		priority string
		search   string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := s.hub.Tasks().Query(services.TaskQuery{
				Filter:   filter,
				Priority: priority,
				Search:   search,
			})
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), tasks)
			}
			return printTasks(cmd.OutOrStdout(), tasks)
		},
	}

	cmd.Flags().StringVarP(&filter, "filter", "f", "all", "all, completed, pending or overdue")
	cmd.Flags().StringVarP(&priority, "priority", "p", core.All, "priority to show, or all")
	cmd.Flags().StringVarP(&search, "search", "s", "", "match title, category or tag")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func newTaskToggleCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle ID",
		Short: "Mark a task completed or pending",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := s.hub.Dispatch(cmd.Context(), app.Command{Action: app.ToggleTask, ID: args[0]})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Message)
			return nil
		},
	}
}

func newTaskDeleteCommand(s *session) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "delete ID",
		Aliases: []string{"rm"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				ok, err := confirm(cmd, "Are you sure you want to delete this task?")
				if err != nil || !ok {
					return err
				}
			}
			res, err := s.hub.Dispatch(cmd.Context(), app.Command{Action: app.DeleteTask, ID: args[0]})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Message)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation")
	return cmd
}

func newTaskEditCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "edit ID",
		Short: "Edit a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := s.hub.Dispatch(cmd.Context(), app.Command{Action: app.EditTask, ID: args[0]})
			return err
		},
	}
}

func newTaskSortCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:       "sort [date|priority|due-date|alphabetical]",
		Short:     "Reorder tasks",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"date", "priority", "due-date", "alphabetical"},
		RunE: func(cmd *cobra.Command, args []string) error {
			key := ""
			if len(args) == 1 {
				key = args[0]
			}
			sortKey := core.ParseSortKey(key)
			if _, err := s.hub.Dispatch(cmd.Context(), app.Command{Action: app.SortTasks, SortKey: sortKey}); err != nil {
				return err
			}
			return printTasks(cmd.OutOrStdout(), s.hub.Tasks().List())
		},
	}
}
