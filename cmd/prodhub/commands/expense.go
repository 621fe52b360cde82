package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"prodhub/internal/app"
	"prodhub/internal/core"
	"prodhub/internal/services"
)

func newExpenseCommand(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "expense",
		Aliases: []string{"expenses", "e"},
		Args:    cobra.NoArgs,
		Short:   "Manage expenses",
	}

	cmd.AddCommand(
		newExpenseAddCommand(s),
		newExpenseListCommand(s),
		newExpenseDeleteCommand(s),
		newExpenseEditCommand(s),
	)
	return cmd
}

func newExpenseAddCommand(s *session) *cobra.Command {
	var in core.ExpenseInput

	cmd := &cobra.Command{
		Use:   "add DESCRIPTION...",
		Short: "Record an expense",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Description = strings.Join(args, " ")
			res, err := s.hub.Dispatch(cmd.Context(), app.Command{Action: app.AddExpense, Expense: in})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (id %s)\n", res.Message, res.Expense.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&in.Amount, "amount", "a", "", "amount, e.g. 12.50")
	cmd.Flags().StringVarP(&in.Category, "category", "c", "", "food, transport, shopping, entertainment, bills, health, education, travel or other")
	cmd.Flags().StringVarP(&in.Date, "date", "d", "", "date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVarP(&in.PaymentMethod, "method", "m", "", "cash, credit-card, debit-card, bank-transfer or digital-wallet")
	cmd.Flags().StringVarP(&in.Notes, "notes", "n", "", "free-form notes")
	return cmd
}

func newExpenseListCommand(s *session) *cobra.Command {
	var (
		category string
		period   string
		search   string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List expenses",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := s.hub.Expenses()
			expenses, err := svc.Query(services.ExpenseQuery{
				Category: category,
				Period:   period,
				Search:   search,
			})
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), expenses)
			}
			if err := printExpenses(cmd.OutOrStdout(), expenses); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\nThis week: %s  This month: %s\n", svc.WeeklyTotal(), svc.MonthlyTotal())
			return nil
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", core.All, "category to show, or all")
	cmd.Flags().StringVarP(&period, "period", "p", "all", "today, week, month, year or all")
	cmd.Flags().StringVarP(&search, "search", "s", "", "match description or category")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func newExpenseDeleteCommand(s *session) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "delete ID",
		Aliases: []string{"rm"},
		Short:   "Delete an expense",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				ok, err := confirm(cmd, "Are you sure you want to delete this expense?")
				if err != nil || !ok {
					return err
				}
			}
			res, err := s.hub.Dispatch(cmd.Context(), app.Command{Action: app.DeleteExpense, ID: args[0]})
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

func newExpenseEditCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "edit ID",
		Short: "Edit an expense",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := s.hub.Dispatch(cmd.Context(), app.Command{Action: app.EditExpense, ID: args[0]})
			return err
		},
	}
}
