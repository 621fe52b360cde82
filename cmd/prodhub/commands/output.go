package commands

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"prodhub/internal/core"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printTasks(w io.Writer, tasks []core.Task) error {
	if len(tasks) == 0 {
		_, err := fmt.Fprintln(w, "No tasks found")
		return err
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tSTATUS\tTITLE\tCATEGORY\tPRIORITY\tDUE\tTAGS")
	for _, t := range tasks {
		status := "[ ]"
		if t.Completed {
			status = "[x]"
		}
		due := "-"
		if t.DueDate != nil {
			due = t.DueDate.String()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, status, t.Title, t.Category.Label(), t.Priority.Label(), due, strings.Join(t.Tags, ","))
	}
	return tw.Flush()
}

func printExpenses(w io.Writer, expenses []core.Expense) error {
	if len(expenses) == 0 {
		_, err := fmt.Fprintln(w, "No expenses found")
		return err
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tDATE\tDESCRIPTION\tCATEGORY\tMETHOD\tAMOUNT")
	for _, e := range expenses {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			e.ID, e.Date, e.Description, e.Category.Label(), e.PaymentMethod.Label(), e.Amount)
	}
	return tw.Flush()
}

// confirm asks a yes/no question; anything but y or yes is a no.
func confirm(cmd *cobra.Command, question string) (bool, error) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N] ", question)
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
