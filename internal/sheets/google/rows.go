package google

import (
	"strings"

	"prodhub/internal/core"
)

var (
	taskHeader    = []any{"ID", "Title", "Category", "Priority", "Due Date", "Tags", "Status", "Created", "Completed"}
	expenseHeader = []any{"ID", "Date", "Description", "Category", "Payment Method", "Amount", "Notes", "Created"}
)

const timestampLayout = "2006-01-02 15:04:05"

// TaskRows formats tasks for the sheet, header first.
func TaskRows(tasks []core.Task) [][]any {
	rows := make([][]any, 0, len(tasks)+1)
	rows = append(rows, taskHeader)
	for _, t := range tasks {
		due := ""
		if t.DueDate != nil {
			due = t.DueDate.String()
		}
		status := "Pending"
		completed := ""
		if t.Completed {
			status = "Completed"
			if t.CompletedAt != nil {
				completed = t.CompletedAt.Format(timestampLayout)
			}
		}
		rows = append(rows, []any{
			t.ID,
			t.Title,
			t.Category.Label(),
			t.Priority.Label(),
			due,
			strings.Join(t.Tags, ", "),
			status,
			t.CreatedAt.Format(timestampLayout),
			completed,
		})
	}
	return rows
}

// ExpenseRows formats expenses for the sheet, header first. Amounts are
// written as plain decimals so the sheet parses them as numbers.
func ExpenseRows(expenses []core.Expense) [][]any {
	rows := make([][]any, 0, len(expenses)+1)
	rows = append(rows, expenseHeader)
	for _, e := range expenses {
		rows = append(rows, []any{
			e.ID,
			e.Date.String(),
			e.Description,
			e.Category.Label(),
			e.PaymentMethod.Label(),
			e.Amount.Decimal().StringFixed(2),
			e.Notes,
			e.CreatedAt.Format(timestampLayout),
		})
	}
	return rows
}
