package google

import (
	"testing"
	"time"

	"prodhub/internal/core"
)

func TestTaskRows(t *testing.T) {
	created := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)
	done := created.Add(2 * time.Hour)
	due := core.NewDate(2024, 6, 10)

	rows := TaskRows([]core.Task{
		{ID: "t1", Title: "Write report", Category: core.TaskWork, Priority: core.Urgent, DueDate: &due,
			Tags: []string{"q2", "team"}, CreatedAt: created},
		{ID: "t2", Title: "Run", Category: core.TaskHealth, Priority: core.Low, Tags: []string{},
			Completed: true, CreatedAt: created, CompletedAt: &done},
	})

	if len(rows) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "ID" || len(rows[0]) != len(rows[1]) {
		t.Errorf("unexpected header: %v", rows[0])
	}
	want := []any{"t1", "Write report", "Work", "Urgent", "2024-06-10", "q2, team", "Pending", "2024-06-01 09:30:00", ""}
	for i, v := range want {
		if rows[1][i] != v {
			t.Errorf("open task column %d = %v, want %v", i, rows[1][i], v)
		}
	}
	if rows[2][4] != "" {
		t.Errorf("undated task should have blank due date, got %v", rows[2][4])
	}
	if rows[2][6] != "Completed" || rows[2][8] != "2024-06-01 11:30:00" {
		t.Errorf("completed task columns wrong: %v", rows[2])
	}
}

func TestExpenseRows(t *testing.T) {
	created := time.Date(2024, 6, 5, 18, 0, 0, 0, time.UTC)
	rows := ExpenseRows([]core.Expense{{
		ID:            "e1",
		Description:   "Groceries",
		Amount:        core.MustMoney("12.5"),
		Category:      core.Food,
		Date:          core.NewDate(2024, 6, 5),
		PaymentMethod: core.CreditCard,
		Notes:         "weekly",
		CreatedAt:     created,
	}})

	if len(rows) != 2 {
		t.Fatalf("expected header plus 1 row, got %d", len(rows))
	}
	want := []any{"e1", "2024-06-05", "Groceries", "Food", "Credit card", "12.50", "weekly", "2024-06-05 18:00:00"}
	for i, v := range want {
		if rows[1][i] != v {
			t.Errorf("column %d = %v, want %v", i, rows[1][i], v)
		}
	}
}

func TestRowsEmptyCollections(t *testing.T) {
	if got := TaskRows(nil); len(got) != 1 {
		t.Errorf("expected header only for tasks, got %d rows", len(got))
	}
	if got := ExpenseRows(nil); len(got) != 1 {
		t.Errorf("expected header only for expenses, got %d rows", len(got))
	}
}
