package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prodhub/internal/core"
)

func TestTaskService_Query(t *testing.T) {
	f := newFixture(t)
	report := f.addTask(t, core.TaskInput{Title: "Write report", Priority: "high", Category: "work"})
	f.addTask(t, core.TaskInput{Title: "Review report", Priority: "low", Category: "work"})
	f.addTask(t, core.TaskInput{Title: "Gym", Priority: "high", Category: "health"})
	_, err := f.tasks.Toggle(context.Background(), report.ID)
	require.NoError(t, err)

	tests := []struct {
		name  string
		query TaskQuery
		want  []string
	}{
		{"zero query", TaskQuery{}, []string{"Gym", "Review report", "Write report"}},
		{"priority", TaskQuery{Priority: "high"}, []string{"Gym", "Write report"}},
		{"priority and search", TaskQuery{Priority: "high", Search: "report"}, []string{"Write report"}},
		{"pending and search", TaskQuery{Filter: "pending", Search: "report"}, []string{"Review report"}},
		{"no match", TaskQuery{Filter: "completed", Priority: "low"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.tasks.Query(tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, titles(got))
		})
	}

	_, err = f.tasks.Query(TaskQuery{Filter: "someday"})
	assert.ErrorIs(t, err, core.ErrInvalidFilter)
	_, err = f.tasks.Query(TaskQuery{Priority: "someday"})
	assert.ErrorIs(t, err, core.ErrInvalidPriority)
}

func TestExpenseService_Query(t *testing.T) {
	f := newFixture(t)
	f.addExpense(t, core.ExpenseInput{Description: "Coffee", Amount: "3", Category: "food"})
	f.addExpense(t, core.ExpenseInput{Description: "Coffee grinder", Amount: "60", Category: "shopping"})
	f.addExpense(t, core.ExpenseInput{Description: "Dinner", Amount: "40", Category: "food", Date: "2024-01-10"})

	got, err := f.expenses.Query(ExpenseQuery{Category: "food"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Dinner", "Coffee"}, descriptions(got))

	got, err = f.expenses.Query(ExpenseQuery{Period: "month", Search: "coffee"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Coffee grinder", "Coffee"}, descriptions(got))

	_, err = f.expenses.Query(ExpenseQuery{Period: "decade"})
	assert.ErrorIs(t, err, core.ErrInvalidFilter)
}
