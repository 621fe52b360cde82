package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prodhub/internal/core"
)

func descriptions(expenses []core.Expense) []string {
	out := make([]string, len(expenses))
	for i, e := range expenses {
		out[i] = e.Description
	}
	return out
}

func TestExpenseService_Add(t *testing.T) {
	f := newFixture(t)

	e := f.addExpense(t, core.ExpenseInput{
		Description:   "Lunch",
		Amount:        "12.50",
		Category:      "food",
		PaymentMethod: "credit-card",
		Notes:         " with team ",
	})

	assert.Equal(t, "Lunch", e.Description)
	assert.Equal(t, int64(1250), e.Amount.Cents)
	assert.Equal(t, core.Food, e.Category)
	assert.Equal(t, core.CreditCard, e.PaymentMethod)
	assert.Equal(t, "with team", e.Notes)
	assert.Equal(t, "2024-06-05", e.Date.String(), "date defaults to today")
	assert.Equal(t, []core.Expense{e}, f.expenses.List())
	assert.Equal(t, "12.50", f.expenses.MonthlyTotal().String())
}

func TestExpenseService_AddRejects(t *testing.T) {
	tests := []struct {
		name    string
		in      core.ExpenseInput
		target  error
		message string
	}{
		{
			name:    "non-numeric amount",
			in:      core.ExpenseInput{Description: "Lunch", Amount: "abc", Category: "food"},
			target:  core.ErrInvalidAmount,
			message: "Please enter a valid amount",
		},
		{
			name:    "zero amount",
			in:      core.ExpenseInput{Description: "Lunch", Amount: "0", Category: "food"},
			target:  core.ErrInvalidAmount,
			message: "Please enter a valid amount",
		},
		{
			name:    "missing description",
			in:      core.ExpenseInput{Amount: "3", Category: "food"},
			target:  core.ErrEmptyDescription,
			message: "Please fill in all required fields",
		},
		{
			name:    "unknown category",
			in:      core.ExpenseInput{Description: "Lunch", Amount: "3", Category: "gadgets"},
			target:  core.ErrInvalidCategory,
			message: "Please fill in all required fields",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.expenses.Add(context.Background(), tt.in)
			require.Error(t, err)
			assert.ErrorIs(t, err, core.ErrValidation)
			assert.ErrorIs(t, err, tt.target)
			assert.Equal(t, tt.message, core.UserMessage(err))
			assert.Empty(t, f.expenses.List())
		})
	}
}

func TestExpenseService_Delete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	e := f.addExpense(t, core.ExpenseInput{Description: "Bus", Amount: "2", Category: "transport"})

	require.NoError(t, f.expenses.Delete(ctx, "missing"))
	assert.Len(t, f.expenses.List(), 1)

	require.NoError(t, f.expenses.Delete(ctx, e.ID))
	assert.Empty(t, f.expenses.List())
	assert.ErrorIs(t, f.expenses.Edit(ctx, e.ID), core.ErrNotImplemented)
}

func TestExpenseService_FilterAndTotals(t *testing.T) {
	f := newFixture(t)
	// Now is Wednesday 2024-06-05 15:00 UTC; the rolling week starts Sunday 15:00.
	f.addExpense(t, core.ExpenseInput{Description: "Last year", Amount: "100", Category: "travel", Date: "2023-12-31"})
	f.addExpense(t, core.ExpenseInput{Description: "Last month", Amount: "40", Category: "food", Date: "2024-05-31"})
	f.addExpense(t, core.ExpenseInput{Description: "Sunday", Amount: "7", Category: "food", Date: "2024-06-02"})
	f.addExpense(t, core.ExpenseInput{Description: "Monday", Amount: "5", Category: "transport", Date: "2024-06-03"})
	f.addExpense(t, core.ExpenseInput{Description: "Today", Amount: "12.50", Category: "food"})

	tests := []struct {
		name     string
		category string
		when     core.DateFilter
		want     []string
	}{
		{"everything", "all", core.AnyDate, []string{"Today", "Monday", "Sunday", "Last month", "Last year"}},
		{"today", "", core.Today, []string{"Today"}},
		{"rolling week excludes Sunday midnight", "all", core.ThisWeek, []string{"Today", "Monday"}},
		{"month", "all", core.ThisMonth, []string{"Today", "Monday", "Sunday"}},
		{"year", "all", core.ThisYear, []string{"Today", "Monday", "Sunday", "Last month"}},
		{"category and date", "food", core.ThisMonth, []string{"Today", "Sunday"}},
		{"category only", "Transport", core.AnyDate, []string{"Monday"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.expenses.Filter(tt.category, tt.when)
			require.NoError(t, err)
			assert.Equal(t, tt.want, descriptions(got))
		})
	}

	_, err := f.expenses.Filter("gadgets", core.AnyDate)
	assert.ErrorIs(t, err, core.ErrInvalidCategory)
	_, err = f.expenses.Filter("all", core.DateFilter("decade"))
	assert.ErrorIs(t, err, core.ErrInvalidFilter)

	assert.Equal(t, "24.50", f.expenses.MonthlyTotal().String())
	assert.Equal(t, "17.50", f.expenses.WeeklyTotal().String())
}

func TestExpenseService_Search(t *testing.T) {
	f := newFixture(t)
	f.addExpense(t, core.ExpenseInput{Description: "Coffee beans", Amount: "9", Category: "food"})
	f.addExpense(t, core.ExpenseInput{Description: "Train", Amount: "30", Category: "travel"})

	assert.Equal(t, []string{"Coffee beans"}, descriptions(f.expenses.Search("COFFEE")))
	assert.Equal(t, []string{"Train"}, descriptions(f.expenses.Search("trav")))
	assert.Len(t, f.expenses.Search(""), 2)
}
