package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"prodhub/internal/core"
	"prodhub/internal/storage/memory"
	"prodhub/internal/store"
)

// Wednesday afternoon.
var baseNow = time.Date(2024, 6, 5, 15, 0, 0, 0, time.UTC)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type fixture struct {
	store    *store.Store
	clock    *fakeClock
	tasks    *TaskService
	expenses *ExpenseService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := &fakeClock{now: baseNow}
	st := store.New(memory.New(), store.WithClock(clock.Now), store.WithLocation(time.UTC))
	require.NoError(t, st.Load(context.Background()))

	n := 0
	ids := func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	return &fixture{
		store:    st,
		clock:    clock,
		tasks:    NewTaskService(st, WithIDGenerator(ids)),
		expenses: NewExpenseService(st, WithIDGenerator(ids)),
	}
}

func (f *fixture) addTask(t *testing.T, in core.TaskInput) core.Task {
	t.Helper()
	task, err := f.tasks.Add(context.Background(), in)
	require.NoError(t, err)
	return task
}

func (f *fixture) addExpense(t *testing.T, in core.ExpenseInput) core.Expense {
	t.Helper()
	e, err := f.expenses.Add(context.Background(), in)
	require.NoError(t, err)
	return e
}

func titles(tasks []core.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Title
	}
	return out
}
