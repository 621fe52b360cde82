package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prodhub/internal/core"
)

func TestTaskService_Add(t *testing.T) {
	f := newFixture(t)

	task := f.addTask(t, core.TaskInput{
		Title:    "  Write report ",
		Category: "work",
		Priority: "high",
		DueDate:  "2024-06-10",
		Tags:     "q2, docs,",
	})

	assert.Equal(t, "id-1", task.ID)
	assert.Equal(t, "Write report", task.Title)
	assert.Equal(t, core.TaskWork, task.Category)
	assert.Equal(t, core.High, task.Priority)
	require.NotNil(t, task.DueDate)
	assert.Equal(t, "2024-06-10", task.DueDate.String())
	assert.Equal(t, []string{"q2", "docs"}, task.Tags)
	assert.False(t, task.Completed)
	assert.Nil(t, task.CompletedAt)
	assert.Equal(t, baseNow, task.CreatedAt)

	listed := f.tasks.List()
	require.Len(t, listed, 1)
	assert.Equal(t, task, listed[0])

	second := f.addTask(t, core.TaskInput{Title: "Second"})
	assert.Equal(t, second.ID, f.tasks.List()[0].ID, "new tasks go to the front")
}

func TestTaskService_AddRejectsBlankTitle(t *testing.T) {
	f := newFixture(t)

	_, err := f.tasks.Add(context.Background(), core.TaskInput{Title: "   ", Priority: "high"})

	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrValidation)
	assert.ErrorIs(t, err, core.ErrEmptyTitle)
	assert.Equal(t, "Task description is required", core.UserMessage(err))
	assert.Empty(t, f.tasks.List())
}

func TestTaskService_ToggleIsItsOwnInverse(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	task := f.addTask(t, core.TaskInput{Title: "Write report"})

	f.clock.Advance(time.Hour)
	done, err := f.tasks.Toggle(ctx, task.ID)
	require.NoError(t, err)
	assert.True(t, done.Completed)
	require.NotNil(t, done.CompletedAt)
	assert.Equal(t, baseNow.Add(time.Hour), *done.CompletedAt)

	reopened, err := f.tasks.Toggle(ctx, task.ID)
	require.NoError(t, err)
	assert.False(t, reopened.Completed)
	assert.Nil(t, reopened.CompletedAt)
	assert.Equal(t, task, f.tasks.List()[0])
}

func TestTaskService_ToggleUnknown(t *testing.T) {
	f := newFixture(t)
	_, err := f.tasks.Toggle(context.Background(), "missing")

	var nf *core.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "missing", nf.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestTaskService_Delete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.addTask(t, core.TaskInput{Title: "A"})
	f.addTask(t, core.TaskInput{Title: "B"})

	rev := f.store.Revision()
	require.NoError(t, f.tasks.Delete(ctx, "missing"))
	assert.Equal(t, rev, f.store.Revision(), "unknown id is a no-op")
	assert.Len(t, f.tasks.List(), 2)

	require.NoError(t, f.tasks.Delete(ctx, a.ID))
	assert.Equal(t, []string{"B"}, titles(f.tasks.List()))
}

func TestTaskService_Edit(t *testing.T) {
	f := newFixture(t)
	err := f.tasks.Edit(context.Background(), "any")
	assert.ErrorIs(t, err, core.ErrNotImplemented)
	assert.Equal(t, "This feature is coming soon!", core.UserMessage(err))
}

func TestTaskService_Sort(t *testing.T) {
	ctx := context.Background()

	t.Run("priority", func(t *testing.T) {
		f := newFixture(t)
		for _, p := range []string{"high", "low", "urgent", "medium", "urgent"} {
			f.addTask(t, core.TaskInput{Title: p, Priority: p})
		}
		require.NoError(t, f.tasks.Sort(ctx, core.SortByPriority))

		got := f.tasks.List()
		for i := 1; i < len(got); i++ {
			assert.LessOrEqual(t, got[i-1].Priority.Rank(), got[i].Priority.Rank())
		}
		assert.Equal(t, []string{"urgent", "urgent", "medium", "high", "low"}, titles(got))
	})

	t.Run("due date puts undated last", func(t *testing.T) {
		f := newFixture(t)
		f.addTask(t, core.TaskInput{Title: "undated-1"})
		f.addTask(t, core.TaskInput{Title: "late", DueDate: "2024-07-01"})
		f.addTask(t, core.TaskInput{Title: "undated-2"})
		f.addTask(t, core.TaskInput{Title: "soon", DueDate: "2024-06-06"})
		// Stored order is newest first: soon, undated-2, late, undated-1.

		require.NoError(t, f.tasks.Sort(ctx, core.SortByDueDate))
		assert.Equal(t, []string{"soon", "late", "undated-2", "undated-1"}, titles(f.tasks.List()))
	})

	t.Run("alphabetical is case and accent insensitive", func(t *testing.T) {
		f := newFixture(t)
		for _, title := range []string{"cherry", "Éclair", "banana", "Apple"} {
			f.addTask(t, core.TaskInput{Title: title})
		}
		require.NoError(t, f.tasks.Sort(ctx, core.SortAlphabetically))
		assert.Equal(t, []string{"Apple", "banana", "cherry", "Éclair"}, titles(f.tasks.List()))
	})

	t.Run("date is newest first", func(t *testing.T) {
		f := newFixture(t)
		f.addTask(t, core.TaskInput{Title: "old"})
		f.clock.Advance(time.Minute)
		f.addTask(t, core.TaskInput{Title: "new"})
		require.NoError(t, f.tasks.Sort(ctx, core.SortByPriority))
		require.NoError(t, f.tasks.Sort(ctx, core.ParseSortKey("bogus")))
		assert.Equal(t, []string{"new", "old"}, titles(f.tasks.List()))
	})

	t.Run("sorted order persists", func(t *testing.T) {
		f := newFixture(t)
		f.addTask(t, core.TaskInput{Title: "b"})
		f.addTask(t, core.TaskInput{Title: "a"})
		f.addTask(t, core.TaskInput{Title: "c"})
		require.NoError(t, f.tasks.Sort(ctx, core.SortAlphabetically))

		require.NoError(t, f.store.Load(ctx))
		assert.Equal(t, []string{"a", "b", "c"}, titles(f.tasks.List()))
	})
}

func TestTaskService_Filter(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	overdue := f.addTask(t, core.TaskInput{Title: "Pay rent", DueDate: "2024-06-04"})
	f.addTask(t, core.TaskInput{Title: "Plan trip", DueDate: "2024-06-06"})
	done := f.addTask(t, core.TaskInput{Title: "Old chore", DueDate: "2024-06-01"})
	_, err := f.tasks.Toggle(ctx, done.ID)
	require.NoError(t, err)

	tests := []struct {
		filter core.TaskFilter
		want   []string
	}{
		{core.AllTasks, []string{"Old chore", "Plan trip", "Pay rent"}},
		{core.CompletedTasks, []string{"Old chore"}},
		{core.PendingTasks, []string{"Plan trip", "Pay rent"}},
		{core.OverdueTasks, []string{overdue.Title}},
	}
	for _, tt := range tests {
		t.Run(string(tt.filter), func(t *testing.T) {
			got, err := f.tasks.Filter(tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, titles(got))
		})
	}

	_, err = f.tasks.Filter(core.TaskFilter("someday"))
	assert.ErrorIs(t, err, core.ErrInvalidFilter)
}

func TestTaskService_OverdueIgnoresCompletedWithSameDueDate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	open := f.addTask(t, core.TaskInput{Title: "Open", DueDate: "2024-06-01"})
	done := f.addTask(t, core.TaskInput{Title: "Done", DueDate: "2024-06-01"})
	_, err := f.tasks.Toggle(ctx, done.ID)
	require.NoError(t, err)

	got, err := f.tasks.Filter(core.OverdueTasks)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, open.ID, got[0].ID)
}

func TestTaskService_FilterByPriority(t *testing.T) {
	f := newFixture(t)
	f.addTask(t, core.TaskInput{Title: "a", Priority: "urgent"})
	f.addTask(t, core.TaskInput{Title: "b", Priority: "low"})

	got, err := f.tasks.FilterByPriority("urgent")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, titles(got))

	got, err = f.tasks.FilterByPriority("all")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	_, err = f.tasks.FilterByPriority("someday")
	assert.ErrorIs(t, err, core.ErrInvalidPriority)
}

func TestTaskService_Search(t *testing.T) {
	f := newFixture(t)
	f.addTask(t, core.TaskInput{Title: "Write Report", Category: "work"})
	f.addTask(t, core.TaskInput{Title: "Gym", Category: "health", Tags: "Cardio"})
	f.addTask(t, core.TaskInput{Title: "Groceries", Category: "shopping"})

	assert.Equal(t, []string{"Write Report"}, titles(f.tasks.Search("report")))
	assert.Equal(t, []string{"Gym"}, titles(f.tasks.Search("cardio")))
	assert.Equal(t, []string{"Groceries"}, titles(f.tasks.Search("SHOP")))
	assert.Len(t, f.tasks.Search("  "), 3)
	assert.Empty(t, f.tasks.Search("nothing"))
}
