// Package services implements the task and expense operations on top of the
// record store.
//
// Task views and orderings follow the Strategy Pattern: each filter and each
// sort key has its own implementation, looked up through a registry.
package services

import (
	"fmt"
	"sort"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"prodhub/internal/core"
)

// TaskMatcher is the strategy interface for a derived task view.
type TaskMatcher interface {
	Match(t core.Task, now time.Time) bool
}

type AllMatcher struct{}

func (AllMatcher) Match(core.Task, time.Time) bool { return true }

type CompletedMatcher struct{}

func (CompletedMatcher) Match(t core.Task, _ time.Time) bool { return t.Completed }

type PendingMatcher struct{}

func (PendingMatcher) Match(t core.Task, _ time.Time) bool { return !t.Completed }

// OverdueMatcher keeps open tasks whose due date's local midnight is before now.
type OverdueMatcher struct{}

func (OverdueMatcher) Match(t core.Task, now time.Time) bool { return t.IsOverdue(now) }

var taskMatchers = map[core.TaskFilter]TaskMatcher{
	core.AllTasks:       AllMatcher{},
	core.CompletedTasks: CompletedMatcher{},
	core.PendingTasks:   PendingMatcher{},
	core.OverdueTasks:   OverdueMatcher{},
}

// GetTaskMatcher returns the strategy for f.
func GetTaskMatcher(f core.TaskFilter) (TaskMatcher, error) {
	m, ok := taskMatchers[f]
	if !ok {
		return nil, &core.ValidationError{Field: "filter", Err: fmt.Errorf("%w: %q", core.ErrInvalidFilter, f)}
	}
	return m, nil
}

// TaskSorter reorders tasks in place. Implementations must be stable.
type TaskSorter interface {
	Sort(tasks []core.Task)
}

// NewestFirst orders by creation time, most recent first.
type NewestFirst struct{}

func (NewestFirst) Sort(tasks []core.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
}

// ByPriority orders urgent, high, medium, low.
type ByPriority struct{}

func (ByPriority) Sort(tasks []core.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].Priority.Rank() < tasks[j].Priority.Rank()
	})
}

// ByDueDate orders by due date ascending; undated tasks go last and keep
// their relative order.
type ByDueDate struct{}

func (ByDueDate) Sort(tasks []core.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i].DueDate, tasks[j].DueDate
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.Before(b.Time)
		}
	})
}

// Alphabetical orders titles with English collation, ignoring case and accents.
type Alphabetical struct{}

func (Alphabetical) Sort(tasks []core.Task) {
	// Collators keep internal buffers; one per call.
	c := collate.New(language.English, collate.Loose)
	sort.SliceStable(tasks, func(i, j int) bool {
		return c.CompareString(tasks[i].Title, tasks[j].Title) < 0
	})
}

var taskSorters = map[core.SortKey]TaskSorter{
	core.SortByDate:         NewestFirst{},
	core.SortByPriority:     ByPriority{},
	core.SortByDueDate:      ByDueDate{},
	core.SortAlphabetically: Alphabetical{},
}

// GetTaskSorter returns the sorter for key, falling back to NewestFirst.
func GetTaskSorter(key core.SortKey) TaskSorter {
	if s, ok := taskSorters[key]; ok {
		return s
	}
	return NewestFirst{}
}
