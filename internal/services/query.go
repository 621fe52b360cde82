package services

import (
	"strings"

	"prodhub/internal/core"
)

// TaskQuery combines the task list controls. Zero values keep everything.
type TaskQuery struct {
	Filter   string
	Priority string
	Search   string
}

// ExpenseQuery combines the expense list controls. Zero values keep everything.
type ExpenseQuery struct {
	Category string
	Period   string
	Search   string
}

// Query applies the status filter, the priority filter and the search term
// together. The result keeps stored order.
func (s *TaskService) Query(q TaskQuery) ([]core.Task, error) {
	f, err := core.ParseTaskFilter(q.Filter)
	if err != nil {
		return nil, &core.ValidationError{Field: "filter", Err: err}
	}
	tasks, err := s.Filter(f)
	if err != nil {
		return nil, err
	}
	byPriority, err := s.FilterByPriority(q.Priority)
	if err != nil {
		return nil, err
	}
	tasks = intersect(tasks, byPriority, func(t core.Task) string { return t.ID })
	if strings.TrimSpace(q.Search) != "" {
		tasks = intersect(tasks, s.Search(q.Search), func(t core.Task) string { return t.ID })
	}
	return tasks, nil
}

// Query applies the category, the date window and the search term together.
func (s *ExpenseService) Query(q ExpenseQuery) ([]core.Expense, error) {
	when, err := core.ParseDateFilter(q.Period)
	if err != nil {
		return nil, &core.ValidationError{Field: "period", Err: err}
	}
	expenses, err := s.Filter(q.Category, when)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(q.Search) != "" {
		expenses = intersect(expenses, s.Search(q.Search), func(e core.Expense) string { return e.ID })
	}
	return expenses, nil
}

// intersect keeps the records of a whose id also appears in b, in a's order.
func intersect[T any](a, b []T, id func(T) string) []T {
	ids := make(map[string]struct{}, len(b))
	for _, v := range b {
		ids[id(v)] = struct{}{}
	}
	out := make([]T, 0, len(a))
	for _, v := range a {
		if _, ok := ids[id(v)]; ok {
			out = append(out, v)
		}
	}
	return out
}
