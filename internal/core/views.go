package core

import "strings"

const (
	SortByDate         SortKey = "date"
	SortByPriority     SortKey = "priority"
	SortByDueDate      SortKey = "due-date"
	SortAlphabetically SortKey = "alphabetical"
)

const (
	AllTasks       TaskFilter = "all"
	CompletedTasks TaskFilter = "completed"
	PendingTasks   TaskFilter = "pending"
	OverdueTasks   TaskFilter = "overdue"
)

const (
	AnyDate   DateFilter = "all"
	Today     DateFilter = "today"
	ThisWeek  DateFilter = "week"
	ThisMonth DateFilter = "month"
	ThisYear  DateFilter = "year"
)

type (
	// SortKey selects the order applied by the task sort operation.
	SortKey string

	// TaskFilter selects a derived task view.
	TaskFilter string

	// DateFilter selects the expense date window.
	DateFilter string
)

// ParseSortKey maps unknown or blank input to SortByDate, matching the
// "newest first" default ordering.
func ParseSortKey(s string) SortKey {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case SortByPriority, SortByDueDate, SortAlphabetically:
		return k
	default:
		return SortByDate
	}
}

func ParseTaskFilter(s string) (TaskFilter, error) {
	return parseEnum(s, []TaskFilter{AllTasks, CompletedTasks, PendingTasks, OverdueTasks}, AllTasks, ErrInvalidFilter)
}

func ParseDateFilter(s string) (DateFilter, error) {
	return parseEnum(s, []DateFilter{AnyDate, Today, ThisWeek, ThisMonth, ThisYear}, AnyDate, ErrInvalidFilter)
}
