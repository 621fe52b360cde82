package app

import (
	"errors"
	"fmt"
	"strings"
)

// Action names a user intent the hub can carry out.
type Action string

const (
	AddTask       Action = "add-task"
	ToggleTask    Action = "toggle-task"
	DeleteTask    Action = "delete-task"
	EditTask      Action = "edit-task"
	SortTasks     Action = "sort-tasks"
	AddExpense    Action = "add-expense"
	DeleteExpense Action = "delete-expense"
	EditExpense   Action = "edit-expense"
	ExportData    Action = "export-data"
	SetTheme      Action = "set-theme"
)

var ErrUnknownAction = errors.New("unknown action")

var actions = []Action{
	AddTask, ToggleTask, DeleteTask, EditTask, SortTasks,
	AddExpense, DeleteExpense, EditExpense, ExportData, SetTheme,
}

// Actions returns every known action in declaration order.
func Actions() []Action { return append([]Action(nil), actions...) }

func ParseAction(s string) (Action, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, a := range actions {
		if string(a) == s {
			return a, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
}

func (a Action) String() string { return string(a) }
