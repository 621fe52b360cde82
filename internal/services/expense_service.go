package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"prodhub/internal/core"
	applog "prodhub/internal/log"
	"prodhub/internal/store"
)

// ExpenseService implements the expense operations against the record store.
type ExpenseService struct {
	store  *store.Store
	newID  func() string
	logger *slog.Logger
}

func NewExpenseService(st *store.Store, opts ...Option) *ExpenseService {
	o := buildOptions(opts)
	return &ExpenseService{store: st, newID: o.newID, logger: o.logger}
}

// Add validates the input and inserts the new expense at the front of the collection.
func (s *ExpenseService) Add(ctx context.Context, in core.ExpenseInput) (core.Expense, error) {
	e, err := in.Build(s.newID(), s.store.Now())
	if err != nil {
		return core.Expense{}, err
	}

	err = s.store.UpdateExpenses(ctx, func(expenses []core.Expense) ([]core.Expense, *store.Change, error) {
		next := make([]core.Expense, 0, len(expenses)+1)
		next = append(next, e)
		next = append(next, expenses...)
		return next, &store.Change{Action: store.ActionCreated, ID: e.ID}, nil
	})
	if err != nil {
		return core.Expense{}, fmt.Errorf("add expense: %w", err)
	}

	s.logger.InfoContext(ctx, "Expense created",
		applog.NewFields().
			WithOperation(applog.OpCreate).
			WithRecord(store.CollectionExpenses, e.ID).
			WithExpense(e.Amount.Cents, string(e.Category)).
			ToSlice()...)
	return e, nil
}

// Delete removes the expense with id. Unknown ids are a no-op.
func (s *ExpenseService) Delete(ctx context.Context, id string) error {
	return s.store.UpdateExpenses(ctx, func(expenses []core.Expense) ([]core.Expense, *store.Change, error) {
		for i := range expenses {
			if expenses[i].ID != id {
				continue
			}
			next := make([]core.Expense, 0, len(expenses)-1)
			next = append(next, expenses[:i]...)
			next = append(next, expenses[i+1:]...)
			return next, &store.Change{Action: store.ActionDeleted, ID: id}, nil
		}
		return expenses, nil, nil
	})
}

// Edit is not supported yet.
func (s *ExpenseService) Edit(_ context.Context, _ string) error {
	return core.ErrNotImplemented
}

func (s *ExpenseService) List() []core.Expense {
	return s.store.Expenses()
}

// Filter keeps expenses matching both the category ("all" or blank for any)
// and the date window.
func (s *ExpenseService) Filter(category string, when core.DateFilter) ([]core.Expense, error) {
	keepCategory := func(core.Expense) bool { return true }
	category = strings.TrimSpace(category)
	if category != "" && !strings.EqualFold(category, core.All) {
		c, err := core.ParseExpenseCategory(category)
		if err != nil {
			return nil, &core.ValidationError{Field: "category", Err: err}
		}
		keepCategory = func(e core.Expense) bool { return e.Category == c }
	}

	keepDate := func(core.Expense) bool { return true }
	if w, ok := core.WindowFor(when, s.store.Now()); ok {
		keepDate = func(e core.Expense) bool { return w.ContainsDate(e.Date) }
	} else if when != core.AnyDate && when != "" {
		return nil, &core.ValidationError{Field: "date", Err: fmt.Errorf("%w: %q", core.ErrInvalidFilter, when)}
	}

	expenses := s.store.Expenses()
	out := make([]core.Expense, 0, len(expenses))
	for _, e := range expenses {
		if keepCategory(e) && keepDate(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

// Search matches query case-insensitively against description and category.
func (s *ExpenseService) Search(query string) []core.Expense {
	q := strings.ToLower(strings.TrimSpace(query))
	expenses := s.store.Expenses()
	if q == "" {
		return expenses
	}
	out := make([]core.Expense, 0, len(expenses))
	for _, e := range expenses {
		if strings.Contains(strings.ToLower(e.Description), q) || strings.Contains(string(e.Category), q) {
			out = append(out, e)
		}
	}
	return out
}

// MonthlyTotal sums expenses dated in the current calendar month.
func (s *ExpenseService) MonthlyTotal() core.Money {
	w := core.MonthWindow(s.store.Now())
	return core.SumAmounts(s.store.Expenses(), func(e core.Expense) bool { return w.ContainsDate(e.Date) })
}

// WeeklyTotal sums expenses dated in the rolling week.
func (s *ExpenseService) WeeklyTotal() core.Money {
	w := core.WeekWindow(s.store.Now())
	return core.SumAmounts(s.store.Expenses(), func(e core.Expense) bool { return w.ContainsDate(e.Date) })
}
