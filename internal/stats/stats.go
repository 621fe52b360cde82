// Package stats computes dashboard metrics from task and expense collections.
// Every function is pure: the caller supplies the collections and the clock.
package stats

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"prodhub/internal/core"
)

// DefaultBudget is the monthly spending limit used when none is configured.
var DefaultBudget = core.Money{Cents: 200000}

var hundred = decimal.NewFromInt(100)

type TaskStats struct {
	Total          int `json:"total"`
	Completed      int `json:"completed"`
	CompletedToday int `json:"completedToday"`
	// CompletionRate is completed/total as a whole percentage, 0 when empty.
	CompletionRate int `json:"completionRate"`
}

type ExpenseStats struct {
	Total        core.Money            `json:"total"`
	Monthly      core.Money            `json:"monthly"`
	Weekly       core.Money            `json:"weekly"`
	ByCategory   []core.CategoryAmount `json:"byCategory"`
	Food         core.Money            `json:"food"`
	Transport    core.Money            `json:"transport"`
	AverageDaily core.Money            `json:"averageDaily"`
}

type Budget struct {
	Limit core.Money `json:"limit"`
	Spent core.Money `json:"spent"`
	// UsedPercent may exceed 100; DisplayPercent is capped at 100.
	UsedPercent    int        `json:"usedPercent"`
	DisplayPercent int        `json:"displayPercent"`
	Remaining      core.Money `json:"remaining"`
}

type Dashboard struct {
	Tasks        TaskStats    `json:"tasks"`
	Expenses     ExpenseStats `json:"expenses"`
	Budget       Budget       `json:"budget"`
	Productivity int          `json:"productivityScore"`
	GeneratedAt  time.Time    `json:"generatedAt"`
}

// ComputeTaskStats counts tasks; CompletedToday uses now's calendar day.
func ComputeTaskStats(tasks []core.Task, now time.Time) TaskStats {
	today := core.TodayWindow(now)
	s := TaskStats{Total: len(tasks)}
	for _, t := range tasks {
		if !t.Completed {
			continue
		}
		s.Completed++
		if t.CompletedAt != nil && today.Contains(t.CompletedAt.In(now.Location())) {
			s.CompletedToday++
		}
	}
	if s.Total > 0 {
		s.CompletionRate = int(math.Round(float64(s.Completed) / float64(s.Total) * 100))
	}
	return s
}

// ComputeExpenseStats sums expenses overall, for the calendar month and for
// the rolling week.
func ComputeExpenseStats(expenses []core.Expense, now time.Time) ExpenseStats {
	month := core.MonthWindow(now)
	week := core.WeekWindow(now)

	s := ExpenseStats{
		Total:      core.SumAmounts(expenses, nil),
		Monthly:    core.SumAmounts(expenses, func(e core.Expense) bool { return month.ContainsDate(e.Date) }),
		Weekly:     core.SumAmounts(expenses, func(e core.Expense) bool { return week.ContainsDate(e.Date) }),
		ByCategory: core.ByCategory(expenses),
	}
	for _, c := range s.ByCategory {
		switch c.Category {
		case core.Food:
			s.Food = c.Amount
		case core.Transport:
			s.Transport = c.Amount
		}
	}
	avg := decimal.NewFromInt(s.Monthly.Cents).Div(decimal.NewFromInt(int64(now.Day()))).Round(0)
	s.AverageDaily = core.Money{Cents: avg.IntPart()}
	return s
}

// ComputeBudget compares monthly spend against limit.
func ComputeBudget(monthly, limit core.Money) Budget {
	b := Budget{
		Limit:     limit,
		Spent:     monthly,
		Remaining: limit.Sub(monthly),
	}
	if limit.Cents > 0 {
		pct := monthly.Decimal().Div(limit.Decimal()).Mul(hundred).Round(0)
		b.UsedPercent = int(pct.IntPart())
	}
	b.DisplayPercent = min(b.UsedPercent, 100)
	return b
}

// Adherence is the unspent fraction of the budget, 0 once the limit is exceeded.
func Adherence(monthly, limit core.Money) float64 {
	if limit.Cents <= 0 || monthly.Cents > limit.Cents {
		return 0
	}
	return math.Max(0, 1-float64(monthly.Cents)/float64(limit.Cents))
}

// ProductivityScore blends completion (60%) and budget adherence (40%) into
// a score in [0, 100].
func ProductivityScore(completed, total int, monthly, limit core.Money) int {
	completion := 0.0
	if total > 0 {
		completion = float64(completed) / float64(total)
	}
	score := math.Round(100 * (0.6*completion + 0.4*Adherence(monthly, limit)))
	return int(math.Min(100, math.Max(0, score)))
}

// Engine binds the budget limit and clock so callers can ask for a full dashboard.
type Engine struct {
	limit core.Money
	clock func() time.Time
	loc   *time.Location
}

type Option func(*Engine)

func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.clock = now
		}
	}
}

func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.loc = loc
		}
	}
}

// NewEngine returns an engine for limit; a non-positive limit uses DefaultBudget.
func NewEngine(limit core.Money, opts ...Option) *Engine {
	if limit.Cents <= 0 {
		limit = DefaultBudget
	}
	e := &Engine{limit: limit, clock: time.Now, loc: time.Local}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Limit() core.Money { return e.limit }

func (e *Engine) Now() time.Time { return e.clock().In(e.loc) }

func (e *Engine) TaskStats(tasks []core.Task) TaskStats {
	return ComputeTaskStats(tasks, e.Now())
}

func (e *Engine) ExpenseStats(expenses []core.Expense) ExpenseStats {
	return ComputeExpenseStats(expenses, e.Now())
}

func (e *Engine) Budget(expenses []core.Expense) Budget {
	return ComputeBudget(e.ExpenseStats(expenses).Monthly, e.limit)
}

func (e *Engine) ProductivityScore(tasks []core.Task, expenses []core.Expense) int {
	ts := e.TaskStats(tasks)
	return ProductivityScore(ts.Completed, ts.Total, e.ExpenseStats(expenses).Monthly, e.limit)
}

// Dashboard computes every metric against a single reading of the clock.
func (e *Engine) Dashboard(tasks []core.Task, expenses []core.Expense) Dashboard {
	now := e.Now()
	ts := ComputeTaskStats(tasks, now)
	es := ComputeExpenseStats(expenses, now)
	return Dashboard{
		Tasks:        ts,
		Expenses:     es,
		Budget:       ComputeBudget(es.Monthly, e.limit),
		Productivity: ProductivityScore(ts.Completed, ts.Total, es.Monthly, e.limit),
		GeneratedAt:  now,
	}
}
