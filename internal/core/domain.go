package core

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar date format used for persistence and input.
const DateLayout = "2006-01-02"

type (
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	Task struct {
		ID          string       `json:"id"`
		Title       string       `json:"title"`
		Category    TaskCategory `json:"category"`
		Priority    Priority     `json:"priority"`
		DueDate     *Date        `json:"dueDate"`
		Tags        []string     `json:"tags"`
		Completed   bool         `json:"completed"`
		CreatedAt   time.Time    `json:"createdAt"`
		CompletedAt *time.Time   `json:"completedAt"`
	}

	Expense struct {
		ID            string          `json:"id"`
		Description   string          `json:"description"`
		Amount        Money           `json:"amount"`
		Category      ExpenseCategory `json:"category"`
		Date          Date            `json:"date"`
		PaymentMethod PaymentMethod   `json:"paymentMethod"`
		Notes         string          `json:"notes"`
		CreatedAt     time.Time       `json:"createdAt"`
	}
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar date of t as seen in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// In returns midnight of the calendar date in loc.
func (d Date) In(loc *time.Location) time.Time {
	y, m, day := d.Time.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, loc)
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date: %w", err)
	}
	// Older exports may carry a full timestamp.
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Validate checks the task invariants.
func (t Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return &ValidationError{Field: "title", Err: ErrEmptyTitle}
	}
	if !t.Category.Valid() {
		return &ValidationError{Field: "category", Err: ErrInvalidCategory}
	}
	if !t.Priority.Valid() {
		return &ValidationError{Field: "priority", Err: ErrInvalidPriority}
	}
	if t.Completed != (t.CompletedAt != nil) {
		return &ValidationError{Field: "completedAt", Err: ErrInconsistentCompletion}
	}
	return nil
}

// Clone returns a deep copy so callers never share slices or pointers with the store.
func (t Task) Clone() Task {
	c := t
	c.Tags = append(make([]string, 0, len(t.Tags)), t.Tags...)
	if t.DueDate != nil {
		d := *t.DueDate
		c.DueDate = &d
	}
	if t.CompletedAt != nil {
		at := *t.CompletedAt
		c.CompletedAt = &at
	}
	return c
}

// IsOverdue reports whether the task has a due date before now and is still open.
func (t Task) IsOverdue(now time.Time) bool {
	if t.Completed || t.DueDate == nil {
		return false
	}
	return t.DueDate.In(now.Location()).Before(now)
}

func (e Expense) Validate() error {
	if strings.TrimSpace(e.Description) == "" {
		return &ValidationError{Field: "description", Err: ErrEmptyDescription}
	}
	if err := e.Amount.Validate(); err != nil {
		return &ValidationError{Field: "amount", Err: err}
	}
	if !e.Category.Valid() {
		return &ValidationError{Field: "category", Err: ErrInvalidCategory}
	}
	if !e.PaymentMethod.Valid() {
		return &ValidationError{Field: "paymentMethod", Err: ErrInvalidPaymentMethod}
	}
	if err := e.Date.Validate(); err != nil {
		return &ValidationError{Field: "date", Err: err}
	}
	return nil
}
