package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// TaskInput carries raw form values for a new task.
type TaskInput struct {
	Title    string `json:"title" validate:"required"`
	Category string `json:"category"`
	Priority string `json:"priority"`
	DueDate  string `json:"dueDate"`
	Tags     string `json:"tags"`
}

// ExpenseInput carries raw form values for a new expense.
type ExpenseInput struct {
	Description   string `json:"description" validate:"required"`
	Amount        string `json:"amount" validate:"required"`
	Category      string `json:"category" validate:"required"`
	Date          string `json:"date"`
	PaymentMethod string `json:"paymentMethod"`
	Notes         string `json:"notes"`
}

var requiredErrs = map[string]error{
	"title":       ErrEmptyTitle,
	"description": ErrEmptyDescription,
	"amount":      ErrInvalidAmount,
	"category":    ErrInvalidCategory,
}

// checkStruct runs the struct tags and converts the first failure to a ValidationError.
func checkStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &ValidationError{Err: err}
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		if sentinel, ok := requiredErrs[fe.Field()]; ok {
			return &ValidationError{Field: fe.Field(), Err: sentinel}
		}
		return &ValidationError{Field: fe.Field(), Err: errors.New("is required")}
	}
	return &ValidationError{Field: fe.Field(), Err: err}
}

// UnmarshalJSON accepts tags as a comma-separated string or an array of labels.
func (in *TaskInput) UnmarshalJSON(data []byte) error {
	type plain TaskInput
	aux := struct {
		*plain
		Tags json.RawMessage `json:"tags"`
	}{plain: (*plain)(in)}
	if err := decodeStrict(data, &aux); err != nil {
		return err
	}
	tags, err := tagsFromJSON(aux.Tags)
	if err != nil {
		return err
	}
	in.Tags = tags
	return nil
}

// UnmarshalJSON accepts the amount as a JSON number or a string.
func (in *ExpenseInput) UnmarshalJSON(data []byte) error {
	type plain ExpenseInput
	aux := struct {
		*plain
		Amount json.RawMessage `json:"amount"`
	}{plain: (*plain)(in)}
	if err := decodeStrict(data, &aux); err != nil {
		return err
	}
	amount, err := amountFromJSON(aux.Amount)
	if err != nil {
		return err
	}
	in.Amount = amount
	return nil
}

func decodeStrict(data []byte, dst any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func isNull(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

// amountFromJSON keeps the literal text of a number so ParseAmount sees
// exactly what was sent.
func amountFromJSON(raw json.RawMessage) (string, error) {
	if isNull(raw) {
		return "", nil
	}
	raw = bytes.TrimSpace(raw)
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", fmt.Errorf("amount: %w", err)
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("amount: %w", err)
	}
	return n.String(), nil
}

func tagsFromJSON(raw json.RawMessage) (string, error) {
	if isNull(raw) {
		return "", nil
	}
	raw = bytes.TrimSpace(raw)
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", fmt.Errorf("tags: %w", err)
		}
		return s, nil
	case '[':
		var labels []string
		if err := json.Unmarshal(raw, &labels); err != nil {
			return "", fmt.Errorf("tags: %w", err)
		}
		return strings.Join(labels, ","), nil
	}
	return "", fmt.Errorf("tags: expected a string or an array of strings")
}

// ParseTags splits comma-separated input, trimming each label and dropping empties.
func ParseTags(s string) []string {
	tags := []string{}
	for _, part := range strings.Split(s, ",") {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// Normalize trims every field in place.
func (in *TaskInput) Normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Category = strings.TrimSpace(in.Category)
	in.Priority = strings.TrimSpace(in.Priority)
	in.DueDate = strings.TrimSpace(in.DueDate)
}

// Build validates the input and produces a new open task.
func (in TaskInput) Build(id string, now time.Time) (Task, error) {
	in.Normalize()
	if err := checkStruct(in); err != nil {
		return Task{}, err
	}
	category, err := ParseTaskCategory(in.Category)
	if err != nil {
		return Task{}, &ValidationError{Field: "category", Err: err}
	}
	priority, err := ParsePriority(in.Priority)
	if err != nil {
		return Task{}, &ValidationError{Field: "priority", Err: err}
	}
	var due *Date
	if in.DueDate != "" {
		d, err := ParseDate(in.DueDate)
		if err != nil {
			return Task{}, &ValidationError{Field: "dueDate", Err: err}
		}
		due = &d
	}
	return Task{
		ID:        id,
		Title:     in.Title,
		Category:  category,
		Priority:  priority,
		DueDate:   due,
		Tags:      ParseTags(in.Tags),
		CreatedAt: now,
	}, nil
}

func (in *ExpenseInput) Normalize() {
	in.Description = strings.TrimSpace(in.Description)
	in.Amount = strings.TrimSpace(in.Amount)
	in.Category = strings.TrimSpace(in.Category)
	in.Date = strings.TrimSpace(in.Date)
	in.PaymentMethod = strings.TrimSpace(in.PaymentMethod)
	in.Notes = strings.TrimSpace(in.Notes)
}

// Build validates the input and produces a new expense. A blank date
// defaults to the calendar day of now.
func (in ExpenseInput) Build(id string, now time.Time) (Expense, error) {
	in.Normalize()
	if err := checkStruct(in); err != nil {
		return Expense{}, err
	}
	amount, err := ParseAmount(in.Amount)
	if err != nil {
		return Expense{}, &ValidationError{Field: "amount", Err: err}
	}
	category, err := ParseExpenseCategory(in.Category)
	if err != nil {
		return Expense{}, &ValidationError{Field: "category", Err: err}
	}
	method, err := ParsePaymentMethod(in.PaymentMethod)
	if err != nil {
		return Expense{}, &ValidationError{Field: "paymentMethod", Err: err}
	}
	date := DateOf(now)
	if in.Date != "" {
		if date, err = ParseDate(in.Date); err != nil {
			return Expense{}, &ValidationError{Field: "date", Err: err}
		}
	}
	return Expense{
		ID:            id,
		Description:   in.Description,
		Amount:        amount,
		Category:      category,
		Date:          date,
		PaymentMethod: method,
		Notes:         in.Notes,
		CreatedAt:     now,
	}, nil
}
