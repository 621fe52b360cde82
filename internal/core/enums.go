package core

import (
	"encoding/json"
	"strings"
)

const (
	Urgent Priority = "urgent"
	High   Priority = "high"
	Medium Priority = "medium"
	Low    Priority = "low"
)

const (
	TaskWork     TaskCategory = "work"
	TaskPersonal TaskCategory = "personal"
	TaskHealth   TaskCategory = "health"
	TaskLearning TaskCategory = "learning"
	TaskShopping TaskCategory = "shopping"
	TaskOther    TaskCategory = "other"
)

const (
	Food          ExpenseCategory = "food"
	Transport     ExpenseCategory = "transport"
	Shopping      ExpenseCategory = "shopping"
	Entertainment ExpenseCategory = "entertainment"
	Bills         ExpenseCategory = "bills"
	Health        ExpenseCategory = "health"
	Education     ExpenseCategory = "education"
	Travel        ExpenseCategory = "travel"
	OtherExpense  ExpenseCategory = "other"
)

const (
	Cash          PaymentMethod = "cash"
	CreditCard    PaymentMethod = "credit-card"
	DebitCard     PaymentMethod = "debit-card"
	BankTransfer  PaymentMethod = "bank-transfer"
	DigitalWallet PaymentMethod = "digital-wallet"
)

const (
	LightTheme Theme = "light"
	DarkTheme  Theme = "dark"
)

// All is the sentinel accepted by category and priority filters.
const All = "all"

type (
	Priority        string
	TaskCategory    string
	ExpenseCategory string
	PaymentMethod   string
	Theme           string
)

var (
	priorities        = []Priority{Urgent, High, Medium, Low}
	taskCategories    = []TaskCategory{TaskWork, TaskPersonal, TaskHealth, TaskLearning, TaskShopping, TaskOther}
	expenseCategories = []ExpenseCategory{Food, Transport, Shopping, Entertainment, Bills, Health, Education, Travel, OtherExpense}
	paymentMethods    = []PaymentMethod{Cash, CreditCard, DebitCard, BankTransfer, DigitalWallet}
	themes            = []Theme{LightTheme, DarkTheme}
)

// Priorities returns all priorities, most urgent first.
func Priorities() []Priority { return append([]Priority(nil), priorities...) }

func TaskCategories() []TaskCategory { return append([]TaskCategory(nil), taskCategories...) }

func ExpenseCategories() []ExpenseCategory {
	return append([]ExpenseCategory(nil), expenseCategories...)
}

func PaymentMethods() []PaymentMethod { return append([]PaymentMethod(nil), paymentMethods...) }

func parseEnum[T ~string](s string, values []T, def T, invalid error) (T, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		if def == "" {
			return "", invalid
		}
		return def, nil
	}
	for _, v := range values {
		if string(v) == s {
			return v, nil
		}
	}
	return "", invalid
}

func validEnum[T ~string](v T, values []T) bool {
	for _, known := range values {
		if v == known {
			return true
		}
	}
	return false
}

func unmarshalEnum[T ~string](b []byte, values []T, invalid error) (T, error) {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return "", invalid
	}
	for _, v := range values {
		if string(v) == s {
			return v, nil
		}
	}
	return "", invalid
}

func label(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// ParsePriority parses user input; blank input yields Medium.
func ParsePriority(s string) (Priority, error) {
	return parseEnum(s, priorities, Medium, ErrInvalidPriority)
}

func (p Priority) Valid() bool    { return validEnum(p, priorities) }
func (p Priority) String() string { return string(p) }
func (p Priority) Label() string  { return label(string(p)) }

// Rank orders priorities: urgent=0, high=1, medium=2, low=3.
func (p Priority) Rank() int {
	for i, v := range priorities {
		if v == p {
			return i
		}
	}
	return len(priorities)
}

func (p *Priority) UnmarshalJSON(b []byte) error {
	v, err := unmarshalEnum(b, priorities, ErrInvalidPriority)
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// ParseTaskCategory parses user input; blank input yields TaskOther.
func ParseTaskCategory(s string) (TaskCategory, error) {
	return parseEnum(s, taskCategories, TaskOther, ErrInvalidCategory)
}

func (c TaskCategory) Valid() bool    { return validEnum(c, taskCategories) }
func (c TaskCategory) String() string { return string(c) }
func (c TaskCategory) Label() string  { return label(string(c)) }

func (c *TaskCategory) UnmarshalJSON(b []byte) error {
	v, err := unmarshalEnum(b, taskCategories, ErrInvalidCategory)
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// ParseExpenseCategory parses user input; the category is required.
func ParseExpenseCategory(s string) (ExpenseCategory, error) {
	return parseEnum(s, expenseCategories, "", ErrInvalidCategory)
}

func (c ExpenseCategory) Valid() bool    { return validEnum(c, expenseCategories) }
func (c ExpenseCategory) String() string { return string(c) }
func (c ExpenseCategory) Label() string  { return label(string(c)) }

func (c *ExpenseCategory) UnmarshalJSON(b []byte) error {
	v, err := unmarshalEnum(b, expenseCategories, ErrInvalidCategory)
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// ParsePaymentMethod parses user input; blank input yields Cash.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	return parseEnum(s, paymentMethods, Cash, ErrInvalidPaymentMethod)
}

func (m PaymentMethod) Valid() bool    { return validEnum(m, paymentMethods) }
func (m PaymentMethod) String() string { return string(m) }
func (m PaymentMethod) Label() string  { return label(strings.ReplaceAll(string(m), "-", " ")) }

func (m *PaymentMethod) UnmarshalJSON(b []byte) error {
	v, err := unmarshalEnum(b, paymentMethods, ErrInvalidPaymentMethod)
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// ParseTheme parses a theme name; blank input yields LightTheme.
func ParseTheme(s string) (Theme, error) {
	return parseEnum(s, themes, LightTheme, ErrInvalidTheme)
}

func (t Theme) Valid() bool    { return validEnum(t, themes) }
func (t Theme) String() string { return string(t) }
