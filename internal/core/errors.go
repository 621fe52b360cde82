package core

import (
	"errors"
	"fmt"
)

// Category sentinels. Match with errors.Is.
var (
	ErrValidation     = errors.New("validation failed")
	ErrNotFound       = errors.New("not found")
	ErrStorage        = errors.New("storage failure")
	ErrNotImplemented = errors.New("not implemented yet")
)

var (
	ErrEmptyTitle             = errors.New("title is required")
	ErrEmptyDescription       = errors.New("description is required")
	ErrInvalidAmount          = errors.New("invalid amount")
	ErrInvalidCategory        = errors.New("invalid category")
	ErrInvalidPriority        = errors.New("invalid priority")
	ErrInvalidPaymentMethod   = errors.New("invalid payment method")
	ErrInvalidDate            = errors.New("invalid date")
	ErrInvalidFilter          = errors.New("invalid filter")
	ErrInvalidTheme           = errors.New("invalid theme")
	ErrInconsistentCompletion = errors.New("completedAt must be set exactly when completed")
)

// ValidationError reports a rejected field. The collection is never modified
// when one is returned.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NotFoundError is returned when an id does not match any record.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// StorageError wraps a persistence read or write failure.
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorage }

// UserMessage renders err the way the presentation layer shows it in a banner.
func UserMessage(err error) string {
	var ve *ValidationError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &ve):
		switch ve.Field {
		case "title":
			return "Task description is required"
		case "amount":
			return "Please enter a valid amount"
		case "description", "category":
			return "Please fill in all required fields"
		}
		return "Invalid " + ve.Field + ": " + ve.Err.Error()
	case errors.Is(err, ErrNotImplemented):
		return "This feature is coming soon!"
	case errors.Is(err, ErrNotFound):
		return "The selected item no longer exists"
	}
	return err.Error()
}
