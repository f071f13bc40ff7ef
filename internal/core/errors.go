package core

import (
	"errors"
	"fmt"
)

// Sentinel error kinds. Every ledger failure wraps exactly one of them,
// so callers branch with errors.Is.
var (
	ErrValidation        = errors.New("validation failed")
	ErrDuplicate         = errors.New("duplicate item")
	ErrNotFound          = errors.New("not found")
	ErrConstraint        = errors.New("constraint violated")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// Error carries the offending field and value alongside a message fit for display.
type Error struct {
	Kind    error
	Field   string
	Value   any
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func newError(kind error, field string, value any, format string, args ...any) error {
	return &Error{Kind: kind, Field: field, Value: value, Message: fmt.Sprintf(format, args...)}
}

func validationError(field string, value any, format string, args ...any) error {
	return newError(ErrValidation, field, value, format, args...)
}

func notFoundError(field string, value any, format string, args ...any) error {
	return newError(ErrNotFound, field, value, format, args...)
}

// KindOf returns a stable code for err: VALIDATION, DUPLICATE, NOT_FOUND,
// CONSTRAINT, INSUFFICIENT_STOCK, or INTERNAL for anything else.
func KindOf(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return "VALIDATION"
	case errors.Is(err, ErrDuplicate):
		return "DUPLICATE"
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrConstraint):
		return "CONSTRAINT"
	case errors.Is(err, ErrInsufficientStock):
		return "INSUFFICIENT_STOCK"
	}
	return "INTERNAL"
}

// FieldOf returns the offending field recorded on a ledger error, or "".
func FieldOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Field
	}
	return ""
}
