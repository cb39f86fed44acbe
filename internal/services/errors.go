package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"

	"github.com/diewo77/medicaments-api/validation"
)

// Error kinds. Every service operation fails with an error matching exactly
// one of these under errors.Is.
var (
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("conflict")
	ErrAuth       = errors.New("invalid email or password")
	ErrNotFound   = errors.New("not found")
	ErrStorage    = errors.New("storage failure")
)

// ErrInvalidTransition is returned when a shopping list status change is not
// allowed from the current status.
var ErrInvalidTransition = fmt.Errorf("%w: status transition not allowed", ErrConflict)

// ErrInvalidSession is returned when an operation needs a caller identity
// and none, or an unusable one, was supplied. It matches ErrAuth.
var ErrInvalidSession error = &kindError{msg: "missing or invalid session token", kind: ErrAuth}

// kindError is a sentinel with its own message that still matches kind
// under errors.Is.
type kindError struct {
	msg  string
	kind error
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

// ValidationError carries the per-field violations of a rejected input.
type ValidationError struct {
	Violations validation.Violations
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Violations))
	for f, code := range e.Violations {
		fields = append(fields, f+"="+code)
	}
	sort.Strings(fields)
	return "validation failed: " + strings.Join(fields, ", ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalid(v validation.Violations) error {
	return &ValidationError{Violations: v}
}

func invalidField(field, code string) error {
	return invalid(validation.Violations{field: code})
}

// storageErr wraps a persistence failure. Record-not-found is reported as
// ErrNotFound and unique violations as ErrConflict.
func storageErr(op string, err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case isDuplicate(err):
		return fmt.Errorf("%s: %w", op, ErrConflict)
	default:
		return fmt.Errorf("%s: %w: %v", op, ErrStorage, err)
	}
}

func isDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique constraint")
}
