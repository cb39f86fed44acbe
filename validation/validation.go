// Package validation collects field-level input errors into a Violations map
// keyed by field name, with short machine-readable codes as values.
package validation

import (
	"net/mail"
	"slices"
	"strings"
)

type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Add records code for field unless the field already has a violation.
func (v Violations) Add(field, code string) {
	if _, ok := v[field]; !ok {
		v[field] = code
	}
}

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v.Add(field, "required")
	}
}

func PositiveInt(field string, val int, v Violations) {
	if val <= 0 {
		v.Add(field, "must_be_positive")
	}
}

func NonNegativeFloat(field string, val float64, v Violations) {
	if val < 0 {
		v.Add(field, "must_not_be_negative")
	}
}

func NonNegativeInt(field string, val int, v Violations) {
	if val < 0 {
		v.Add(field, "must_not_be_negative")
	}
}

// Email checks for a bare address (no display name). Empty values are left
// to Required.
func Email(field, value string, v Violations) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value {
		v.Add(field, "invalid_email")
	}
}

// OneOf checks that value belongs to allowed. Empty values are left to Required.
func OneOf(field, value string, allowed []string, v Violations) {
	if value == "" {
		return
	}
	if !slices.Contains(allowed, value) {
		v.Add(field, "invalid_value")
	}
}
