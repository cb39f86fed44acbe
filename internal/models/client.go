package models

import (
	"strings"
	"time"
)

// Role is the kind of organisation a client account belongs to.
type Role string

const (
	RoleHospital Role = "Hospital"
	RolePharmacy Role = "Pharmacy"
	RoleClient   Role = "Client"
)

// Roles lists every accepted role.
var Roles = []Role{RoleHospital, RolePharmacy, RoleClient}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// RoleNames returns Roles as strings, for validation messages.
func RoleNames() []string {
	names := make([]string, len(Roles))
	for i, r := range Roles {
		names[i] = string(r)
	}
	return names
}

// Client is a registered customer account (hospital, pharmacy or individual).
type Client struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Username     string    `gorm:"uniqueIndex;size:100;not null" json:"username"`
	Email        string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"` // never exposed in JSON
	Role         Role      `gorm:"size:20;not null;default:'Client'" json:"clientType"`
	Active       bool      `gorm:"not null" json:"isActive"`
}

// NormalizeEmail trims and lowercases an address the way it is stored.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
