package policy

import (
	"context"

	"github.com/diewo77/medicaments-api/gate"
)

// Ownable is implemented by resources that belong to a single client.
type Ownable interface {
	GetClientID() uint
}

// OwnershipPolicy allows a subject to act only on resources it owns.
type OwnershipPolicy struct{}

// NewOwnershipPolicy creates a new ownership policy.
func NewOwnershipPolicy() *OwnershipPolicy {
	return &OwnershipPolicy{}
}

// Can checks if the subject owns the resource.
// For list/create actions (resource is nil) it always returns true: the
// caller scopes those to the subject itself.
func (p *OwnershipPolicy) Can(_ context.Context, s Subject, _ gate.Action, resource any) bool {
	if resource == nil {
		return true
	}
	// resources without an owner are never accessible through this policy
	ownable, ok := resource.(Ownable)
	if !ok {
		return false
	}
	return ownable.GetClientID() == s.ClientID
}
