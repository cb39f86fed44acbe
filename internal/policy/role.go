package policy

import (
	"context"
	"slices"

	"github.com/diewo77/medicaments-api/gate"
	"github.com/diewo77/medicaments-api/internal/models"
)

// RolePolicy lets anyone read and restricts mutations to a set of roles.
// An empty set allows every authenticated subject.
type RolePolicy struct {
	writers []models.Role
}

func NewRolePolicy(writers ...models.Role) *RolePolicy {
	return &RolePolicy{writers: writers}
}

func (p *RolePolicy) Can(_ context.Context, s Subject, action gate.Action, _ any) bool {
	if action.ReadOnly() || len(p.writers) == 0 {
		return true
	}
	return slices.Contains(p.writers, s.Role)
}
