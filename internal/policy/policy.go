// Package policy holds the authorization rules of the API, registered on a
// gate.Gate keyed by resource type.
package policy

import (
	"github.com/diewo77/medicaments-api/auth"
	"github.com/diewo77/medicaments-api/gate"
	"github.com/diewo77/medicaments-api/internal/models"
)

// Resource types known to the gate.
const (
	ResourceProduct      = "product"
	ResourceShoppingList = "shopping_list"
)

// Subject is the caller an authorization decision is made for.
type Subject struct {
	ClientID uint
	Role     models.Role
}

// SubjectFrom converts a token identity.
func SubjectFrom(id auth.Identity) Subject {
	return Subject{ClientID: id.ClientID, Role: models.Role(id.Role)}
}

// Gate is the gate type used across the application.
type Gate = gate.Gate[Subject]

// NewGate registers the application policies. catalogWriters restricts
// product mutations; leave it empty to let any client edit the catalog.
func NewGate(catalogWriters []string) *Gate {
	roles := make([]models.Role, 0, len(catalogWriters))
	for _, r := range catalogWriters {
		roles = append(roles, models.Role(r))
	}
	g := gate.New[Subject]()
	g.Register(ResourceProduct, NewRolePolicy(roles...))
	g.Register(ResourceShoppingList, NewOwnershipPolicy())
	return g
}
