// Package gate is a small policy registry used to authorize actions on
// resource types. A Policy is registered per resource type ("product",
// "shopping_list") and consulted through Authorize or Can.
//
// The subject type is generic so callers can authorize with whatever
// identity they carry (a bare client ID, a struct with a role, ...).
package gate

import (
	"context"
	"errors"
)

// Authorize failures. Callers tell them apart with errors.Is.
var (
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrNoPolicyDefined = errors.New("no policy defined for resource")
)

// Gate is the central authorization checkpoint.
// S is the subject type; its zero value means "anonymous".
type Gate[S comparable] struct {
	policies map[string]Policy[S]
}

// New creates an empty Gate ready to register policies.
func New[S comparable]() *Gate[S] {
	return &Gate[S]{policies: make(map[string]Policy[S])}
}

// Register adds a policy for a resource type, replacing any previous one.
func (g *Gate[S]) Register(resourceType string, p Policy[S]) {
	g.policies[resourceType] = p
}

// Authorize returns nil when subject may perform action on resource.
// ErrUnauthorized is returned for the anonymous subject, ErrForbidden when
// the policy denies and ErrNoPolicyDefined for unknown resource types.
func (g *Gate[S]) Authorize(ctx context.Context, subject S, action Action, resourceType string, resource any) error {
	var zero S
	if subject == zero {
		return ErrUnauthorized
	}
	p, ok := g.policies[resourceType]
	if !ok {
		return ErrNoPolicyDefined
	}
	if !p.Can(ctx, subject, action, resource) {
		return ErrForbidden
	}
	return nil
}

// Can is Authorize reduced to a bool.
func (g *Gate[S]) Can(ctx context.Context, subject S, action Action, resourceType string, resource any) bool {
	return g.Authorize(ctx, subject, action, resourceType, resource) == nil
}
