package gate

import "context"

// Action is the operation a subject attempts on a resource.
type Action string

const (
	ActionView   Action = "view"
	ActionList   Action = "list"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// ReadOnly reports whether the action does not mutate anything.
func (a Action) ReadOnly() bool {
	return a == ActionView || a == ActionList
}

// Policy defines authorization rules for one resource type.
// For list/create checks resource may be nil.
type Policy[S any] interface {
	Can(ctx context.Context, subject S, action Action, resource any) bool
}

// PolicyFunc adapts a plain function to Policy.
type PolicyFunc[S any] func(ctx context.Context, subject S, action Action, resource any) bool

// Can calls f.
func (f PolicyFunc[S]) Can(ctx context.Context, subject S, action Action, resource any) bool {
	return f(ctx, subject, action, resource)
}
