// Package session carries the identity of the current viewer through a
// context.Context. A context without an identity is anonymous.
package session

import "context"

type contextKey struct{}

// Identity is the authenticated viewer.
type Identity struct {
	UserID string `json:"id"`
	Name   string `json:"name,omitempty"`
	Image  string `json:"image,omitempty"`
}

// WithIdentity returns a copy of ctx that carries id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// Anonymous returns a copy of ctx without an identity.
func Anonymous(ctx context.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, nil)
}

// FromContext returns the identity stored in ctx.
func FromContext(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}
	id, ok := ctx.Value(contextKey{}).(Identity)
	if !ok || id.UserID == "" {
		return Identity{}, false
	}
	return id, true
}

// UserID returns the viewer's id, or "" when ctx is anonymous.
func UserID(ctx context.Context) string {
	id, _ := FromContext(ctx)
	return id.UserID
}
