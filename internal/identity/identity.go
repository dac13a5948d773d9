// Package identity exposes the authenticated user to the storefront core.
// The core only reads from it; account management belongs to the external
// auth provider.
package identity

import "context"

// User is the authenticated identity, if any.
type User struct {
	ID    string
	Email string
}

// Provider resolves the current user for a request context.
type Provider interface {
	// Current returns the authenticated user, or nil for guests.
	Current(ctx context.Context) *User
}

// Guest is a Provider that never authenticates anyone.
type Guest struct{}

// Current always returns nil.
func (Guest) Current(context.Context) *User { return nil }

// Static is a Provider pinned to one user, for development and tests.
type Static struct {
	User User
}

// Current returns the pinned user.
func (s Static) Current(context.Context) *User {
	u := s.User
	return &u
}
