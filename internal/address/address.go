// Package address defines the optional address-verification collaborator.
// Implementations can call external APIs (Google, USPS, Lob, EasyPost);
// the checkout fails open when verification is unavailable.
package address

import "context"

// Verifier checks whether a shipping address looks deliverable and may
// propose a corrected version.
type Verifier interface {
	// Verify checks the address. Even when Valid is false, Suggested may
	// contain a correction the user can accept instead of the original.
	Verify(ctx context.Context, addr Address) (*Result, error)
}

// Address is the subset of shipping info that verification looks at.
type Address struct {
	Line1      string
	Line2      string
	City       string
	State      string
	PostalCode string
	Country    string
}

// Result is the outcome of address verification.
type Result struct {
	Valid     bool
	Suggested *Address
}
