package address

import "context"

// MockVerifier is a configurable verifier for tests.
type MockVerifier struct {
	// VerifyFunc allows customizing verification behavior.
	VerifyFunc func(ctx context.Context, addr Address) (*Result, error)

	// Calls records every address passed to Verify.
	Calls []Address
}

// Verify records the call and delegates to VerifyFunc, defaulting to valid.
func (m *MockVerifier) Verify(ctx context.Context, addr Address) (*Result, error) {
	m.Calls = append(m.Calls, addr)

	if m.VerifyFunc != nil {
		return m.VerifyFunc(ctx, addr)
	}
	return &Result{Valid: true}, nil
}
