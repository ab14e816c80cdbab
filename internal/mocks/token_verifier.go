package mocks

import (
	"context"

	"github.com/taskhive/taskhive-api/internal/service/auth"
)

// MockTokenVerifier implements auth.TokenVerifier for testing.
type MockTokenVerifier struct {
	// VerifyTokenFn allows test cases to mock the VerifyToken behavior
	VerifyTokenFn func(ctx context.Context, token string) (*auth.TokenClaims, error)

	// Default values used when VerifyTokenFn isn't defined
	Claims *auth.TokenClaims
	Err    error

	// VerifyCalls counts how many times VerifyToken was invoked
	VerifyCalls int
}

// VerifyToken implements the auth.TokenVerifier interface.
func (m *MockTokenVerifier) VerifyToken(ctx context.Context, token string) (*auth.TokenClaims, error) {
	m.VerifyCalls++
	if m.VerifyTokenFn != nil {
		return m.VerifyTokenFn(ctx, token)
	}
	return m.Claims, m.Err
}
