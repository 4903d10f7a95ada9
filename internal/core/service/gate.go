package service

import (
	"github.com/99minutos/identity-service/internal/core/domain"
	"github.com/99minutos/identity-service/internal/core/ports"
)

// Gate decides whether a bearer token may perform a gated operation.
//
// A request moves from unauthenticated to token-present once a token is
// supplied, then ends either authorized or rejected. Rejection short-circuits:
// the caller must not reach the directory.
type Gate struct {
	tokens ports.TokenIssuer
	policy domain.Policy
}

// NewGate returns a Gate enforcing policy. A nil policy falls back to
// domain.DefaultPolicy.
func NewGate(tokens ports.TokenIssuer, policy domain.Policy) *Gate {
	if policy == nil {
		policy = domain.DefaultPolicy()
	}
	return &Gate{tokens: tokens, policy: policy}
}

// Authenticate verifies the token. Missing or invalid tokens yield
// domain.ErrUnauthorized.
func (g *Gate) Authenticate(token string) (*domain.Claims, error) {
	if token == "" {
		return nil, domain.ErrUnauthorized
	}
	claims, ok := g.tokens.Verify(token)
	if !ok || claims == nil {
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}

// Permit checks the claims' role against the operation's allowed set.
func (g *Gate) Permit(claims *domain.Claims, op domain.Operation) error {
	if claims == nil {
		return domain.ErrUnauthorized
	}
	if !g.policy.Allows(op, claims.Role) {
		return domain.ErrForbidden
	}
	return nil
}

// Authorize runs Authenticate then Permit.
func (g *Gate) Authorize(token string, op domain.Operation) (*domain.Claims, error) {
	claims, err := g.Authenticate(token)
	if err != nil {
		return nil, err
	}
	if err := g.Permit(claims, op); err != nil {
		return nil, err
	}
	return claims, nil
}
