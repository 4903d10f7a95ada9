package ports

import "github.com/99minutos/identity-service/internal/core/domain"

// PasswordHasher performs one-way password hashing.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	// Verify never fails loudly: a malformed hash simply does not match.
	Verify(plaintext, hash string) bool
}

// TokenIssuer signs claims into bearer tokens and checks them back.
type TokenIssuer interface {
	Sign(claims domain.Claims) (string, error)
	// Verify returns false for tampered, expired or malformed tokens.
	Verify(token string) (*domain.Claims, bool)
}
