package service

import (
	"context"
	"fmt"

	"github.com/99minutos/identity-service/internal/core/domain"
	"github.com/99minutos/identity-service/internal/core/ports"
)

// AuthService implements login.
type AuthService struct {
	users  ports.UserService
	hasher ports.PasswordHasher
	tokens ports.TokenIssuer
}

func NewAuthService(users ports.UserService, hasher ports.PasswordHasher, tokens ports.TokenIssuer) *AuthService {
	return &AuthService{users: users, hasher: hasher, tokens: tokens}
}

// Login checks the credentials once and returns a signed access token
// together with the user it was issued for.
// An unknown username and a wrong password yield the same
// domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	if username == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return "", nil, err
	}
	if user == nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Sign(domain.Claims{
		Username:  user.Username,
		SubjectID: user.ID,
		Role:      user.Role,
	})
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return token, user, nil
}
