package ports

import (
	"context"

	"github.com/99minutos/identity-service/internal/core/domain"
)

// AuthService authenticates credentials and issues access tokens.
type AuthService interface {
	// Login returns the signed token and the authenticated user.
	Login(ctx context.Context, username, password string) (string, *domain.User, error)
}
