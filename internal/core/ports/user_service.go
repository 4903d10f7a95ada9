package ports

import (
	"context"

	"github.com/99minutos/identity-service/internal/core/domain"
)

// UserService is the account directory used by the HTTP layer and the CLI.
type UserService interface {
	Create(ctx context.Context, candidate domain.NewUser) (*domain.User, error)
	FindAll(ctx context.Context) ([]*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	// FindByUsername returns (nil, nil) when the user does not exist.
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	Update(ctx context.Context, id int64, patch domain.UserPatch) (*domain.User, error)
	// Remove deletes the account and returns the record as it was.
	Remove(ctx context.Context, id int64) (*domain.User, error)
}
