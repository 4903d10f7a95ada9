package ports

import (
	"context"

	"github.com/99minutos/identity-service/internal/core/domain"
)

// UserRepository is the durable store of user records.
//
// Implementations assign ID, CreatedAt and UpdatedAt themselves and enforce
// username/email uniqueness, reporting a violation as domain.ErrUserExists.
type UserRepository interface {
	// FindByID returns domain.ErrUserNotFound when no record has the id.
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	// FindByUsername returns domain.ErrUserNotFound when no record matches.
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindAll(ctx context.Context) ([]*domain.User, error)
	Insert(ctx context.Context, user *domain.User) (*domain.User, error)
	// Update applies the non-nil fields of changes and bumps UpdatedAt.
	Update(ctx context.Context, id int64, changes domain.UserChanges) error
	Delete(ctx context.Context, id int64) error
}
