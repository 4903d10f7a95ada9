package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/99minutos/identity-service/internal/core/domain"
	"github.com/99minutos/identity-service/internal/core/ports"
)

// UserService implements the account directory on top of a UserRepository.
type UserService struct {
	repo   ports.UserRepository
	hasher ports.PasswordHasher
}

func NewUserService(repo ports.UserRepository, hasher ports.PasswordHasher) *UserService {
	return &UserService{repo: repo, hasher: hasher}
}

// Create registers a new account. The username pre-check catches the common
// duplicate; concurrent creates are settled by the store's unique index, which
// the repository reports with the same domain.ErrUserExists.
func (s *UserService) Create(ctx context.Context, candidate domain.NewUser) (*domain.User, error) {
	if candidate.Username == "" || candidate.Email == "" || candidate.Password == "" {
		return nil, fmt.Errorf("%w: username, email and password are required", domain.ErrValidation)
	}

	role, err := domain.ParseRole(string(candidate.Role))
	if err != nil {
		return nil, err
	}
	status, err := domain.ParseStatus(string(candidate.Status))
	if err != nil {
		return nil, err
	}

	existing, err := s.FindByUsername(ctx, candidate.Username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrUserExists
	}

	hash, err := s.hasher.Hash(candidate.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	created, err := s.repo.Insert(ctx, &domain.User{
		Username:     candidate.Username,
		Email:        candidate.Email,
		PasswordHash: hash,
		FirstName:    candidate.FirstName,
		LastName:     candidate.LastName,
		Role:         role,
		Status:       status,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return created, nil
}

func (s *UserService) FindAll(ctx context.Context) ([]*domain.User, error) {
	users, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *UserService) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user %d: %w", id, err)
	}
	return user, nil
}

// FindByUsername returns (nil, nil) for an unknown username so that login can
// tell absence apart from a store failure.
func (s *UserService) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find user %q: %w", username, err)
	}
	return user, nil
}

// Update applies the fields set in patch. A supplied password is hashed before
// it reaches the store.
func (s *UserService) Update(ctx context.Context, id int64, patch domain.UserPatch) (*domain.User, error) {
	if _, err := s.FindByID(ctx, id); err != nil {
		return nil, err
	}

	changes := domain.UserChanges{
		Email:     patch.Email,
		FirstName: patch.FirstName,
		LastName:  patch.LastName,
	}
	if patch.Role != nil {
		if !patch.Role.Valid() {
			return nil, fmt.Errorf("%w: unknown role %q", domain.ErrValidation, *patch.Role)
		}
		changes.Role = patch.Role
	}
	if patch.Status != nil {
		if !patch.Status.Valid() {
			return nil, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, *patch.Status)
		}
		changes.Status = patch.Status
	}
	if patch.Password != nil {
		if *patch.Password == "" {
			return nil, fmt.Errorf("%w: password must not be empty", domain.ErrValidation)
		}
		hash, err := s.hasher.Hash(*patch.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		changes.PasswordHash = &hash
	}

	if !patch.Empty() {
		if err := s.repo.Update(ctx, id, changes); err != nil {
			switch {
			case errors.Is(err, domain.ErrUserExists):
				return nil, domain.ErrUserExists
			case errors.Is(err, domain.ErrUserNotFound):
				return nil, domain.ErrUserNotFound
			}
			return nil, fmt.Errorf("update user %d: %w", id, err)
		}
	}

	return s.FindByID(ctx, id)
}

func (s *UserService) Remove(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("delete user %d: %w", id, err)
	}
	return user, nil
}
