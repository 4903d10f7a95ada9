package domain

import "errors"

var (
	ErrUserExists   = errors.New("user already exists")
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidCredentials is returned for both an unknown username and a
	// wrong password so callers cannot tell which one failed.
	ErrInvalidCredentials = errors.New("invalid username or password")

	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("access forbidden")
	ErrValidation   = errors.New("validation failed")
)
