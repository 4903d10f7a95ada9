package domain

import (
	"fmt"
	"strings"
	"time"
)

// Role is the privilege level carried by a user and embedded in its tokens.
type Role string

const (
	RoleSuperAdmin Role = "SUPER_ADMIN"
	RoleAdmin      Role = "ADMIN"
	RoleUser       Role = "USER"
)

// Status tells whether an account is in use.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleUser:
		return true
	}
	return false
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	return s == StatusActive || s == StatusInactive
}

// ParseRole converts raw input into a Role. Empty input yields RoleUser.
func ParseRole(s string) (Role, error) {
	if strings.TrimSpace(s) == "" {
		return RoleUser, nil
	}
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("%w: unknown role %q", ErrValidation, s)
	}
	return r, nil
}

// ParseStatus converts raw input into a Status. Empty input yields StatusActive.
func ParseStatus(s string) (Status, error) {
	if strings.TrimSpace(s) == "" {
		return StatusActive, nil
	}
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("%w: unknown status %q", ErrValidation, s)
	}
	return st, nil
}

// User models an account stored in the directory.
// PasswordHash never leaves the process: it is excluded from JSON.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Role         Role      `json:"role"`
	Status       Status    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewUser is a registration candidate. Password is plaintext and must not
// outlive the create call.
type NewUser struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      Role
	Status    Status
}

// UserPatch carries a partial update. Nil fields are left untouched.
// There is no Username field: usernames cannot be renamed.
type UserPatch struct {
	Email     *string
	Password  *string
	FirstName *string
	LastName  *string
	Role      *Role
	Status    *Status
}

// Empty reports whether the patch sets no field at all.
func (p UserPatch) Empty() bool {
	return p.Email == nil && p.Password == nil && p.FirstName == nil &&
		p.LastName == nil && p.Role == nil && p.Status == nil
}

// UserChanges is the store-facing form of a patch: the password, when
// present, is already hashed.
type UserChanges struct {
	Email        *string
	PasswordHash *string
	FirstName    *string
	LastName     *string
	Role         *Role
	Status       *Status
}
