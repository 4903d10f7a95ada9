package handler

import (
	"strings"
	"time"

	"github.com/99minutos/identity-service/internal/core/domain"
)

// userResponse is the public view of an account. It never carries the
// password hash.
type userResponse struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      string(u.Role),
		Status:    string(u.Status),
		CreatedAt: u.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: u.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func toUserResponses(users []*domain.User) []userResponse {
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return out
}

// --- Request → domain ---

func toNewUser(req createUserRequest) domain.NewUser {
	return domain.NewUser{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      domain.Role(req.Role),
		Status:    domain.Status(req.Status),
	}
}

func toUserPatch(req updateUserRequest) domain.UserPatch {
	patch := domain.UserPatch{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}
	if req.Role != nil {
		r := domain.Role(strings.ToUpper(strings.TrimSpace(*req.Role)))
		patch.Role = &r
	}
	if req.Status != nil {
		s := domain.Status(strings.ToUpper(strings.TrimSpace(*req.Status)))
		patch.Status = &s
	}
	return patch
}
