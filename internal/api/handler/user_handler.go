package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/identity-service/internal/api/metrics"
	"github.com/99minutos/identity-service/internal/core/domain"
	"github.com/99minutos/identity-service/internal/core/ports"
)

// UserHandler serves the role-gated user management routes. Authorization
// happens in middleware before any method here runs.
type UserHandler struct {
	users ports.UserService
	audit ports.AuditRecorder
}

func NewUserHandler(users ports.UserService, audit ports.AuditRecorder) *UserHandler {
	return &UserHandler{users: users, audit: audit}
}

type updateUserRequest struct {
	// Username is accepted only to reject it with a clear message.
	Username  *string `json:"username,omitempty"`
	Email     *string `json:"email,omitempty" validate:"omitempty,email"`
	Password  *string `json:"password,omitempty" validate:"omitempty,min=1"`
	FirstName *string `json:"first_name,omitempty" validate:"omitempty,max=128"`
	LastName  *string `json:"last_name,omitempty" validate:"omitempty,max=128"`
	Role      *string `json:"role,omitempty" validate:"omitempty,role"`
	Status    *string `json:"status,omitempty" validate:"omitempty,status"`
}

// Create handles POST /users.
//
// @Summary      Create a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createUserRequest  true  "User details"
// @Success      201   {object}  userResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /users [post]
func (h *UserHandler) Create(c echo.Context) error {
	if _, err := ctxClaims(c); err != nil {
		return err
	}

	var req createUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.users.Create(c.Request().Context(), toNewUser(req))
	if err != nil {
		return err
	}

	metrics.UsersCreatedTotal.WithLabelValues(string(user.Role)).Inc()
	audit(c, h.audit, domain.AuditEvent{
		Type:      domain.AuditUserCreated,
		Username:  user.Username,
		SubjectID: user.ID,
		Success:   true,
	})
	return c.JSON(http.StatusCreated, toUserResponse(user))
}

// List handles GET /users.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   userResponse
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /users [get]
func (h *UserHandler) List(c echo.Context) error {
	if _, err := ctxClaims(c); err != nil {
		return err
	}

	users, err := h.users.FindAll(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponses(users))
}

// Get handles GET /users/:id.
//
// @Summary      Get a user by id
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "User id"
// @Success      200  {object}  userResponse
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /users/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	if _, err := ctxClaims(c); err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}

	user, err := h.users.FindByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// Update handles PATCH /users/:id. Only supplied fields change.
//
// @Summary      Update a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                true  "User id"
// @Param        body  body      updateUserRequest  true  "Fields to change"
// @Success      200   {object}  userResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /users/{id} [patch]
func (h *UserHandler) Update(c echo.Context) error {
	if _, err := ctxClaims(c); err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req updateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if req.Username != nil {
		return fmt.Errorf("%w: username cannot be changed", domain.ErrValidation)
	}

	user, err := h.users.Update(c.Request().Context(), id, toUserPatch(req))
	if err != nil {
		return err
	}

	audit(c, h.audit, domain.AuditEvent{
		Type:      domain.AuditUserUpdated,
		Username:  user.Username,
		SubjectID: user.ID,
		Success:   true,
	})
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// Delete handles DELETE /users/:id. Deletion is permanent.
//
// @Summary      Delete a user
// @Tags         users
// @Security     BearerAuth
// @Param        id   path      int  true  "User id"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /users/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	if _, err := ctxClaims(c); err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}

	removed, err := h.users.Remove(c.Request().Context(), id)
	if err != nil {
		return err
	}

	metrics.UsersDeletedTotal.Inc()
	audit(c, h.audit, domain.AuditEvent{
		Type:      domain.AuditUserDeleted,
		Username:  removed.Username,
		SubjectID: removed.ID,
		Success:   true,
	})
	return c.NoContent(http.StatusNoContent)
}
