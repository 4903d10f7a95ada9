package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/identity-service/internal/api/metrics"
	"github.com/99minutos/identity-service/internal/core/domain"
	"github.com/99minutos/identity-service/internal/core/ports"
)

// AuthHandler serves the anonymous routes: registration and login.
type AuthHandler struct {
	authService ports.AuthService
	users       ports.UserService
	audit       ports.AuditRecorder
}

func NewAuthHandler(authService ports.AuthService, users ports.UserService, audit ports.AuditRecorder) *AuthHandler {
	return &AuthHandler{authService: authService, users: users, audit: audit}
}

type createUserRequest struct {
	Username  string `json:"username" validate:"required,max=64"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=1"`
	FirstName string `json:"first_name" validate:"max=128"`
	LastName  string `json:"last_name" validate:"max=128"`
	Role      string `json:"role" validate:"omitempty,role"`
	Status    string `json:"status" validate:"omitempty,status"`
}

// loginRequest is not validated: empty credentials are rejected by the
// service with the same error as wrong ones.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
}

// Register creates a new user account.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      createUserRequest  true  "User registration details"
// @Success      201   {object}  userResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
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

// Login authenticates a user and returns a signed access token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	token, user, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			metrics.LoginAttemptsTotal.WithLabelValues("invalid_credentials").Inc()
			audit(c, h.audit, domain.AuditEvent{Type: domain.AuditLoginFailed, Username: req.Username})
		} else {
			metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		}
		return err
	}

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	audit(c, h.audit, domain.AuditEvent{
		Type:      domain.AuditLoginSucceeded,
		Username:  user.Username,
		SubjectID: user.ID,
		Success:   true,
	})
	return c.JSON(http.StatusOK, loginResponse{AccessToken: token})
}
