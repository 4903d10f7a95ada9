package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/identity-service/internal/api/middleware"
	"github.com/99minutos/identity-service/internal/core/domain"
	"github.com/99minutos/identity-service/internal/core/ports"
)

// ctxClaims returns the claims injected by the Auth middleware. Missing
// claims mean the route was mounted without Auth and are rejected with 401.
func ctxClaims(c echo.Context) (*domain.Claims, error) {
	claims := middleware.ClaimsFrom(c)
	if claims == nil || claims.Username == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims").
			SetInternal(domain.ErrUnauthorized)
	}
	return claims, nil
}

// bindAndValidate decodes the JSON body into req and runs the registered validator.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return fmt.Errorf("%w: invalid payload", domain.ErrValidation)
	}
	if err := c.Validate(req); err != nil {
		if errors.Is(err, domain.ErrValidation) {
			return err
		}
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return nil
}

// pathID parses the :id route parameter.
func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: id must be a positive integer", domain.ErrValidation)
	}
	return id, nil
}

// audit hands an event to the recorder, stamping request metadata.
// A nil recorder disables auditing.
func audit(c echo.Context, rec ports.AuditRecorder, event domain.AuditEvent) {
	if rec == nil {
		return
	}
	event.RequestID = c.Response().Header().Get(echo.HeaderXRequestID)
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}
	if claims := middleware.ClaimsFrom(c); claims != nil {
		event.ActorID = claims.SubjectID
	}
	rec.Enqueue(event)
}
