package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/identity-service/internal/api/metrics"
	"github.com/99minutos/identity-service/internal/core/domain"
)

// Permitter decides whether claims may perform an operation.
type Permitter interface {
	Permit(claims *domain.Claims, op domain.Operation) error
}

// RBAC enforces the route policy for op. It must run after Auth.
func RBAC(p Permitter, op domain.Operation) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := p.Permit(ClaimsFrom(c), op); err != nil {
				if errors.Is(err, domain.ErrUnauthorized) {
					metrics.AuthorizationDecisionsTotal.WithLabelValues(string(op), "unauthorized").Inc()
					return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims").SetInternal(err)
				}
				metrics.AuthorizationDecisionsTotal.WithLabelValues(string(op), "forbidden").Inc()
				return echo.NewHTTPError(http.StatusForbidden, "access forbidden").SetInternal(err)
			}
			metrics.AuthorizationDecisionsTotal.WithLabelValues(string(op), "allowed").Inc()
			return next(c)
		}
	}
}
