package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/identity-service/internal/api/metrics"
	"github.com/99minutos/identity-service/internal/core/domain"
)

// ClaimsKey is the echo context key holding the caller's *domain.Claims.
const ClaimsKey = "claims"

// Authenticator verifies bearer tokens.
type Authenticator interface {
	Authenticate(token string) (*domain.Claims, error)
}

// ClaimsFrom returns the claims stored by Auth, or nil.
func ClaimsFrom(c echo.Context) *domain.Claims {
	claims, _ := c.Get(ClaimsKey).(*domain.Claims)
	return claims
}

// Auth validates the bearer token and injects its claims into the context.
func Auth(authn Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				metrics.AuthorizationDecisionsTotal.WithLabelValues("authenticate", "unauthorized").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "missing or malformed bearer token").
					SetInternal(domain.ErrUnauthorized)
			}

			claims, err := authn.Authenticate(token)
			if err != nil {
				metrics.AuthorizationDecisionsTotal.WithLabelValues("authenticate", "unauthorized").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token").SetInternal(err)
			}

			c.Set(ClaimsKey, claims)
			return next(c)
		}
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
