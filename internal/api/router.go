package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/99minutos/identity-service/docs"
	"github.com/99minutos/identity-service/internal/api/handler"
	"github.com/99minutos/identity-service/internal/api/middleware"
	"github.com/99minutos/identity-service/internal/core/domain"
	"github.com/99minutos/identity-service/internal/core/ports"
	"github.com/99minutos/identity-service/internal/core/service"
)

// Dependencies are the collaborators the router wires into handlers.
type Dependencies struct {
	Users ports.UserService
	Auth  ports.AuthService
	Gate  *service.Gate
	// Audit may be nil to disable the audit trail.
	Audit ports.AuditRecorder
	// Readiness lists the dependencies probed by GET /health/ready.
	Readiness map[string]handler.Pinger
	// Registerer and Gatherer back the HTTP metrics and GET /metrics.
	// Leaving Registerer nil disables both.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
	Log        zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Log))
	if deps.Registerer != nil {
		e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
			Subsystem:  "identity",
			Registerer: deps.Registerer,
			Skipper: func(c echo.Context) bool {
				return c.Path() == "/metrics"
			},
		}))
		gatherer := deps.Gatherer
		if gatherer == nil {
			gatherer = prometheus.DefaultGatherer
		}
		e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	}

	// --- Auth routes (anonymous) ---
	authHandler := handler.NewAuthHandler(deps.Auth, deps.Users, deps.Audit)
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)

	// --- User management (bearer token + role policy) ---
	userHandler := handler.NewUserHandler(deps.Users, deps.Audit)
	users := e.Group("/users", middleware.Auth(deps.Gate))
	users.POST("", userHandler.Create, middleware.RBAC(deps.Gate, domain.OpCreateUser))
	users.GET("", userHandler.List, middleware.RBAC(deps.Gate, domain.OpListUsers))
	users.GET("/:id", userHandler.Get, middleware.RBAC(deps.Gate, domain.OpListUsers))
	users.PATCH("/:id", userHandler.Update, middleware.RBAC(deps.Gate, domain.OpUpdateUser))
	users.DELETE("/:id", userHandler.Delete, middleware.RBAC(deps.Gate, domain.OpDeleteUser))

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler(deps.Readiness)
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)

	// --- API docs ---
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		HandleError:  true,
		LogError:     true,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/health" || c.Path() == "/metrics"
		},
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			switch {
			case v.Status >= 500:
				evt = log.Error().Err(v.Error)
			case v.Error != nil:
				evt = log.Warn().Err(v.Error)
			}
			evt.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}
