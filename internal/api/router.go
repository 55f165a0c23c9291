package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/nirmaanhq/chatbot-system/internal/api/handler"
	"github.com/nirmaanhq/chatbot-system/internal/api/middleware"
	"github.com/nirmaanhq/chatbot-system/internal/core/domain"
)

// RouterDeps bundles everything the HTTP surface needs.
type RouterDeps struct {
	Webhook   *handler.WebhookHandler
	Admin     *handler.AdminHandler
	Health    *handler.HealthHandler
	JWTSecret string
	Log       zerolog.Logger
}

// NewRouter assembles the Echo instance: middleware chain, error handling,
// request validation, metrics, and all route registrations.
func NewRouter(deps RouterDeps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddleware("chatbot_http"))

	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	e.GET("/health", deps.Health.Live)
	e.GET("/health/ready", deps.Health.Ready)
	e.GET("/metrics", echoprometheus.NewHandler())

	v1 := e.Group("/v1")

	v1.GET("/webhook", deps.Webhook.Verify)
	v1.POST("/webhook", deps.Webhook.Receive)

	admin := v1.Group("/admin",
		middleware.Auth(deps.JWTSecret),
		middleware.RequireRole(string(domain.RoleAdmin)),
	)
	admin.POST("/users/role", deps.Admin.ChangeRole)

	return e
}
