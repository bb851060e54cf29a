// Package router wires HTTP routes to their handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/everydaycare/server/internal/handler"
	"github.com/everydaycare/server/internal/middleware"
)

// RegisterRoutes registers routes that need no authentication: the health
// check, the Prometheus scrape endpoint and the static web assets.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.Static("/", "web/static")
}

// RegisterAuth registers the account lifecycle. Register, login, refresh and
// the password-reset pair are open; /v1/me sits behind the JWT middleware.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)
	g.POST("/password-reset", a.RequestPasswordReset)
	g.POST("/password-reset/complete", a.CompletePasswordReset)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
}
