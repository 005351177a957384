// Package router defines how HTTP routes are registered for the API.
// Routes are grouped by audience: public browse, auth, owner-scoped and
// renter-scoped.  Middleware is attached at group construction time.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/desk-rental-marketplace/internal/handler"
)

// RegisterRoutes registers routes that do not require authentication.
// Currently only the health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the authentication endpoints under /v1/auth.
// None of them require an existing session; refresh and logout identify
// the caller by the refresh token in the body.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)
}
