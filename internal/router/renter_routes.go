package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/desk-rental-marketplace/internal/handler"
	"github.com/iliyamo/desk-rental-marketplace/internal/middleware"
	"github.com/iliyamo/desk-rental-marketplace/internal/model"
)

// RegisterRenter registers RENTER-scoped endpoints under /v1: booking
// submission and lifecycle, checkout and favorites.
func RegisterRenter(e *echo.Echo, b *handler.RenterBookingHandler, p *handler.PaymentHandler, f *handler.FavoriteHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleRenter),
	)
	if limiter != nil {
		g.Use(limiter)
	}

	// ---- Bookings ----
	g.POST("/bookings", b.Submit)
	g.GET("/bookings", b.List)
	g.GET("/bookings/:id", b.Get)
	g.DELETE("/bookings/:id", b.Cancel)

	// ---- Payment checkout ----
	g.POST("/bookings/:id/checkout", p.Checkout)

	// ---- Favorites ----
	g.POST("/favorites/:id", f.Add)
	g.DELETE("/favorites/:id", f.Remove)
	g.GET("/favorites", f.List)
}

// RegisterShared registers endpoints available to both roles, currently
// the messaging surface.
func RegisterShared(e *echo.Echo, m *handler.MessageHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleOwner, model.RoleRenter),
	)
	if limiter != nil {
		g.Use(limiter)
	}
	g.POST("/desks/:id/messages", m.Send)
	g.GET("/desks/:id/messages", m.Thread)
	g.GET("/messages", m.Inbox)
}
