package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/desk-rental-marketplace/internal/handler"
	"github.com/iliyamo/desk-rental-marketplace/internal/middleware"
	"github.com/iliyamo/desk-rental-marketplace/internal/model"
)

// RegisterOwner registers OWNER-scoped endpoints under /v1.  All routes
// require a valid JWT and the OWNER role.  Owners publish desks, manage
// their availability calendars and inspect bookings taken on them.
func RegisterOwner(e *echo.Echo, d *handler.OwnerDeskHandler, a *handler.OwnerAvailabilityHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleOwner),
	)
	if limiter != nil {
		g.Use(limiter)
	}

	// ---- Desks ----
	g.POST("/owner/desks", d.Create)
	g.GET("/owner/desks", d.ListMine)
	g.PUT("/owner/desks/:id", d.Update)
	g.PATCH("/owner/desks/:id", d.Update)
	g.DELETE("/owner/desks/:id", d.Deactivate)

	// ---- Availability calendar ----
	g.POST("/owner/desks/:id/availability/open", a.OpenDates)
	g.POST("/owner/desks/:id/availability/close", a.CloseDates)
	g.POST("/owner/desks/:id/availability/block", a.BlockDates)
	g.POST("/owner/desks/:id/availability/unblock", a.UnblockDates)

	// ---- Bookings on the owner's desks ----
	g.GET("/owner/desks/:id/bookings", a.ListDeskBookings)
}
