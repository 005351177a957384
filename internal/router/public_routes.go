package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/desk-rental-marketplace/internal/handler"
)

// RegisterPublic registers the unauthenticated browse endpoints plus the
// payment processor webhook.  Browse GETs take the response cache
// middleware; the webhook authenticates itself by signature, not JWT.
func RegisterPublic(e *echo.Echo, b *handler.BrowseHandler, p *handler.PaymentHandler, cache echo.MiddlewareFunc) {
	g := e.Group("/v1")
	if cache != nil {
		g.Use(cache)
	}
	g.GET("/desks", b.ListDesks)
	g.GET("/desks/:id", b.GetDesk)
	g.GET("/desks/:id/availability", b.GetAvailability)

	// The webhook is registered outside the cached group.
	e.POST("/v1/payments/webhook", p.Webhook)
}
