package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/mtourkz/booking-api/internal/handler"
	"github.com/mtourkz/booking-api/internal/middleware"
	"github.com/mtourkz/booking-api/internal/model"
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes and applies
// the necessary middleware.  Unauthenticated operations live under
// /v1/auth, while protected endpoints live under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// refresh rotates the refresh token and returns a new pair
	g.POST("/refresh", a.Refresh)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
	// logout lives behind JWT so the all-sessions variant can identify
	// the caller; single-session logout reads the refresh token body
	auth.POST("/auth/logout", a.Logout)
}

// RegisterPublic registers the unauthenticated booking surface: the
// cached catalog view, the rate-limited availability query, the
// provider callback and confirmation-code validation.
func RegisterPublic(e *echo.Echo, b *handler.BookingHandler, cb *handler.CallbackHandler, codes *handler.CodeHandler, cacheMW, rateMW echo.MiddlewareFunc) {
	// catalog listing is cache-friendly; the middleware no-ops when
	// Redis is unavailable
	e.GET("/v1/tours/:id/units", b.ListTourUnits, cacheMW)

	// availability is the hottest unauthenticated read; bucket it
	e.GET("/v1/availability", b.Availability, rateMW)

	// the payment provider authenticates with Basic auth inside the handler
	e.POST("/v1/payments/callback", cb.HandleCallback)

	// success-page polling by the cart public id handed to the gateway
	e.GET("/v1/carts/:id/payment", b.PaymentStatus)

	// code validation is used from emailed links, no session required
	e.POST("/v1/reservations/:id/confirmation-code/validate", codes.ValidateCode)
}

// RegisterBooking registers the authenticated customer surface.
func RegisterBooking(e *echo.Echo, b *handler.BookingHandler, codes *handler.CodeHandler, jwtSecret string) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.POST("/checkout", b.Checkout)
	g.GET("/my-reservations", b.MyReservations)
	g.DELETE("/reservations/:id", b.CancelReservation)
	// issuing codes is an ORG action on the org's own reservations;
	// only validation stays open for the emailed link
	g.POST("/reservations/:id/confirmation-code", codes.IssueCode,
		middleware.RequireRole(model.RoleOrg))
}

// RegisterOwner registers the ORG-only catalog and occupancy surface.
func RegisterOwner(e *echo.Echo, o *handler.OwnerHandler, or *handler.OwnerReservationHandler, jwtSecret string) {
	g := e.Group("/v1/owner")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleOrg))

	g.POST("/tours", o.CreateTour)
	g.GET("/tours", o.ListTours)
	g.PUT("/tours/:id", o.UpdateTour)
	g.POST("/tours/:id/units", o.CreateUnit)
	g.PUT("/units/:id", o.UpdateUnit)
	g.DELETE("/units/:id", o.DeleteUnit)
	g.GET("/units/:id/cabinets", o.ListUnitCabinets)

	g.GET("/units/:id/reservations", or.ListUnitReservations)
	g.POST("/units/:id/repair-closures", or.CloseForRepair)
	g.DELETE("/units/:id/repair-closures", or.ReopenAfterRepair)
}
