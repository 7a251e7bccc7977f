package router

import (
	"github.com/labstack/echo/v4"

	"github.com/campusbook/resource-booking/internal/handler"
)

// RegisterPublic registers unauthenticated browse endpoints.  The
// handlers return sanitized data only; no JWT or role middleware is
// applied.  cache, when non-nil, is the Redis response cache applied to
// the catalogue listings.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, cache echo.MiddlewareFunc) {
	mw := []echo.MiddlewareFunc{}
	if cache != nil {
		mw = append(mw, cache)
	}

	// Search published resources with filters and pagination.
	e.GET("/v1/resources", p.SearchResources, mw...)
	// Resource details with visible reviews.
	e.GET("/v1/resources/:id", p.GetResource, mw...)
	// Visible reviews, paginated.
	e.GET("/v1/resources/:id/reviews", p.ListReviews, mw...)
	// Occupied windows for slot picking.  Not cached: staleness here
	// directly causes avoidable booking conflicts.
	e.GET("/v1/resources/:id/bookings", p.ResourceBookings)
	// Filter pickers.
	e.GET("/v1/categories", p.ListCategories, mw...)
	e.GET("/v1/locations", p.ListLocations, mw...)
}
