package router

import (
	"github.com/labstack/echo/v4"

	"github.com/campusbook/resource-booking/internal/handler"
	"github.com/campusbook/resource-booking/internal/middleware"
	"github.com/campusbook/resource-booking/internal/model"
)

// RegisterBookings registers the authenticated booking, message and
// review endpoints under /v1.  limiter, when non-nil, is the token
// bucket applied to booking creation.
func RegisterBookings(e *echo.Echo, b *handler.BookingHandler, m *handler.MessageHandler, r *handler.ReviewHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleStudent, model.RoleStaff, model.RoleAdmin))

	// Booking lifecycle.  Creation is rate limited per user.
	if limiter != nil {
		g.POST("/bookings", b.CreateBooking, limiter)
	} else {
		g.POST("/bookings", b.CreateBooking)
	}
	g.GET("/my-bookings", b.MyBookings)
	g.GET("/bookings/:id", b.GetBooking)
	g.POST("/bookings/:id/approve", b.Approve)
	g.POST("/bookings/:id/reject", b.Reject)
	g.POST("/bookings/:id/cancel", b.Cancel)
	g.POST("/bookings/:id/complete", b.Complete)

	// Per-booking message thread.
	g.POST("/bookings/:id/messages", m.PostMessage)
	g.GET("/bookings/:id/messages", m.ListMessages)
	g.POST("/messages/:id/report", m.ReportMessage)

	// Reviews, gated on a completed booking.
	g.PUT("/resources/:id/review", r.PutReview)
	g.GET("/resources/:id/review", r.MyReview)
	g.POST("/reviews/:id/report", r.ReportReview)
}
