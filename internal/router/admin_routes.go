package router

import (
	"github.com/labstack/echo/v4"

	"github.com/campusbook/resource-booking/internal/handler"
	"github.com/campusbook/resource-booking/internal/middleware"
	"github.com/campusbook/resource-booking/internal/model"
)

// RegisterStaff registers resource management endpoints for STAFF and
// ADMIN users.  They share the /v1/resources prefix with the public
// browse routes but differ by method, so the role guard applies only
// here.
func RegisterStaff(e *echo.Echo, s *handler.StaffHandler, jwtSecret string) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleStaff, model.RoleAdmin))

	g.POST("/resources", s.CreateResource)
	g.PATCH("/resources/:id", s.UpdateResource)
	g.POST("/resources/:id/publish", s.PublishResource)
	g.POST("/resources/:id/archive", s.ArchiveResource)
	g.POST("/resources/:id/unarchive", s.UnarchiveResource)
}

// RegisterAdmin registers the ADMIN-only moderation, taxonomy and audit
// endpoints under /v1/admin.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string) {
	g := e.Group("/v1/admin")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleAdmin))

	// Approval queue overview.  Transitions themselves go through the
	// booking endpoints, which already allow admins.
	g.GET("/bookings/pending", a.PendingBookings)

	// Message moderation.
	g.GET("/messages/reported", a.ReportedMessages)
	g.POST("/messages/:id/hide", a.HideMessage)
	g.POST("/messages/:id/unhide", a.UnhideMessage)
	g.POST("/messages/:id/dismiss-report", a.DismissMessageReport)

	// Review moderation.
	g.GET("/reviews/reported", a.ReportedReviews)
	g.GET("/reviews/hidden", a.HiddenReviews)
	g.POST("/reviews/:id/hide", a.HideReview)
	g.POST("/reviews/:id/unhide", a.UnhideReview)
	g.POST("/reviews/:id/dismiss-report", a.DismissReviewReport)

	// Overviews and audit.
	g.GET("/users", a.ListUsers)
	g.GET("/resources", a.ListResources)
	g.GET("/audit-log", a.AuditLog)

	// Taxonomy management.
	g.POST("/categories", a.CreateCategory)
	g.POST("/categories/:id/active", a.SetCategoryActive)
	g.POST("/locations", a.CreateLocation)
	g.POST("/locations/:id/active", a.SetLocationActive)
}
