package middleware // shared request processing for handlers

import (
	"net/http" // standard HTTP status codes

	"github.com/labstack/echo/v4" // middleware chaining and context
)

// RequireRole returns a middleware that enforces that the authenticated
// user holds one of the given roles (STUDENT, STAFF or ADMIN, matching
// the JWT's "role" claim).  Requests from other roles are rejected with
// 403 Forbidden.  It assumes JWTAuth already stored the role in the
// context under "role".
func RequireRole(roles ...string) echo.MiddlewareFunc {
	// Build a set of allowed roles for constant-time lookups.
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get("role").(string)
			if !ok || !allowed[role] {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
