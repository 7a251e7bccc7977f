package handler // handler defines http handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/labstack/echo/v4" // echo defines request context types

	"github.com/campusbook/resource-booking/internal/model"
)

// dbTimeout bounds every database call made from a handler.
const dbTimeout = 5 * time.Second

// Health answers liveness probes.  It touches no dependency on purpose:
// a degraded database or broker should not make the load balancer pull
// the instance.
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

// reqContext derives a bounded context from the request.
func reqContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// getUserID extracts the user_id placed in context by the JWT middleware.
func getUserID(c echo.Context) (uint64, error) {
	switch t := c.Get("user_id").(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// currentRole returns the role claim stored by the JWT middleware, empty
// when absent.
func currentRole(c echo.Context) string {
	role, _ := c.Get("role").(string)
	return role
}

func isAdmin(c echo.Context) bool { return currentRole(c) == model.RoleAdmin }

func isStaff(c echo.Context) bool {
	r := currentRole(c)
	return r == model.RoleStaff || r == model.RoleAdmin
}

// pathID parses the named path parameter as an unsigned id.
func pathID(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}

// queryInt parses an optional integer query parameter, returning def when
// absent or malformed.
func queryInt(c echo.Context, name string, def int) int {
	if v := c.QueryParam(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// queryUint parses an optional unsigned query parameter, zero when absent.
func queryUint(c echo.Context, name string) uint64 {
	if v := c.QueryParam(name); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			return n
		}
	}
	return 0
}

// tooLong reports whether the text exceeds max characters.  Lengths are
// counted in runes, not bytes, so multi-byte text gets the full limit.
func tooLong(s string, max int) bool {
	return utf8.RuneCountInString(s) > max
}

// clientIP returns the requester address as a nullable string for audit
// records.
func clientIP(c echo.Context) *string {
	if ip := c.RealIP(); ip != "" {
		return &ip
	}
	return nil
}
