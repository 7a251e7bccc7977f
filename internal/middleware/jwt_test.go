package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusbook/resource-booking/internal/model"
	"github.com/campusbook/resource-booking/internal/utils"
)

const testSecret = "test-secret"

func doRequest(t *testing.T, mw []echo.MiddlewareFunc, authHeader string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()

	h := func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"user_id": c.Get("user_id"),
			"role":    c.Get("role"),
		})
	}
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	require.NoError(t, h(c))
	return rec
}

func TestJWTAuthValidToken(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, 42, model.RoleStudent, 5)
	require.NoError(t, err)

	rec := doRequest(t, []echo.MiddlewareFunc{JWTAuth(testSecret)}, "Bearer "+tok.Token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"user_id":42`)
	assert.Contains(t, rec.Body.String(), `"role":"STUDENT"`)
}

func TestJWTAuthRejects(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{name: "missing header", header: ""},
		{name: "not bearer", header: "Basic abc"},
		{name: "garbage token", header: "Bearer not.a.jwt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, []echo.MiddlewareFunc{JWTAuth(testSecret)}, tt.header)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestJWTAuthWrongSecret(t *testing.T) {
	tok, err := utils.NewAccessToken("other-secret", 42, model.RoleStudent, 5)
	require.NoError(t, err)

	rec := doRequest(t, []echo.MiddlewareFunc{JWTAuth(testSecret)}, "Bearer "+tok.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSubjectID(t *testing.T) {
	tests := []struct {
		name   string
		sub    any
		want   uint64
		wantOK bool
	}{
		{name: "float subject", sub: float64(42), want: 42, wantOK: true},
		{name: "negative float", sub: float64(-1), wantOK: false},
		{name: "string subject", sub: "42", want: 42, wantOK: true},
		{name: "max uint64", sub: "18446744073709551615", want: 18446744073709551615, wantOK: true},
		// One past max uint64: must be rejected, not silently wrapped.
		{name: "overflowing string", sub: "18446744073709551616", wantOK: false},
		{name: "non-numeric string", sub: "abc", wantOK: false},
		{name: "empty string", sub: "", wantOK: false},
		{name: "missing claim", sub: nil, wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims := jwt.MapClaims{}
			if tt.sub != nil {
				claims["sub"] = tt.sub
			}
			got, ok := subjectID(claims)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name    string
		role    string
		allowed []string
		want    int
	}{
		{name: "admin on admin route", role: model.RoleAdmin, allowed: []string{model.RoleAdmin}, want: http.StatusOK},
		{name: "student on admin route", role: model.RoleStudent, allowed: []string{model.RoleAdmin}, want: http.StatusForbidden},
		{name: "staff on staff or admin route", role: model.RoleStaff, allowed: []string{model.RoleStaff, model.RoleAdmin}, want: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok, err := utils.NewAccessToken(testSecret, 7, tt.role, 5)
			require.NoError(t, err)

			mw := []echo.MiddlewareFunc{JWTAuth(testSecret), RequireRole(tt.allowed...)}
			rec := doRequest(t, mw, "Bearer "+tok.Token)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestRequireRoleWithoutAuth(t *testing.T) {
	// RequireRole alone (no JWTAuth) must reject, since no role claim
	// was stored in the context.
	rec := doRequest(t, []echo.MiddlewareFunc{RequireRole(model.RoleStudent)}, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
