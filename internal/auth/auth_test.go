package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"food-delivery/internal/models"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newTestServer() *echo.Echo {
	e := echo.New()
	g := e.Group("", Middleware(testSecret))
	g.GET("/any", func(c echo.Context) error {
		caller, _ := CallerFrom(c)
		return c.String(http.StatusOK, caller.Email+"|"+string(caller.Role))
	}, Require())
	g.GET("/admin", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, Require(models.RoleAdmin))
	return e
}

func TestMiddleware(t *testing.T) {
	e := newTestServer()

	adminToken, err := SignToken(testSecret, "admin@example.com", models.RoleAdmin, time.Hour)
	require.NoError(t, err)
	riderToken, err := SignToken(testSecret, "rider@example.com", models.RoleRider, time.Hour)
	require.NoError(t, err)
	expired, err := SignToken(testSecret, "old@example.com", models.RoleAdmin, -time.Minute)
	require.NoError(t, err)
	foreign, err := SignToken("other-secret", "admin@example.com", models.RoleAdmin, time.Hour)
	require.NoError(t, err)
	mixedCase, err := SignToken(testSecret, " Rahim@Example.COM", models.RoleCustomer, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name     string
		path     string
		header   string
		cookie   string
		wantCode int
		wantBody string
	}{
		{name: "no token", path: "/any", wantCode: http.StatusUnauthorized},
		{name: "bearer token", path: "/any", header: "Bearer " + riderToken, wantCode: http.StatusOK, wantBody: "rider@example.com|rider"},
		{name: "cookie token", path: "/any", cookie: adminToken, wantCode: http.StatusOK, wantBody: "admin@example.com|admin"},
		{name: "email is lower-cased", path: "/any", header: "Bearer " + mixedCase, wantCode: http.StatusOK, wantBody: "rahim@example.com|customer"},
		{name: "expired token", path: "/any", header: "Bearer " + expired, wantCode: http.StatusUnauthorized},
		{name: "wrong signature", path: "/any", header: "Bearer " + foreign, wantCode: http.StatusUnauthorized},
		{name: "admin route as rider", path: "/admin", header: "Bearer " + riderToken, wantCode: http.StatusForbidden},
		{name: "admin route as admin", path: "/admin", header: "Bearer " + adminToken, wantCode: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "token", Value: tt.cookie})
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestRequireWithoutCaller(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := Require(models.RoleAdmin)(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	require.NoError(t, h(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
