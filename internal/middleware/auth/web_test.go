package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/hhq160325/EjswebsiteSDN/internal/models"
	"github.com/hhq160325/EjswebsiteSDN/internal/session"
	"github.com/hhq160325/EjswebsiteSDN/internal/token"
)

var sessionSecret = []byte("session_secret")

// newWebApp wires the session middleware plus the guards the way the
// router does, with a helper login route to mint a session cookie.
func newWebApp(jwtSecret []byte) *echo.Echo {
	e := echo.New()
	e.Use(session.Middleware(sessionSecret))
	e.POST("/test/login", func(c echo.Context) error {
		user := models.User{ID: 1, Email: "admin@example.com", Role: models.RoleAdmin}
		return session.SetLogin(c, c.QueryParam("token"), &user)
	})
	e.GET("/dashboard", func(c echo.Context) error {
		return c.String(http.StatusOK, "dashboard")
	}, RequireSession(jwtSecret))
	e.GET("/category/add", func(c echo.Context) error {
		return c.String(http.StatusOK, "add")
	}, RequireSession(jwtSecret), AdminOnly)
	return e
}

func loginCookies(t *testing.T, e *echo.Echo, raw string) []*http.Cookie {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/test/login?token="+raw, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies
}

func TestRequireSessionNoSession(t *testing.T) {
	e := newWebApp(testSecret)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))
}

func TestRequireSessionStaleToken(t *testing.T) {
	e := newWebApp(testSecret)

	// Token signed with a different secret: the session exists but does
	// not verify, so the visitor is sent back to the login page.
	raw, err := token.Sign(1, models.RoleAdmin, []byte("other_secret"))
	require.NoError(t, err)
	cookies := loginCookies(t, e, raw)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))
}

func TestRequireSessionSuccess(t *testing.T) {
	e := newWebApp(testSecret)

	raw, err := token.Sign(1, models.RoleAdmin, testSecret)
	require.NoError(t, err)
	cookies := loginCookies(t, e, raw)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "dashboard", rec.Body.String())
}

func TestAdminOnlyRejectsCustomer(t *testing.T) {
	e := newWebApp(testSecret)

	raw, err := token.Sign(2, models.RoleCustomer, testSecret)
	require.NoError(t, err)
	cookies := loginCookies(t, e, raw)

	req := httptest.NewRequest(http.MethodGet, "/category/add", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Contains(t, rec.Body.String(), "permission")
}

func TestAdminOnlyAllowsAdmin(t *testing.T) {
	e := newWebApp(testSecret)

	raw, err := token.Sign(1, models.RoleAdmin, testSecret)
	require.NoError(t, err)
	cookies := loginCookies(t, e, raw)

	req := httptest.NewRequest(http.MethodGet, "/category/add", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}
