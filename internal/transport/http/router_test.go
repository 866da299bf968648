package httpserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/hhq160325/EjswebsiteSDN/internal/handlers"
	"github.com/hhq160325/EjswebsiteSDN/internal/hash"
	"github.com/hhq160325/EjswebsiteSDN/internal/models"
	"github.com/hhq160325/EjswebsiteSDN/internal/mykafka"
	"github.com/hhq160325/EjswebsiteSDN/internal/token"
	"github.com/hhq160325/EjswebsiteSDN/internal/upload"
	"github.com/hhq160325/EjswebsiteSDN/internal/web"
)

var (
	jwtSecret     = []byte("router_jwt_secret")
	sessionSecret = []byte("router_session_secret")
)

func newTestServer(t *testing.T) (*echo.Echo, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Category{}, &models.Product{}))

	uploads, err := upload.NewStorage(t.TempDir())
	require.NoError(t, err)

	renderer, err := web.NewRenderer()
	require.NoError(t, err)

	producer := &mykafka.Producer{}

	e := echo.New()
	e.Renderer = renderer
	e.Pre(middleware.RemoveTrailingSlash())

	Register(e, &Deps{
		DB:            db,
		JWTSecret:     jwtSecret,
		SessionSecret: sessionSecret,
		UploadDir:     t.TempDir(),

		UserHandler:     &handlers.UserHandler{DB: db, JWTSecret: jwtSecret, Producer: producer},
		CategoryHandler: &handlers.CategoryHandler{DB: db, Producer: producer},
		ProductHandler:  &handlers.ProductHandler{DB: db, Producer: producer, Uploads: uploads},
		WebHandler:      &web.Handler{DB: db, JWTSecret: jwtSecret, Uploads: uploads},
	})
	return e, db
}

func createUser(t *testing.T, db *gorm.DB, email, password, role string) models.User {
	t.Helper()
	pwHash, err := hash.HashPassword(password)
	require.NoError(t, err)
	user := models.User{Username: strings.Split(email, "@")[0], Email: email, PasswordHash: pwHash, Role: role}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func bearerFor(t *testing.T, user models.User) string {
	t.Helper()
	raw, err := token.Sign(user.ID, user.Role, jwtSecret)
	require.NoError(t, err)
	return "Bearer " + raw
}

func TestHealthEndpoints(t *testing.T) {
	e, _ := newTestServer(t)

	for _, path := range []string{"/health/live", "/health/ready"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestAdminRoutesRequireBearer(t *testing.T) {
	e, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/categories", strings.NewReader(`{"name":"Books"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "Access Denied", resp["message"])
}

func TestAdminRoutesRejectCustomerToken(t *testing.T) {
	e, db := newTestServer(t)
	customer := createUser(t, db, "shopper@example.com", "password", models.RoleCustomer)

	req := httptest.NewRequest(http.MethodPost, "/api/categories", strings.NewReader(`{"name":"Books"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(echo.HeaderAuthorization, bearerFor(t, customer))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "Forbidden: Insufficient permissions", resp["message"])
}

func TestAdminTokenFullCategoryFlow(t *testing.T) {
	e, db := newTestServer(t)
	admin := createUser(t, db, "admin@example.com", "password", models.RoleAdmin)

	req := httptest.NewRequest(http.MethodPost, "/api/categories", strings.NewReader(`{"name":"Books"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(echo.HeaderAuthorization, bearerFor(t, admin))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	// Reads stay public.
	req = httptest.NewRequest(http.MethodGet, "/api/categories", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var categories []models.Category
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &categories))
	require.Len(t, categories, 1)
}

func TestAPILoginIssuesUsableToken(t *testing.T) {
	e, db := newTestServer(t)
	createUser(t, db, "admin@example.com", "password", models.RoleAdmin)

	body := `{"email":"admin@example.com","password":"password"}`
	req := httptest.NewRequest(http.MethodPost, "/api/users/login", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp["token"])

	req = httptest.NewRequest(http.MethodGet, "/api/users/users", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+resp["token"])
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func webLogin(t *testing.T, e *echo.Echo, email, password string) []*http.Cookie {
	t.Helper()
	form := url.Values{}
	form.Set("email", email)
	form.Set("password", password)
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/dashboard", rec.Header().Get(echo.HeaderLocation))
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies
}

func TestLoginPageRendersFormAnonymously(t *testing.T) {
	e, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "<form")
}

func TestLoginPageRedirectsActiveSession(t *testing.T) {
	e, db := newTestServer(t)
	createUser(t, db, "admin@example.com", "password", models.RoleAdmin)

	cookies := webLogin(t, e, "admin@example.com", "password")

	// A visitor who already holds a verifiable session skips the form.
	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/dashboard", rec.Header().Get(echo.HeaderLocation))
}

func TestWebLoginValidatesBeforeLookup(t *testing.T) {
	e, db := newTestServer(t)
	createUser(t, db, "admin@example.com", "password", models.RoleAdmin)

	cases := []struct {
		name     string
		email    string
		password string
	}{
		{"bad email format", "not-an-email", "password"},
		{"short password", "admin@example.com", "12345"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			form := url.Values{}
			form.Set("email", tc.email)
			form.Set("password", tc.password)
			req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			require.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestDashboardRequiresLogin(t *testing.T) {
	e, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))
}

func TestWebLoginGrantsDashboard(t *testing.T) {
	e, db := newTestServer(t)
	createUser(t, db, "admin@example.com", "password", models.RoleAdmin)

	cookies := webLogin(t, e, "admin@example.com", "password")

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Cache-Control"), "no-store")
	require.Contains(t, rec.Body.String(), "admin@example.com")
}

func TestWebLoginRejectsBadCredentials(t *testing.T) {
	e, db := newTestServer(t)
	createUser(t, db, "admin@example.com", "password", models.RoleAdmin)

	form := url.Values{}
	form.Set("email", "admin@example.com")
	form.Set("password", "wrong_password")
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCustomerCannotReachAdminPages(t *testing.T) {
	e, db := newTestServer(t)
	createUser(t, db, "shopper@example.com", "password", models.RoleCustomer)

	cookies := webLogin(t, e, "shopper@example.com", "password")

	req := httptest.NewRequest(http.MethodGet, "/category/add", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Contains(t, rec.Body.String(), "permission")
}

func TestLogoutEndsSession(t *testing.T) {
	e, db := newTestServer(t)
	createUser(t, db, "admin@example.com", "password", models.RoleAdmin)

	cookies := webLogin(t, e, "admin@example.com", "password")

	req := httptest.NewRequest(http.MethodGet, "/logout", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))

	// The cleared cookie no longer opens the dashboard.
	req = httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	for _, ck := range rec.Result().Cookies() {
		req.AddCookie(ck)
	}
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))
}
