package web

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/hhq160325/EjswebsiteSDN/internal/hash"
	"github.com/hhq160325/EjswebsiteSDN/internal/logging"
	"github.com/hhq160325/EjswebsiteSDN/internal/models"
	"github.com/hhq160325/EjswebsiteSDN/internal/session"
	"github.com/hhq160325/EjswebsiteSDN/internal/token"
	"github.com/hhq160325/EjswebsiteSDN/internal/upload"
)

// Handler serves the browser-facing pages. It shares the data models with
// the API handlers but speaks redirects and HTML instead of JSON.
type Handler struct {
	DB        *gorm.DB
	JWTSecret []byte
	Uploads   *upload.Storage
}

func validEmail(s string) bool {
	return emailRx.MatchString(s)
}

// LoginPage renders the form, or goes straight to the dashboard when the
// session already holds a verifiable token.
func (h *Handler) LoginPage(c echo.Context) error {
	if raw := session.Token(c); raw != "" {
		if _, err := token.Parse(raw, h.JWTSecret); err == nil {
			return c.Redirect(http.StatusFound, "/dashboard")
		}
	}
	return c.Render(http.StatusOK, "login.html", nil)
}

func (h *Handler) Login(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "web_login")

	email := c.FormValue("email")
	password := c.FormValue("password")

	if !validEmail(email) {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid email format")
	}
	if len(password) < 6 {
		return echo.NewHTTPError(http.StatusBadRequest, "Password must be at least 6 characters")
	}

	// Same response for unknown email and wrong password.
	var user models.User
	if err := h.DB.Where("email = ?", email).First(&user).Error; err != nil {
		l.Warn("login_failed", "status", 401)
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
	}
	if !hash.CheckPassword(user.PasswordHash, password) {
		l.Warn("login_failed", "status", 401)
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
	}

	tok, err := token.Sign(user.ID, user.Role, h.JWTSecret)
	if err != nil {
		l.Error("login_failed", "status", 500, "reason", "sign_error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	if err := session.SetLogin(c, tok, &user); err != nil {
		l.Error("login_failed", "status", 500, "reason", "session_error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	l.Info("login_success", "user_id", user.ID)
	return c.Redirect(http.StatusFound, "/dashboard")
}

func (h *Handler) Logout(c echo.Context) error {
	if err := session.Clear(c); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Error while logging out")
	}
	return c.Redirect(http.StatusFound, "/login")
}
