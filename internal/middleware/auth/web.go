package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hhq160325/EjswebsiteSDN/internal/session"
	"github.com/hhq160325/EjswebsiteSDN/internal/token"
)

// RequireSession guards browser routes. It verifies the token stored in the
// session; a missing or stale session sends the visitor back to the login
// page instead of returning a JSON error.
func RequireSession(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := session.Token(c)
			if raw == "" {
				return c.Redirect(http.StatusFound, "/login")
			}

			claims, err := token.Parse(raw, secret)
			if err != nil {
				// Expired and tampered sessions are not distinguished.
				return c.Redirect(http.StatusFound, "/login")
			}

			setUserContext(c, claims)
			return next(c)
		}
	}
}
