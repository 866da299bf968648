package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hhq160325/EjswebsiteSDN/internal/models"
)

// AdminOnly runs after RequireSession and restricts the route to admins.
// The failure mode is a plain-text page, not JSON.
func AdminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		role, _ := c.Get(ContextRole).(string)
		if role != models.RoleAdmin {
			return c.String(http.StatusForbidden, "You do not have permission to access this page.")
		}
		return next(c)
	}
}
