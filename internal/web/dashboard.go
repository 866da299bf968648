package web

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hhq160325/EjswebsiteSDN/internal/session"
)

// Dashboard is the admin landing page. No-cache headers keep the browser
// from showing a cached page after logout.
func (h *Handler) Dashboard(c echo.Context) error {
	res := c.Response().Header()
	res.Set("Cache-Control", "no-store, no-cache, must-revalidate, private")
	res.Set("Pragma", "no-cache")
	res.Set("Expires", "0")
	res.Set("Surrogate-Control", "no-store")

	user, _ := session.CurrentUser(c)
	return c.Render(http.StatusOK, "dashboard.html", echo.Map{"User": user})
}
