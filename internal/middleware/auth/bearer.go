package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/hhq160325/EjswebsiteSDN/internal/token"
)

// Context keys populated by the guards and consumed by the handlers.
const (
	ContextUserID = "userID"
	ContextRole   = "role"
)

// Bearer guards API routes with an Authorization header token. An empty
// roles list admits any authenticated identity.
func Bearer(secret []byte, roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || raw == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Access Denied")
			}

			claims, err := token.Parse(raw, secret)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Token")
			}

			if len(allowed) > 0 {
				if _, ok := allowed[claims.Role]; !ok {
					return echo.NewHTTPError(http.StatusForbidden, "Forbidden: Insufficient permissions")
				}
			}

			setUserContext(c, claims)
			return next(c)
		}
	}
}

func setUserContext(c echo.Context, claims *token.Claims) {
	c.Set(ContextUserID, claims.UserID)
	c.Set(ContextRole, claims.Role)
}
