package session

import (
	"net/http"

	esession "github.com/labstack/echo-contrib/session"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"

	"github.com/hhq160325/EjswebsiteSDN/internal/models"
)

// Name is the session cookie name shared by the web handlers and guards.
const Name = "shop_session"

const (
	keyToken  = "token"
	keyUserID = "user_id"
	keyEmail  = "email"
	keyRole   = "role"
)

// UserSummary is the denormalized user record kept next to the token so
// pages can render identity without a store lookup.
type UserSummary struct {
	ID    uint
	Email string
	Role  string
}

func NewStore(secret []byte) sessions.Store {
	store := sessions.NewCookieStore(secret)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

func Middleware(secret []byte) echo.MiddlewareFunc {
	return esession.Middleware(NewStore(secret))
}

// SetLogin stores the issued token plus the user summary. Only the login
// flow calls this.
func SetLogin(c echo.Context, tok string, user *models.User) error {
	s, err := esession.Get(Name, c)
	if err != nil {
		return err
	}
	s.Values[keyToken] = tok
	s.Values[keyUserID] = user.ID
	s.Values[keyEmail] = user.Email
	s.Values[keyRole] = user.Role
	return s.Save(c.Request(), c.Response())
}

func Token(c echo.Context) string {
	s, err := esession.Get(Name, c)
	if err != nil {
		return ""
	}
	if v, ok := s.Values[keyToken].(string); ok {
		return v
	}
	return ""
}

func CurrentUser(c echo.Context) (UserSummary, bool) {
	s, err := esession.Get(Name, c)
	if err != nil {
		return UserSummary{}, false
	}
	id, okID := s.Values[keyUserID].(uint)
	email, okEmail := s.Values[keyEmail].(string)
	role, okRole := s.Values[keyRole].(string)
	if !okID || !okEmail || !okRole {
		return UserSummary{}, false
	}
	return UserSummary{ID: id, Email: email, Role: role}, true
}

// Clear drops all session values and expires the cookie.
func Clear(c echo.Context) error {
	s, err := esession.Get(Name, c)
	if err != nil {
		return err
	}
	s.Values = map[interface{}]interface{}{}
	s.Options.MaxAge = -1
	return s.Save(c.Request(), c.Response())
}
