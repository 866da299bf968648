package loggingmw

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/stretchr/testify/require"
)

func newLoggedApp(buf *bytes.Buffer) *echo.Echo {
	logger := slog.New(slog.NewJSONHandler(buf, nil))
	e := echo.New()
	e.Use(middleware.RequestID(), RequestLogger(logger))
	e.GET("/ping", func(c echo.Context) error {
		return c.String(http.StatusOK, "pong")
	})
	return e
}

func TestRequestLoggerUsesGeneratedRequestID(t *testing.T) {
	var buf bytes.Buffer
	e := newLoggedApp(&buf)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	// The generated id only exists in the response header; the log line
	// must still carry it.
	generated := rec.Header().Get(echo.HeaderXRequestID)
	require.NotEmpty(t, generated)
	require.Contains(t, buf.String(), `"request_id":"`+generated+`"`)
}

func TestRequestLoggerEchoesClientRequestID(t *testing.T) {
	var buf bytes.Buffer
	e := newLoggedApp(&buf)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(echo.HeaderXRequestID, "client-supplied-id")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, "client-supplied-id", rec.Header().Get(echo.HeaderXRequestID))
	require.Contains(t, buf.String(), `"request_id":"client-supplied-id"`)
}
