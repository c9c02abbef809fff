package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	echo "github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Additional-Code/orderdesk/internal/config"
	"github.com/Additional-Code/orderdesk/internal/database/dbtest"
	"github.com/Additional-Code/orderdesk/internal/identity"
	"github.com/Additional-Code/orderdesk/pkg/errorbank"
)

func newRouter(t *testing.T) *echo.Echo {
	t.Helper()
	cfg := config.Config{
		HTTP: config.HTTP{RequestTimeout: time.Second},
		Auth: config.Auth{UserHeader: "X-User-ID", RoleHeader: "X-User-Role"},
	}
	return NewEcho(Params{
		Config:   cfg,
		Logger:   zap.NewNop(),
		Identity: identity.NewMiddleware(cfg),
		Database: dbtest.New(t),
	})
}

func serve(e *echo.Echo, method, target string) (*httptest.ResponseRecorder, map[string]any) {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	var body map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	return rec, body
}

func TestHealth(t *testing.T) {
	e := newRouter(t)

	rec, body := serve(e, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "ok", body["database"])
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
}

func TestErrorHandler(t *testing.T) {
	e := newRouter(t)
	e.GET("/panic", func(echo.Context) error { panic("boom") })
	e.GET("/forbidden", func(echo.Context) error { return errorbank.Forbidden("nope") })
	e.GET("/plain", func(echo.Context) error { return errors.New("plain") })

	tests := []struct {
		target string
		status int
		kind   string
	}{
		{"/missing", http.StatusNotFound, "not_found"},
		{"/panic", http.StatusInternalServerError, "internal"},
		{"/forbidden", http.StatusForbidden, "forbidden"},
		{"/plain", http.StatusInternalServerError, "internal"},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec, body := serve(e, http.MethodGet, tt.target)
			assert.Equal(t, tt.status, rec.Code)
			require.Contains(t, body, "error")
			assert.Equal(t, tt.kind, body["error"].(map[string]any)["kind"])
		})
	}
}

func TestIdentityMiddlewareIsInstalled(t *testing.T) {
	e := newRouter(t)
	e.GET("/whoami", func(c echo.Context) error {
		id, ok := identity.FromContext(c.Request().Context())
		return c.JSON(http.StatusOK, map[string]any{"ok": ok, "user": id.UserID, "admin": id.Admin})
	})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("X-User-ID", "12")
	req.Header.Set("X-User-Role", "admin")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true,"user":12,"admin":true}`, rec.Body.String())
}
