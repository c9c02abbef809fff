package identity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Additional-Code/orderdesk/internal/config"
)

func TestContextRoundTrip(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	ctx := WithIdentity(context.Background(), Identity{UserID: 3, Admin: true})
	id, ok := NewContextProvider().Current(ctx)
	require.True(t, ok)
	assert.Equal(t, Identity{UserID: 3, Admin: true}, id)
}

func TestMiddleware(t *testing.T) {
	cfg := config.Config{Auth: config.Auth{UserHeader: "X-User-ID", RoleHeader: "X-User-Role"}}
	mw := NewMiddleware(cfg)

	serve := func(headers map[string]string) (*httptest.ResponseRecorder, *Identity) {
		e := echo.New()
		var seen *Identity
		e.GET("/", func(c echo.Context) error {
			if id, ok := FromContext(c.Request().Context()); ok {
				seen = &id
			}
			return c.NoContent(http.StatusNoContent)
		}, echo.MiddlewareFunc(mw))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec, seen
	}

	t.Run("anonymous", func(t *testing.T) {
		rec, seen := serve(nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Nil(t, seen)
	})

	t.Run("user with admin role", func(t *testing.T) {
		rec, seen := serve(map[string]string{"X-User-ID": "12", "X-User-Role": "Admin"})
		assert.Equal(t, http.StatusNoContent, rec.Code)
		require.NotNil(t, seen)
		assert.Equal(t, Identity{UserID: 12, Admin: true}, *seen)
	})

	t.Run("plain user", func(t *testing.T) {
		_, seen := serve(map[string]string{"X-User-ID": "5"})
		require.NotNil(t, seen)
		assert.False(t, seen.Admin)
	})

	t.Run("malformed id", func(t *testing.T) {
		rec, seen := serve(map[string]string{"X-User-ID": "abc"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Nil(t, seen)
	})
}
