package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Additional-Code/orderdesk/pkg/errorbank"
)

func newContext() (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestBuilder_Success(t *testing.T) {
	c, rec := newContext()
	c.Response().Header().Set(echo.HeaderXRequestID, "req-1")

	err := New(c).
		WithStatus(http.StatusCreated).
		WithData(map[string]int{"id": 1}).
		WithPagination(12, 2, 5, 3).
		Build()
	require.NoError(t, err)

	assert.Equal(t, http.StatusCreated, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	meta := body["meta"].(map[string]any)
	assert.Equal(t, "req-1", meta["request_id"])
	pagination := meta["pagination"].(map[string]any)
	assert.EqualValues(t, 12, pagination["total"])
	assert.EqualValues(t, 3, pagination["pages"])
}

func TestBuilder_ValidationError(t *testing.T) {
	c, rec := newContext()

	require.NoError(t, Fail(c, errorbank.Invalid(map[string]string{"buyer_phone": "must contain digits only"})))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, false, body["success"])
	errBody := body["error"].(map[string]any)
	assert.Equal(t, "validation", errBody["kind"])
	fields := errBody["details"].(map[string]any)["fields"].(map[string]any)
	assert.Equal(t, "must contain digits only", fields["buyer_phone"])
}

func TestBuilder_PlainErrorIsInternal(t *testing.T) {
	c, rec := newContext()

	require.NoError(t, Fail(c, errors.New("db exploded")))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	errBody := decode(t, rec)["error"].(map[string]any)
	assert.Equal(t, "internal", errBody["kind"])
	assert.Equal(t, "internal error", errBody["message"])
}
