package transaction

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Additional-Code/orderdesk/pkg/errorbank"
)

func TestParseCreateInput(t *testing.T) {
	in, err := ParseCreateInput([]byte(`{
		"category_id": 1,
		"color_id": 2,
		"buyer_name": "Alice",
		"buyer_phone": "081234567890",
		"product_amount": "50000.50",
		"product_count": 3,
		"acrylic_mm": 5,
		"notes": "rush order",
		"order_date": "2026-10-15",
		"unknown": true
	}`))
	require.NoError(t, err)

	require.NotNil(t, in.CategoryID)
	assert.Equal(t, int64(1), *in.CategoryID)
	assert.Nil(t, in.UserID)
	assert.Nil(t, in.Status)
	require.NotNil(t, in.ProductAmount)
	assert.True(t, decimal.RequireFromString("50000.5").Equal(*in.ProductAmount))
	require.NotNil(t, in.AcrylicMM)
	assert.True(t, decimal.NewFromInt(5).Equal(*in.AcrylicMM))
	require.NotNil(t, in.OrderDate)
	assert.True(t, time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC).Equal(*in.OrderDate))
}

func TestParseCreateInput_TypeErrors(t *testing.T) {
	_, err := ParseCreateInput([]byte(`{
		"category_id": "one",
		"product_count": 1.5,
		"buyer_name": 12,
		"order_date": "15/10/2026"
	}`))
	require.Error(t, err)
	var appErr *errorbank.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, errorbank.KindValidation, appErr.Kind())
	assert.Equal(t, map[string]string{
		"category_id":   "must be numeric",
		"product_count": "must be numeric",
		"buyer_name":    "must be a string",
		"order_date":    "must be a date (YYYY-MM-DD)",
	}, appErr.FieldErrors())
}

func TestParseCreateInput_BadBody(t *testing.T) {
	for _, body := range []string{"", "   ", "[1,2]", "{"} {
		_, err := ParseCreateInput([]byte(body))
		assert.True(t, errorbank.Is(err, errorbank.KindBadRequest), body)
	}
}

func TestParseUpdateInput(t *testing.T) {
	in, err := ParseUpdateInput([]byte(`{"user_id": 5, "notes": null, "status": "done", "include_trashed": true, "order_date": "2026-10-15T08:00:00Z"}`))
	require.NoError(t, err)

	assert.Nil(t, in.Notes)
	require.NotNil(t, in.Status)
	assert.Equal(t, "done", *in.Status)
	assert.True(t, in.IncludeTrashed)
	require.NotNil(t, in.OrderDate)
	assert.Equal(t, 8, in.OrderDate.Hour())
	assert.Nil(t, in.CategoryID)

	_, err = ParseUpdateInput([]byte(`{"include_trashed": "yes"}`))
	var appErr *errorbank.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "must be a boolean", appErr.FieldErrors()["include_trashed"])
}
