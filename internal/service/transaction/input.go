package transaction

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Additional-Code/orderdesk/pkg/errorbank"
)

// CreateInput carries the fields of a new transaction. Nil means absent.
type CreateInput struct {
	UserID        *int64           `json:"user_id"`
	CategoryID    *int64           `json:"category_id" validate:"required"`
	ColorID       *int64           `json:"color_id" validate:"required"`
	Status        *string          `json:"status"`
	BuyerName     *string          `json:"buyer_name" validate:"required"`
	BuyerPhone    *string          `json:"buyer_phone" validate:"required"`
	ProductAmount *decimal.Decimal `json:"product_amount" validate:"required"`
	ProductCount  *int             `json:"product_count" validate:"required"`
	AcrylicMM     *decimal.Decimal `json:"acrylic_mm" validate:"required"`
	Notes         *string          `json:"notes" validate:"required"`
	OrderDate     *time.Time       `json:"order_date" validate:"required"`
}

// UpdateInput carries a partial change set. Nil fields are left untouched and
// the owner cannot be changed.
type UpdateInput struct {
	CategoryID    *int64
	ColorID       *int64
	Status        *string
	BuyerName     *string
	BuyerPhone    *string
	ProductAmount *decimal.Decimal
	ProductCount  *int
	AcrylicMM     *decimal.Decimal
	Notes         *string
	OrderDate     *time.Time
	// IncludeTrashed allows editing a soft-deleted transaction.
	IncludeTrashed bool
}

// ParseCreateInput decodes a JSON object field by field so a type mismatch is
// reported against the offending field.
func ParseCreateInput(body []byte) (CreateInput, error) {
	var in CreateInput
	err := decodeFields(body, map[string]fieldDecoder{
		"user_id":        into(&in.UserID),
		"category_id":    into(&in.CategoryID),
		"color_id":       into(&in.ColorID),
		"status":         into(&in.Status),
		"buyer_name":     into(&in.BuyerName),
		"buyer_phone":    into(&in.BuyerPhone),
		"product_amount": into(&in.ProductAmount),
		"product_count":  into(&in.ProductCount),
		"acrylic_mm":     into(&in.AcrylicMM),
		"notes":          into(&in.Notes),
		"order_date":     dateInto(&in.OrderDate),
	})
	return in, err
}

// ParseUpdateInput decodes a partial change set. user_id is ignored.
func ParseUpdateInput(body []byte) (UpdateInput, error) {
	var in UpdateInput
	err := decodeFields(body, map[string]fieldDecoder{
		"category_id":     into(&in.CategoryID),
		"color_id":        into(&in.ColorID),
		"status":          into(&in.Status),
		"buyer_name":      into(&in.BuyerName),
		"buyer_phone":     into(&in.BuyerPhone),
		"product_amount":  into(&in.ProductAmount),
		"product_count":   into(&in.ProductCount),
		"acrylic_mm":      into(&in.AcrylicMM),
		"notes":           into(&in.Notes),
		"order_date":      dateInto(&in.OrderDate),
		"include_trashed": into(&in.IncludeTrashed),
	})
	return in, err
}

type fieldDecoder func(json.RawMessage) error

func into[T any](dst *T) fieldDecoder {
	return func(raw json.RawMessage) error {
		return json.Unmarshal(raw, dst)
	}
}

var dateLayouts = []string{"2006-01-02", time.RFC3339}

func dateInto(dst **time.Time) fieldDecoder {
	return func(raw json.RawMessage) error {
		var s *string
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		if s == nil {
			*dst = nil
			return nil
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, strings.TrimSpace(*s)); err == nil {
				*dst = &t
				return nil
			}
		}
		return fmt.Errorf("unrecognised date %q", *s)
	}
}

func decodeFields(body []byte, decoders map[string]fieldDecoder) error {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return errorbank.BadRequest("request body is required")
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return errorbank.BadRequest("request body must be a JSON object", errorbank.WithCause(err))
	}
	problems := map[string]string{}
	for name, raw := range fields {
		decode, ok := decoders[name]
		if !ok {
			continue
		}
		if err := decode(raw); err != nil {
			problems[name] = typeMessage(name)
		}
	}
	if len(problems) > 0 {
		return errorbank.Invalid(problems)
	}
	return nil
}

func typeMessage(field string) string {
	switch field {
	case "order_date":
		return "must be a date (YYYY-MM-DD)"
	case "buyer_name", "buyer_phone", "notes", "status":
		return "must be a string"
	case "include_trashed":
		return "must be a boolean"
	default:
		return "must be numeric"
	}
}
