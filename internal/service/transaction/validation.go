package transaction

import (
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Additional-Code/orderdesk/internal/entity"
)

// record holds the persisted shape of a transaction for rule checks.
type record struct {
	CategoryID int64     `json:"category_id" validate:"required"`
	ColorID    int64     `json:"color_id" validate:"required"`
	Status     string    `json:"status" validate:"status"`
	BuyerName  string    `json:"buyer_name" validate:"required,max=255"`
	BuyerPhone string    `json:"buyer_phone" validate:"required,number,max=32"`
	Notes      string    `json:"notes" validate:"required"`
	OrderDate  time.Time `json:"order_date" validate:"required"`
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("status", func(fl validator.FieldLevel) bool {
		return entity.Status(fl.Field().String()).Valid()
	})
	return v
}

// fieldErrors runs v over s and flattens failures into field -> message.
func fieldErrors(v *validator.Validate, s any, into map[string]string) {
	err := v.Struct(s)
	if err == nil {
		return
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		into["_"] = err.Error()
		return
	}
	for _, fe := range verrs {
		if _, seen := into[fe.Field()]; seen {
			continue
		}
		into[fe.Field()] = describe(fe)
	}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "number":
		return "must contain digits only"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "status":
		return "must be one of " + strings.Join(statusNames(), ", ")
	default:
		return "is invalid"
	}
}

func statusNames() []string {
	all := entity.Statuses()
	out := make([]string, len(all))
	for i, s := range all {
		out[i] = string(s)
	}
	return out
}

func toRecord(t *entity.Transaction) record {
	return record{
		CategoryID: t.CategoryID,
		ColorID:    t.ColorID,
		Status:     string(t.Status),
		BuyerName:  t.BuyerName,
		BuyerPhone: t.BuyerPhone,
		Notes:      t.Notes,
		OrderDate:  t.OrderDate,
	}
}
