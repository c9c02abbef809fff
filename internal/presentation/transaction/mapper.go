// Package transaction derives display-only values from transaction records.
// Every function here is pure.
package transaction

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Additional-Code/orderdesk/internal/dto"
	"github.com/Additional-Code/orderdesk/internal/entity"
)

// BlankPlaceholder is shown in place of empty optional text.
const BlankPlaceholder = "-"

const orderDateLayout = "2006-01-02"

// Mapper formats money in a fixed currency.
type Mapper struct {
	currency string
}

// NewMapper builds a Mapper for currency, an ISO 4217 code.
func NewMapper(currency string) Mapper {
	return Mapper{currency: strings.ToUpper(currency)}
}

// Income is the unit price multiplied by the quantity.
func Income(t *entity.Transaction) decimal.Decimal {
	return t.ProductAmount.Mul(decimal.NewFromInt(int64(t.ProductCount)))
}

// Present builds the view of t.
func (m Mapper) Present(t *entity.Transaction) dto.TransactionView {
	income := Income(t)
	view := dto.TransactionView{
		ID:            t.ID,
		UserID:        t.UserID,
		CategoryID:    t.CategoryID,
		ColorID:       t.ColorID,
		Status:        t.Status.String(),
		BuyerName:     t.BuyerName,
		BuyerPhone:    t.BuyerPhone,
		ProductAmount: t.ProductAmount,
		ProductCount:  t.ProductCount,
		AcrylicMM:     t.AcrylicMM,
		Notes:         t.Notes,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
		Income:        income,
		IncomeDisplay: FormatMoney(income, m.currency),
		PriceSubtitle: strconv.Itoa(t.ProductCount) + "x",
		BuyerSubtitle: t.BuyerPhone,
		NotesDisplay:  t.Notes,
		IsTrashed:     t.Trashed(),
	}
	if !t.OrderDate.IsZero() {
		view.OrderDate = t.OrderDate.Format(orderDateLayout)
	}
	if t.Category != nil {
		view.CategoryName = t.Category.Name
	}
	if t.Color != nil {
		view.ColorName = t.Color.Name
		view.CategorySubtitle = t.Color.Name
	}
	if strings.TrimSpace(view.NotesDisplay) == "" {
		view.NotesDisplay = BlankPlaceholder
	}
	if t.Trashed() {
		deletedAt := t.DeletedAt
		view.DeletedAt = &deletedAt
	}
	return view
}

// PresentAll maps a slice of transactions in order.
func (m Mapper) PresentAll(rows []entity.Transaction) []dto.TransactionView {
	out := make([]dto.TransactionView, 0, len(rows))
	for i := range rows {
		out = append(out, m.Present(&rows[i]))
	}
	return out
}

// FormatMoney renders amount with "." thousands grouping and "," decimals, the
// way Indonesian rupiah amounts are printed, prefixed by the currency code.
// Rupiah has no minor unit in display; other currencies keep two decimals.
func FormatMoney(amount decimal.Decimal, currency string) string {
	places := int32(2)
	if currency == "IDR" {
		places = 0
	}
	neg := amount.IsNegative()
	fixed := amount.Abs().StringFixed(places)

	whole, frac, _ := strings.Cut(fixed, ".")
	var b strings.Builder
	if currency != "" {
		b.WriteString(currency)
		b.WriteByte(' ')
	}
	if neg {
		b.WriteByte('-')
	}
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	if frac != "" {
		b.WriteByte(',')
		b.WriteString(frac)
	}
	return b.String()
}
