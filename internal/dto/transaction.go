package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Additional-Code/orderdesk/internal/entity"
)

// TransactionView is a transaction as exposed to list and detail views, with
// its derived display fields.
type TransactionView struct {
	ID               int64           `json:"id"`
	UserID           *int64          `json:"user_id"`
	CategoryID       int64           `json:"category_id"`
	CategoryName     string          `json:"category_name"`
	ColorID          int64           `json:"color_id"`
	ColorName        string          `json:"color_name"`
	Status           string          `json:"status"`
	BuyerName        string          `json:"buyer_name"`
	BuyerPhone       string          `json:"buyer_phone"`
	ProductAmount    decimal.Decimal `json:"product_amount"`
	ProductCount     int             `json:"product_count"`
	AcrylicMM        decimal.Decimal `json:"acrylic_mm"`
	Notes            string          `json:"notes"`
	OrderDate        string          `json:"order_date"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	DeletedAt        *time.Time      `json:"deleted_at"`
	Income           decimal.Decimal `json:"income"`
	IncomeDisplay    string          `json:"income_display"`
	PriceSubtitle    string          `json:"price_subtitle"`
	CategorySubtitle string          `json:"category_subtitle"`
	BuyerSubtitle    string          `json:"buyer_subtitle"`
	NotesDisplay     string          `json:"notes_display"`
	IsTrashed        bool            `json:"is_trashed"`
}

// Page is one page of list results.
type Page[T any] struct {
	Items   []T `json:"items"`
	Total   int `json:"total"`
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
	Pages   int `json:"pages"`
}

// NewPage assembles a page, deriving the page count from total and perPage.
func NewPage[T any](items []T, total, page, perPage int) Page[T] {
	if items == nil {
		items = []T{}
	}
	pages := 0
	if perPage > 0 {
		pages = (total + perPage - 1) / perPage
	}
	return Page[T]{Items: items, Total: total, Page: page, PerPage: perPage, Pages: pages}
}

// BulkFailure explains why one id of a bulk request was not processed.
type BulkFailure struct {
	ID     int64  `json:"id"`
	Reason string `json:"reason"`
}

// BulkResponse reports the outcome of a bulk action.
type BulkResponse struct {
	Action    string        `json:"action"`
	Outcome   string        `json:"outcome"`
	Requested int           `json:"requested"`
	Succeeded []int64       `json:"succeeded"`
	Denied    []BulkFailure `json:"denied"`
	Missing   []int64       `json:"missing"`
	Failed    []BulkFailure `json:"failed"`
	Message   string        `json:"message"`
}

// Schema is the field configuration plus the options for select fields.
type Schema struct {
	Fields     []entity.FieldSpec `json:"fields"`
	Categories []entity.Category  `json:"categories"`
	Colors     []entity.Color     `json:"colors"`
}

// TransactionDraft carries the defaults a new transaction form opens with.
type TransactionDraft struct {
	Status       string          `json:"status"`
	ProductCount int             `json:"product_count"`
	AcrylicMM    decimal.Decimal `json:"acrylic_mm"`
	OrderDate    string          `json:"order_date"`
}

// ActionResult acknowledges a single-record lifecycle action.
type ActionResult struct {
	ID     int64  `json:"id"`
	Action string `json:"action"`
}

// BulkRequest names the transactions a bulk action applies to.
type BulkRequest struct {
	IDs []int64 `json:"ids"`
}
