package entity

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// Default values offered when a transaction form is opened.
const (
	DefaultProductCount = 1
	DefaultAcrylicMM    = 5
)

// Transaction represents one customer order for a fabricated acrylic product.
type Transaction struct {
	bun.BaseModel `bun:"table:transactions,alias:t"`

	ID            int64           `bun:",pk,autoincrement" json:"id"`
	UserID        *int64          `bun:"user_id" json:"user_id"`
	CategoryID    int64           `bun:"category_id,notnull" json:"category_id"`
	ColorID       int64           `bun:"color_id,notnull" json:"color_id"`
	Status        Status          `bun:"status,notnull,default:'pending'" json:"status"`
	BuyerName     string          `bun:"buyer_name,notnull" json:"buyer_name"`
	BuyerPhone    string          `bun:"buyer_phone,notnull" json:"buyer_phone"`
	ProductAmount decimal.Decimal `bun:"product_amount,type:decimal(14,2),notnull" json:"product_amount"`
	ProductCount  int             `bun:"product_count,notnull,default:1" json:"product_count"`
	AcrylicMM     decimal.Decimal `bun:"acrylic_mm,type:decimal(6,2),notnull" json:"acrylic_mm"`
	Notes         string          `bun:"notes,nullzero" json:"notes"`
	OrderDate     time.Time       `bun:"order_date,type:date,notnull" json:"order_date"`
	CreatedAt     time.Time       `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time       `bun:"updated_at,nullzero" json:"updated_at"`
	DeletedAt     time.Time       `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at"`

	Category *Category `bun:"rel:belongs-to,join:category_id=id" json:"category,omitempty"`
	Color    *Color    `bun:"rel:belongs-to,join:color_id=id" json:"color,omitempty"`
}

// Trashed reports whether the transaction has been soft deleted.
func (t *Transaction) Trashed() bool {
	return !t.DeletedAt.IsZero()
}

// Owned reports whether an owner has been attributed.
func (t *Transaction) Owned() bool {
	return t.UserID != nil
}

// NewDraft returns the values a blank transaction form starts with. OrderDate is
// the form-open date, not the persistence date.
func NewDraft(now time.Time) Transaction {
	y, m, d := now.Date()
	return Transaction{
		Status:       StatusPending,
		ProductCount: DefaultProductCount,
		AcrylicMM:    decimal.NewFromInt(DefaultAcrylicMM),
		OrderDate:    time.Date(y, m, d, 0, 0, 0, 0, now.Location()),
	}
}
