package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale is immutable once recorded. UnitPrice and UnitCost are captured at
// creation so later product price changes never rewrite history. ProductID
// may point to a product that no longer exists.
type Sale struct {
	ID        string          `json:"id"`
	At        time.Time       `json:"at"`
	ProductID string          `json:"productId"`
	Qty       int             `json:"qty"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	UnitCost  decimal.Decimal `json:"unitCost"`
	Total     decimal.Decimal `json:"total"`
	Profit    decimal.Decimal `json:"profit"`
	Notes     string          `json:"notes,omitempty"`
}
