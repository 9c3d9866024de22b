package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense Amount is always > 0.
type Expense struct {
	ID          string          `json:"id"`
	At          time.Time       `json:"at"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
}
