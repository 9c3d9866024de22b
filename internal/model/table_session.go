package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TableSession tracks one rental of a table.
// Lifecycle: Active=true, EndAt=nil → Active=false, EndAt and Total set once.
// A finished session is never recomputed.
type TableSession struct {
	ID      string           `json:"id"`
	Table   int              `json:"table"`
	Players int              `json:"players"`
	Rate    decimal.Decimal  `json:"rate"` // per player per hour
	StartAt time.Time        `json:"startAt"`
	EndAt   *time.Time       `json:"endAt,omitempty"`
	Active  bool             `json:"active"`
	Total   *decimal.Decimal `json:"total,omitempty"`
}

// Finished reports whether the session has been stopped.
func (t TableSession) Finished() bool {
	return !t.Active && t.EndAt != nil
}
