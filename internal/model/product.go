package model

import (
	"github.com/shopspring/decimal"
)

// DefaultCategory is used when a product is created without a category.
const DefaultCategory = "otro"

// Product is a sellable item. Price must be >= Cost; Stock and StockMin are
// never negative.
type Product struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Cost     decimal.Decimal `json:"cost"`
	Price    decimal.Decimal `json:"price"`
	Stock    int             `json:"stock"`
	StockMin int             `json:"stockMin"`
}

// LowStock reports whether the product is at or under its minimum.
func (p Product) LowStock() bool {
	return p.Stock <= p.StockMin
}
