package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// ProductoRequest is used for both create and full update.
type ProductoRequest struct {
	ID          string          `json:"id"           validate:"omitempty,max=64"`
	Nombre      string          `json:"nombre"       validate:"required,min=1,max=120"`
	Categoria   string          `json:"categoria"    validate:"max=60"`
	Costo       decimal.Decimal `json:"costo"        validate:"min=0"`
	Precio      decimal.Decimal `json:"precio"       validate:"min=0"`
	Stock       int             `json:"stock"        validate:"min=0"`
	StockMinimo int             `json:"stock_minimo" validate:"min=0"`
}

// ─── Filter ──────────────────────────────────────────────────────────────────

type ProductoFilter struct {
	Categoria string `form:"categoria"`
	BajoStock bool   `form:"bajo_stock"`
}
