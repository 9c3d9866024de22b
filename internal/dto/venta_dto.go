package dto

import "github.com/shopspring/decimal"

type RegistrarVentaRequest struct {
	ProductoID string `json:"producto_id" validate:"required"`
	Cantidad   int    `json:"cantidad"    validate:"required,min=1"`
	// PrecioUnitario overrides the product price when set.
	PrecioUnitario *decimal.Decimal `json:"precio_unitario"`
	Notas          string           `json:"notas" validate:"max=240"`
}
