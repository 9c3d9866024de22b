package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type CrearGastoRequest struct {
	Tipo        string          `json:"tipo"        validate:"required,max=60"`
	Monto       decimal.Decimal `json:"monto"       validate:"gt=0"`
	Descripcion string          `json:"descripcion" validate:"max=240"`
	// Fecha defaults to now.
	Fecha *time.Time `json:"fecha"`
}
