package dto

import "github.com/shopspring/decimal"

type AbrirMesaRequest struct {
	Mesa      int             `json:"mesa"      validate:"required,min=1"`
	Jugadores int             `json:"jugadores" validate:"required,min=1"`
	Tarifa    decimal.Decimal `json:"tarifa"    validate:"min=0"` // per player per hour
}

type MesaFilter struct {
	Activas bool `form:"activas"`
}
