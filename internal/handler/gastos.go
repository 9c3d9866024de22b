package handler

import (
	"net/http"

	"github.com/salazaroliveros-prog/billar-finanzas/internal/dto"
	"github.com/salazaroliveros-prog/billar-finanzas/internal/service"

	"github.com/gin-gonic/gin"
)

type GastosHandler struct{ ledger service.LedgerService }

func NewGastosHandler(ledger service.LedgerService) *GastosHandler {
	return &GastosHandler{ledger: ledger}
}

func (h *GastosHandler) Crear(c *gin.Context) {
	var req dto.CrearGastoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	cmd := &service.AddExpense{
		Type:        req.Tipo,
		Amount:      req.Monto,
		Description: req.Descripcion,
	}
	if req.Fecha != nil {
		cmd.At = req.Fecha.UTC()
	}
	ws, ok := apply(c, h.ledger, cmd)
	if !ok {
		return
	}
	respond(c, http.StatusCreated, cmd.Expense, ws)
}

func (h *GastosHandler) Listar(c *gin.Context) {
	st, ok := current(c, h.ledger)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, st.Expenses)
}

func (h *GastosHandler) Eliminar(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	ws, ok := apply(c, h.ledger, &service.DeleteExpense{ID: id})
	if !ok {
		return
	}
	respond(c, http.StatusOK, nil, ws)
}
