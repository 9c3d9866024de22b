package handler

import (
	"net/http"

	"github.com/salazaroliveros-prog/billar-finanzas/internal/dto"
	"github.com/salazaroliveros-prog/billar-finanzas/internal/service"

	"github.com/gin-gonic/gin"
)

type VentasHandler struct{ ledger service.LedgerService }

func NewVentasHandler(ledger service.LedgerService) *VentasHandler {
	return &VentasHandler{ledger: ledger}
}

// Registrar records a sale and decrements the product stock.
func (h *VentasHandler) Registrar(c *gin.Context) {
	var req dto.RegistrarVentaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	cmd := &service.RecordSale{
		ProductID: req.ProductoID,
		Qty:       req.Cantidad,
		UnitPrice: req.PrecioUnitario,
		Notes:     req.Notas,
	}
	ws, ok := apply(c, h.ledger, cmd)
	if !ok {
		return
	}
	respond(c, http.StatusCreated, cmd.Sale, ws)
}

// Listar returns sales newest first.
func (h *VentasHandler) Listar(c *gin.Context) {
	st, ok := current(c, h.ledger)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, st.Sales)
}

// Eliminar removes a sale and returns its quantity to stock.
func (h *VentasHandler) Eliminar(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	ws, ok := apply(c, h.ledger, &service.DeleteSale{ID: id})
	if !ok {
		return
	}
	respond(c, http.StatusOK, nil, ws)
}
