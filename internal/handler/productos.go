package handler

import (
	"net/http"
	"strings"

	"github.com/salazaroliveros-prog/billar-finanzas/internal/apperror"
	"github.com/salazaroliveros-prog/billar-finanzas/internal/dto"
	"github.com/salazaroliveros-prog/billar-finanzas/internal/model"
	"github.com/salazaroliveros-prog/billar-finanzas/internal/service"

	"github.com/gin-gonic/gin"
)

type ProductosHandler struct{ ledger service.LedgerService }

func NewProductosHandler(ledger service.LedgerService) *ProductosHandler {
	return &ProductosHandler{ledger: ledger}
}

func fields(req dto.ProductoRequest) service.ProductFields {
	return service.ProductFields{
		Name:     req.Nombre,
		Category: req.Categoria,
		Cost:     req.Costo,
		Price:    req.Precio,
		Stock:    req.Stock,
		StockMin: req.StockMinimo,
	}
}

// productOrNil tolerates a concurrent delete between apply and read.
func productOrNil(st *model.State, id string) any {
	if i := st.ProductByID(id); i >= 0 {
		return st.Products[i]
	}
	return nil
}

func (h *ProductosHandler) Crear(c *gin.Context) {
	var req dto.ProductoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	cmd := &service.AddProduct{ProductFields: fields(req), ID: req.ID}
	ws, ok := apply(c, h.ledger, cmd)
	if !ok {
		return
	}
	st, ok := current(c, h.ledger)
	if !ok {
		return
	}
	respond(c, http.StatusCreated, productOrNil(st, cmd.ID), ws)
}

func (h *ProductosHandler) Listar(c *gin.Context) {
	var filter dto.ProductoFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apperror.New(err.Error()))
		return
	}
	st, ok := current(c, h.ledger)
	if !ok {
		return
	}
	out := make([]model.Product, 0, len(st.Products))
	for _, p := range st.Products {
		if filter.Categoria != "" && !strings.EqualFold(p.Category, filter.Categoria) {
			continue
		}
		if filter.BajoStock && !p.LowStock() {
			continue
		}
		out = append(out, p)
	}
	c.JSON(http.StatusOK, out)
}

func (h *ProductosHandler) ObtenerPorID(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	st, ok := current(c, h.ledger)
	if !ok {
		return
	}
	i := st.ProductByID(id)
	if i < 0 {
		c.JSON(http.StatusNotFound, apperror.New("Producto no encontrado"))
		return
	}
	c.JSON(http.StatusOK, st.Products[i])
}

func (h *ProductosHandler) Actualizar(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.ProductoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	ws, ok := apply(c, h.ledger, &service.UpdateProduct{ProductFields: fields(req), ID: id})
	if !ok {
		return
	}
	st, ok := current(c, h.ledger)
	if !ok {
		return
	}
	respond(c, http.StatusOK, productOrNil(st, id), ws)
}

func (h *ProductosHandler) Eliminar(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	ws, ok := apply(c, h.ledger, &service.DeleteProduct{ID: id})
	if !ok {
		return
	}
	respond(c, http.StatusOK, nil, ws)
}
