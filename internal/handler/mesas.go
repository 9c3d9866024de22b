package handler

import (
	"net/http"
	"time"

	"github.com/salazaroliveros-prog/billar-finanzas/internal/apperror"
	"github.com/salazaroliveros-prog/billar-finanzas/internal/dto"
	"github.com/salazaroliveros-prog/billar-finanzas/internal/model"
	"github.com/salazaroliveros-prog/billar-finanzas/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type MesasHandler struct {
	ledger service.LedgerService
	now    func() time.Time
}

func NewMesasHandler(ledger service.LedgerService, now func() time.Time) *MesasHandler {
	return &MesasHandler{ledger: ledger, now: now}
}

// mesaResponse adds the running charge of an active session so the dashboard
// does not have to compute it.
type mesaResponse struct {
	model.TableSession
	CargoActual *decimal.Decimal `json:"cargoActual,omitempty"`
}

func (h *MesasHandler) view(t model.TableSession) mesaResponse {
	out := mesaResponse{TableSession: t}
	if t.Active {
		elapsed := h.now().Sub(t.StartAt)
		if elapsed < 0 {
			elapsed = 0
		}
		charge := service.TableCharge(t.Rate, t.Players, elapsed)
		out.CargoActual = &charge
	}
	return out
}

func (h *MesasHandler) Abrir(c *gin.Context) {
	var req dto.AbrirMesaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	cmd := &service.StartTable{Table: req.Mesa, Players: req.Jugadores, Rate: req.Tarifa}
	ws, ok := apply(c, h.ledger, cmd)
	if !ok {
		return
	}
	respond(c, http.StatusCreated, h.view(cmd.Session), ws)
}

// Cerrar stops an active session and fixes its total.
func (h *MesasHandler) Cerrar(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	cmd := &service.StopTable{ID: id}
	ws, ok := apply(c, h.ledger, cmd)
	if !ok {
		return
	}
	respond(c, http.StatusOK, cmd.Session, ws)
}

func (h *MesasHandler) Listar(c *gin.Context) {
	var filter dto.MesaFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apperror.New(err.Error()))
		return
	}
	st, ok := current(c, h.ledger)
	if !ok {
		return
	}
	out := make([]mesaResponse, 0, len(st.Tables))
	for _, t := range st.Tables {
		if filter.Activas && !t.Active {
			continue
		}
		out = append(out, h.view(t))
	}
	c.JSON(http.StatusOK, out)
}

func (h *MesasHandler) Eliminar(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	ws, ok := apply(c, h.ledger, &service.DeleteTable{ID: id})
	if !ok {
		return
	}
	respond(c, http.StatusOK, nil, ws)
}
