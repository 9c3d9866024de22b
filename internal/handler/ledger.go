package handler

import (
	"net/http"

	"github.com/salazaroliveros-prog/billar-finanzas/internal/apperror"
	"github.com/salazaroliveros-prog/billar-finanzas/internal/dto"
	"github.com/salazaroliveros-prog/billar-finanzas/internal/model"
	"github.com/salazaroliveros-prog/billar-finanzas/internal/service"

	"github.com/gin-gonic/gin"
)

// apply runs cmd through the ledger. On failure it writes the error response
// and returns false.
func apply(c *gin.Context, ledger service.LedgerService, cmd service.Command) ([]apperror.Warning, bool) {
	ws, err := ledger.Apply(c.Request.Context(), cmd)
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	return ws, true
}

// current returns the live state, writing the error response on failure.
func current(c *gin.Context, ledger service.LedgerService) (*model.State, bool) {
	st, err := ledger.Current()
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	return st, true
}

// ── State ─────────────────────────────────────────────────────────────────────

type StateHandler struct{ ledger service.LedgerService }

func NewStateHandler(ledger service.LedgerService) *StateHandler {
	return &StateHandler{ledger: ledger}
}

func (h *StateHandler) Obtener(c *gin.Context) {
	st, ok := current(c, h.ledger)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *StateHandler) Meta(c *gin.Context) {
	meta, err := h.ledger.Meta(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, meta)
}

func (h *StateHandler) ActualizarNegocio(c *gin.Context) {
	var req dto.NegocioRequest
	if !bindAndValidate(c, &req) {
		return
	}
	cmd := &service.SetBusiness{BusinessName: req.Nombre, Currency: req.Moneda}
	ws, ok := apply(c, h.ledger, cmd)
	if !ok {
		return
	}
	st, ok := current(c, h.ledger)
	if !ok {
		return
	}
	respond(c, http.StatusOK, st.Business, ws)
}
