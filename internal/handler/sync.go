package handler

import (
	"net/http"

	"github.com/salazaroliveros-prog/billar-finanzas/internal/apperror"
	"github.com/salazaroliveros-prog/billar-finanzas/internal/dto"
	"github.com/salazaroliveros-prog/billar-finanzas/internal/model"
	"github.com/salazaroliveros-prog/billar-finanzas/internal/service"

	"github.com/gin-gonic/gin"
)

type SyncHandler struct{ sync service.SyncService }

func NewSyncHandler(sync service.SyncService) *SyncHandler {
	return &SyncHandler{sync: sync}
}

func configResponse(cfg model.SyncConfig) dto.SyncConfigResponse {
	return dto.SyncConfigResponse{
		URL:         cfg.URL,
		Usuario:     cfg.User,
		TieneClave:  cfg.Pass != "",
		Auto:        cfg.Auto,
		Configurado: cfg.Configured(),
	}
}

func (h *SyncHandler) ObtenerConfig(c *gin.Context) {
	cfg, err := h.sync.GetConfig(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, configResponse(cfg))
}

func (h *SyncHandler) GuardarConfig(c *gin.Context) {
	var req dto.SyncConfigRequest
	if !bindAndValidate(c, &req) {
		return
	}
	ctx := c.Request.Context()
	prev, err := h.sync.GetConfig(ctx)
	if err != nil {
		writeError(c, err)
		return
	}
	next := model.SyncConfig{URL: req.URL, User: req.Usuario, Pass: prev.Pass, Auto: req.Auto}
	if req.Clave != nil {
		next.Pass = *req.Clave
	}
	cfg, err := h.sync.SetConfig(ctx, next)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, configResponse(cfg))
}

func (h *SyncHandler) Probar(c *gin.Context) { h.run(c, service.DirectionTest) }
func (h *SyncHandler) Subir(c *gin.Context)  { h.run(c, service.DirectionPush) }
func (h *SyncHandler) Bajar(c *gin.Context)  { h.run(c, service.DirectionPull) }

// run dispatches one sync direction. An overwrite of strictly newer data is
// only performed with ?confirm=true; otherwise the response is 409 with the
// conflict details so the dashboard can ask and retry.
func (h *SyncHandler) run(c *gin.Context, direction string) {
	var confirm service.Confirm
	if c.Query("confirm") == "true" {
		confirm = service.AlwaysConfirm
	}
	res, err := h.sync.RunSync(c.Request.Context(), direction, confirm)
	if err != nil {
		if apperror.KindOf(err) == apperror.KindConflict && res.Conflict != nil {
			c.JSON(http.StatusConflict, gin.H{
				"detail":    apperror.FromError(err).Detail,
				"kind":      apperror.KindConflict.String(),
				"resultado": res,
			})
			return
		}
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
