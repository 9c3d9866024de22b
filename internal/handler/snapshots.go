package handler

import (
	"net/http"
	"strings"

	"github.com/salazaroliveros-prog/billar-finanzas/internal/dto"
	"github.com/salazaroliveros-prog/billar-finanzas/internal/model"
	"github.com/salazaroliveros-prog/billar-finanzas/internal/service"

	"github.com/gin-gonic/gin"
)

type SnapshotsHandler struct {
	snapshots service.SnapshotService
	backups   service.BackupService
}

func NewSnapshotsHandler(snapshots service.SnapshotService, backups service.BackupService) *SnapshotsHandler {
	return &SnapshotsHandler{snapshots: snapshots, backups: backups}
}

func (h *SnapshotsHandler) Listar(c *gin.Context) {
	entries, err := h.snapshots.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// Crear takes a snapshot of the live state. The body is optional.
func (h *SnapshotsHandler) Crear(c *gin.Context) {
	var req dto.SnapshotRequest
	if c.Request.ContentLength > 0 && !bindAndValidate(c, &req) {
		return
	}
	reason := strings.TrimSpace(req.Motivo)
	if reason == "" {
		reason = model.ReasonManual
	}
	entry, ws, err := h.backups.CreateSnapshot(c.Request.Context(), reason)
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusCreated, entry, ws)
}

// Descargar returns the full snapshot body as an attachment.
func (h *SnapshotsHandler) Descargar(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	snap, err := h.snapshots.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="snapshot-`+snap.ID+`.json"`)
	c.IndentedJSON(http.StatusOK, snap)
}

// Restaurar installs the snapshot as the live state after a pre-restore
// snapshot of the current one.
func (h *SnapshotsHandler) Restaurar(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	ws, err := h.backups.RestoreSnapshot(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"restaurado": id}, ws)
}
