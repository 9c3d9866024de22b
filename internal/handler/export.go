package handler

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"github.com/salazaroliveros-prog/billar-finanzas/internal/apperror"
	"github.com/salazaroliveros-prog/billar-finanzas/internal/service"

	"github.com/gin-gonic/gin"
)

// maxImportBytes bounds the JSON import body.
const maxImportBytes = 32 << 20

type ExportHandler struct {
	exports service.ExportService
	backups service.BackupService
	now     func() time.Time
}

func NewExportHandler(exports service.ExportService, backups service.BackupService, now func() time.Time) *ExportHandler {
	return &ExportHandler{exports: exports, backups: backups, now: now}
}

func (h *ExportHandler) filename(ext string) string {
	return "billar-" + h.now().Format("2006-01-02") + "." + ext
}

func (h *ExportHandler) attach(c *gin.Context, contentType, ext string, body []byte) {
	c.Header("Content-Disposition", `attachment; filename="`+h.filename(ext)+`"`)
	c.Data(http.StatusOK, contentType, body)
}

// render buffers the report so a failure mid-write still yields a clean
// error response.
func (h *ExportHandler) render(c *gin.Context, contentType, ext string, write func(io.Writer) error) {
	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		writeError(c, err)
		return
	}
	h.attach(c, contentType, ext, buf.Bytes())
}

func (h *ExportHandler) JSON(c *gin.Context) {
	body, err := h.backups.ExportJSON(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	h.attach(c, "application/json; charset=utf-8", "json", body)
}

func (h *ExportHandler) CSV(c *gin.Context) {
	h.render(c, "text/csv; charset=utf-8", "csv", func(w io.Writer) error {
		return h.exports.WriteCSV(c.Request.Context(), w)
	})
}

func (h *ExportHandler) XLSX(c *gin.Context) {
	h.render(c, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "xlsx", func(w io.Writer) error {
		return h.exports.WriteXLSX(c.Request.Context(), w)
	})
}

func (h *ExportHandler) PDF(c *gin.Context) {
	h.render(c, "application/pdf", "pdf", func(w io.Writer) error {
		return h.exports.WritePDF(c.Request.Context(), w)
	})
}

// Importar replaces the live state with an uploaded JSON document. The
// document is validated before anything changes.
func (h *ExportHandler) Importar(c *gin.Context) {
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxImportBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, apperror.New("No se pudo leer el archivo"))
		return
	}
	if len(raw) > maxImportBytes {
		c.JSON(http.StatusRequestEntityTooLarge, apperror.New("Archivo demasiado grande"))
		return
	}
	ws, err := h.backups.ImportJSON(c.Request.Context(), raw)
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"importado": true}, ws)
}

func (h *ExportHandler) Resumen(c *gin.Context) {
	sum, err := h.exports.Summary(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}
