package router

import (
	"time"

	"github.com/salazaroliveros-prog/billar-finanzas/internal/config"
	"github.com/salazaroliveros-prog/billar-finanzas/internal/handler"
	"github.com/salazaroliveros-prog/billar-finanzas/internal/kv"
	"github.com/salazaroliveros-prog/billar-finanzas/internal/middleware"
	"github.com/salazaroliveros-prog/billar-finanzas/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps are the services the HTTP surface is built on. The composition root
// owns their lifecycle.
type Deps struct {
	Store           kv.Store
	Ledger          service.LedgerService
	Snapshots       service.SnapshotService
	Backups         service.BackupService
	Sync            service.SyncService
	Exports         service.ExportService
	RemoteReachable func() bool
	Now             func() time.Time
}

// New wires all handlers and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← KV store
func New(cfg *config.Config, d Deps) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	if cfg.RateLimitPerMinute > 0 {
		r.Use(middleware.RateLimiter(cfg.RateLimitPerMinute, time.Minute))
	}

	now := d.Now
	if now == nil {
		now = time.Now
	}

	// ── Handlers ─────────────────────────────────────────────────────────────
	stateH := handler.NewStateHandler(d.Ledger)
	productosH := handler.NewProductosHandler(d.Ledger)
	ventasH := handler.NewVentasHandler(d.Ledger)
	gastosH := handler.NewGastosHandler(d.Ledger)
	mesasH := handler.NewMesasHandler(d.Ledger, now)
	snapshotsH := handler.NewSnapshotsHandler(d.Snapshots, d.Backups)
	syncH := handler.NewSyncHandler(d.Sync)
	exportH := handler.NewExportHandler(d.Exports, d.Backups, now)

	// ── Routes ───────────────────────────────────────────────────────────────

	r.GET("/health", handler.Health(d.Store, d.Ledger, d.RemoteReachable))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1")
	{
		v1.GET("/state", stateH.Obtener)
		v1.GET("/meta", stateH.Meta)
		v1.PUT("/negocio", stateH.ActualizarNegocio)
		v1.GET("/resumen", exportH.Resumen)

		prods := v1.Group("/productos")
		{
			prods.GET("", productosH.Listar)
			prods.POST("", productosH.Crear)
			prods.GET("/:id", productosH.ObtenerPorID)
			prods.PUT("/:id", productosH.Actualizar)
			prods.DELETE("/:id", productosH.Eliminar)
		}

		ventas := v1.Group("/ventas")
		{
			ventas.GET("", ventasH.Listar)
			ventas.POST("", ventasH.Registrar)
			ventas.DELETE("/:id", ventasH.Eliminar)
		}

		gastos := v1.Group("/gastos")
		{
			gastos.GET("", gastosH.Listar)
			gastos.POST("", gastosH.Crear)
			gastos.DELETE("/:id", gastosH.Eliminar)
		}

		mesas := v1.Group("/mesas")
		{
			mesas.GET("", mesasH.Listar)
			mesas.POST("", mesasH.Abrir)
			mesas.POST("/:id/cerrar", mesasH.Cerrar)
			mesas.DELETE("/:id", mesasH.Eliminar)
		}

		snaps := v1.Group("/snapshots")
		{
			snaps.GET("", snapshotsH.Listar)
			snaps.POST("", snapshotsH.Crear)
			snaps.GET("/:id", snapshotsH.Descargar)
			snaps.POST("/:id/restaurar", snapshotsH.Restaurar)
		}

		sync := v1.Group("/sync")
		{
			sync.GET("/config", syncH.ObtenerConfig)
			sync.PUT("/config", syncH.GuardarConfig)
			sync.POST("/test", syncH.Probar)
			sync.POST("/push", syncH.Subir)
			sync.POST("/pull", syncH.Bajar)
		}

		export := v1.Group("/export")
		{
			export.GET("/json", exportH.JSON)
			export.GET("/csv", exportH.CSV)
			export.GET("/xlsx", exportH.XLSX)
			export.GET("/pdf", exportH.PDF)
		}

		v1.POST("/import/json", exportH.Importar)
	}

	return r
}
