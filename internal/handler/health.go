package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/salazaroliveros-prog/billar-finanzas/internal/kv"
	"github.com/salazaroliveros-prog/billar-finanzas/internal/service"

	"github.com/gin-gonic/gin"
)

// Health returns a JSON health check response.
// Checks store connectivity and whether the ledger is loaded; reports the sync
// breaker without failing on it. Never exposes credentials or internals.
func Health(store kv.Store, ledger service.LedgerService, remoteReachable func() bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		storeStatus := "connected"
		if _, _, err := store.Get(ctx, kv.KeyMeta); err != nil {
			storeStatus = "error"
		}

		ledgerStatus := "loaded"
		if _, err := ledger.Current(); err != nil {
			ledgerStatus = "not_loaded"
		}

		remoteStatus := "closed"
		if remoteReachable != nil && !remoteReachable() {
			remoteStatus = "open"
		}

		status := http.StatusOK
		if storeStatus != "connected" || ledgerStatus != "loaded" {
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, gin.H{
			"ok":           status == http.StatusOK,
			"store":        storeStatus,
			"ledger":       ledgerStatus,
			"sync_breaker": remoteStatus,
		})
	}
}
