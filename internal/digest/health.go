package digest

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthHandler exposes liveness and readiness for the digest process.
func (r *Runner) HealthHandler() http.Handler {
	engine := gin.New()

	engine.Use(gin.Recovery())

	// liveness: process is up
	engine.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"ok": true})
	})

	// readiness: the digest loop is running
	engine.GET("/readyz", func(ctx *gin.Context) {
		r.readyMu.RLock()
		ready := r.ready
		r.readyMu.RUnlock()

		if !ready {
			ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready"})
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	return engine
}
