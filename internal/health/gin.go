package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// readinessTimeout bounds how long a /health/ready request waits on checks.
const readinessTimeout = 5 * time.Second

// GinHandler returns the full readiness handler: runs every registered
// check and reports per-check results.
func (c *Checker) GinHandler() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		checkCtx, cancel := context.WithTimeout(ctx.Request.Context(), readinessTimeout)
		defer cancel()

		status, results := c.Check(checkCtx)

		statusCode := http.StatusOK
		if status == StatusUnhealthy {
			statusCode = http.StatusServiceUnavailable
		}

		ctx.JSON(statusCode, gin.H{
			"status":    status,
			"checks":    results,
			"timestamp": time.Now().Format(time.RFC3339),
		})
	}
}

// GinLivenessHandler answers /health/live without consulting any checks —
// it only proves the process is scheduled and responding.
func GinLivenessHandler() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "alive"})
	}
}

// RegisterRoutes wires /health, /health/live and /health/ready onto router.
func RegisterRoutes(router *gin.Engine, checker *Checker) {
	router.GET("/health", checker.GinHandler())
	router.GET("/health/live", GinLivenessHandler())
	router.GET("/health/ready", checker.GinHandler())
}
