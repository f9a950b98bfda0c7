package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/crawlctl/coordinator/internal/apierr"
	"github.com/crawlctl/coordinator/internal/coordinator"
	"github.com/crawlctl/coordinator/internal/domain"
)

// bindJSON decodes the request body into dst, writing an INVALID_REQUEST
// envelope and returning false on failure.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		writeError(c, apierr.New(apierr.CodeInvalidRequest, "invalid request body: "+err.Error()))
		return false
	}
	return true
}

// writeError writes e's envelope at its mapped HTTP status and aborts the
// gin context so no further handler in the chain runs.
func writeError(c *gin.Context, e *apierr.Error) {
	c.AbortWithStatusJSON(e.Status(), apierr.NewEnvelope(e))
}

// writeOK writes a 200 response with body as the JSON payload (no
// envelope wrapping on success — §6 response shapes are bare objects).
func writeOK(c *gin.Context, body any) {
	c.JSON(http.StatusOK, body)
}

// writeCreated writes a 201 response.
func writeCreated(c *gin.Context, body any) {
	c.JSON(http.StatusCreated, body)
}

func runIDParam(c *gin.Context) string {
	return c.Param("runId")
}

// allRunStatuses backs observeRunGauges' exclusive run_status set.
var allRunStatuses = []domain.RunStatus{
	domain.RunPending, domain.RunRunning, domain.RunPaused,
	domain.RunCompleted, domain.RunCancelled, domain.RunFailed,
}

// observeRunGauges refreshes the point-in-time frontier/visited/backoff/
// status gauges for runID after a handler has mutated run. Cheap enough to
// call on every request that touches a run: each underlying accessor is an
// O(1) or O(domains) read already guarded by run's own mutex.
func (h *handlers) observeRunGauges(runID string, run *coordinator.Run) {
	if h.metrics == nil {
		return
	}

	h.metrics.FrontierSize.WithLabelValues(runID).Set(float64(run.QueueSize()))
	h.metrics.VisitedIndexSize.WithLabelValues(runID).Set(float64(run.VisitedCount()))
	h.metrics.DomainsInBackoff.WithLabelValues(runID).Set(float64(run.DomainsInBackoff()))

	status := run.Snapshot().Status
	for _, s := range allRunStatuses {
		value := 0.0
		if s == status {
			value = 1
		}
		h.metrics.RunStatus.WithLabelValues(runID, string(s)).Set(value)
	}
}
