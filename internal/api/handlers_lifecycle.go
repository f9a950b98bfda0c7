package api

import (
	"github.com/gin-gonic/gin"

	"github.com/crawlctl/coordinator/internal/apierr"
	"github.com/crawlctl/coordinator/internal/coordinator"
	"github.com/crawlctl/coordinator/internal/domain"
	"github.com/crawlctl/coordinator/internal/normalize"
)

// getRun resolves the :runId path parameter to a live *coordinator.Run,
// writing an error envelope and returning a nil run on failure.
func (h *handlers) getRun(c *gin.Context) (*coordinator.Run, string) {
	runID := runIDParam(c)
	if runID == "" {
		writeError(c, apierr.New(apierr.CodeInvalidRequest, "missing run id"))
		return nil, ""
	}
	run, err := h.manager.Get(c.Request.Context(), runID)
	if err != nil {
		writeError(c, apierr.New(apierr.CodeInternalError, "load run: "+err.Error()))
		return nil, ""
	}
	return run, runID
}

func (h *handlers) seed(c *gin.Context) {
	run, runID := h.getRun(c)
	if run == nil {
		return
	}

	var req SeedRequest
	if !bindJSON(c, &req) {
		return
	}

	var admitted, rejected int
	seen := make(map[string]struct{}, len(req.URLs))
	for _, raw := range req.URLs {
		// A raw URL that normalizes to one already seen earlier in this
		// same batch is a same-request duplicate, not a rejection: collapse
		// it silently instead of counting it against either tally.
		if normalized, err := normalize.URL(raw); err == nil {
			if _, dup := seen[normalized]; dup {
				continue
			}
			seen[normalized] = struct{}{}
		}

		result := run.Admit(raw, req.Depth, req.Priority)
		if result.Admitted {
			admitted++
			if h.metrics != nil {
				h.metrics.URLsAdmittedTotal.WithLabelValues(runID).Inc()
			}
			continue
		}
		rejected++
		if h.metrics != nil {
			h.metrics.URLsRejectedTotal.WithLabelValues(runID, string(result.Reason)).Inc()
		}
	}

	h.observeRunGauges(runID, run)
	writeOK(c, SeedResponse{Admitted: admitted, Rejected: rejected, QueueSize: run.QueueSize()})
}

// configure applies a partial configuration update. §9's per-section merge
// semantics live in domain.Config.Merge; configId is the run id itself
// since a run carries exactly one configuration at a time.
func (h *handlers) configure(c *gin.Context) {
	run, runID := h.getRun(c)
	if run == nil {
		return
	}

	var req ConfigureRequest
	if !bindJSON(c, &req) {
		return
	}

	run.Configure(req.Config)
	writeOK(c, ConfigureResponse{ConfigID: runID})
}

func (h *handlers) start(c *gin.Context) {
	h.transition(c, func(run *coordinator.Run) error { return run.Start() })
}

func (h *handlers) pause(c *gin.Context) {
	h.transition(c, func(run *coordinator.Run) error { return run.Pause() })
}

func (h *handlers) resume(c *gin.Context) {
	h.transition(c, func(run *coordinator.Run) error { return run.Resume() })
}

func (h *handlers) cancel(c *gin.Context) {
	h.transition(c, func(run *coordinator.Run) error { return run.Cancel() })
}

func (h *handlers) reset(c *gin.Context) {
	run, runID := h.getRun(c)
	if run == nil {
		return
	}
	run.Reset()
	h.observeRunGauges(runID, run)
	writeOK(c, LifecycleResponse{Status: domain.RunPending})
}

func (h *handlers) transition(c *gin.Context, apply func(run *coordinator.Run) error) {
	run, runID := h.getRun(c)
	if run == nil {
		return
	}

	if err := apply(run); err != nil {
		writeError(c, apierr.FromCoordinator(err))
		return
	}

	status := run.Snapshot().Status
	if h.metrics != nil {
		h.metrics.RunTransitionsTotal.WithLabelValues(runID, string(status)).Inc()
	}
	h.observeRunGauges(runID, run)
	writeOK(c, LifecycleResponse{Status: status})
}
