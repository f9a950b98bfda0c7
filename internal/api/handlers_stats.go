package api

import (
	"github.com/gin-gonic/gin"

	"github.com/crawlctl/coordinator/internal/domain"
)

// maxDomainBreakdown bounds /stats' domainBreakdown per §6.
const maxDomainBreakdown = 50

func (h *handlers) stats(c *gin.Context) {
	run, _ := h.getRun(c)
	if run == nil {
		return
	}

	state := run.Snapshot()
	writeOK(c, StatsResponse{
		Run: RunSummary{
			ID:          state.ID,
			Status:      state.Status,
			StartedAt:   state.StartedAt,
			CompletedAt: state.CompletedAt,
		},
		Stats:           state.Stats,
		Progress:        state.Progress,
		DomainBreakdown: capDomainBreakdown(run.DomainStates(), maxDomainBreakdown),
	})
}

func (h *handlers) status(c *gin.Context) {
	run, _ := h.getRun(c)
	if run == nil {
		return
	}

	state := run.Snapshot()
	writeOK(c, StatusResponse{
		Status:         state.Status,
		QueueSize:      run.QueueSize(),
		VisitedCount:   run.VisitedCount(),
		DomainsTracked: len(run.DomainStates()),
		Config:         &ConfigSummary{ID: state.ID},
	})
}

// capDomainBreakdown truncates domains to at most limit entries. Map
// iteration order is unspecified, so which entries survive a truncation is
// arbitrary from one call to the next; callers only need a bound, not a
// stable top-N.
func capDomainBreakdown(domains map[string]domain.DomainState, limit int) map[string]domain.DomainState {
	if len(domains) <= limit {
		return domains
	}
	out := make(map[string]domain.DomainState, limit)
	for k, v := range domains {
		if len(out) >= limit {
			break
		}
		out[k] = v
	}
	return out
}
