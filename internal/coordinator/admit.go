package coordinator

import (
	"github.com/crawlctl/coordinator/internal/domain"
	"github.com/crawlctl/coordinator/internal/normalize"
)

// Admit validates and enqueues a single URL per §4.1. Discovered URLs
// (called from ReportResult) and operator-seeded URLs (called from the
// /seed handler) both funnel through here so admission order (h) — the
// maxQueueSize check — always sees the true current size.
func (r *Run) Admit(rawURL string, depth, priority int) domain.AdmitResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := r.admitLocked(rawURL, depth, priority)
	r.persistLocked()
	return result
}

// admitLocked is the core admission check plus enqueue, shared by Admit and
// the discovered-URL path inside ReportResult (which must not take r.mu
// twice or persist twice per report).
func (r *Run) admitLocked(rawURL string, depth, priority int) domain.AdmitResult {
	normalized, host, result := admissionCheck(r.state.Config, rawURL, depth)
	if !result.Admitted {
		return result
	}

	if r.visited.contains(normalize.Hash(normalized)) {
		return domain.AdmitResult{Reason: domain.RejectAlreadyVisited}
	}
	if r.frontier.contains(normalized) {
		return domain.AdmitResult{Reason: domain.RejectAlreadyQueued}
	}
	if r.frontier.size() >= r.state.Config.CrawlBehavior.MaxQueueSize {
		return domain.AdmitResult{Reason: domain.RejectQueueFull}
	}

	r.frontier.add(domain.QueuedURL{
		URL:      normalized,
		Domain:   host,
		Depth:    depth,
		AddedAt:  r.clock.Now().UnixMilli(),
		Priority: priority,
	})
	r.state.Stats.URLsQueued++

	return domain.AdmitResult{Admitted: true}
}
