package coordinator

import (
	"sort"
	"strings"

	"github.com/crawlctl/coordinator/internal/domain"
	"github.com/crawlctl/coordinator/internal/normalize"
)

// frontier is the pending-URL queue (C1). It is not safe for concurrent
// use on its own; callers serialize access through Run.mu (§5 single-writer
// invariant).
type frontier struct {
	items []domain.QueuedURL
	// index speeds up the "already in Frontier" admission check (§4.1(g))
	// without a linear scan per admit.
	index map[string]struct{}
}

func newFrontier() *frontier {
	return &frontier{index: map[string]struct{}{}}
}

func (f *frontier) reset() {
	f.items = nil
	f.index = map[string]struct{}{}
}

func (f *frontier) size() int {
	return len(f.items)
}

func (f *frontier) contains(normalizedURL string) bool {
	_, ok := f.index[normalizedURL]
	return ok
}

func (f *frontier) add(item domain.QueuedURL) {
	f.items = append(f.items, item)
	f.index[item.URL] = struct{}{}
}

// ordered returns the Frontier contents ranked by (−priority, addedAt) as
// required by §4.1 "Ordering on dispatch", without mutating f.items.
func (f *frontier) ordered() []domain.QueuedURL {
	out := make([]domain.QueuedURL, len(f.items))
	copy(out, f.items)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return out[i].AddedAt < out[j].AddedAt
	})
	return out
}

// removeAll replaces the Frontier contents with remaining, rebuilding the
// membership index (§4.3 step 5: "Replace the Frontier with remaining").
func (f *frontier) removeAll(remaining []domain.QueuedURL) {
	f.items = remaining
	f.index = make(map[string]struct{}, len(remaining))
	for _, item := range remaining {
		f.index[item.URL] = struct{}{}
	}
}

// admissionCheck is the pure §4.1 admit validation, split out from Run.Admit
// so it is testable without touching Visited Index or Run state directly.
func admissionCheck(cfg *domain.Config, rawURL string, depth int) (normalized, host string, result domain.AdmitResult) {
	normalized, err := normalize.URL(rawURL)
	if err != nil {
		return "", "", domain.AdmitResult{Reason: domain.RejectInvalidURL}
	}

	host, err = normalize.Host(normalized)
	if err != nil || host == "" {
		return "", "", domain.AdmitResult{Reason: domain.RejectInvalidURL}
	}

	if !domainAllowed(cfg, host) {
		return "", "", domain.AdmitResult{Reason: domain.RejectDomainScope}
	}

	if !patternAllowed(cfg, normalized) {
		return "", "", domain.AdmitResult{Reason: domain.RejectPattern}
	}

	if cfg.CrawlBehavior.MaxDepth > 0 && depth > cfg.CrawlBehavior.MaxDepth {
		return "", "", domain.AdmitResult{Reason: domain.RejectMaxDepth}
	}

	return normalized, host, domain.AdmitResult{Admitted: true}
}

func domainAllowed(cfg *domain.Config, host string) bool {
	scope := cfg.DomainScope
	for _, blocked := range scope.BlockedDomains {
		if hostMatches(host, blocked, scope.IncludeSubdomains) {
			return false
		}
	}
	if len(scope.AllowedDomains) == 0 {
		return true
	}
	for _, allowed := range scope.AllowedDomains {
		if hostMatches(host, allowed, scope.IncludeSubdomains) {
			return true
		}
	}
	return false
}

func hostMatches(host, pattern string, includeSubdomains bool) bool {
	pattern = strings.ToLower(pattern)
	if host == pattern {
		return true
	}
	return includeSubdomains && strings.HasSuffix(host, "."+pattern)
}

func patternAllowed(cfg *domain.Config, normalizedURL string) bool {
	scope := cfg.DomainScope
	for _, excl := range scope.ExcludePatterns {
		if matched, _ := regexpMatch(excl, normalizedURL); matched {
			return false
		}
	}
	if len(scope.IncludePatterns) == 0 {
		return true
	}
	for _, incl := range scope.IncludePatterns {
		if matched, _ := regexpMatch(incl, normalizedURL); matched {
			return true
		}
	}
	return false
}
