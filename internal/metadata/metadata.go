// Package metadata defines the page-metadata store contract (§6
// "Page-metadata store") and its Elasticsearch-backed implementation. The
// coordinator writes after the persistence barrier and treats failures as
// best-effort (§5 "Shared-resource policy").
package metadata

import "context"

// PageRecord is one upserted metadata entry, keyed by (RunID, URL).
type PageRecord struct {
	URL            string `json:"url"`
	Domain         string `json:"domain"`
	Status         int    `json:"status"`
	ContentHash    string `json:"contentHash,omitempty"`
	ContentSize    int64  `json:"contentSize"`
	ResponseTimeMs int64  `json:"responseTimeMs,omitempty"`
	FetchedAt      int64  `json:"fetchedAt"`
	Error          string `json:"error,omitempty"`
	RunID          string `json:"runId"`
}

// Store is the page-metadata collaborator interface.
type Store interface {
	Upsert(ctx context.Context, record PageRecord) error
}
