package api

import (
	"time"

	"github.com/crawlctl/coordinator/internal/domain"
)

// SeedRequest is the body of POST /runs/:runId/seed.
type SeedRequest struct {
	URLs     []string `json:"urls"`
	Depth    int      `json:"depth,omitempty"`
	Priority int      `json:"priority,omitempty"`
}

// SeedResponse reports how many of the submitted URLs were admitted.
type SeedResponse struct {
	Admitted  int `json:"admitted"`
	Rejected  int `json:"rejected"`
	QueueSize int `json:"queueSize"`
}

// ConfigureRequest is the body of POST /runs/:runId/configure.
type ConfigureRequest struct {
	Config domain.ConfigUpdate `json:"config"`
}

// ConfigureResponse echoes back an identifier for the configuration now in
// effect. A run carries exactly one configuration, so configId is the run
// id itself.
type ConfigureResponse struct {
	ConfigID string `json:"configId"`
}

// LifecycleResponse is the body returned by /start, /pause, /resume,
// /cancel and /reset.
type LifecycleResponse struct {
	Status domain.RunStatus `json:"status"`
}

// StatsResponse is the body of GET /runs/:runId/stats.
type StatsResponse struct {
	Run             RunSummary                    `json:"run"`
	Stats           domain.Stats                   `json:"stats"`
	Progress        domain.Progress                `json:"progress"`
	DomainBreakdown map[string]domain.DomainState `json:"domainBreakdown"`
}

// RunSummary is the minimal run identity/lifecycle block embedded in
// StatsResponse.
type RunSummary struct {
	ID          string           `json:"id"`
	Status      domain.RunStatus `json:"status"`
	StartedAt   *time.Time       `json:"startedAt,omitempty"`
	CompletedAt *time.Time       `json:"completedAt,omitempty"`
}

// StatusResponse is the body of GET /runs/:runId/status.
type StatusResponse struct {
	Status         domain.RunStatus `json:"status"`
	QueueSize      int              `json:"queueSize"`
	VisitedCount   int              `json:"visitedCount"`
	DomainsTracked int              `json:"domainsTracked"`
	Config         *ConfigSummary   `json:"config,omitempty"`
}

// ConfigSummary identifies the configuration active for a run. A run
// carries exactly one configuration (§3), so id is the run id itself, the
// same value /configure's configId echoes back.
type ConfigSummary struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// RequestWorkRequest is the body of POST /request-work.
type RequestWorkRequest struct {
	RunID     string `json:"runId"`
	BatchSize int    `json:"batchSize,omitempty"`
	WorkerID  string `json:"workerId,omitempty"`
}

// ReportResultRequest is the body of POST /report-result.
type ReportResultRequest struct {
	RunID          string   `json:"runId"`
	URL            string   `json:"url"`
	Depth          int      `json:"depth"`
	Status         int      `json:"status"`
	ContentHash    string   `json:"contentHash,omitempty"`
	ContentSize    int64    `json:"contentSize,omitempty"`
	ResponseTimeMs int64    `json:"responseTimeMs,omitempty"`
	DiscoveredUrls []string `json:"discoveredUrls,omitempty"`
	Error          string   `json:"error,omitempty"`
	FetchedAt      int64    `json:"fetchedAt"`
	Content        string   `json:"content,omitempty"`
	ContentType    string   `json:"contentType,omitempty"`
}

// ReportResultResponse is the body returned by report-result on success.
type ReportResultResponse struct {
	Success bool `json:"success"`
}

// OnCronRequest is the body of POST /on-cron.
type OnCronRequest struct {
	RunID string `json:"runId"`
}

// OnCronResponse is the body returned by /on-cron.
type OnCronResponse struct {
	QueueSize int `json:"queueSize"`
}
