package domain

import "time"

// RunStatus is one of the Run State Machine's states.
type RunStatus string

const (
	RunPending   RunStatus = "pending"
	RunRunning   RunStatus = "running"
	RunPaused    RunStatus = "paused"
	RunCompleted RunStatus = "completed"
	RunCancelled RunStatus = "cancelled"
	RunFailed    RunStatus = "failed"
)

// Stats accumulates counters surfaced on /stats.
type Stats struct {
	URLsQueued      int64   `json:"urlsQueued"`
	URLsFetched     int64   `json:"urlsFetched"`
	URLsFailed      int64   `json:"urlsFailed"`
	BytesDownloaded int64   `json:"bytesDownloaded"`
	AvgResponseTime float64 `json:"avgResponseTimeMs"`
	PagesPerMinute  float64 `json:"pagesPerMinute"`
}

// Progress is a derived projection recomputed after every result report.
type Progress struct {
	Percentage              int     `json:"percentage"`
	EstimatedSecondsRemain  int     `json:"estimatedSecondsRemaining"`
}

// State is the full Run State record (§3 "Run State").
type State struct {
	ID          string     `json:"id"`
	Status      RunStatus  `json:"status"`
	Config      *Config    `json:"config"`
	Stats       Stats      `json:"stats"`
	Progress    Progress   `json:"progress"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	PausedAt    *time.Time `json:"pausedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	Error       string     `json:"error,omitempty"`

	// LastActivityAt drives the maintenance tick's stalled-run warning
	// (§4.5(c)); updated on every request-work/report-result call.
	LastActivityAt time.Time `json:"lastActivityAt"`
}

// NewState returns a fresh pending Run State with default configuration.
func NewState(id string) *State {
	return &State{
		ID:     id,
		Status: RunPending,
		Config: DefaultConfig(),
	}
}
