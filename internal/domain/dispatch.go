package domain

// WorkItem is one URL handed to a worker in a request-work response
// (§6 "POST /request-work" response shape).
type WorkItem struct {
	URL        string `json:"url"`
	Depth      int    `json:"depth"`
	Priority   int    `json:"priority"`
	RetryCount int    `json:"retryCount"`
}

// ResultReport is the payload a worker posts to report-result (§6).
type ResultReport struct {
	URL            string   `json:"url"`
	Depth          int      `json:"depth"`
	Status         int      `json:"status"`
	ContentHash    string   `json:"contentHash,omitempty"`
	ContentSize    int64    `json:"contentSize,omitempty"`
	ResponseTimeMs int64    `json:"responseTimeMs,omitempty"`
	DiscoveredUrls []string `json:"discoveredUrls,omitempty"`
	Error          string   `json:"error,omitempty"`
	FetchedAt      int64    `json:"fetchedAt"`
}

// Failed reports whether this result counts as a domain-policy failure
// (§4.3 "Failure iff error is non-empty or status ≥ 400").
func (r ResultReport) Failed() bool {
	return r.Error != "" || r.Status >= 400
}

// WorkBatch is the full request-work response body.
type WorkBatch struct {
	URLs      []WorkItem   `json:"urls"`
	QueueSize int          `json:"queueSize"`
	Config    WorkerConfig `json:"config"`
}
