package domain

// Config is the deep configuration record from spec.md §3/§6: five
// independently mergeable sections. Every field carries the documented
// default (see DefaultConfig) and is mutated only via a per-section
// shallow-merge (see MergeConfig), never a whole-struct replace.
type Config struct {
	RateLimit      RateLimitConfig      `json:"rateLimiting"`
	ContentFilter  ContentFilterConfig  `json:"contentFiltering"`
	CrawlBehavior  CrawlBehaviorConfig  `json:"crawlBehavior"`
	DomainScope    DomainScopeConfig    `json:"domainScope"`
	Rendering      RenderingConfig      `json:"rendering"`
}

// RateLimitConfig paces dispatch per domain and globally.
type RateLimitConfig struct {
	MinDomainDelayMs         int     `json:"minDomainDelayMs"`
	MaxDomainDelayMs         int     `json:"maxDomainDelayMs"`
	ErrorBackoffMultiplier   float64 `json:"errorBackoffMultiplier"`
	JitterFactor             float64 `json:"jitterFactor"`
	MaxConcurrentRequests    int     `json:"maxConcurrentRequests"`
	GlobalRateLimitPerMinute int     `json:"globalRateLimitPerMinute"`
}

// ContentFilterConfig bounds what workers are told to fetch/store.
type ContentFilterConfig struct {
	MaxContentSizeBytes int64    `json:"maxContentSizeBytes"`
	AllowedContentTypes []string `json:"allowedContentTypes"`
	SkipBinaryFiles     bool     `json:"skipBinaryFiles"`
	StoreContent        bool     `json:"storeContent"`
}

// CrawlBehaviorConfig controls depth, batching, retries and worker policy.
type CrawlBehaviorConfig struct {
	MaxDepth          int    `json:"maxDepth"`
	MaxQueueSize      int    `json:"maxQueueSize"`
	MaxPagesPerRun    int    `json:"maxPagesPerRun"`
	DefaultBatchSize  int    `json:"defaultBatchSize"`
	RequestTimeoutMs  int    `json:"requestTimeoutMs"`
	RetryCount        int    `json:"retryCount"`
	RespectRobotsTxt  bool   `json:"respectRobotsTxt"`
	FollowRedirects   bool   `json:"followRedirects"`
	MaxRedirects      int    `json:"maxRedirects"`
	UserAgent         string `json:"userAgent"`
	FollowLinks       bool   `json:"followLinks"`
	SameDomainOnly    bool   `json:"sameDomainOnly"`
}

// DomainScopeConfig restricts which domains/paths are eligible for admission.
type DomainScopeConfig struct {
	AllowedDomains    []string `json:"allowedDomains"`
	BlockedDomains    []string `json:"blockedDomains"`
	IncludePatterns   []string `json:"includePatterns"`
	ExcludePatterns   []string `json:"excludePatterns"`
	IncludeSubdomains bool     `json:"includeSubdomains"`
}

// RenderingConfig is reserved for a future JS-rendering worker tier; carried
// as an empty, always-valid section since JS rendering itself is a
// documented Non-goal (spec.md §1).
type RenderingConfig struct {
	Enabled bool `json:"enabled"`
}

// Batch dispatch hard cap (spec.md §4.3 step 3: "min(batchSize, 100)").
const MaxBatchSize = 100

// DefaultConfig returns the configuration with every documented default
// value from spec.md §6.
func DefaultConfig() *Config {
	return &Config{
		RateLimit: RateLimitConfig{
			MinDomainDelayMs:         1000,
			MaxDomainDelayMs:         60000,
			ErrorBackoffMultiplier:   2,
			JitterFactor:             0.1,
			MaxConcurrentRequests:    16,
			GlobalRateLimitPerMinute: 0,
		},
		ContentFilter: ContentFilterConfig{
			MaxContentSizeBytes: 10 * 1024 * 1024,
			AllowedContentTypes: []string{"text/html", "application/xhtml+xml"},
			SkipBinaryFiles:     true,
			StoreContent:        true,
		},
		CrawlBehavior: CrawlBehaviorConfig{
			MaxDepth:         10,
			MaxQueueSize:     100000,
			MaxPagesPerRun:   0,
			DefaultBatchSize: 10,
			RequestTimeoutMs: 30000,
			RetryCount:       3,
			RespectRobotsTxt: true,
			FollowRedirects:  true,
			MaxRedirects:     5,
			UserAgent:        "CloudflareCrawler/1.0",
			FollowLinks:      true,
			SameDomainOnly:   true,
		},
		DomainScope: DomainScopeConfig{
			IncludeSubdomains: true,
		},
		Rendering: RenderingConfig{},
	}
}

// ConfigUpdate is the partial payload accepted by /configure: every section
// is optional, and present fields are merged, never replaced wholesale.
type ConfigUpdate struct {
	RateLimit     *RateLimitConfig     `json:"rateLimiting,omitempty"`
	ContentFilter *ContentFilterConfig `json:"contentFiltering,omitempty"`
	CrawlBehavior *CrawlBehaviorConfig `json:"crawlBehavior,omitempty"`
	DomainScope   *DomainScopeConfig   `json:"domainScope,omitempty"`
	Rendering     *RenderingConfig     `json:"rendering,omitempty"`
}

// Merge applies upd on top of c one section at a time. A section present in
// upd replaces that whole section (the five sections are the unit of
// merge — spec.md §9 "Configuration merge semantics": "a per-section merge
// rather than whole-config replace"); sections absent from upd keep their
// prior values untouched.
func (c *Config) Merge(upd ConfigUpdate) {
	if upd.RateLimit != nil {
		c.RateLimit = *upd.RateLimit
	}
	if upd.ContentFilter != nil {
		c.ContentFilter = *upd.ContentFilter
	}
	if upd.CrawlBehavior != nil {
		c.CrawlBehavior = *upd.CrawlBehavior
	}
	if upd.DomainScope != nil {
		c.DomainScope = *upd.DomainScope
	}
	if upd.Rendering != nil {
		c.Rendering = *upd.Rendering
	}
}

// Clone returns a deep-enough copy for snapshotting into a dispatched batch
// (workerConfig is derived from a frozen copy per spec.md §3).
func (c *Config) Clone() *Config {
	clone := *c
	clone.ContentFilter.AllowedContentTypes = append([]string(nil), c.ContentFilter.AllowedContentTypes...)
	clone.DomainScope.AllowedDomains = append([]string(nil), c.DomainScope.AllowedDomains...)
	clone.DomainScope.BlockedDomains = append([]string(nil), c.DomainScope.BlockedDomains...)
	clone.DomainScope.IncludePatterns = append([]string(nil), c.DomainScope.IncludePatterns...)
	clone.DomainScope.ExcludePatterns = append([]string(nil), c.DomainScope.ExcludePatterns...)
	return &clone
}

// WorkerConfig is the flattened projection handed to workers on every
// request-work response (spec.md §4.5 "Worker configuration projection").
type WorkerConfig struct {
	RequestTimeoutMs     int      `json:"requestTimeoutMs"`
	RespectRobotsTxt     bool     `json:"respectRobotsTxt"`
	UserAgent            string   `json:"userAgent"`
	CustomHeaders        map[string]string `json:"customHeaders,omitempty"`
	MaxContentSizeBytes  int64    `json:"maxContentSizeBytes"`
	AllowedContentTypes  []string `json:"allowedContentTypes"`
	FollowRedirects      bool     `json:"followRedirects"`
	MaxRedirects         int      `json:"maxRedirects"`
	StoreContent         bool     `json:"storeContent"`
}

// WorkerConfig derives the worker-facing projection from the full config.
func (c *Config) WorkerConfig() WorkerConfig {
	return WorkerConfig{
		RequestTimeoutMs:    c.CrawlBehavior.RequestTimeoutMs,
		RespectRobotsTxt:    c.CrawlBehavior.RespectRobotsTxt,
		UserAgent:           c.CrawlBehavior.UserAgent,
		MaxContentSizeBytes: c.ContentFilter.MaxContentSizeBytes,
		AllowedContentTypes: append([]string(nil), c.ContentFilter.AllowedContentTypes...),
		FollowRedirects:     c.CrawlBehavior.FollowRedirects,
		MaxRedirects:        c.CrawlBehavior.MaxRedirects,
		StoreContent:        c.ContentFilter.StoreContent,
	}
}
