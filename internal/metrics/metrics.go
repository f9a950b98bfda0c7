// Package metrics provides Prometheus metrics for the coordinator's
// frontier, scheduler, and run state machine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	// Namespace is the namespace for all coordinator metrics.
	Namespace = "crawlctl"

	// Subsystem is the subsystem for coordinator metrics.
	Subsystem = "coordinator"
)

// Metrics holds every Prometheus metric the coordinator exposes.
type Metrics struct {
	// Frontier metrics
	FrontierSize       *prometheus.GaugeVec
	URLsAdmittedTotal  *prometheus.CounterVec
	URLsRejectedTotal  *prometheus.CounterVec
	VisitedIndexSize   *prometheus.GaugeVec

	// Dispatch metrics
	DispatchBatchSize   *prometheus.HistogramVec
	DispatchesTotal     *prometheus.CounterVec
	DomainsInBackoff    *prometheus.GaugeVec

	// Result metrics
	ResultsTotal       *prometheus.CounterVec
	ResponseTimeSeconds *prometheus.HistogramVec

	// Run lifecycle metrics
	RunStatus          *prometheus.GaugeVec
	RunTransitionsTotal *prometheus.CounterVec

	// Persistence metrics
	SnapshotWritesTotal   *prometheus.CounterVec
	SnapshotWriteDuration *prometheus.HistogramVec
}

// New creates and registers every coordinator metric against reg. A nil reg
// registers against prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	factory := promauto.With(reg)
	m := &Metrics{}

	m.initFrontierMetrics(factory)
	m.initDispatchMetrics(factory)
	m.initResultMetrics(factory)
	m.initRunMetrics(factory)
	m.initPersistenceMetrics(factory)

	return m
}

func (m *Metrics) initFrontierMetrics(factory promauto.Factory) {
	m.FrontierSize = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: Subsystem,
			Name:      "frontier_size",
			Help:      "Current number of URLs pending dispatch, per run.",
		},
		[]string{"run_id"},
	)

	m.URLsAdmittedTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: Subsystem,
			Name:      "urls_admitted_total",
			Help:      "Total URLs accepted into the frontier.",
		},
		[]string{"run_id"},
	)

	m.URLsRejectedTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: Subsystem,
			Name:      "urls_rejected_total",
			Help:      "Total URLs rejected on admission, by reason.",
		},
		[]string{"run_id", "reason"},
	)

	m.VisitedIndexSize = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: Subsystem,
			Name:      "visited_index_size",
			Help:      "Current size of the visited URL index, per run.",
		},
		[]string{"run_id"},
	)
}

func (m *Metrics) initDispatchMetrics(factory promauto.Factory) {
	m.DispatchBatchSize = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: Subsystem,
			Name:      "dispatch_batch_size",
			Help:      "Size of batches returned from request-work.",
			Buckets:   prometheus.LinearBuckets(0, 10, 11), // 0..100
		},
		[]string{"run_id"},
	)

	m.DispatchesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: Subsystem,
			Name:      "dispatches_total",
			Help:      "Total request-work calls, by whether the batch was empty.",
		},
		[]string{"run_id", "empty"},
	)

	m.DomainsInBackoff = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: Subsystem,
			Name:      "domains_in_backoff",
			Help:      "Number of domains currently past their politeness window.",
		},
		[]string{"run_id"},
	)
}

func (m *Metrics) initResultMetrics(factory promauto.Factory) {
	m.ResultsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: Subsystem,
			Name:      "results_total",
			Help:      "Total report-result calls, by outcome.",
		},
		[]string{"run_id", "outcome"},
	)

	m.ResponseTimeSeconds = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: Subsystem,
			Name:      "response_time_seconds",
			Help:      "Worker-reported fetch response time.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 14), // 10ms .. ~82s
		},
		[]string{"run_id"},
	)
}

func (m *Metrics) initRunMetrics(factory promauto.Factory) {
	m.RunStatus = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: Subsystem,
			Name:      "run_status",
			Help:      "1 if the run is currently in this status, else 0.",
		},
		[]string{"run_id", "status"},
	)

	m.RunTransitionsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: Subsystem,
			Name:      "run_transitions_total",
			Help:      "Total run state transitions, by target status.",
		},
		[]string{"run_id", "status"},
	)
}

func (m *Metrics) initPersistenceMetrics(factory promauto.Factory) {
	m.SnapshotWritesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: Subsystem,
			Name:      "snapshot_writes_total",
			Help:      "Total snapshot persistence attempts, by result.",
		},
		[]string{"run_id", "result"},
	)

	m.SnapshotWriteDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: Subsystem,
			Name:      "snapshot_write_duration_seconds",
			Help:      "Duration of the five-slot snapshot persistence write.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"run_id"},
	)
}
