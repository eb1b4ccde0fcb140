// Package metrics exports diff engine counters to Prometheus.
//
// A nil *Collector is valid and records nothing, so components can take
// one unconditionally.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for completed diff jobs.
const (
	OutcomePublished = "published"
	OutcomeStale     = "stale"
	OutcomeAborted   = "aborted"
	OutcomeDisposed  = "disposed"
)

// Collector holds the engine's metrics.
type Collector struct {
	dispatched      prometheus.Counter
	dropped         prometheus.Counter
	results         *prometheus.CounterVec
	computeDuration prometheus.Histogram
	pairings        prometheus.Gauge
}

// New registers the engine's metrics on reg under namespace.
func New(reg prometheus.Registerer, namespace string) *Collector {
	f := promauto.With(reg)
	return &Collector{
		dispatched: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "diff_jobs_dispatched_total",
			Help:      "Diff jobs submitted to the worker pool",
		}),
		dropped: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "diff_jobs_dropped_total",
			Help:      "Diff jobs rejected because the worker queue was full",
		}),
		results: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "diff_results_total",
			Help:      "Completed diff jobs by gate outcome",
		}, []string{"outcome"}),
		computeDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "diff_compute_duration_seconds",
			Help:      "Time spent computing a diff on a worker",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2},
		}),
		pairings: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "diff_pairings_open",
			Help:      "Open diff pairings",
		}),
	}
}

// Dispatched counts a submitted job.
func (c *Collector) Dispatched() {
	if c == nil {
		return
	}
	c.dispatched.Inc()
}

// Dropped counts a job the worker queue rejected.
func (c *Collector) Dropped() {
	if c == nil {
		return
	}
	c.dropped.Inc()
}

// Result counts a completed job by outcome.
func (c *Collector) Result(outcome string) {
	if c == nil {
		return
	}
	c.results.WithLabelValues(outcome).Inc()
}

// ObserveCompute records how long a diff took.
func (c *Collector) ObserveCompute(d time.Duration) {
	if c == nil {
		return
	}
	c.computeDuration.Observe(d.Seconds())
}

// PairingOpened increments the open pairing gauge.
func (c *Collector) PairingOpened() {
	if c == nil {
		return
	}
	c.pairings.Inc()
}

// PairingClosed decrements the open pairing gauge.
func (c *Collector) PairingClosed() {
	if c == nil {
		return
	}
	c.pairings.Dec()
}
