// Package telemetry wires structured logging and Prometheus metrics for
// the kernel-validator process, following the teacher's preference for a
// single stdlib *log.Logger per component (see pkg/server's
// "[BundleAPI] " style prefix) paired with promauto-registered metrics,
// which internal/api serves under /metrics on the same listener as the API.
package telemetry

import (
	"log"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// NewLogger builds a prefixed stdlib logger for a named component,
// matching the "[Component] " prefix convention used throughout the
// teacher's pkg/server handlers.
func NewLogger(component string) *log.Logger {
	return log.New(os.Stdout, "["+component+"] ", log.LstdFlags|log.Lmicroseconds)
}

// Metrics holds the kernel's Prometheus instrumentation. A single
// Metrics is created per process and shared by the API and transition
// layers.
type Metrics struct {
	EpochsApplied     prometheus.Counter
	EpochsRejected    *prometheus.CounterVec
	EpochApplySeconds prometheus.Histogram
	QuorumSignatures  prometheus.Histogram
	PoolMutations     *prometheus.CounterVec
	EntropyMetric     prometheus.Gauge
	CurrentEpoch      prometheus.Gauge
}

// NewMetrics registers the kernel's metrics against the given registerer.
// Pass prometheus.DefaultRegisterer in production; tests should pass a
// fresh prometheus.NewRegistry() to avoid collisions between runs.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		EpochsApplied: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "kernel",
			Name:      "epochs_applied_total",
			Help:      "Epoch transitions successfully committed.",
		}),
		EpochsRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kernel",
			Name:      "epochs_rejected_total",
			Help:      "Epoch transitions rejected, labeled by error kind.",
		}, []string{"kind"}),
		EpochApplySeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "kernel",
			Name:      "epoch_apply_seconds",
			Help:      "Wall-clock time spent inside ApplyEpoch.",
			Buckets:   prometheus.DefBuckets,
		}),
		QuorumSignatures: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "kernel",
			Name:      "quorum_signature_count",
			Help:      "Number of validator signatures presented per committed epoch.",
			Buckets:   prometheus.LinearBuckets(0, 5, 20),
		}),
		PoolMutations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kernel",
			Name:      "pool_mutations_total",
			Help:      "Leaf mutations applied, labeled by pool.",
		}, []string{"pool"}),
		EntropyMetric: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "kernel",
			Name:      "entropy_metric_scaled",
			Help:      "Global entropy metric of the most recently committed epoch, as a float approximation of the fixed-point value.",
		}),
		CurrentEpoch: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "kernel",
			Name:      "current_epoch_number",
			Help:      "Epoch number of the most recently committed epoch.",
		}),
	}
}
