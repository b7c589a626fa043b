// Package metrics defines the Prometheus collectors for the engine and the HTTP API.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "forge"

type Manager struct {
	// counters
	CounterAdvances          *prometheus.CounterVec
	CounterSkipped           prometheus.Counter
	CounterFailures          *prometheus.CounterVec
	CounterTrainingMaxUpdate *prometheus.CounterVec
	CounterRequests          *prometheus.CounterVec

	// histograms
	HistAdvanceDuration prometheus.Histogram
}

// NewRegistry returns a registry with build info, Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewBuildInfoCollector(),
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func NewTestManager() *Manager {
	return NewManager(prometheus.NewRegistry())
}

func NewTestManagerAndRegistry() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager(reg), reg
}

func NewManager(reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	return &Manager{
		CounterAdvances: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "advances_total",
			Help:      "Completed week and block transitions",
		}, []string{"kind"}),
		CounterSkipped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "skipped_total",
			Help:      "Advance calls suppressed because another was in flight",
		}),
		CounterFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "failures_total",
			Help:      "Advance calls that rolled back",
		}, []string{"kind"}),
		CounterTrainingMaxUpdate: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "training_max_updates_total",
			Help:      "Training max rows written, by progression rule",
		}, []string{"rule"}),
		CounterRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "The total number of incoming requests",
		}, []string{"method", "status"}),
		HistAdvanceDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "advance_duration_seconds",
			Help:      "Time spent in advance transactions",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		}),
	}
}

func (m *Manager) AdvanceCompleted(kind string, d time.Duration) {
	m.CounterAdvances.WithLabelValues(kind).Inc()
	m.HistAdvanceDuration.Observe(d.Seconds())
}

func (m *Manager) AdvanceSkipped() {
	m.CounterSkipped.Inc()
}

func (m *Manager) AdvanceFailed(kind string) {
	m.CounterFailures.WithLabelValues(kind).Inc()
}

func (m *Manager) TrainingMaxUpdated(rule string) {
	m.CounterTrainingMaxUpdate.WithLabelValues(rule).Inc()
}
