// Package metrics provides Prometheus metrics for target analysis.
//
// A nil *Manager is valid and records nothing, so callers can leave metrics
// unconfigured.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Tool call outcomes.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Manager owns the metrics of one process.
type Manager struct {
	namespace   string
	subsystem   string
	shotBuckets []float64
	registry    *prometheus.Registry

	toolCalls      *prometheus.CounterVec
	analyses       prometheus.Counter
	shotsPerGroup  prometheus.Histogram
	droppedRecords prometheus.Counter
	rejectedGroups prometheus.Counter
	holesDetected  prometheus.Counter
}

// NewManager creates a manager on its own registry unless WithRegistry is
// given.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:   "target",
		subsystem:   "tools",
		shotBuckets: []float64{3, 5, 10, 20, 50, 100},
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}

	auto := promauto.With(m.registry)

	m.toolCalls = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "tool_calls_total",
		Help:      "MCP tool calls by tool and outcome",
	}, []string{"tool", "status"})

	m.analyses = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "analyses_total",
		Help:      "Shot groups analysed successfully",
	})

	m.shotsPerGroup = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "shots_per_group",
		Help:      "Number of shots in each analysed group",
		Buckets:   m.shotBuckets,
	})

	m.droppedRecords = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "dropped_records_total",
		Help:      "Records discarded during ingestion",
	})

	m.rejectedGroups = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rejected_groups_total",
		Help:      "Groups refused for having fewer than three shots",
	})

	m.holesDetected = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "holes_detected_total",
		Help:      "Bullet holes found by image detection",
	})

	return m
}

// Registry returns the registry the metrics live on.
func (m *Manager) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordToolCall counts one tool call.
func (m *Manager) RecordToolCall(tool string, err error) {
	if m == nil {
		return
	}
	status := StatusOK
	if err != nil {
		status = StatusError
	}
	m.toolCalls.WithLabelValues(tool, status).Inc()
}

// RecordAnalysis counts a successful analysis of shots samples.
func (m *Manager) RecordAnalysis(shots int) {
	if m == nil {
		return
	}
	m.analyses.Inc()
	m.shotsPerGroup.Observe(float64(shots))
}

// RecordDropped counts n discarded records.
func (m *Manager) RecordDropped(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.droppedRecords.Add(float64(n))
}

// RecordRejectedGroup counts a group refused for size.
func (m *Manager) RecordRejectedGroup() {
	if m == nil {
		return
	}
	m.rejectedGroups.Inc()
}

// RecordHoles counts n detected holes.
func (m *Manager) RecordHoles(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.holesDetected.Add(float64(n))
}
