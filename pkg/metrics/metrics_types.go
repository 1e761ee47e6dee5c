package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for the estimator binaries
type Registry struct {
	// Estimator metrics, labelled by variant
	EdgesTotal        *prometheus.CounterVec
	EvictionsTotal    *prometheus.CounterVec
	ReservoirEdges    *prometheus.GaugeVec
	SampledVertices   *prometheus.GaugeVec
	TriangleEstimate  *prometheus.GaugeVec
	RunDuration       *prometheus.HistogramVec
	SourceErrorsTotal *prometheus.CounterVec

	// Experiment metrics
	TrialsTotal   *prometheus.CounterVec
	TrialDuration *prometheus.HistogramVec

	// System metrics
	UptimeSeconds    prometheus.Gauge
	GoRoutines       prometheus.Gauge
	MemoryAllocBytes prometheus.Gauge

	registry *prometheus.Registry
	started  time.Time
	mu       sync.Mutex
}

var (
	// Global registry instance
	defaultRegistry *Registry
	once            sync.Once
)
