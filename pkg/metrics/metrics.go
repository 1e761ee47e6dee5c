package metrics

import (
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dd0wney/cluso-triest/pkg/triest"
)

// DefaultRegistry returns the global metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
		started:  time.Now(),
	}

	r.initEstimatorMetrics()
	r.initExperimentMetrics()
	r.initSystemMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
// System gauges are refreshed on every scrape.
func (r *Registry) Handler() http.Handler {
	inner := promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		r.UpdateSystemMetrics()
		inner.ServeHTTP(w, req)
	})
}

// ObserveEdge implements triest.Observer.
func (r *Registry) ObserveEdge(ev triest.EdgeEvent) {
	variant := string(ev.Variant)
	r.EdgesTotal.WithLabelValues(variant, ev.Outcome.String()).Inc()
	if ev.Evicted {
		r.EvictionsTotal.WithLabelValues(variant).Inc()
	}
	r.ReservoirEdges.WithLabelValues(variant).Set(float64(ev.Sampled))
	r.SampledVertices.WithLabelValues(variant).Set(float64(ev.Vertices))
	r.TriangleEstimate.WithLabelValues(variant).Set(float64(ev.Estimate))
}

// RecordRun records a completed stream run
func (r *Registry) RecordRun(variant triest.Variant, status string, duration time.Duration) {
	r.RunDuration.WithLabelValues(string(variant), status).Observe(duration.Seconds())
}

// RecordSourceError counts an error returned by an edge source
func (r *Registry) RecordSourceError(source string) {
	r.SourceErrorsTotal.WithLabelValues(source).Inc()
}

// RecordTrial records one independent experiment trial
func (r *Registry) RecordTrial(variant triest.Variant, duration time.Duration) {
	r.TrialsTotal.WithLabelValues(string(variant)).Inc()
	r.TrialDuration.WithLabelValues(string(variant)).Observe(duration.Seconds())
}

// UpdateSystemMetrics refreshes uptime, goroutine and heap gauges
func (r *Registry) UpdateSystemMetrics() {
	r.mu.Lock()
	defer r.mu.Unlock()

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	r.UptimeSeconds.Set(time.Since(r.started).Seconds())
	r.GoRoutines.Set(float64(runtime.NumGoroutine()))
	r.MemoryAllocBytes.Set(float64(m.Alloc))
}

var _ triest.Observer = (*Registry)(nil)
