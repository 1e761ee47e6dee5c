package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initEstimatorMetrics() {
	r.EdgesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "triest_edges_total",
			Help: "Edges handled by the estimator, by outcome (admitted, discarded, rejected)",
		},
		[]string{"variant", "outcome"},
	)

	r.EvictionsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "triest_evictions_total",
			Help: "Reservoir edges replaced by a newer arrival",
		},
		[]string{"variant"},
	)

	r.ReservoirEdges = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "triest_reservoir_edges",
			Help: "Edges currently held in the reservoir",
		},
		[]string{"variant"},
	)

	r.SampledVertices = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "triest_sampled_vertices",
			Help: "Vertices touching at least one sampled edge",
		},
		[]string{"variant"},
	)

	r.TriangleEstimate = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "triest_triangle_estimate",
			Help: "Current estimate of the global triangle count",
		},
		[]string{"variant"},
	)

	r.RunDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "triest_run_duration_seconds",
			Help:    "Wall time to consume a whole edge stream",
			Buckets: []float64{0.01, 0.1, 1, 10, 60, 300, 1800},
		},
		[]string{"variant", "status"},
	)

	r.SourceErrorsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "triest_source_errors_total",
			Help: "Errors returned by edge stream sources",
		},
		[]string{"source"},
	)
}
