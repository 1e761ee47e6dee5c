package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initExperimentMetrics() {
	r.TrialsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "triest_trials_total",
			Help: "Independent estimator trials completed",
		},
		[]string{"variant"},
	)

	r.TrialDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "triest_trial_duration_seconds",
			Help:    "Duration of a single estimator trial",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 1, 10},
		},
		[]string{"variant"},
	)
}
