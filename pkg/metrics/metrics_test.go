package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"

	"github.com/dd0wney/cluso-triest/pkg/triest"
)

func counterValue(t *testing.T, c interface{ Write(*dto.Metric) error }) float64 {
	t.Helper()
	var metric dto.Metric
	if err := c.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	if metric.Counter != nil {
		return metric.Counter.GetValue()
	}
	return metric.Gauge.GetValue()
}

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r == nil {
		t.Fatal("NewRegistry() returned nil")
	}

	if r.EdgesTotal == nil {
		t.Error("EdgesTotal not initialized")
	}
	if r.TriangleEstimate == nil {
		t.Error("TriangleEstimate not initialized")
	}
	if r.TrialsTotal == nil {
		t.Error("TrialsTotal not initialized")
	}
	if r.GetPrometheusRegistry() == nil {
		t.Error("Prometheus registry not initialized")
	}
}

func TestDefaultRegistry(t *testing.T) {
	r1 := DefaultRegistry()
	r2 := DefaultRegistry()

	if r1 != r2 {
		t.Error("DefaultRegistry() should return the same instance")
	}
}

func TestObserveEdge(t *testing.T) {
	r := NewRegistry()

	est, err := triest.NewBase(3, triest.WithSeed(1), triest.WithObserver(r))
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range []triest.Edge{{U: 1, V: 2}, {U: 2, V: 3}, {U: 1, V: 3}} {
		if err := est.HandleEdge(e); err != nil {
			t.Fatal(err)
		}
	}
	_ = est.HandleEdge(triest.Edge{U: 4, V: 4})

	admitted, err := r.EdgesTotal.GetMetricWithLabelValues("base", "admitted")
	if err != nil {
		t.Fatalf("Failed to get metric: %v", err)
	}
	if v := counterValue(t, admitted); v != 3 {
		t.Errorf("admitted counter = %v, want 3", v)
	}

	rejected, _ := r.EdgesTotal.GetMetricWithLabelValues("base", "rejected")
	if v := counterValue(t, rejected); v != 1 {
		t.Errorf("rejected counter = %v, want 1", v)
	}

	estimate, _ := r.TriangleEstimate.GetMetricWithLabelValues("base")
	if v := counterValue(t, estimate); v != 1 {
		t.Errorf("estimate gauge = %v, want 1", v)
	}

	size, _ := r.ReservoirEdges.GetMetricWithLabelValues("base")
	if v := counterValue(t, size); v != 3 {
		t.Errorf("reservoir gauge = %v, want 3", v)
	}
}

func TestRecordTrial(t *testing.T) {
	r := NewRegistry()

	r.RecordTrial(triest.VariantImproved, 5*time.Millisecond)
	r.RecordTrial(triest.VariantImproved, 7*time.Millisecond)

	c, err := r.TrialsTotal.GetMetricWithLabelValues("improved")
	if err != nil {
		t.Fatal(err)
	}
	if v := counterValue(t, c); v != 2 {
		t.Errorf("trials counter = %v, want 2", v)
	}
}

func TestRecordSourceError(t *testing.T) {
	r := NewRegistry()
	r.RecordSourceError("file")

	c, _ := r.SourceErrorsTotal.GetMetricWithLabelValues("file")
	if v := counterValue(t, c); v != 1 {
		t.Errorf("source error counter = %v, want 1", v)
	}
}

func TestHandler(t *testing.T) {
	r := NewRegistry()
	r.RecordRun(triest.VariantBase, "success", time.Second)
	r.EdgesTotal.WithLabelValues("base", "admitted").Inc()

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	for _, name := range []string{
		"triest_edges_total",
		"triest_run_duration_seconds",
		"triest_uptime_seconds",
		"triest_goroutines",
	} {
		if !strings.Contains(string(body), name) {
			t.Errorf("metrics output missing %s", name)
		}
	}
}
