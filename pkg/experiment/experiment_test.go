package experiment

import (
	"context"
	"math"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-triest/pkg/algorithms"
	"github.com/dd0wney/cluso-triest/pkg/metrics"
	"github.com/dd0wney/cluso-triest/pkg/triest"
)

func TestWelford(t *testing.T) {
	var w Welford
	assert.Zero(t, w.Mean())
	assert.Zero(t, w.SampleVariance())

	for _, x := range []float64{2, 4, 4, 4, 5, 5, 7, 9} {
		w.Add(x)
	}
	assert.Equal(t, int64(8), w.Count())
	assert.InDelta(t, 5.0, w.Mean(), 1e-12)
	assert.InDelta(t, 32.0/7.0, w.SampleVariance(), 1e-12)
	assert.InDelta(t, math.Sqrt(32.0/7.0), w.SampleStandardDeviation(), 1e-12)
}

func TestSummarize(t *testing.T) {
	s := Summarize([]int64{8, 10, 12, 10}, 10)

	assert.Equal(t, 4, s.Trials)
	assert.InDelta(t, 10.0, s.Mean, 1e-12)
	assert.InDelta(t, math.Sqrt(8.0/3.0), s.StdDev, 1e-12)
	assert.InDelta(t, 0.1, s.MeanRelativeError, 1e-12)
	assert.InDelta(t, 0.0, s.Bias, 1e-12)
	assert.Equal(t, int64(8), s.Min)
	assert.Equal(t, int64(12), s.Max)
	assert.Equal(t, 10.0, s.Median)
	assert.Equal(t, 8.0, s.P05)
	assert.Equal(t, 12.0, s.P95)
}

func TestSummarize_Edges(t *testing.T) {
	empty := Summarize(nil, 5)
	assert.Zero(t, empty.Trials)
	assert.Zero(t, empty.Mean)

	zeroTruth := Summarize([]int64{0, 3}, 0)
	assert.Zero(t, zeroTruth.MeanRelativeError)
	assert.Zero(t, zeroTruth.Bias)
	assert.InDelta(t, 1.5, zeroTruth.Mean, 1e-12)
}

func TestRun_StreamFitsReservoir(t *testing.T) {
	edges := algorithms.CompleteGraph(6)

	// nothing is evicted, so every trial ends in the same state
	for _, v := range triest.Variants() {
		s, err := Run(context.Background(), Config{
			Variant:       v,
			ReservoirSize: len(edges),
			Trials:        8,
			Workers:       3,
		}, edges, 20)
		require.NoError(t, err)

		require.Len(t, s.Estimates, 8)
		for _, e := range s.Estimates {
			assert.Equal(t, s.Estimates[0], e)
		}
		assert.Zero(t, s.StdDev)
		assert.Equal(t, v, s.Variant)
		if v == triest.VariantBase {
			assert.Equal(t, int64(20), s.Estimates[0])
			assert.Zero(t, s.MeanRelativeError)
		}
	}
}

func TestRun_ReproducibleAcrossWorkerCounts(t *testing.T) {
	edges := algorithms.CompleteGraph(12)
	algorithms.Shuffle(edges, 3)
	truth := algorithms.CountTrianglesGlobal(edges)

	cfg := Config{Variant: triest.VariantImproved, ReservoirSize: 20, Trials: 16, BaseSeed: 99, Workers: 1}
	serial, err := Run(context.Background(), cfg, edges, truth)
	require.NoError(t, err)

	cfg.Workers = 4
	concurrent, err := Run(context.Background(), cfg, edges, truth)
	require.NoError(t, err)

	assert.Equal(t, serial.Estimates, concurrent.Estimates)
	assert.Equal(t, serial.Mean, concurrent.Mean)
}

func TestRun_RecordsMetrics(t *testing.T) {
	reg := metrics.NewRegistry()
	_, err := Run(context.Background(), Config{
		Variant:       triest.VariantBase,
		ReservoirSize: 5,
		Trials:        6,
		Workers:       2,
		Metrics:       reg,
	}, algorithms.CompleteGraph(5), 10)
	require.NoError(t, err)

	assert.Equal(t, 6.0, testutil.ToFloat64(reg.TrialsTotal.WithLabelValues("base")))
}

func TestRun_InvalidConfig(t *testing.T) {
	edges := algorithms.CompleteGraph(4)
	ctx := context.Background()

	_, err := Run(ctx, Config{Variant: "fancy", ReservoirSize: 5, Trials: 1}, edges, 4)
	assert.Error(t, err)

	_, err = Run(ctx, Config{Variant: triest.VariantBase, ReservoirSize: 2, Trials: 1}, edges, 4)
	assert.Error(t, err)

	_, err = Run(ctx, Config{Variant: triest.VariantBase, ReservoirSize: 5}, edges, 4)
	assert.Error(t, err)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, Config{Variant: triest.VariantBase, ReservoirSize: 5, Trials: 4}, algorithms.CompleteGraph(5), 10)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSweep(t *testing.T) {
	edges := algorithms.CompleteGraph(8)
	truth := algorithms.CountTrianglesGlobal(edges)

	out, err := Sweep(context.Background(), Config{
		Variant: triest.VariantBase,
		Trials:  4,
	}, []int{5, 10, len(edges)}, edges, truth)
	require.NoError(t, err)
	require.Len(t, out, 3)

	assert.Equal(t, 5, out[0].ReservoirSize)
	assert.Equal(t, len(edges), out[2].ReservoirSize)
	assert.Zero(t, out[2].StdDev)
	assert.Equal(t, float64(truth), out[2].Mean)
}
