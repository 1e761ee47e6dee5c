// Package experiment measures estimator accuracy over many independent
// trials on a fixed edge stream.
package experiment

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"slices"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/dd0wney/cluso-triest/pkg/logging"
	"github.com/dd0wney/cluso-triest/pkg/metrics"
	"github.com/dd0wney/cluso-triest/pkg/parallel"
	"github.com/dd0wney/cluso-triest/pkg/triest"
	"github.com/dd0wney/cluso-triest/pkg/validation"
)

// Config describes a batch of trials. Trial i uses seed BaseSeed+i, so a
// batch is reproducible regardless of Workers.
type Config struct {
	Variant       triest.Variant `validate:"required,variant"`
	ReservoirSize int            `validate:"gte=3"`
	Trials        int            `validate:"gte=1"`
	// Workers bounds concurrency; 0 means one per CPU.
	Workers  int `validate:"gte=0"`
	BaseSeed uint64

	Logger  logging.Logger
	Metrics *metrics.Registry
}

// Summary aggregates trial estimates against the true triangle count.
type Summary struct {
	Variant       triest.Variant
	ReservoirSize int
	Trials        int
	Truth         int64

	Mean   float64
	StdDev float64
	// MeanRelativeError is the mean of |estimate-truth|/truth.
	MeanRelativeError float64
	// Bias is (Mean-truth)/truth.
	Bias float64

	Min    int64
	Max    int64
	Median float64
	P05    float64
	P95    float64

	Estimates []int64
	Duration  time.Duration
}

// Run streams edges through cfg.Trials independently seeded estimators.
// Rejected edges are skipped, as the driver does.
func Run(ctx context.Context, cfg Config, edges []triest.Edge, truth int64) (*Summary, error) {
	if err := validation.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("experiment: %w", err)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	logger = logger.With(
		logging.Component("experiment"),
		logging.Variant(string(cfg.Variant)),
		logging.Int("reservoir_size", cfg.ReservoirSize),
	)

	workers := cfg.Workers
	if workers == 0 {
		workers = runtime.NumCPU()
	}

	start := time.Now()
	estimates := make([]int64, cfg.Trials)

	err := parallel.Run(ctx, workers, cfg.Trials, logger, func(ctx context.Context, i int) error {
		trialStart := time.Now()
		est, err := triest.New(cfg.Variant, cfg.ReservoirSize, triest.WithSeed(cfg.BaseSeed+uint64(i)))
		if err != nil {
			return err
		}
		for j, e := range edges {
			if j%4096 == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			if err := est.HandleEdge(e); err != nil &&
				!errors.Is(err, triest.ErrSelfLoop) && !errors.Is(err, triest.ErrDuplicateEdge) {
				return err
			}
		}
		estimates[i] = est.Estimate()
		if cfg.Metrics != nil {
			cfg.Metrics.RecordTrial(cfg.Variant, time.Since(trialStart))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("experiment: %w", err)
	}

	s := Summarize(estimates, truth)
	s.Variant = cfg.Variant
	s.ReservoirSize = cfg.ReservoirSize
	s.Duration = time.Since(start)

	logger.Debug("trials complete",
		logging.Count(cfg.Trials),
		logging.Float64("mean", s.Mean),
		logging.Float64("mre", s.MeanRelativeError),
		logging.Latency(s.Duration),
	)
	return s, nil
}

// Summarize computes statistics over estimates. Relative errors are 0 when
// truth is 0.
func Summarize(estimates []int64, truth int64) *Summary {
	s := &Summary{
		Trials:    len(estimates),
		Truth:     truth,
		Estimates: estimates,
	}
	if len(estimates) == 0 {
		return s
	}

	var acc, rel Welford
	sorted := make([]float64, len(estimates))
	s.Min, s.Max = estimates[0], estimates[0]
	for i, e := range estimates {
		x := float64(e)
		acc.Add(x)
		if truth != 0 {
			rel.Add(math.Abs(x-float64(truth)) / float64(truth))
		}
		s.Min = min(s.Min, e)
		s.Max = max(s.Max, e)
		sorted[i] = x
	}
	slices.Sort(sorted)

	s.Mean = acc.Mean()
	s.StdDev = acc.SampleStandardDeviation()
	s.MeanRelativeError = rel.Mean()
	if truth != 0 {
		s.Bias = (s.Mean - float64(truth)) / float64(truth)
	}
	s.Median = stat.Quantile(0.5, stat.Empirical, sorted, nil)
	s.P05 = stat.Quantile(0.05, stat.Empirical, sorted, nil)
	s.P95 = stat.Quantile(0.95, stat.Empirical, sorted, nil)
	return s
}

// Sweep runs one batch per reservoir size, in order.
func Sweep(ctx context.Context, cfg Config, sizes []int, edges []triest.Edge, truth int64) ([]*Summary, error) {
	out := make([]*Summary, 0, len(sizes))
	for _, m := range sizes {
		c := cfg
		c.ReservoirSize = m
		s, err := Run(ctx, c, edges, truth)
		if err != nil {
			return out, fmt.Errorf("reservoir size %d: %w", m, err)
		}
		out = append(out, s)
	}
	return out, nil
}
