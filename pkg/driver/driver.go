// Package driver feeds an edge source through an estimator.
package driver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/dd0wney/cluso-triest/pkg/logging"
	"github.com/dd0wney/cluso-triest/pkg/metrics"
	"github.com/dd0wney/cluso-triest/pkg/stream"
	"github.com/dd0wney/cluso-triest/pkg/triest"
)

// Run status labels recorded in metrics.
const (
	StatusOK        = "ok"
	StatusCancelled = "cancelled"
	StatusError     = "error"
)

// ErrNoEstimator and ErrNoSource are returned by Run for an incomplete Runner.
var (
	ErrNoEstimator = errors.New("driver: estimator is required")
	ErrNoSource    = errors.New("driver: source is required")
)

// Runner pulls edges from Source into Estimator until the source is drained.
type Runner struct {
	Estimator triest.Estimator
	Source    stream.Source
	Logger    logging.Logger
	// Metrics is optional; nil disables run and source-error metrics.
	Metrics *metrics.Registry
	// ProgressEvery logs a progress line every N edges read; 0 disables it.
	ProgressEvery int64
}

// Report summarises a run.
type Report struct {
	RunID    string
	Variant  triest.Variant
	Capacity int
	Source   string
	// Edges counts every edge read, rejected ones included.
	Edges    int64
	Rejected int64
	Estimate int64
	Stats    triest.Stats
	Duration time.Duration
}

// Run drains the source. Self-loops and duplicates are logged and skipped.
// On cancellation or a source error the partial report is returned with the
// error.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	if r.Estimator == nil {
		return nil, ErrNoEstimator
	}
	if r.Source == nil {
		return nil, ErrNoSource
	}

	logger := r.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	stats := r.Estimator.Stats()
	report := &Report{
		RunID:    uuid.NewString(),
		Variant:  r.Estimator.Variant(),
		Capacity: stats.Capacity,
		Source:   r.Source.Name(),
	}
	logger = logger.With(
		logging.Component("driver"),
		logging.RunID(report.RunID),
		logging.Variant(string(report.Variant)),
	)

	timer := logging.StartTimer(logger, "stream run",
		logging.String("source", report.Source),
		logging.Int("reservoir_size", report.Capacity),
	)

	err := r.drain(ctx, logger, report)

	report.Stats = r.Estimator.Stats()
	report.Estimate = report.Stats.Estimate

	status := StatusOK
	switch {
	case err == nil:
		report.Duration = timer.End(
			logging.Int64("edges", report.Edges),
			logging.Int64("rejected", report.Rejected),
			logging.Estimate(report.Estimate),
		)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = StatusCancelled
		report.Duration = timer.EndError(err)
	default:
		status = StatusError
		report.Duration = timer.EndError(err)
	}

	if r.Metrics != nil {
		r.Metrics.RecordRun(report.Variant, status, report.Duration)
	}
	return report, err
}

func (r *Runner) drain(ctx context.Context, logger logging.Logger, report *Report) error {
	for {
		edge, err := r.Source.Next(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if r.Metrics != nil {
				r.Metrics.RecordSourceError(report.Source)
			}
			return fmt.Errorf("driver: read edge %d: %w", report.Edges+1, err)
		}
		report.Edges++

		if err := r.Estimator.HandleEdge(edge); err != nil {
			if !errors.Is(err, triest.ErrSelfLoop) && !errors.Is(err, triest.ErrDuplicateEdge) {
				return fmt.Errorf("driver: edge %s: %w", edge, err)
			}
			report.Rejected++
			logger.Warn("edge rejected",
				logging.Edge(uint64(edge.U), uint64(edge.V)),
				logging.Error(err),
			)
		}

		if r.ProgressEvery > 0 && report.Edges%r.ProgressEvery == 0 {
			logger.Info("progress",
				logging.Int64("edges", report.Edges),
				logging.Step(r.Estimator.Stats().Steps),
				logging.Estimate(r.Estimator.Estimate()),
			)
		}
	}
}
