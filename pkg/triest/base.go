package triest

import "math"

// BaseEstimator keeps the exact number of triangles among the sampled edges
// and scales it by the inverse probability that all three edges of a
// triangle survive in the sample.
type BaseEstimator struct {
	*sampler
	triangles int64
}

// NewBase creates a base estimator with reservoir size m.
func NewBase(m int, opts ...Option) (*BaseEstimator, error) {
	s, err := newSampler(VariantBase, m, opts)
	if err != nil {
		return nil, err
	}
	return &BaseEstimator{sampler: s}, nil
}

// HandleEdge processes one arrival.
func (b *BaseEstimator) HandleEdge(e Edge) error {
	e = e.Key()
	if err := b.validate(e); err != nil {
		b.notify(e, OutcomeRejected, false, b.Estimate())
		return err
	}

	d := b.offer(e, func(victim Edge) {
		b.triangles -= int64(b.index.CommonNeighborCount(victim.U, victim.V))
	})
	if d.Admitted {
		b.triangles += int64(b.index.CommonNeighborCount(e.U, e.V))
	}

	b.notify(e, outcomeOf(d), d.Evicted, b.Estimate())
	return nil
}

// Estimate returns the sample triangle count while t ≤ M (the sample is the
// whole stream) and raw/pi(t, M) afterwards, truncated.
func (b *BaseEstimator) Estimate() int64 {
	t := b.reservoir.Steps()
	m := b.reservoir.Capacity()
	if t <= int64(m) {
		return b.triangles
	}
	return truncate(float64(b.triangles) / inclusionProbability(t, m))
}

// SampleTriangles returns the exact triangle count of the current sample.
func (b *BaseEstimator) SampleTriangles() int64 {
	return b.triangles
}

// Stats returns a snapshot of the estimator.
func (b *BaseEstimator) Stats() Stats {
	st := b.stats()
	st.Raw = float64(b.triangles)
	st.Estimate = b.Estimate()
	return st
}

// Variant returns VariantBase.
func (b *BaseEstimator) Variant() Variant {
	return VariantBase
}

// truncate converts a non-negative estimate to int64, saturating at
// math.MaxInt64 instead of wrapping.
func truncate(x float64) int64 {
	if x >= math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(x)
}

// inclusionProbability is the probability that three given edges are all in
// a reservoir of size m after t > m arrivals:
//
//	pi(t, m) = m/t · (m-1)/(t-1) · (m-2)/(t-2)
func inclusionProbability(t int64, m int) float64 {
	ft, fm := float64(t), float64(m)
	return (fm / ft) * ((fm - 1) / (ft - 1)) * ((fm - 2) / (ft - 2))
}
