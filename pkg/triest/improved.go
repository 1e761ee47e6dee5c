package triest

// ImprovedEstimator adds w(t)·delta to a running estimate for every arrival,
// where delta is the number of sampled triangles the edge closes. The
// update happens before the membership decision, so evictions never change
// the estimate.
type ImprovedEstimator struct {
	*sampler
	estimate float64
}

// NewImproved creates an improved estimator with reservoir size m.
func NewImproved(m int, opts ...Option) (*ImprovedEstimator, error) {
	s, err := newSampler(VariantImproved, m, opts)
	if err != nil {
		return nil, err
	}
	return &ImprovedEstimator{sampler: s}, nil
}

// HandleEdge processes one arrival.
func (im *ImprovedEstimator) HandleEdge(e Edge) error {
	e = e.Key()
	if err := im.validate(e); err != nil {
		im.notify(e, OutcomeRejected, false, im.Estimate())
		return err
	}

	t := im.reservoir.Steps() + 1
	delta := im.index.CommonNeighborCount(e.U, e.V)
	if t > 2 && delta > 0 {
		im.estimate += weight(t, im.reservoir.Capacity()) * float64(delta)
	}

	d := im.offer(e, nil)
	im.notify(e, outcomeOf(d), d.Evicted, im.Estimate())
	return nil
}

// Estimate returns the running estimate truncated to an integer.
func (im *ImprovedEstimator) Estimate() int64 {
	return truncate(im.estimate)
}

// Stats returns a snapshot of the estimator.
func (im *ImprovedEstimator) Stats() Stats {
	st := im.stats()
	st.Raw = im.estimate
	st.Estimate = im.Estimate()
	return st
}

// Variant returns VariantImproved.
func (im *ImprovedEstimator) Variant() Variant {
	return VariantImproved
}

// weight is (t-1)(t-2) / (m(m-1)). It is below 1 while t ≤ m+1, so early
// triangles count fractionally.
func weight(t int64, m int) float64 {
	fm := float64(m)
	return float64(t-1) * float64(t-2) / (fm * (fm - 1))
}
