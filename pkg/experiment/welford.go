package experiment

import "math"

// Welford keeps a running mean and variance in one pass.
type Welford struct {
	count int64
	mean  float64
	m2    float64
}

// Add incorporates x.
func (w *Welford) Add(x float64) {
	w.count++
	delta := x - w.mean
	w.mean += delta / float64(w.count)
	w.m2 += delta * (x - w.mean)
}

// Count returns the number of values added.
func (w *Welford) Count() int64 {
	return w.count
}

// Mean returns the running mean, or 0 before any Add.
func (w *Welford) Mean() float64 {
	return w.mean
}

// SampleVariance returns M2/(n-1), or 0 with fewer than two values.
func (w *Welford) SampleVariance() float64 {
	if w.count < 2 {
		return 0
	}
	return w.m2 / float64(w.count-1)
}

// SampleStandardDeviation returns the square root of SampleVariance.
func (w *Welford) SampleStandardDeviation() float64 {
	return math.Sqrt(w.SampleVariance())
}
