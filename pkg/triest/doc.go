// Package triest estimates the global triangle count of a graph whose edges
// arrive as an unbounded stream, keeping at most M edges in memory.
//
// Two estimators share the same sampling core (a fixed-size edge reservoir and
// an adjacency index over the sampled edges):
//
//   - BaseEstimator keeps the exact triangle count of the sample and corrects
//     it for sampling bias when Estimate is called.
//   - ImprovedEstimator adds a weighted contribution for every arriving edge
//     before deciding whether to keep it, so its estimate never decreases and
//     evictions need no bookkeeping.
//
// Estimators are not safe for concurrent use. Run independent instances in
// parallel instead (see pkg/experiment).
package triest
