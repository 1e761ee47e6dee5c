package triest

import "math/rand/v2"

// Decision reports what Offer did with an arriving edge.
type Decision struct {
	// Admitted is true when the edge now occupies a reservoir slot.
	Admitted bool
	// Evicted is true when Victim was replaced to make room.
	Evicted bool
	Victim  Edge
	Slot    int
}

// Reservoir holds a uniform random sample of at most Capacity edges from the
// stream. While filling (t ≤ M) every edge is admitted; afterwards each
// arrival is admitted with probability M/t into a uniformly chosen slot, so
// every edge seen so far is in the sample with probability M/t.
type Reservoir struct {
	edges    []Edge
	capacity int
	steps    int64
	rng      *rand.Rand
}

// NewReservoir creates an empty reservoir drawing from rng.
func NewReservoir(capacity int, rng *rand.Rand) *Reservoir {
	return &Reservoir{
		edges:    make([]Edge, 0, capacity),
		capacity: capacity,
		rng:      rng,
	}
}

// Filling reports whether the next arrival is admitted unconditionally.
func (r *Reservoir) Filling() bool {
	return r.steps < int64(r.capacity)
}

// Offer advances t and decides the membership of e. The caller is
// responsible for mirroring the decision into the adjacency index.
func (r *Reservoir) Offer(e Edge) Decision {
	r.steps++
	if r.steps <= int64(r.capacity) {
		r.edges = append(r.edges, e)
		return Decision{Admitted: true, Slot: len(r.edges) - 1}
	}

	if !r.flip() {
		return Decision{Slot: -1}
	}

	slot := r.rng.IntN(len(r.edges))
	victim := r.edges[slot]
	r.edges[slot] = e
	return Decision{Admitted: true, Evicted: true, Victim: victim, Slot: slot}
}

// flip succeeds with probability M/t.
func (r *Reservoir) flip() bool {
	return r.rng.Float64() < float64(r.capacity)/float64(r.steps)
}

// Len returns the number of sampled edges, min(t, M).
func (r *Reservoir) Len() int {
	return len(r.edges)
}

// Capacity returns M.
func (r *Reservoir) Capacity() int {
	return r.capacity
}

// Steps returns t, the number of edges offered so far.
func (r *Reservoir) Steps() int64 {
	return r.steps
}

// Edges returns a copy of the sample in slot order.
func (r *Reservoir) Edges() []Edge {
	out := make([]Edge, len(r.edges))
	copy(out, r.edges)
	return out
}
