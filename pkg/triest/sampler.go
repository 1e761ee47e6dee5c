package triest

import (
	"fmt"
	"math/rand/v2"

	"github.com/dd0wney/cluso-triest/pkg/logging"
)

// sampler is the state both variants share: the reservoir, the adjacency
// index mirroring it, and the single random generator driving both.
type sampler struct {
	variant   Variant
	reservoir *Reservoir
	index     *AdjacencyIndex
	logger    logging.Logger
	observer  Observer

	admitted int64
	evicted  int64
	rejected int64
}

func newSampler(v Variant, m int, opts []Option) (*sampler, error) {
	if m < MinReservoirSize {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidReservoirSize, m)
	}
	o := buildOptions(opts)
	rng := rand.New(o.source)

	return &sampler{
		variant:   v,
		reservoir: NewReservoir(m, rng),
		index:     NewAdjacencyIndex(m),
		logger:    o.logger.With(logging.Component("triest"), logging.Variant(string(v))),
		observer:  o.observer,
	}, nil
}

// validate rejects input that would corrupt the index. Rejected edges do not
// advance t.
func (s *sampler) validate(e Edge) error {
	if e.IsLoop() {
		s.rejected++
		return fmt.Errorf("%w: %s", ErrSelfLoop, e)
	}
	if s.index.Contains(e.U, e.V) {
		s.rejected++
		return fmt.Errorf("%w: %s", ErrDuplicateEdge, e)
	}
	return nil
}

// offer runs the reservoir step for e. onEvict is called with the victim
// while it is still indexed, before it is unlinked; the new edge is indexed
// afterwards.
func (s *sampler) offer(e Edge, onEvict func(victim Edge)) Decision {
	d := s.reservoir.Offer(e)
	if d.Evicted {
		if onEvict != nil {
			onEvict(d.Victim)
		}
		s.index.Remove(d.Victim.U, d.Victim.V)
		s.evicted++
		if s.logger.Enabled(logging.DebugLevel) {
			s.logger.Debug("edge evicted",
				logging.Step(s.reservoir.Steps()),
				logging.Edge(uint64(d.Victim.U), uint64(d.Victim.V)),
				logging.Int("slot", d.Slot),
			)
		}
	}
	if d.Admitted {
		s.index.Add(e.U, e.V)
		s.admitted++
	}
	return d
}

func (s *sampler) notify(e Edge, outcome Outcome, evicted bool, estimate int64) {
	if s.observer == nil {
		return
	}
	s.observer.ObserveEdge(EdgeEvent{
		Variant:  s.variant,
		Edge:     e,
		Outcome:  outcome,
		Evicted:  evicted,
		Sampled:  s.reservoir.Len(),
		Vertices: s.index.VertexCount(),
		Estimate: estimate,
	})
}

func (s *sampler) stats() Stats {
	return Stats{
		Variant:  s.variant,
		Capacity: s.reservoir.Capacity(),
		Steps:    s.reservoir.Steps(),
		Sampled:  s.reservoir.Len(),
		Vertices: s.index.VertexCount(),
		Admitted: s.admitted,
		Evicted:  s.evicted,
		Rejected: s.rejected,
	}
}

// SampleEdges returns a copy of the reservoir in slot order.
func (s *sampler) SampleEdges() []Edge {
	return s.reservoir.Edges()
}

// Steps returns t, the number of accepted arrivals.
func (s *sampler) Steps() int64 {
	return s.reservoir.Steps()
}

// Capacity returns the reservoir size M.
func (s *sampler) Capacity() int {
	return s.reservoir.Capacity()
}

func outcomeOf(d Decision) Outcome {
	if d.Admitted {
		return OutcomeAdmitted
	}
	return OutcomeDiscarded
}
