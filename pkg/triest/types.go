package triest

import (
	"errors"
	"fmt"
	"strings"
)

// MinReservoirSize is the smallest sample that can hold a triangle.
const MinReservoirSize = 3

// Sentinel errors.
var (
	// ErrInvalidReservoirSize is returned by constructors when M < MinReservoirSize.
	ErrInvalidReservoirSize = errors.New("triest: reservoir size must be at least 3")

	// ErrSelfLoop is returned by HandleEdge for an edge (v, v). State is unchanged.
	ErrSelfLoop = errors.New("triest: self-loop edge rejected")

	// ErrDuplicateEdge is returned by HandleEdge when the pair is already in
	// the reservoir. State is unchanged.
	ErrDuplicateEdge = errors.New("triest: edge already sampled")

	// ErrUnknownVariant is returned by ParseVariant and New.
	ErrUnknownVariant = errors.New("triest: unknown estimator variant")
)

// VertexID identifies a vertex.
type VertexID uint64

// Edge is an unordered pair of vertices.
type Edge struct {
	U VertexID
	V VertexID
}

// NewEdge returns the edge between u and v.
func NewEdge(u, v VertexID) Edge {
	return Edge{U: u, V: v}
}

// Key returns the edge with its endpoints in ascending order, so that (u,v)
// and (v,u) compare equal.
func (e Edge) Key() Edge {
	if e.U > e.V {
		return Edge{U: e.V, V: e.U}
	}
	return e
}

// IsLoop reports whether both endpoints are the same vertex.
func (e Edge) IsLoop() bool {
	return e.U == e.V
}

func (e Edge) String() string {
	return fmt.Sprintf("(%d,%d)", e.U, e.V)
}

// Variant selects an estimator implementation.
type Variant string

const (
	VariantBase     Variant = "base"
	VariantImproved Variant = "improved"
)

// Variants lists the supported variants.
func Variants() []Variant {
	return []Variant{VariantBase, VariantImproved}
}

// ParseVariant maps a case-insensitive name to a Variant.
func ParseVariant(s string) (Variant, error) {
	switch Variant(strings.ToLower(strings.TrimSpace(s))) {
	case VariantBase:
		return VariantBase, nil
	case VariantImproved, "impr":
		return VariantImproved, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownVariant, s)
	}
}

// Outcome describes what HandleEdge did with one arrival.
type Outcome int

const (
	// OutcomeAdmitted means the edge entered the reservoir.
	OutcomeAdmitted Outcome = iota
	// OutcomeDiscarded means the coin flip kept the reservoir unchanged.
	OutcomeDiscarded
	// OutcomeRejected means the edge was invalid input (self-loop or duplicate).
	OutcomeRejected
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAdmitted:
		return "admitted"
	case OutcomeDiscarded:
		return "discarded"
	case OutcomeRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Stats is a point-in-time snapshot of an estimator.
type Stats struct {
	Variant  Variant
	Capacity int
	// Steps is t, the number of accepted arrivals.
	Steps int64
	// Sampled is the number of edges in the reservoir, min(Steps, Capacity).
	Sampled  int
	Vertices int
	Admitted int64
	Evicted  int64
	Rejected int64
	// Raw is the triangle count of the sample (base) or the unrounded
	// running estimate (improved).
	Raw      float64
	Estimate int64
}

// Estimator is the contract shared by both variants.
type Estimator interface {
	// HandleEdge processes one stream arrival. It returns ErrSelfLoop or
	// ErrDuplicateEdge for invalid input and leaves the state unchanged.
	HandleEdge(e Edge) error
	// Estimate returns the current estimate of the number of triangles in
	// the whole stream seen so far.
	Estimate() int64
	Stats() Stats
	Variant() Variant
}

// EdgeEvent is passed to an Observer after every HandleEdge call.
type EdgeEvent struct {
	Variant  Variant
	Edge     Edge
	Outcome  Outcome
	Evicted  bool
	Sampled  int
	Vertices int
	Estimate int64
}

// Observer receives per-edge events, e.g. to export metrics.
type Observer interface {
	ObserveEdge(ev EdgeEvent)
}

// New builds an estimator of the given variant.
func New(v Variant, m int, opts ...Option) (Estimator, error) {
	switch v {
	case VariantBase:
		est, err := NewBase(m, opts...)
		if err != nil {
			return nil, err
		}
		return est, nil
	case VariantImproved:
		est, err := NewImproved(m, opts...)
		if err != nil {
			return nil, err
		}
		return est, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownVariant, string(v))
	}
}

var (
	_ Estimator = (*BaseEstimator)(nil)
	_ Estimator = (*ImprovedEstimator)(nil)
)
