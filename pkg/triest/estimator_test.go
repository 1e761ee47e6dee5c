package triest

import (
	"errors"
	"math"
	"testing"
)

// sampleTriangles counts triangles among edges by brute force.
func sampleTriangles(edges []Edge) int64 {
	set := make(map[Edge]struct{}, len(edges))
	vertices := make(map[VertexID]struct{})
	for _, e := range edges {
		set[e.Key()] = struct{}{}
		vertices[e.U] = struct{}{}
		vertices[e.V] = struct{}{}
	}
	has := func(a, b VertexID) bool {
		_, ok := set[Edge{a, b}.Key()]
		return ok
	}

	var count int64
	for e := range set {
		for w := range vertices {
			if w > e.V && has(e.U, w) && has(e.V, w) {
				count++
			}
		}
	}
	return count
}

func completeGraph(k int) []Edge {
	var edges []Edge
	for u := 1; u <= k; u++ {
		for v := u + 1; v <= k; v++ {
			edges = append(edges, Edge{VertexID(u), VertexID(v)})
		}
	}
	return edges
}

func newEstimators(t *testing.T, m int, seed uint64) []Estimator {
	t.Helper()
	var out []Estimator
	for _, v := range Variants() {
		est, err := New(v, m, WithSeed(seed))
		if err != nil {
			t.Fatalf("New(%s, %d) failed: %v", v, m, err)
		}
		out = append(out, est)
	}
	return out
}

func feed(t *testing.T, est Estimator, edges []Edge) {
	t.Helper()
	for _, e := range edges {
		if err := est.HandleEdge(e); err != nil {
			t.Fatalf("%s: HandleEdge(%v) failed: %v", est.Variant(), e, err)
		}
	}
}

func TestNew_RejectsSmallReservoir(t *testing.T) {
	for _, m := range []int{-1, 0, 1, 2} {
		for _, v := range Variants() {
			est, err := New(v, m)
			if !errors.Is(err, ErrInvalidReservoirSize) {
				t.Errorf("New(%s, %d): expected ErrInvalidReservoirSize, got %v", v, m, err)
			}
			if est != nil {
				t.Errorf("New(%s, %d): expected nil estimator on error", v, m)
			}
		}
	}
}

func TestNew_UnknownVariant(t *testing.T) {
	if _, err := New("exact", 10); !errors.Is(err, ErrUnknownVariant) {
		t.Errorf("expected ErrUnknownVariant, got %v", err)
	}
}

func TestParseVariant(t *testing.T) {
	tests := []struct {
		in      string
		want    Variant
		wantErr bool
	}{
		{"base", VariantBase, false},
		{" BASE ", VariantBase, false},
		{"improved", VariantImproved, false},
		{"impr", VariantImproved, false},
		{"fast", "", true},
	}
	for _, tt := range tests {
		got, err := ParseVariant(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseVariant(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseVariant(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestScenarioA_SingleTriangle(t *testing.T) {
	triangle := []Edge{{1, 2}, {2, 3}, {1, 3}}

	base, err := NewBase(3, WithSeed(1))
	if err != nil {
		t.Fatal(err)
	}
	feed(t, base, triangle)
	if got := base.Estimate(); got != 1 {
		t.Errorf("base: Estimate = %d, want 1", got)
	}

	// the closing edge arrives at t=3 with weight 2·1/(3·2)
	im, err := NewImproved(3, WithSeed(1))
	if err != nil {
		t.Fatal(err)
	}
	feed(t, im, triangle)
	if raw := im.Stats().Raw; math.Abs(raw-1.0/3.0) > 1e-12 {
		t.Errorf("improved: Raw = %v, want 1/3", raw)
	}
	if got := im.Estimate(); got != 0 {
		t.Errorf("improved: Estimate = %d, want 0", got)
	}
}

func TestScenarioB_FourCycle(t *testing.T) {
	for seed := uint64(0); seed < 20; seed++ {
		for _, est := range newEstimators(t, 3, seed) {
			feed(t, est, []Edge{{1, 2}, {2, 3}, {3, 4}, {4, 1}})
			if got := est.Estimate(); got != 0 {
				t.Errorf("seed %d %s: Estimate = %d, want 0", seed, est.Variant(), got)
			}
		}
	}
}

func TestScenarioC_SelfLoopRejected(t *testing.T) {
	for _, est := range newEstimators(t, 3, 1) {
		feed(t, est, []Edge{{1, 2}, {2, 3}})
		before := est.Stats()

		err := est.HandleEdge(Edge{5, 5})
		if !errors.Is(err, ErrSelfLoop) {
			t.Fatalf("%s: expected ErrSelfLoop, got %v", est.Variant(), err)
		}

		after := est.Stats()
		if after.Steps != before.Steps || after.Sampled != before.Sampled ||
			after.Vertices != before.Vertices || after.Raw != before.Raw {
			t.Errorf("%s: self-loop changed state: before %+v after %+v", est.Variant(), before, after)
		}
		if after.Rejected != before.Rejected+1 {
			t.Errorf("%s: Rejected = %d, want %d", est.Variant(), after.Rejected, before.Rejected+1)
		}
	}
}

func TestDuplicateEdgeRejected(t *testing.T) {
	for _, est := range newEstimators(t, 5, 1) {
		feed(t, est, []Edge{{1, 2}, {2, 3}})

		for _, dup := range []Edge{{1, 2}, {2, 1}} {
			if err := est.HandleEdge(dup); !errors.Is(err, ErrDuplicateEdge) {
				t.Errorf("%s: HandleEdge(%v) expected ErrDuplicateEdge, got %v", est.Variant(), dup, err)
			}
		}
		if st := est.Stats(); st.Steps != 2 || st.Sampled != 2 {
			t.Errorf("%s: duplicates changed state: %+v", est.Variant(), st)
		}
	}
}

func TestScenarioD_ReservoirStaysFull(t *testing.T) {
	stream := completeGraph(5) // 10 edges, 10 triangles
	for seed := uint64(0); seed < 10; seed++ {
		for _, est := range newEstimators(t, 3, seed) {
			for i, e := range stream {
				if err := est.HandleEdge(e); err != nil {
					t.Fatalf("HandleEdge(%v): %v", e, err)
				}
				st := est.Stats()
				want := min(i+1, 3)
				if st.Sampled != want {
					t.Fatalf("seed %d %s step %d: Sampled = %d, want %d", seed, est.Variant(), i+1, st.Sampled, want)
				}
			}
		}
	}
}

func TestBase_ExactWhileFilling(t *testing.T) {
	stream := completeGraph(7)
	base, err := NewBase(len(stream), WithSeed(3))
	if err != nil {
		t.Fatal(err)
	}

	for i, e := range stream {
		if err := base.HandleEdge(e); err != nil {
			t.Fatal(err)
		}
		want := sampleTriangles(stream[:i+1])
		if got := base.Estimate(); got != want {
			t.Fatalf("step %d: Estimate = %d, want exact %d", i+1, got, want)
		}
	}
}

func TestImproved_WeightedWhileFilling(t *testing.T) {
	stream := completeGraph(7) // 21 edges, nothing is evicted at M=21
	im, err := NewImproved(len(stream), WithSeed(3))
	if err != nil {
		t.Fatal(err)
	}

	var want float64
	for i, e := range stream {
		step := int64(i + 1)
		delta := sampleTriangles(stream[:i+1]) - sampleTriangles(stream[:i])
		if step > 2 {
			fm := float64(len(stream))
			want += float64(step-1) * float64(step-2) / (fm * (fm - 1)) * float64(delta)
		}
		if err := im.HandleEdge(e); err != nil {
			t.Fatal(err)
		}
		if raw := im.Stats().Raw; math.Abs(raw-want) > 1e-9 {
			t.Fatalf("step %d: Raw = %v, want %v", step, raw, want)
		}
	}

	if got := im.Estimate(); got != 19 {
		t.Errorf("Estimate = %d, want 19 (raw %.4f)", got, want)
	}
}

func TestBase_BiasCorrection(t *testing.T) {
	base, err := NewBase(3, WithSeed(9))
	if err != nil {
		t.Fatal(err)
	}
	feed(t, base, completeGraph(5))

	raw := base.SampleTriangles()
	want := int64(float64(raw) / inclusionProbability(10, 3))
	if got := base.Estimate(); got != want {
		t.Errorf("Estimate = %d, want raw/pi = %d", got, want)
	}
	// pi(10,3) = 3/10 · 2/9 · 1/8
	if p := inclusionProbability(10, 3); math.Abs(p-1.0/120) > 1e-12 {
		t.Errorf("inclusionProbability(10,3) = %v, want 1/120", p)
	}
}

func TestImproved_Weight(t *testing.T) {
	tests := []struct {
		t    int64
		m    int
		want float64
	}{
		{3, 3, 1.0 / 3.0},
		{4, 10, 6.0 / 90.0},
		{10, 10, 72.0 / 90.0},
		{11, 10, 1},
		{12, 10, 110.0 / 90.0},
		{100, 10, 99.0 * 98.0 / 90.0},
	}
	for _, tt := range tests {
		if got := weight(tt.t, tt.m); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("weight(%d, %d) = %v, want %v", tt.t, tt.m, got, tt.want)
		}
	}
}

func TestImproved_NeverDecreases(t *testing.T) {
	im, err := NewImproved(4, WithSeed(5))
	if err != nil {
		t.Fatal(err)
	}

	var last float64
	for _, e := range completeGraph(9) {
		if err := im.HandleEdge(e); err != nil {
			t.Fatal(err)
		}
		if raw := im.Stats().Raw; raw < last {
			t.Fatalf("estimate decreased from %v to %v", last, raw)
		} else {
			last = raw
		}
	}
	if last == 0 {
		t.Error("expected a positive estimate on K9")
	}
}

func TestDeterminism(t *testing.T) {
	stream := completeGraph(12)
	for _, v := range Variants() {
		a, _ := New(v, 10, WithSeed(2024))
		b, _ := New(v, 10, WithSeed(2024))
		feed(t, a, stream)
		feed(t, b, stream)

		if a.Estimate() != b.Estimate() {
			t.Errorf("%s: estimates differ: %d vs %d", v, a.Estimate(), b.Estimate())
		}

		sa := a.(interface{ SampleEdges() []Edge }).SampleEdges()
		sb := b.(interface{ SampleEdges() []Edge }).SampleEdges()
		for i := range sa {
			if sa[i] != sb[i] {
				t.Fatalf("%s: reservoirs differ at slot %d: %v vs %v", v, i, sa[i], sb[i])
			}
		}
	}
}

type recordingObserver struct {
	events []EdgeEvent
}

func (r *recordingObserver) ObserveEdge(ev EdgeEvent) { r.events = append(r.events, ev) }

func TestObserver_ReceivesEveryCall(t *testing.T) {
	obs := &recordingObserver{}
	base, err := NewBase(3, WithSeed(1), WithObserver(obs))
	if err != nil {
		t.Fatal(err)
	}

	feed(t, base, []Edge{{1, 2}, {2, 3}, {1, 3}})
	_ = base.HandleEdge(Edge{4, 4})

	if len(obs.events) != 4 {
		t.Fatalf("expected 4 events, got %d", len(obs.events))
	}
	if obs.events[2].Estimate != 1 || obs.events[2].Outcome != OutcomeAdmitted {
		t.Errorf("third event = %+v, want admitted with estimate 1", obs.events[2])
	}
	if obs.events[3].Outcome != OutcomeRejected {
		t.Errorf("self-loop event outcome = %s, want rejected", obs.events[3].Outcome)
	}
}

func TestStats_Counters(t *testing.T) {
	base, _ := NewBase(3, WithSeed(4))
	feed(t, base, completeGraph(6))

	st := base.Stats()
	if st.Steps != 15 || st.Capacity != 3 || st.Sampled != 3 {
		t.Errorf("unexpected stats %+v", st)
	}
	if st.Admitted-st.Evicted != int64(st.Sampled) {
		t.Errorf("admitted %d - evicted %d should equal sampled %d", st.Admitted, st.Evicted, st.Sampled)
	}
	if st.Variant != VariantBase {
		t.Errorf("Variant = %s", st.Variant)
	}
}

func TestEdgeKey(t *testing.T) {
	if (Edge{5, 2}).Key() != (Edge{2, 5}) {
		t.Error("Key should order endpoints")
	}
	if (Edge{2, 5}).String() != "(2,5)" {
		t.Errorf("String() = %s", Edge{2, 5})
	}
}

// constSource always yields the same value. With math.MaxUint64 every
// admission coin fails once t > M.
type constSource uint64

func (s constSource) Uint64() uint64 { return uint64(s) }

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   float64
		want int64
	}{
		{0, 0},
		{0.99, 0},
		{19.3, 19},
		{float64(1 << 62), 1 << 62},
		{math.MaxInt64, math.MaxInt64},
		{1e30, math.MaxInt64},
		{math.Inf(1), math.MaxInt64},
	}
	for _, tt := range tests {
		if got := truncate(tt.in); got != tt.want {
			t.Errorf("truncate(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestBase_EstimateSaturates(t *testing.T) {
	if testing.Short() {
		t.Skip("long stream skipped in short mode")
	}

	base, err := NewBase(3, WithSource(constSource(math.MaxUint64)))
	if err != nil {
		t.Fatal(err)
	}
	feed(t, base, []Edge{{1, 2}, {2, 3}, {1, 3}})

	// 1/pi(t, 3) passes MaxInt64 near t = 3.9e6
	const extra = 5_000_000
	for i := VertexID(0); i < extra; i++ {
		if err := base.HandleEdge(Edge{U: 10 + 2*i, V: 11 + 2*i}); err != nil {
			t.Fatalf("HandleEdge: %v", err)
		}
	}

	st := base.Stats()
	if st.Steps != extra+3 || st.Raw != 1 || st.Evicted != 0 {
		t.Fatalf("unexpected state: %+v", st)
	}
	if got := base.Estimate(); got != math.MaxInt64 {
		t.Errorf("Estimate = %d, want math.MaxInt64", got)
	}
}

func TestHandleEdge_StoresCanonicalEdge(t *testing.T) {
	for _, v := range Variants() {
		obs := &recordingObserver{}
		est, err := New(v, 3, WithSeed(1), WithObserver(obs))
		if err != nil {
			t.Fatal(err)
		}
		feed(t, est, []Edge{{3, 1}, {2, 1}})

		sample := est.(interface{ SampleEdges() []Edge }).SampleEdges()
		want := []Edge{{1, 3}, {1, 2}}
		for i := range want {
			if sample[i] != want[i] {
				t.Errorf("%s: sample[%d] = %v, want %v", v, i, sample[i], want[i])
			}
			if obs.events[i].Edge != want[i] {
				t.Errorf("%s: event %d edge = %v, want %v", v, i, obs.events[i].Edge, want[i])
			}
		}
	}
}
