package triest

// AdjacencyIndex maps every vertex that touches at least one sampled edge to
// the set of its sampled neighbours.
//
// Invariant: v ∈ adj[u] ⟺ u ∈ adj[v] ⟺ (u,v) is in the reservoir. Vertices
// whose set becomes empty are dropped, so memory stays proportional to the
// sample.
type AdjacencyIndex struct {
	adj   map[VertexID]map[VertexID]struct{}
	edges int
}

// NewAdjacencyIndex creates an empty index sized for roughly capacity edges.
func NewAdjacencyIndex(capacity int) *AdjacencyIndex {
	return &AdjacencyIndex{
		adj: make(map[VertexID]map[VertexID]struct{}, capacity),
	}
}

// Add records the edge (u,v) in both neighbour sets. Adding an edge that is
// already present is a no-op.
func (a *AdjacencyIndex) Add(u, v VertexID) {
	if a.Contains(u, v) {
		return
	}
	a.link(u, v)
	a.link(v, u)
	a.edges++
}

// Remove deletes the edge (u,v) from both neighbour sets. Removing an absent
// edge is a no-op.
func (a *AdjacencyIndex) Remove(u, v VertexID) {
	if !a.Contains(u, v) {
		return
	}
	a.unlink(u, v)
	a.unlink(v, u)
	a.edges--
}

func (a *AdjacencyIndex) link(from, to VertexID) {
	set, ok := a.adj[from]
	if !ok {
		set = make(map[VertexID]struct{})
		a.adj[from] = set
	}
	set[to] = struct{}{}
}

func (a *AdjacencyIndex) unlink(from, to VertexID) {
	set := a.adj[from]
	delete(set, to)
	if len(set) == 0 {
		delete(a.adj, from)
	}
}

// Contains reports whether (u,v) is currently indexed.
func (a *AdjacencyIndex) Contains(u, v VertexID) bool {
	set, ok := a.adj[u]
	if !ok {
		return false
	}
	_, ok = set[v]
	return ok
}

// CommonNeighborCount returns |N(u) ∩ N(v)|, the number of sampled
// triangles the edge (u,v) closes. It walks the smaller of the two sets.
func (a *AdjacencyIndex) CommonNeighborCount(u, v VertexID) int {
	nu, ok := a.adj[u]
	if !ok {
		return 0
	}
	nv, ok := a.adj[v]
	if !ok {
		return 0
	}
	if len(nu) > len(nv) {
		nu, nv = nv, nu
	}

	count := 0
	for w := range nu {
		if _, shared := nv[w]; shared {
			count++
		}
	}
	return count
}

// Degree returns the number of sampled neighbours of v.
func (a *AdjacencyIndex) Degree(v VertexID) int {
	return len(a.adj[v])
}

// Neighbors returns a copy of v's neighbour set in no particular order.
func (a *AdjacencyIndex) Neighbors(v VertexID) []VertexID {
	set := a.adj[v]
	out := make([]VertexID, 0, len(set))
	for w := range set {
		out = append(out, w)
	}
	return out
}

// VertexCount returns the number of indexed vertices.
func (a *AdjacencyIndex) VertexCount() int {
	return len(a.adj)
}

// EdgeCount returns the number of indexed edges.
func (a *AdjacencyIndex) EdgeCount() int {
	return a.edges
}
