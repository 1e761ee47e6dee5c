package algorithms

import "github.com/dd0wney/cluso-triest/pkg/triest"

// TriangleCountResult holds exact triangle counting results including
// per-vertex counts, global count, clustering coefficients, and top vertices
// by triangle participation.
type TriangleCountResult struct {
	PerVertex              map[triest.VertexID]int
	GlobalCount            int64
	ClusteringCoefficients map[triest.VertexID]float64
	TopVertices            []RankedVertex
}

// CountTriangles counts triangles in the undirected graph formed by edges.
// Self-loops and repeated pairs are ignored. For each vertex u it checks
// every pair (v,w) of u's neighbours; each triangle is therefore seen once
// per participating vertex and GlobalCount = sum(PerVertex) / 3.
// Clustering coefficients are computed in the same pass.
func CountTriangles(edges []triest.Edge) *TriangleCountResult {
	neighborSets := BuildNeighborSets(edges)

	perVertex := make(map[triest.VertexID]int, len(neighborSets))
	var total int64
	for u, uNeighbors := range neighborSets {
		neighbors := make([]triest.VertexID, 0, len(uNeighbors))
		for v := range uNeighbors {
			neighbors = append(neighbors, v)
		}

		count := 0
		for i := 0; i < len(neighbors); i++ {
			v := neighbors[i]
			for j := i + 1; j < len(neighbors); j++ {
				if _, ok := neighborSets[v][neighbors[j]]; ok {
					count++
				}
			}
		}
		perVertex[u] = count
		total += int64(count)
	}

	coefficients := make(map[triest.VertexID]float64, len(neighborSets))
	for u, set := range neighborSets {
		k := len(set)
		if k < 2 {
			coefficients[u] = 0.0
			continue
		}
		possible := k * (k - 1) / 2
		coefficients[u] = float64(perVertex[u]) / float64(possible)
	}

	scores := make(map[triest.VertexID]float64, len(perVertex))
	for id, c := range perVertex {
		scores[id] = float64(c)
	}

	return &TriangleCountResult{
		PerVertex:              perVertex,
		GlobalCount:            total / 3,
		ClusteringCoefficients: coefficients,
		TopVertices:            findTopVertices(scores, 10),
	}
}

// CountTrianglesGlobal returns only the global triangle count. It walks each
// edge once and intersects the smaller neighbour set, counting every
// triangle three times.
func CountTrianglesGlobal(edges []triest.Edge) int64 {
	neighborSets := BuildNeighborSets(edges)

	var total int64
	for u, nu := range neighborSets {
		for v := range nu {
			if v < u {
				continue
			}
			a, b := nu, neighborSets[v]
			if len(a) > len(b) {
				a, b = b, a
			}
			for w := range a {
				if _, ok := b[w]; ok {
					total++
				}
			}
		}
	}
	return total / 3
}

// GlobalClusteringCoefficient returns 3·triangles / connected triples
// (transitivity). Graphs without any wedge return 0.
func GlobalClusteringCoefficient(edges []triest.Edge) float64 {
	neighborSets := BuildNeighborSets(edges)

	var wedges int64
	for _, set := range neighborSets {
		k := int64(len(set))
		wedges += k * (k - 1) / 2
	}
	if wedges == 0 {
		return 0
	}
	return 3 * float64(CountTrianglesGlobal(edges)) / float64(wedges)
}

// BuildNeighborSets builds undirected neighbour sets, dropping self-loops
// and collapsing parallel edges.
func BuildNeighborSets(edges []triest.Edge) map[triest.VertexID]map[triest.VertexID]struct{} {
	sets := make(map[triest.VertexID]map[triest.VertexID]struct{})
	add := func(from, to triest.VertexID) {
		set, ok := sets[from]
		if !ok {
			set = make(map[triest.VertexID]struct{})
			sets[from] = set
		}
		set[to] = struct{}{}
	}

	for _, e := range edges {
		if e.IsLoop() {
			continue
		}
		add(e.U, e.V)
		add(e.V, e.U)
	}
	return sets
}
