package algorithms

import (
	"math/rand/v2"

	"github.com/dd0wney/cluso-triest/pkg/triest"
)

// CompleteGraph returns the edges of K_k on vertices 1..k in lexicographic
// order. K_k has k(k-1)/2 edges and C(k,3) triangles.
func CompleteGraph(k int) []triest.Edge {
	if k < 2 {
		return nil
	}
	edges := make([]triest.Edge, 0, k*(k-1)/2)
	for u := 1; u <= k; u++ {
		for v := u + 1; v <= k; v++ {
			edges = append(edges, triest.NewEdge(triest.VertexID(u), triest.VertexID(v)))
		}
	}
	return edges
}

// Cycle returns the edges of the k-cycle 1-2-…-k-1. Cycles longer than
// three have no triangles.
func Cycle(k int) []triest.Edge {
	if k < 3 {
		return nil
	}
	edges := make([]triest.Edge, 0, k)
	for u := 1; u < k; u++ {
		edges = append(edges, triest.NewEdge(triest.VertexID(u), triest.VertexID(u+1)))
	}
	return append(edges, triest.NewEdge(triest.VertexID(k), 1))
}

// RandomGraph returns an Erdős–Rényi G(n, p) edge list over vertices 1..n,
// shuffled into a random arrival order. The same seed yields the same list.
func RandomGraph(n int, p float64, seed uint64) []triest.Edge {
	rng := rand.New(rand.NewPCG(seed, ^seed))
	var edges []triest.Edge
	for u := 1; u <= n; u++ {
		for v := u + 1; v <= n; v++ {
			if rng.Float64() < p {
				edges = append(edges, triest.NewEdge(triest.VertexID(u), triest.VertexID(v)))
			}
		}
	}
	Shuffle(edges, seed)
	return edges
}

// Shuffle permutes edges in place with a seeded generator.
func Shuffle(edges []triest.Edge, seed uint64) {
	rng := rand.New(rand.NewPCG(seed, seed+1))
	rng.Shuffle(len(edges), func(i, j int) { edges[i], edges[j] = edges[j], edges[i] })
}

// Binomial3 returns C(k,3), the triangle count of K_k.
func Binomial3(k int) int64 {
	if k < 3 {
		return 0
	}
	n := int64(k)
	return n * (n - 1) * (n - 2) / 6
}
