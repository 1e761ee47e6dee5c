package algorithms

import (
	"container/heap"

	"github.com/dd0wney/cluso-triest/pkg/triest"
)

// RankedVertex represents a vertex with its score
type RankedVertex struct {
	Vertex triest.VertexID
	Score  float64
}

// rankedVertexHeap is a min-heap by score, ties broken so that the larger
// vertex ID is evicted first.
type rankedVertexHeap []RankedVertex

func (h rankedVertexHeap) Len() int { return len(h) }
func (h rankedVertexHeap) Less(i, j int) bool {
	if h[i].Score != h[j].Score {
		return h[i].Score < h[j].Score
	}
	return h[i].Vertex > h[j].Vertex
}
func (h rankedVertexHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *rankedVertexHeap) Push(x any) {
	*h = append(*h, x.(RankedVertex))
}

func (h *rankedVertexHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[0 : n-1]
	return x
}

// findTopVertices returns the n highest-scoring vertices in descending order.
// Time complexity: O(v log n)
func findTopVertices(scores map[triest.VertexID]float64, n int) []RankedVertex {
	if n <= 0 {
		return nil
	}

	h := make(rankedVertexHeap, 0, n)
	heap.Init(&h)

	for id, score := range scores {
		rv := RankedVertex{Vertex: id, Score: score}
		if h.Len() < n {
			heap.Push(&h, rv)
		} else if less(h[0], rv) {
			heap.Pop(&h)
			heap.Push(&h, rv)
		}
	}

	result := make([]RankedVertex, h.Len())
	for i := h.Len() - 1; i >= 0; i-- {
		result[i] = heap.Pop(&h).(RankedVertex)
	}
	return result
}

// less orders a below b with the same rule as the heap.
func less(a, b RankedVertex) bool {
	if a.Score != b.Score {
		return a.Score < b.Score
	}
	return a.Vertex > b.Vertex
}
