package graph

import "flowtrace/pkg/domain"

// BFSResult is the outcome of one breadth-first search from the source.
//
// Parent[v] is the vertex that discovered v, or domain.NoParent for the
// source and for unvisited vertices. The slices are freshly allocated on every
// search and are meaningful along the path to the sink only when Found is true.
type BFSResult struct {
	Found   bool
	Parent  []int
	Visited []bool
}

// =============================================================================
// Queue Implementation
// =============================================================================

// Queue is a FIFO of vertex indices backed by a slice with a head pointer.
// Pre-size it with NewQueue(n) to avoid growth during a search.
type Queue struct {
	data []int
	head int
}

// NewQueue creates a Queue with the given initial capacity.
func NewQueue(capacity int) *Queue {
	return &Queue{
		data: make([]int, 0, capacity),
	}
}

// Push adds v to the back of the queue.
func (q *Queue) Push(v int) {
	q.data = append(q.data, v)
}

// Pop removes and returns the front element.
//
// Panics if the queue is empty. Always check Empty() before calling Pop().
func (q *Queue) Pop() int {
	v := q.data[q.head]
	q.head++
	return v
}

// Empty returns true if the queue contains no elements.
func (q *Queue) Empty() bool {
	return q.head >= len(q.data)
}

// =============================================================================
// Augmenting Path Search
// =============================================================================

// FindAugmentingPath runs a breadth-first search from source over edges with
// positive residual capacity.
//
// For every dequeued vertex the neighbours are scanned in ascending index
// order, so among equally short augmenting paths the one found is always the
// same. Each vertex is visited at most once. The search covers the whole
// reachable set instead of stopping at the sink; the sink's BFS-tree path is
// identical either way and the full Visited set is what MinCut needs.
//
// The graph is not modified. Indices must already be validated.
//
// Time Complexity: O(V²)
func FindAugmentingPath(g *ResidualGraph, source, sink int) *BFSResult {
	n := g.n
	parent := make([]int, n)
	visited := make([]bool, n)
	for i := range parent {
		parent[i] = domain.NoParent
	}

	queue := NewQueue(n)
	queue.Push(source)
	visited[source] = true

	for !queue.Empty() {
		u := queue.Pop()
		row := g.cap[u]
		for v := 0; v < n; v++ {
			if !visited[v] && row[v] > 0 {
				parent[v] = u
				visited[v] = true
				queue.Push(v)
			}
		}
	}

	return &BFSResult{
		Found:   visited[sink],
		Parent:  parent,
		Visited: visited,
	}
}

// Reachable returns the set of vertices reachable from source through edges
// with positive residual capacity.
func Reachable(g *ResidualGraph, source int) []bool {
	// sink is irrelevant to the visited set
	return FindAugmentingPath(g, source, source).Visited
}
