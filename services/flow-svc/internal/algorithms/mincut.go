package algorithms

import (
	"flowtrace/pkg/domain"
	"flowtrace/services/flow-svc/internal/graph"
)

// =============================================================================
// Minimum Cut
// =============================================================================

// MinCut extracts the minimum s-t cut from a drained residual graph.
//
// The source side is every vertex still reachable from source through
// positive residual capacity. Cut edges are the original edges leaving the
// source side; by max-flow/min-cut their total capacity equals the max flow.
//
// Parameters:
//   - g: The residual graph after Run has completed
//   - original: The input capacity matrix g was built from
//   - source: The source vertex index
//
// Returns:
//   - *domain.MinCut with both sides in ascending order and cut edges in (from, to) order
func MinCut(g *graph.ResidualGraph, original domain.Matrix, source int) *domain.MinCut {
	reachable := graph.Reachable(g, source)

	cut := &domain.MinCut{
		SourceSide: make([]int, 0),
		SinkSide:   make([]int, 0),
		Edges:      make([]domain.CutEdge, 0),
	}

	for v, inS := range reachable {
		if inS {
			cut.SourceSide = append(cut.SourceSide, v)
		} else {
			cut.SinkSide = append(cut.SinkSide, v)
		}
	}

	for _, u := range cut.SourceSide {
		for v, c := range original[u] {
			if c > 0 && !reachable[v] {
				cut.Edges = append(cut.Edges, domain.CutEdge{From: u, To: v, Capacity: c})
				cut.Capacity = domain.AddSaturating(cut.Capacity, c)
			}
		}
	}

	return cut
}
