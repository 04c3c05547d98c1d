package graph

import (
	"errors"
	"fmt"

	"flowtrace/pkg/domain"
)

// ErrBrokenPath is returned when the parent chain does not lead from sink back to source.
var ErrBrokenPath = errors.New("parent chain does not reach source")

// ReconstructPath walks the parent chain from sink back to source and returns
// the vertices in source→sink order. Returns nil if sink was not reached.
func ReconstructPath(parent []int, source, sink int) []int {
	if sink < 0 || sink >= len(parent) {
		return nil
	}
	if sink != source && parent[sink] == domain.NoParent {
		return nil
	}

	var reversed []int
	for v := sink; ; v = parent[v] {
		reversed = append(reversed, v)
		if v == source {
			break
		}
		if parent[v] == domain.NoParent || len(reversed) > len(parent) {
			return nil
		}
	}

	path := make([]int, len(reversed))
	for i, v := range reversed {
		path[len(reversed)-1-i] = v
	}
	return path
}

// edge is one (parent[v], v) hop of an augmenting path.
type edge struct{ u, v int }

// pathEdges walks the parent chain from sink back to source and returns its
// edges in that order. The whole chain is checked before anything is returned,
// so callers can mutate g knowing every hop is valid.
func pathEdges(g *ResidualGraph, parent []int, source, sink int) ([]edge, error) {
	if err := g.ValidateVertex(source); err != nil {
		return nil, err
	}
	if err := g.ValidateVertex(sink); err != nil {
		return nil, err
	}
	if len(parent) != g.n {
		return nil, fmt.Errorf("%w: parent has %d entries, want %d", ErrBrokenPath, len(parent), g.n)
	}

	var edges []edge
	for v := sink; v != source; v = parent[v] {
		u := parent[v]
		if u < 0 || u >= g.n || len(edges) >= g.n {
			return nil, fmt.Errorf("%w: stopped at vertex %d", ErrBrokenPath, v)
		}
		edges = append(edges, edge{u: u, v: v})
	}
	return edges, nil
}

// Bottleneck walks from sink to source and returns the minimum residual
// capacity over the path edges (parent[v], v).
//
// The accumulator starts at domain.Unbounded rather than a floating-point
// infinity so integral capacities stay exact. A path with no edges
// (source == sink) therefore yields Unbounded; the engine rejects that input
// before getting here.
func Bottleneck(g *ResidualGraph, parent []int, source, sink int) (Capacity, error) {
	edges, err := pathEdges(g, parent, source, sink)
	if err != nil {
		return 0, err
	}
	flow := domain.Unbounded
	for _, e := range edges {
		flow = domain.MinCapacity(flow, g.capacity(e.u, e.v))
	}
	return flow, nil
}

// Augment applies Adjust(parent[v], v, flow) to every edge on the path,
// walking from sink back to source. A broken chain is reported before any
// edge is adjusted, leaving g unchanged.
func Augment(g *ResidualGraph, parent []int, source, sink int, flow Capacity) error {
	edges, err := pathEdges(g, parent, source, sink)
	if err != nil {
		return err
	}
	for _, e := range edges {
		if err := g.Adjust(e.u, e.v, flow); err != nil {
			return err
		}
	}
	return nil
}
