// Package graph provides the residual network and the breadth-first search
// used by the augmenting-path engine.
//
// The residual network is a dense n×n capacity matrix. It is owned by exactly
// one run at a time and is not safe for concurrent use: callers that need
// parallel runs build one ResidualGraph per run from an immutable input matrix.
package graph

import (
	"errors"
	"fmt"

	"flowtrace/pkg/domain"
)

// Capacity is the integral residual capacity type.
type Capacity = domain.Capacity

// Matrix is a square capacity matrix.
type Matrix = domain.Matrix

// ErrInvalidIndex is returned when a vertex index falls outside [0, n).
var ErrInvalidIndex = errors.New("vertex index out of range")

// =============================================================================
// Residual Graph
// =============================================================================

// ResidualGraph holds the current residual capacities of a flow network.
//
// The matrix is never exposed directly. Reads go through Capacity, the only
// mutation is Adjust, and Snapshot hands out independent copies.
type ResidualGraph struct {
	n   int
	cap Matrix
}

// New validates the input and builds a residual graph from a deep copy of it.
//
// Returns an error wrapping domain.ErrMalformedMatrix for an empty, non-square
// or ragged matrix, domain.ErrNegativeCapacity for any negative entry and
// domain.ErrCapacityOverflow when capacity sums do not fit in int64.
// The caller's matrix is never aliased.
func New(matrix Matrix) (*ResidualGraph, error) {
	if err := matrix.Validate(); err != nil {
		return nil, err
	}
	return &ResidualGraph{
		n:   len(matrix),
		cap: matrix.Clone(),
	}, nil
}

// MustNew is New that panics on invalid input. Intended for tests and fixed samples.
func MustNew(matrix Matrix) *ResidualGraph {
	g, err := New(matrix)
	if err != nil {
		panic(err)
	}
	return g
}

// Size returns the number of vertices.
func (g *ResidualGraph) Size() int {
	return g.n
}

// ValidateVertex reports ErrInvalidIndex if v is outside [0, n).
func (g *ResidualGraph) ValidateVertex(v int) error {
	if v < 0 || v >= g.n {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrInvalidIndex, v, g.n)
	}
	return nil
}

// Capacity returns the current residual capacity u→v.
func (g *ResidualGraph) Capacity(u, v int) (Capacity, error) {
	if err := g.ValidateVertex(u); err != nil {
		return 0, err
	}
	if err := g.ValidateVertex(v); err != nil {
		return 0, err
	}
	return g.cap[u][v], nil
}

// capacity is the unchecked read used on hot paths after indices are known valid.
func (g *ResidualGraph) capacity(u, v int) Capacity {
	return g.cap[u][v]
}

// Adjust pushes delta units along u→v: the forward residual shrinks by delta
// and the reverse residual grows by delta. Both updates are applied together
// or not at all.
//
// No lower-bound check is made on the result. The engine only ever passes a
// path bottleneck, which keeps every entry non-negative.
func (g *ResidualGraph) Adjust(u, v int, delta Capacity) error {
	if err := g.ValidateVertex(u); err != nil {
		return err
	}
	if err := g.ValidateVertex(v); err != nil {
		return err
	}
	g.cap[u][v] -= delta
	g.cap[v][u] += delta
	return nil
}

// Snapshot returns an independent deep copy of the current residual matrix.
func (g *ResidualGraph) Snapshot() Matrix {
	return g.cap.Clone()
}

// Clone returns an independent residual graph with the same capacities.
func (g *ResidualGraph) Clone() *ResidualGraph {
	return &ResidualGraph{n: g.n, cap: g.cap.Clone()}
}

// EdgeCount returns the number of ordered pairs with positive residual capacity.
func (g *ResidualGraph) EdgeCount() int {
	return g.cap.EdgeCount()
}

// TotalCapacityFrom returns the summed residual capacity leaving u.
func (g *ResidualGraph) TotalCapacityFrom(u int) (Capacity, error) {
	if err := g.ValidateVertex(u); err != nil {
		return 0, err
	}
	return g.cap.OutCapacity(u), nil
}
