package graph

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowtrace/pkg/domain"
)

func clrsMatrix() Matrix {
	return Matrix{
		{0, 16, 13, 0, 0, 0},
		{0, 0, 10, 12, 0, 0},
		{0, 4, 0, 0, 14, 0},
		{0, 0, 9, 0, 0, 20},
		{0, 0, 0, 7, 0, 4},
		{0, 0, 0, 0, 0, 0},
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		matrix  Matrix
		wantErr error
	}{
		{
			name:   "single vertex",
			matrix: Matrix{{0}},
		},
		{
			name:   "clrs network",
			matrix: clrsMatrix(),
		},
		{
			name:    "empty matrix",
			matrix:  Matrix{},
			wantErr: domain.ErrMalformedMatrix,
		},
		{
			name:    "nil matrix",
			matrix:  nil,
			wantErr: domain.ErrMalformedMatrix,
		},
		{
			name:    "non-square",
			matrix:  Matrix{{0, 1, 2}, {0, 0, 1}},
			wantErr: domain.ErrMalformedMatrix,
		},
		{
			name:    "ragged rows",
			matrix:  Matrix{{0, 1}, {0}},
			wantErr: domain.ErrMalformedMatrix,
		},
		{
			name:    "antiparallel pair overflow",
			matrix:  Matrix{{0, domain.Unbounded}, {2, 0}},
			wantErr: domain.ErrCapacityOverflow,
		},
		{
			name:    "negative capacity",
			matrix:  Matrix{{0, -3}, {0, 0}},
			wantErr: domain.ErrNegativeCapacity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := New(tt.matrix)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				assert.Nil(t, g)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, len(tt.matrix), g.Size())
		})
	}
}

func TestNew_DoesNotAliasInput(t *testing.T) {
	input := Matrix{{0, 5}, {0, 0}}
	g := MustNew(input)

	input[0][1] = 99
	c, err := g.Capacity(0, 1)
	require.NoError(t, err)
	assert.Equal(t, Capacity(5), c)
}

func TestMustNew_Panics(t *testing.T) {
	assert.Panics(t, func() { MustNew(Matrix{{0, 1}}) })
}

func TestResidualGraph_Capacity(t *testing.T) {
	g := MustNew(clrsMatrix())

	c, err := g.Capacity(0, 1)
	require.NoError(t, err)
	assert.Equal(t, Capacity(16), c)

	c, err = g.Capacity(1, 0)
	require.NoError(t, err)
	assert.Equal(t, Capacity(0), c)

	for _, idx := range [][2]int{{-1, 0}, {0, -1}, {6, 0}, {0, 6}} {
		_, err := g.Capacity(idx[0], idx[1])
		assert.ErrorIs(t, err, ErrInvalidIndex, "indices %v", idx)
	}
}

func TestResidualGraph_Adjust(t *testing.T) {
	tests := []struct {
		name        string
		u, v        int
		delta       Capacity
		wantForward Capacity
		wantReverse Capacity
	}{
		{name: "partial push", u: 0, v: 1, delta: 4, wantForward: 12, wantReverse: 4},
		{name: "saturating push", u: 0, v: 1, delta: 16, wantForward: 0, wantReverse: 16},
		{name: "zero push", u: 0, v: 2, delta: 0, wantForward: 13, wantReverse: 0},
		{name: "push into reverse edge", u: 1, v: 2, delta: 10, wantForward: 0, wantReverse: 14},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := MustNew(clrsMatrix())
			require.NoError(t, g.Adjust(tt.u, tt.v, tt.delta))

			fwd, _ := g.Capacity(tt.u, tt.v)
			rev, _ := g.Capacity(tt.v, tt.u)
			assert.Equal(t, tt.wantForward, fwd)
			assert.Equal(t, tt.wantReverse, rev)
		})
	}
}

func TestResidualGraph_Adjust_InvalidIndex(t *testing.T) {
	g := MustNew(clrsMatrix())
	before := g.Snapshot()

	assert.ErrorIs(t, g.Adjust(0, 10, 1), ErrInvalidIndex)
	assert.ErrorIs(t, g.Adjust(-1, 0, 1), ErrInvalidIndex)
	assert.True(t, before.Equal(g.Snapshot()), "failed adjust must not modify the graph")
}

func TestResidualGraph_Snapshot_Independent(t *testing.T) {
	g := MustNew(clrsMatrix())

	snap := g.Snapshot()
	require.NoError(t, g.Adjust(0, 1, 10))
	assert.Equal(t, Capacity(16), snap[0][1], "snapshot must not see later mutation")

	snap[0][2] = 0
	c, _ := g.Capacity(0, 2)
	assert.Equal(t, Capacity(13), c, "graph must not see snapshot mutation")
}

func TestResidualGraph_Clone(t *testing.T) {
	g := MustNew(clrsMatrix())
	c := g.Clone()

	require.NoError(t, c.Adjust(3, 5, 20))
	orig, _ := g.Capacity(3, 5)
	assert.Equal(t, Capacity(20), orig)
	assert.Equal(t, g.Size(), c.Size())
}

func TestResidualGraph_EdgeCountAndTotals(t *testing.T) {
	g := MustNew(clrsMatrix())
	assert.Equal(t, 10, g.EdgeCount())

	total, err := g.TotalCapacityFrom(0)
	require.NoError(t, err)
	assert.Equal(t, Capacity(29), total)

	_, err = g.TotalCapacityFrom(7)
	assert.ErrorIs(t, err, ErrInvalidIndex)
}
