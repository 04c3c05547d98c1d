package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowtrace/pkg/domain"
)

func TestQueue(t *testing.T) {
	q := NewQueue(2)
	assert.True(t, q.Empty())

	for i := 0; i < 5; i++ {
		q.Push(i)
	}

	for i := 0; i < 5; i++ {
		require.False(t, q.Empty())
		assert.Equal(t, i, q.Pop())
	}
	assert.True(t, q.Empty())
}

func TestQueue_PopEmptyPanics(t *testing.T) {
	q := NewQueue(0)
	assert.Panics(t, func() { q.Pop() })
}

func TestFindAugmentingPath(t *testing.T) {
	tests := []struct {
		name      string
		matrix    Matrix
		source    int
		sink      int
		wantFound bool
		wantPath  []int
	}{
		{
			name:      "single edge",
			matrix:    Matrix{{0, 5}, {0, 0}},
			source:    0,
			sink:      1,
			wantFound: true,
			wantPath:  []int{0, 1},
		},
		{
			name:      "no edge",
			matrix:    Matrix{{0, 0}, {0, 0}},
			source:    0,
			sink:      1,
			wantFound: false,
		},
		{
			name:      "edge points the wrong way",
			matrix:    Matrix{{0, 0}, {5, 0}},
			source:    0,
			sink:      1,
			wantFound: false,
		},
		{
			name:      "clrs shortest path by lowest index",
			matrix:    clrsMatrix(),
			source:    0,
			sink:      5,
			wantFound: true,
			wantPath:  []int{0, 1, 3, 5},
		},
		{
			name: "ties resolved by ascending index",
			matrix: Matrix{
				{0, 1, 1, 0},
				{0, 0, 0, 1},
				{0, 0, 0, 1},
				{0, 0, 0, 0},
			},
			source:    0,
			sink:      3,
			wantFound: true,
			wantPath:  []int{0, 1, 3},
		},
		{
			name: "shortest beats lower index",
			matrix: Matrix{
				{0, 1, 0, 1},
				{0, 0, 1, 0},
				{0, 0, 0, 1},
				{0, 0, 0, 0},
			},
			source:    0,
			sink:      3,
			wantFound: true,
			wantPath:  []int{0, 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := MustNew(tt.matrix)
			res := FindAugmentingPath(g, tt.source, tt.sink)

			require.NotNil(t, res)
			assert.Equal(t, tt.wantFound, res.Found)
			assert.Len(t, res.Parent, g.Size())
			assert.Equal(t, domain.NoParent, res.Parent[tt.source])
			assert.True(t, res.Visited[tt.source])

			if tt.wantFound {
				assert.Equal(t, tt.wantPath, ReconstructPath(res.Parent, tt.source, tt.sink))
			} else {
				assert.False(t, res.Visited[tt.sink])
				assert.Nil(t, ReconstructPath(res.Parent, tt.source, tt.sink))
			}
		})
	}
}

func TestFindAugmentingPath_DoesNotMutate(t *testing.T) {
	g := MustNew(clrsMatrix())
	before := g.Snapshot()

	FindAugmentingPath(g, 0, 5)
	assert.True(t, before.Equal(g.Snapshot()))
}

func TestFindAugmentingPath_FreshParentsEachCall(t *testing.T) {
	g := MustNew(Matrix{{0, 5}, {0, 0}})

	first := FindAugmentingPath(g, 0, 1)
	require.True(t, first.Found)
	require.NoError(t, g.Adjust(0, 1, 5))

	second := FindAugmentingPath(g, 0, 1)
	assert.False(t, second.Found)
	assert.Equal(t, domain.NoParent, second.Parent[1], "stale parent must not leak between searches")
	assert.Equal(t, 0, first.Parent[1])
}

func TestReachable(t *testing.T) {
	g := MustNew(Matrix{
		{0, 3, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 4},
		{0, 0, 0, 0},
	})

	assert.Equal(t, []bool{true, true, false, false}, Reachable(g, 0))
	assert.Equal(t, []bool{false, false, true, true}, Reachable(g, 2))
}
