package algorithms

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowtrace/pkg/domain"
)

func TestSolve(t *testing.T) {
	tests := []struct {
		name      string
		matrix    domain.Matrix
		source    int
		sink      int
		options   *SolverOptions
		wantFlow  domain.Capacity
		wantSteps int
		wantErr   error
	}{
		{
			name:      "clrs",
			matrix:    clrsMatrix(),
			source:    0,
			sink:      5,
			wantFlow:  23,
			wantSteps: 3,
		},
		{
			name:      "single edge",
			matrix:    domain.Matrix{{0, 5}, {0, 0}},
			source:    0,
			sink:      1,
			wantFlow:  5,
			wantSteps: 1,
		},
		{
			name:      "max int64 chain",
			matrix:    domain.Matrix{{0, math.MaxInt64, 0}, {0, 0, math.MaxInt64}, {0, 0, 0}},
			source:    0,
			sink:      2,
			wantFlow:  math.MaxInt64,
			wantSteps: 1,
		},
		{
			name:    "out-capacity overflow",
			matrix:  domain.Matrix{{0, math.MaxInt64, math.MaxInt64}, {0, 0, math.MaxInt64}, {0, 0, 0}},
			sink:    2,
			wantErr: ErrCapacityOverflow,
		},
		{
			name:    "antiparallel pair overflow",
			matrix:  domain.Matrix{{0, math.MaxInt64}, {math.MaxInt64, 0}},
			sink:    1,
			wantErr: ErrCapacityOverflow,
		},
		{
			name:    "empty matrix",
			matrix:  domain.Matrix{},
			wantErr: ErrMalformedMatrix,
		},
		{
			name:    "ragged matrix",
			matrix:  domain.Matrix{{0, 1}, {0}},
			sink:    1,
			wantErr: ErrMalformedMatrix,
		},
		{
			name:    "negative capacity",
			matrix:  domain.Matrix{{0, -1}, {0, 0}},
			sink:    1,
			wantErr: ErrNegativeCapacity,
		},
		{
			name:    "sink out of range",
			matrix:  domain.Matrix{{0, 1}, {0, 0}},
			sink:    2,
			wantErr: ErrInvalidIndex,
		},
		{
			name:    "source equals sink",
			matrix:  domain.Matrix{{0, 1}, {0, 0}},
			source:  1,
			sink:    1,
			wantErr: ErrSourceEqualsSink,
		},
		{
			name:    "too many vertices",
			matrix:  clrsMatrix(),
			sink:    5,
			options: DefaultSolverOptions().WithMaxVertices(4),
			wantErr: ErrTooManyVertices,
		},
		{
			name:    "iteration limit",
			matrix:  clrsMatrix(),
			sink:    5,
			options: DefaultSolverOptions().WithMaxIterations(1),
			wantErr: ErrIterationLimit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Solve(context.Background(), tt.matrix, tt.source, tt.sink, tt.options)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, result)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantFlow, result.MaxFlow)
			assert.Len(t, result.Steps, tt.wantSteps)
			assert.Equal(t, tt.wantSteps, result.Iterations)
			require.NotNil(t, result.MinCut)
			assert.Equal(t, tt.wantFlow, result.MinCut.Capacity)
			assert.NotNil(t, result.Residual)
			assert.GreaterOrEqual(t, result.Duration, time.Duration(0))
		})
	}
}

func TestSolve_DoesNotModifyInput(t *testing.T) {
	input := clrsMatrix()
	before := input.Clone()

	result, err := Solve(context.Background(), input, 0, 5, nil)
	require.NoError(t, err)

	assert.True(t, before.Equal(input))
	assert.False(t, input.Equal(result.Residual))

	// result matrices are not aliased to the input
	result.Steps[0].ResidualGraph[0][1] = 999
	assert.Equal(t, domain.Capacity(16), input[0][1])
}

func TestSolve_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Solve(ctx, clrsMatrix(), 0, 5, nil)
	assert.ErrorIs(t, err, ErrContextCanceled)
}

func TestSolverResult_Trace(t *testing.T) {
	input := clrsMatrix()
	result, err := Solve(context.Background(), input, 0, 5, nil)
	require.NoError(t, err)

	trace := result.Trace(input, 0, 5)
	assert.Equal(t, 6, trace.Vertices())
	assert.Equal(t, 3, trace.StepCount())
	assert.Equal(t, domain.Capacity(23), trace.MaxFlow)
	assert.Same(t, result.MinCut, trace.MinCut)
}

func TestSolverOptions(t *testing.T) {
	opts := DefaultSolverOptions()
	assert.True(t, opts.RecordSnapshots)
	assert.True(t, opts.RecordPaths)
	assert.Equal(t, 30*time.Second, opts.Timeout)
	assert.Zero(t, opts.MaxIterations)

	chained := opts.Clone().
		WithTimeout(time.Second).
		WithMaxIterations(10).
		WithMaxVertices(50).
		WithRecordSnapshots(false).
		WithRecordPaths(false)

	assert.Equal(t, time.Second, chained.Timeout)
	assert.Equal(t, 10, chained.MaxIterations)
	assert.Equal(t, 50, chained.MaxVertices)
	assert.False(t, chained.RecordSnapshots)
	assert.False(t, chained.RecordPaths)

	// the original is untouched
	assert.True(t, opts.RecordSnapshots)

	var nilOpts *SolverOptions
	assert.Equal(t, DefaultSolverOptions(), nilOpts.Clone())
}
