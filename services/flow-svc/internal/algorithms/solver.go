// Package algorithms implements the Edmonds-Karp maximum flow engine with a
// recorded augmentation log, the minimum cut derived from its final residual
// graph, and a bounded pool for running independent solves concurrently.
//
// # Thread Safety
//
// Run mutates the ResidualGraph it is given and must own it for the whole
// call. Solve and SolverPool build a fresh graph from the immutable input
// matrix for every call, so they are safe to use from many goroutines.
//
// # Determinism
//
// BFS scans neighbours in ascending vertex index, so for a given matrix,
// source and sink the step log is always the same.
//
// # Context Support
//
// The augmentation loop checks its context periodically; cancellation and
// deadlines surface as ErrContextCanceled and ErrTimeout.
//
// # Example Usage
//
//	matrix := domain.Matrix{
//	    {0, 10, 5},
//	    {0, 0, 15},
//	    {0, 0, 0},
//	}
//
//	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
//	defer cancel()
//
//	result, err := algorithms.Solve(ctx, matrix, 0, 2, nil)
//	if err != nil {
//	    log.Printf("Error: %v", err)
//	} else {
//	    log.Printf("Max flow: %d in %d steps", result.MaxFlow, len(result.Steps))
//	}
package algorithms

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"flowtrace/pkg/domain"
	"flowtrace/services/flow-svc/internal/graph"
)

// =============================================================================
// Error Definitions
// =============================================================================

// Standard errors returned by solver operations.
// These errors can be checked using errors.Is() for robust error handling.
var (
	// ErrNilGraph indicates that a nil graph was passed to Run.
	ErrNilGraph = errors.New("graph is nil")

	// ErrInvalidIndex indicates a source or sink outside [0, n).
	ErrInvalidIndex = graph.ErrInvalidIndex

	// ErrMalformedMatrix indicates an empty, non-square or ragged input matrix.
	ErrMalformedMatrix = domain.ErrMalformedMatrix

	// ErrNegativeCapacity indicates a negative entry in the input matrix.
	ErrNegativeCapacity = domain.ErrNegativeCapacity

	// ErrCapacityOverflow indicates capacity sums that do not fit in int64.
	ErrCapacityOverflow = domain.ErrCapacityOverflow

	// ErrSourceEqualsSink indicates that source and sink are the same vertex.
	ErrSourceEqualsSink = errors.New("source equals sink")

	// ErrTooManyVertices indicates the matrix exceeds SolverOptions.MaxVertices.
	ErrTooManyVertices = errors.New("too many vertices")

	// ErrContextCanceled indicates that the operation was cancelled via context.
	ErrContextCanceled = errors.New("context canceled")

	// ErrTimeout indicates that the operation exceeded the configured timeout.
	ErrTimeout = errors.New("operation timeout")

	// ErrIterationLimit indicates that MaxIterations augmentations ran and an
	// augmenting path still existed.
	ErrIterationLimit = errors.New("iteration limit reached")
)

// =============================================================================
// Solver Options
// =============================================================================

// SolverOptions configures a solve.
//
// A nil *SolverOptions means DefaultSolverOptions(). Options can be chained:
//
//	opts := DefaultSolverOptions().
//	    WithTimeout(10 * time.Second).
//	    WithRecordSnapshots(false)
type SolverOptions struct {
	// MaxIterations limits the number of augmentations.
	// Zero or negative means unlimited.
	// Default: 0 (unlimited)
	MaxIterations int

	// MaxVertices rejects larger matrices before any work is done.
	// Zero means no limit.
	// Default: 0
	MaxVertices int

	// Timeout sets the maximum duration for the algorithm.
	// Zero means no timeout (relies on context).
	// Default: 30 seconds
	Timeout time.Duration

	// RecordSnapshots stores a copy of the residual matrix in every step.
	// Memory grows as steps × n², so large networks usually turn this off.
	// Default: true
	RecordSnapshots bool

	// RecordPaths stores the augmenting path (vertex sequence) in every step.
	// Default: true
	RecordPaths bool
}

// DefaultSolverOptions returns options with sensible defaults for most use cases.
//
// Default values:
//   - MaxIterations: unlimited
//   - MaxVertices: unlimited
//   - Timeout: 30 seconds
//   - RecordSnapshots: true
//   - RecordPaths: true
func DefaultSolverOptions() *SolverOptions {
	return &SolverOptions{
		MaxIterations:   0,
		MaxVertices:     0,
		Timeout:         30 * time.Second,
		RecordSnapshots: true,
		RecordPaths:     true,
	}
}

// WithTimeout sets the timeout and returns the options for chaining.
func (o *SolverOptions) WithTimeout(timeout time.Duration) *SolverOptions {
	o.Timeout = timeout
	return o
}

// WithMaxIterations sets the iteration limit and returns the options for chaining.
func (o *SolverOptions) WithMaxIterations(max int) *SolverOptions {
	o.MaxIterations = max
	return o
}

// WithMaxVertices sets the vertex limit and returns the options for chaining.
func (o *SolverOptions) WithMaxVertices(max int) *SolverOptions {
	o.MaxVertices = max
	return o
}

// WithRecordSnapshots toggles residual snapshots and returns the options for chaining.
func (o *SolverOptions) WithRecordSnapshots(record bool) *SolverOptions {
	o.RecordSnapshots = record
	return o
}

// WithRecordPaths toggles path recording and returns the options for chaining.
func (o *SolverOptions) WithRecordPaths(record bool) *SolverOptions {
	o.RecordPaths = record
	return o
}

// Clone returns a copy so callers can tweak options without sharing state.
func (o *SolverOptions) Clone() *SolverOptions {
	if o == nil {
		return DefaultSolverOptions()
	}
	c := *o
	return &c
}

// =============================================================================
// Solver Result
// =============================================================================

// SolverResult contains the complete result of a flow computation.
type SolverResult struct {
	// MaxFlow is the maximum flow value found.
	MaxFlow domain.Capacity

	// Steps is the augmentation log.
	Steps domain.StepLog

	// Iterations is the number of augmenting paths.
	Iterations int

	// Residual is the final residual matrix.
	Residual domain.Matrix

	// MinCut is the minimum s-t cut of the final residual graph.
	MinCut *domain.MinCut

	// Duration is the wall-clock time taken by the solve.
	Duration time.Duration
}

// Trace packages the result together with its input as a domain.Trace.
func (r *SolverResult) Trace(original domain.Matrix, source, sink int) *domain.Trace {
	return &domain.Trace{
		Source:   source,
		Sink:     sink,
		Original: original,
		Residual: r.Residual,
		MaxFlow:  r.MaxFlow,
		Steps:    r.Steps,
		MinCut:   r.MinCut,
	}
}

// =============================================================================
// Main Solver Entry Point
// =============================================================================

// Solve validates the input, builds a private residual graph, runs
// Edmonds-Karp under the configured timeout and derives the minimum cut.
//
// # Parameters
//
//   - ctx: Context for cancellation and timeout. Must not be nil.
//   - matrix: The capacity matrix. Never modified or aliased.
//   - source: The source vertex index.
//   - sink: The sink vertex index, distinct from source.
//   - options: Solver options. nil uses DefaultSolverOptions().
//
// # Errors
//
// Input errors wrap ErrMalformedMatrix, ErrNegativeCapacity, ErrCapacityOverflow, ErrTooManyVertices,
// ErrInvalidIndex or ErrSourceEqualsSink. Run-time errors wrap ErrTimeout,
// ErrContextCanceled or ErrIterationLimit.
//
// # Thread Safety
//
// Safe for concurrent use: the input matrix is only read.
func Solve(ctx context.Context, matrix domain.Matrix, source, sink int, options *SolverOptions) (*SolverResult, error) {
	start := time.Now()

	if options == nil {
		options = DefaultSolverOptions()
	}

	if options.MaxVertices > 0 && len(matrix) > options.MaxVertices {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyVertices, len(matrix), options.MaxVertices)
	}

	g, err := graph.New(matrix)
	if err != nil {
		return nil, err
	}

	// Create context with timeout if specified
	if options.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, options.Timeout)
		defer cancel()
	}

	run, err := Run(ctx, g, source, sink, options)
	if err != nil {
		return nil, err
	}

	return &SolverResult{
		MaxFlow:    run.MaxFlow,
		Steps:      run.Steps,
		Iterations: run.Iterations,
		Residual:   g.Snapshot(),
		MinCut:     MinCut(g, matrix, source),
		Duration:   time.Since(start),
	}, nil
}

// =============================================================================
// Solver Pool
// =============================================================================

// SolverPool bounds the number of solves running at once.
//
// # Example
//
//	pool := NewSolverPool(runtime.NumCPU())
//	result, err := pool.SolvePooled(ctx, matrix, 0, 5, nil)
type SolverPool struct {
	workers chan struct{} // Semaphore for concurrency limiting
}

// NewSolverPool creates a new solver pool with the specified maximum concurrency.
//
// If maxConcurrency <= 0, it defaults to 10.
func NewSolverPool(maxConcurrency int) *SolverPool {
	if maxConcurrency <= 0 {
		maxConcurrency = 10
	}
	return &SolverPool{
		workers: make(chan struct{}, maxConcurrency),
	}
}

// Acquire obtains a worker slot from the pool.
//
// Blocks until a slot is available or the context is cancelled.
// Returns nil on success, or ctx.Err() if the context was cancelled.
//
// Call Release() when the work is complete.
func (sp *SolverPool) Acquire(ctx context.Context) error {
	select {
	case sp.workers <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release returns a worker slot to the pool.
//
// Must be called exactly once after each successful Acquire().
func (sp *SolverPool) Release() {
	<-sp.workers
}

// InUse returns the number of occupied worker slots.
func (sp *SolverPool) InUse() int {
	return len(sp.workers)
}

// Capacity returns the maximum number of concurrent solves.
func (sp *SolverPool) Capacity() int {
	return cap(sp.workers)
}

// SolvePooled runs Solve inside a worker slot.
//
// Waiting for a slot respects ctx; a context that ends while waiting yields
// ErrContextCanceled or ErrTimeout.
func (sp *SolverPool) SolvePooled(ctx context.Context, matrix domain.Matrix, source, sink int, options *SolverOptions) (*SolverResult, error) {
	if err := sp.Acquire(ctx); err != nil {
		return nil, contextError(ctx, 0)
	}
	defer sp.Release()

	return Solve(ctx, matrix, source, sink, options)
}

// BatchTask represents a single task for batch processing.
type BatchTask struct {
	// TaskID is a user-defined identifier for correlating results.
	TaskID string

	// Matrix is the input capacity matrix. Only read.
	Matrix domain.Matrix

	// Source is the source vertex index.
	Source int

	// Sink is the sink vertex index.
	Sink int

	// Options for the solver. nil uses defaults.
	Options *SolverOptions
}

// BatchResult pairs a task with its outcome. Exactly one of Result and Err is set.
type BatchResult struct {
	TaskID string
	Result *SolverResult
	Err    error
}

// BatchSolve solves multiple flow problems in parallel.
//
// Tasks are executed concurrently up to the pool's concurrency limit.
// Results are returned in the same order as the input tasks. A failing task
// does not cancel the others.
//
// # Example
//
//	tasks := []BatchTask{
//	    {TaskID: "a", Matrix: m1, Source: 0, Sink: 5},
//	    {TaskID: "b", Matrix: m2, Source: 0, Sink: 3},
//	}
//	for _, r := range pool.BatchSolve(ctx, tasks) {
//	    fmt.Printf("Task %s: flow=%d err=%v\n", r.TaskID, r.Result.MaxFlow, r.Err)
//	}
func (sp *SolverPool) BatchSolve(ctx context.Context, tasks []BatchTask) []BatchResult {
	results := make([]BatchResult, len(tasks))

	var g errgroup.Group
	for i, task := range tasks {
		g.Go(func() error {
			res, err := sp.SolvePooled(ctx, task.Matrix, task.Source, task.Sink, task.Options)
			results[i] = BatchResult{
				TaskID: task.TaskID,
				Result: res,
				Err:    err,
			}
			return nil
		})
	}

	_ = g.Wait()
	return results
}
