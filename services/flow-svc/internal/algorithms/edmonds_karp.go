package algorithms

import (
	"context"
	"errors"
	"fmt"

	"flowtrace/pkg/domain"
	"flowtrace/services/flow-svc/internal/graph"
)

// =============================================================================
// Edmonds-Karp Algorithm
// =============================================================================
//
// The Edmonds-Karp algorithm is the Ford-Fulkerson method with augmenting
// paths found by breadth-first search. Always taking a shortest path (in
// edges) bounds the number of augmentations by O(V × E).
//
// Time Complexity: O(V × E²) augmentations × BFS, O(V⁵) on a dense matrix
// Space Complexity: O(V²) for the residual matrix, plus O(V²) per recorded snapshot
//
// Every augmentation is recorded as a StepRecord. The residual snapshot of a
// step is taken BEFORE that step's residual update, so the first record shows
// the untouched input and the final residual state is returned separately.
//
// References:
//   - Edmonds, J. & Karp, R.M. (1972). "Theoretical improvements in
//     algorithmic efficiency for network flow problems"
// =============================================================================

// checkInterval is how many augmentations run between context checks.
const checkInterval = 100

// Result contains the outcome of a single Edmonds-Karp run.
type Result struct {
	// MaxFlow is the total flow pushed from source to sink.
	MaxFlow domain.Capacity

	// Steps is the ordered augmentation log. Empty iff the sink was
	// unreachable from the start.
	Steps domain.StepLog

	// Iterations is the number of augmenting paths found (len(Steps)).
	Iterations int
}

// EdmondsKarp runs the algorithm without cancellation support.
//
// Parameters:
//   - g: The residual graph (will be drained)
//   - source: The source vertex index
//   - sink: The sink vertex index
//   - options: Solver options (nil for defaults)
//
// Returns:
//   - *Result with max flow and step log, or an error for invalid indices
func EdmondsKarp(g *graph.ResidualGraph, source, sink int, options *SolverOptions) (*Result, error) {
	return Run(context.Background(), g, source, sink, options)
}

// Run executes Edmonds-Karp on g, mutating it into the final residual graph.
//
// The loop is SEARCHING → DONE:
//  1. BFS for a shortest augmenting path; none found ⇒ DONE
//  2. pathFlow = bottleneck along the path
//  3. maxFlow += pathFlow
//  4. append a StepRecord with a snapshot of the residual graph as it was
//     before this augmentation
//  5. augment along the path
//
// Parameters:
//   - ctx: Context for cancellation, checked every checkInterval augmentations
//   - g: The residual graph, owned by this call for its whole duration
//   - source: The source vertex index
//   - sink: The sink vertex index
//   - options: Solver options (nil for defaults)
//
// Returns:
//   - *Result on completion
//   - an error wrapping ErrInvalidIndex, ErrSourceEqualsSink, ErrContextCanceled,
//     ErrTimeout or ErrIterationLimit. No partial result is returned on error.
func Run(ctx context.Context, g *graph.ResidualGraph, source, sink int, options *SolverOptions) (*Result, error) {
	if err := validateEndpoints(g, source, sink); err != nil {
		return nil, err
	}
	if options == nil {
		options = DefaultSolverOptions()
	}

	var (
		maxFlow    domain.Capacity
		steps      domain.StepLog
		iterations int
	)

	for {
		// Periodic context check
		if iterations%checkInterval == 0 {
			select {
			case <-ctx.Done():
				return nil, contextError(ctx, iterations)
			default:
			}
		}

		bfs := graph.FindAugmentingPath(g, source, sink)
		if !bfs.Found {
			break
		}

		if options.MaxIterations > 0 && iterations >= options.MaxIterations {
			return nil, fmt.Errorf("%w: %d augmentations, flow %d so far", ErrIterationLimit, iterations, maxFlow)
		}

		pathFlow, err := graph.Bottleneck(g, bfs.Parent, source, sink)
		if err != nil {
			return nil, err
		}

		maxFlow += pathFlow
		iterations++

		step := domain.StepRecord{
			Index:          iterations,
			Action:         domain.ActionAugmentPath,
			PathFlow:       pathFlow,
			CurrentMaxFlow: maxFlow,
		}
		if options.RecordSnapshots {
			step.ResidualGraph = g.Snapshot()
		}
		if options.RecordPaths {
			step.Path = graph.ReconstructPath(bfs.Parent, source, sink)
		}
		steps = append(steps, step)

		if err := graph.Augment(g, bfs.Parent, source, sink, pathFlow); err != nil {
			return nil, err
		}
	}

	if steps == nil {
		steps = domain.StepLog{}
	}

	return &Result{
		MaxFlow:    maxFlow,
		Steps:      steps,
		Iterations: iterations,
	}, nil
}

// validateEndpoints checks that source and sink are valid, distinct vertices.
func validateEndpoints(g *graph.ResidualGraph, source, sink int) error {
	if g == nil {
		return ErrNilGraph
	}
	if err := g.ValidateVertex(source); err != nil {
		return fmt.Errorf("source: %w", err)
	}
	if err := g.ValidateVertex(sink); err != nil {
		return fmt.Errorf("sink: %w", err)
	}
	if source == sink {
		return fmt.Errorf("%w: %d", ErrSourceEqualsSink, source)
	}
	return nil
}

// contextError maps a finished context to ErrTimeout or ErrContextCanceled.
func contextError(ctx context.Context, iterations int) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w after %d augmentations", ErrTimeout, iterations)
	}
	return fmt.Errorf("%w after %d augmentations", ErrContextCanceled, iterations)
}
