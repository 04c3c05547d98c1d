// Package main is the entry point for flowtrace.
//
// flowtrace computes the maximum s-t flow of a network given as an n×n
// capacity matrix using the Edmonds-Karp method (BFS shortest augmenting
// paths) and records a step log: one entry per augmentation with the path,
// its bottleneck, the running total and a snapshot of the residual graph.
//
// # Commands
//
//	flowtrace serve                 - HTTP/JSON API
//	flowtrace solve [flags]         - one-off computation, report to stdout or a file
//	flowtrace examples              - list built-in networks
//	flowtrace migrate up|down|status - PostgreSQL schema of the run history
//
// # Architecture
//
//	┌─────────────────────────────────────────────────────────────┐
//	│                     HTTP Transport Layer                    │
//	│  httprouter + alice: request id, recover, tracing, logging, │
//	│  metrics, CORS, rate limit, body limit                      │
//	├─────────────────────────────────────────────────────────────┤
//	│                      Service Layer                          │
//	│  (internal/service - FlowService)                           │
//	│  - Request validation and limits                            │
//	│  - Trace cache, run history, reports                        │
//	├─────────────────────────────────────────────────────────────┤
//	│                      Algorithm Layer                        │
//	│  (internal/algorithms) Edmonds-Karp, min cut, solver pool   │
//	├─────────────────────────────────────────────────────────────┤
//	│                       Graph Layer                           │
//	│  (internal/graph) residual matrix, BFS, path utilities      │
//	└─────────────────────────────────────────────────────────────┘
//
// # Configuration
//
// Configuration is loaded with the following priority (highest to lowest):
//  1. Environment variables (prefix: FLOWTRACE_)
//  2. Config file (--config, CONFIG_PATH, or config.yaml in standard locations)
//  3. Default values
//
// Key options (environment variable format):
//
//	FLOWTRACE_HTTP_PORT              - API port (default: 8080)
//	FLOWTRACE_SOLVER_MAX_VERTICES    - largest accepted matrix
//	FLOWTRACE_SOLVER_TIMEOUT         - per-run timeout (default: 30s)
//	FLOWTRACE_SOLVER_RECORD_SNAPSHOTS - store residual matrices per step
//	FLOWTRACE_HISTORY_ENABLED        - keep a run history
//	FLOWTRACE_HISTORY_BACKEND        - memory, postgres
//	FLOWTRACE_CACHE_ENABLED          - cache traces (memory or redis)
//	FLOWTRACE_METRICS_PORT           - separate metrics port, 0 serves /metrics on the API port
//	FLOWTRACE_TRACING_ENABLED        - OTLP tracing
//
// # Graceful Shutdown
//
// SIGINT and SIGTERM cancel the root context. The server stops accepting
// connections, lets in-flight requests finish within http.shutdown_timeout,
// then closes the rate limiter, cache, database pool and tracer provider.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"flowtrace/services/flow-svc/internal/cli"
)

// version задаётся при сборке: -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// =========================================================================
	// Signals
	// =========================================================================
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// =========================================================================
	// Run
	// =========================================================================
	if err := cli.Execute(ctx, version); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
