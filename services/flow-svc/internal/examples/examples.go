// Package examples holds the named sample networks served by the API and the
// CLI. Every accessor returns a fresh copy, so callers may mutate the result.
package examples

import (
	"sort"

	"flowtrace/pkg/domain"
)

// Example is a sample network together with its known maximum flow.
type Example struct {
	domain.Network
	ExpectedMaxFlow domain.Capacity `json:"expected_max_flow"`
}

// Default is the example run when none is named.
const Default = "clrs"

var registry = map[string]Example{
	"clrs": {
		Network: domain.Network{
			Name:        "clrs",
			Description: "Six-vertex textbook network from Cormen et al.; three augmenting paths",
			Source:      0,
			Sink:        5,
			Matrix: domain.Matrix{
				{0, 16, 13, 0, 0, 0},
				{0, 0, 10, 12, 0, 0},
				{0, 4, 0, 0, 14, 0},
				{0, 0, 9, 0, 0, 20},
				{0, 0, 0, 7, 0, 4},
				{0, 0, 0, 0, 0, 0},
			},
		},
		ExpectedMaxFlow: 23,
	},
	"single-edge": {
		Network: domain.Network{
			Name:        "single-edge",
			Description: "One edge of capacity 5",
			Source:      0,
			Sink:        1,
			Matrix: domain.Matrix{
				{0, 5},
				{0, 0},
			},
		},
		ExpectedMaxFlow: 5,
	},
	"disconnected": {
		Network: domain.Network{
			Name:        "disconnected",
			Description: "Two components; the sink is unreachable and no step is recorded",
			Source:      0,
			Sink:        3,
			Matrix: domain.Matrix{
				{0, 3, 0, 0},
				{0, 0, 0, 0},
				{0, 0, 0, 4},
				{0, 0, 0, 0},
			},
		},
		ExpectedMaxFlow: 0,
	},
	"diamond": {
		Network: domain.Network{
			Name:        "diamond",
			Description: "Two parallel routes with a thin cross edge",
			Source:      0,
			Sink:        3,
			Matrix: domain.Matrix{
				{0, 10, 10, 0},
				{0, 0, 1, 10},
				{0, 0, 0, 10},
				{0, 0, 0, 0},
			},
		},
		ExpectedMaxFlow: 20,
	},
	"bipartite": {
		Network: domain.Network{
			Name:        "bipartite",
			Description: "Unit-capacity bipartite matching: 3 workers, 3 jobs",
			Source:      0,
			Sink:        7,
			Matrix: domain.Matrix{
				{0, 1, 1, 1, 0, 0, 0, 0},
				{0, 0, 0, 0, 1, 1, 0, 0},
				{0, 0, 0, 0, 1, 0, 0, 0},
				{0, 0, 0, 0, 0, 1, 1, 0},
				{0, 0, 0, 0, 0, 0, 0, 1},
				{0, 0, 0, 0, 0, 0, 0, 1},
				{0, 0, 0, 0, 0, 0, 0, 1},
				{0, 0, 0, 0, 0, 0, 0, 0},
			},
		},
		ExpectedMaxFlow: 3,
	},
}

// Get returns a copy of the named example.
func Get(name string) (Example, bool) {
	ex, ok := registry[name]
	if !ok {
		return Example{}, false
	}
	ex.Matrix = ex.Matrix.Clone()
	return ex, true
}

// Names lists example names in alphabetical order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns copies of every example, ordered by name.
func All() []Example {
	out := make([]Example, 0, len(registry))
	for _, name := range Names() {
		ex, _ := Get(name)
		out = append(out, ex)
	}
	return out
}
