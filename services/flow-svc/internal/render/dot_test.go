package render

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowtrace/pkg/domain"
)

var triangle = domain.Matrix{
	{0, 4, 2},
	{0, 0, 3},
	{0, 0, 0},
}

func TestToDOT_CapacityLabels(t *testing.T) {
	dot := ToDOT(triangle, Options{Source: 0, Sink: 2})

	assert.True(t, strings.HasPrefix(dot, "digraph flow {"))
	assert.Contains(t, dot, `0 -> 1 [label="4"];`)
	assert.Contains(t, dot, `0 -> 2 [label="2"];`)
	assert.Contains(t, dot, `1 -> 2 [label="3"];`)
	assert.NotContains(t, dot, "1 -> 0")
	assert.Contains(t, dot, `0 [shape=doublecircle`)
	assert.Contains(t, dot, `2 [shape=doublecircle`)
}

func TestToDOT_HighlightsPath(t *testing.T) {
	dot := ToDOT(triangle, Options{Source: -1, Sink: -1, Path: []int{0, 1, 2}})

	assert.Contains(t, dot, `0 -> 1 [label="4", color="#d62728"`)
	assert.Contains(t, dot, `1 -> 2 [label="3", color="#d62728"`)
	assert.Contains(t, dot, `0 -> 2 [label="2"];`)
	assert.NotContains(t, dot, "doublecircle")
}

func TestFlowDOT(t *testing.T) {
	residual := domain.Matrix{
		{0, 1, 0},
		{3, 0, 0},
		{2, 3, 0},
	}

	dot := FlowDOT(triangle, residual, 0, 2, 5)

	assert.Contains(t, dot, `label="max flow 5"`)
	assert.Contains(t, dot, `0 -> 1 [label="3/4"];`)
	assert.Contains(t, dot, `0 -> 2 [label="2/2", penwidth=2];`)
	assert.Contains(t, dot, `1 -> 2 [label="3/3", penwidth=2];`)
	assert.NotContains(t, dot, "1 -> 0")
}

func TestStepDOT(t *testing.T) {
	step := domain.StepRecord{
		Index:          2,
		Action:         domain.ActionAugmentPath,
		Path:           []int{0, 2},
		PathFlow:       2,
		CurrentMaxFlow: 5,
		ResidualGraph:  triangle,
	}

	dot := StepDOT(step, 0, 2)
	assert.Contains(t, dot, `label="step 2: +2 (total 5)"`)
	assert.Contains(t, dot, `0 -> 2 [label="2", color=`)
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(context.Background(), ToDOT(triangle, Options{Source: 0, Sink: 2}))
	require.NoError(t, err)

	assert.Contains(t, string(svg), `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 `)
	assert.Contains(t, string(svg), "</svg>")
}

func TestRenderSVG_InvalidDOT(t *testing.T) {
	_, err := RenderSVG(context.Background(), "digraph {")
	assert.Error(t, err)
}

func TestNormalizeViewBox_NoViewBox(t *testing.T) {
	in := []byte(`<svg width="1"></svg>`)
	assert.Equal(t, in, normalizeViewBox(in))
}
