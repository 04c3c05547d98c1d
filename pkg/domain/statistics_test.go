package domain

import (
	"math"
	"testing"
)

func TestEdgeFlows(t *testing.T) {
	original := Matrix{
		{0, 10, 5},
		{0, 0, 10},
		{0, 0, 0},
	}
	// 10 через 0->1->2, 5 напрямую 0->2
	residual := Matrix{
		{0, 0, 0},
		{10, 0, 0},
		{5, 10, 0},
	}

	flows := EdgeFlows(original, residual)
	if len(flows) != 3 {
		t.Fatalf("len(flows) = %d, want 3", len(flows))
	}
	for _, f := range flows {
		if !f.Saturated() {
			t.Errorf("edge %d->%d should be saturated: %+v", f.From, f.To, f)
		}
	}
}

func TestCalculateFlowStatistics(t *testing.T) {
	original := Matrix{
		{0, 10, 5},
		{0, 0, 10},
		{0, 0, 0},
	}
	// 5 единиц по 0->1->2, ребро 0->2 не используется
	residual := Matrix{
		{0, 5, 5},
		{5, 0, 5},
		{0, 5, 0},
	}

	stats := CalculateFlowStatistics(original, residual, 0)

	if stats.TotalFlow != 5 {
		t.Errorf("TotalFlow = %d, want 5", stats.TotalFlow)
	}
	if stats.EdgeCount != 3 {
		t.Errorf("EdgeCount = %d, want 3", stats.EdgeCount)
	}
	if stats.ZeroFlowEdges != 1 {
		t.Errorf("ZeroFlowEdges = %d, want 1", stats.ZeroFlowEdges)
	}
	if stats.ActiveEdges != 2 {
		t.Errorf("ActiveEdges = %d, want 2", stats.ActiveEdges)
	}
	if stats.SaturatedEdges != 0 {
		t.Errorf("SaturatedEdges = %d, want 0", stats.SaturatedEdges)
	}
	if math.Abs(stats.AverageUtilization-1.0/3.0) > 1e-9 {
		t.Errorf("AverageUtilization = %v, want 1/3", stats.AverageUtilization)
	}
}

func TestCalculateTraceStatistics(t *testing.T) {
	stats := CalculateTraceStatistics(sampleLog())

	if stats.Steps != 3 || stats.MaxFlow != 23 {
		t.Errorf("unexpected totals: %+v", stats)
	}
	if stats.LargestAugment != 12 || stats.SmallestAugment != 4 {
		t.Errorf("augment bounds = %d/%d", stats.LargestAugment, stats.SmallestAugment)
	}
	if stats.ShortestPath != 2 || stats.LongestPath != 4 {
		t.Errorf("path bounds = %d/%d", stats.ShortestPath, stats.LongestPath)
	}
	if math.Abs(stats.AveragePathLength-3.0) > 1e-9 {
		t.Errorf("AveragePathLength = %v, want 3", stats.AveragePathLength)
	}
}

func TestCalculateTraceStatistics_Empty(t *testing.T) {
	stats := CalculateTraceStatistics(nil)
	if stats.Steps != 0 || stats.SmallestAugment != 0 || stats.ShortestPath != 0 {
		t.Errorf("empty stats should be zero: %+v", stats)
	}
}

func TestUtilizationLevel(t *testing.T) {
	tests := map[float64]string{
		1.0:  "critical",
		0.96: "high",
		0.91: "medium",
		0.5:  "low",
	}
	for u, want := range tests {
		if got := UtilizationLevel(u); got != want {
			t.Errorf("UtilizationLevel(%v) = %s, want %s", u, got, want)
		}
	}
}
