package domain

import (
	"errors"
	"testing"
)

func sampleLog() StepLog {
	return StepLog{
		{Index: 1, Action: ActionAugmentPath, Path: []int{0, 1, 3}, PathFlow: 12, CurrentMaxFlow: 12, ResidualGraph: Matrix{{0}}},
		{Index: 2, Action: ActionAugmentPath, Path: []int{0, 2, 4, 3}, PathFlow: 4, CurrentMaxFlow: 16, ResidualGraph: Matrix{{1}}},
		{Index: 3, Action: ActionAugmentPath, Path: []int{0, 2, 4, 1, 3}, PathFlow: 7, CurrentMaxFlow: 23, ResidualGraph: Matrix{{2}}},
	}
}

func TestStepLog_TotalFlow(t *testing.T) {
	if got := sampleLog().TotalFlow(); got != 23 {
		t.Errorf("TotalFlow() = %d, want 23", got)
	}
	if got := StepLog(nil).TotalFlow(); got != 0 {
		t.Errorf("empty TotalFlow() = %d", got)
	}
}

func TestStepLog_Verify(t *testing.T) {
	if err := sampleLog().Verify(); err != nil {
		t.Fatalf("Verify() = %v", err)
	}

	broken := sampleLog()
	broken[1].CurrentMaxFlow = 15
	if err := broken.Verify(); !errors.Is(err, ErrInconsistentTrace) {
		t.Errorf("expected inconsistent trace, got %v", err)
	}

	zero := StepLog{{PathFlow: 0, CurrentMaxFlow: 0}}
	if err := zero.Verify(); !errors.Is(err, ErrInconsistentTrace) {
		t.Errorf("expected zero flow to be rejected, got %v", err)
	}
}

func TestStepLog_WithoutSnapshots(t *testing.T) {
	log := sampleLog()
	stripped := log.WithoutSnapshots()

	for i, s := range stripped {
		if s.ResidualGraph != nil {
			t.Errorf("step %d still has a snapshot", i+1)
		}
	}
	if log[0].ResidualGraph == nil {
		t.Error("original log must keep its snapshots")
	}
}

func TestTrace_Counts(t *testing.T) {
	tr := &Trace{Original: Matrix{{0, 1}, {0, 0}}, Steps: sampleLog()}
	if tr.Vertices() != 2 {
		t.Errorf("Vertices() = %d", tr.Vertices())
	}
	if tr.StepCount() != 3 {
		t.Errorf("StepCount() = %d", tr.StepCount())
	}
}
