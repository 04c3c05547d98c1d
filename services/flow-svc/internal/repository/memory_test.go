package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"flowtrace/pkg/config"
	"flowtrace/pkg/domain"
)

func testRun(name string, maxFlow domain.Capacity) *Run {
	return &Run{
		Name:      name,
		Source:    0,
		Sink:      1,
		Vertices:  2,
		Edges:     1,
		MaxFlow:   maxFlow,
		StepCount: 1,
		Matrix:    domain.Matrix{{0, maxFlow}, {0, 0}},
		Steps: domain.StepLog{{
			Index:          1,
			Action:         domain.ActionAugmentPath,
			Path:           []int{0, 1},
			PathFlow:       maxFlow,
			CurrentMaxFlow: maxFlow,
			ResidualGraph:  domain.Matrix{{0, maxFlow}, {0, 0}},
		}},
		Residual: domain.Matrix{{0, 0}, {maxFlow, 0}},
		MinCut: &domain.MinCut{
			SourceSide: []int{0},
			SinkSide:   []int{1},
			Edges:      []domain.CutEdge{{From: 0, To: 1, Capacity: maxFlow}},
			Capacity:   maxFlow,
		},
	}
}

// steppedRepo возвращает репозиторий с монотонными часами
func steppedRepo(maxRuns int) *MemoryRunRepository {
	repo := NewMemoryRunRepository(maxRuns)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var tick int
	repo.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	return repo
}

func TestMemoryRunRepository_CreateGet(t *testing.T) {
	repo := NewMemoryRunRepository(0)
	ctx := context.Background()

	run := testRun("single", 5)
	if err := repo.Create(ctx, run); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if run.ID == "" {
		t.Error("Create() should set ID")
	}
	if run.CreatedAt.IsZero() {
		t.Error("Create() should set CreatedAt")
	}

	got, err := repo.GetByID(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.MaxFlow != 5 || got.Name != "single" {
		t.Errorf("GetByID() = %+v", got)
	}
	if len(got.Steps) != 1 || got.MinCut == nil {
		t.Fatalf("GetByID() lost steps or cut: %+v", got)
	}
}

func TestMemoryRunRepository_KeepsExplicitID(t *testing.T) {
	repo := NewMemoryRunRepository(0)
	run := testRun("x", 1)
	run.ID = "fixed"
	if err := repo.Create(context.Background(), run); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.GetByID(context.Background(), "fixed"); err != nil {
		t.Errorf("GetByID(fixed) error = %v", err)
	}
}

func TestMemoryRunRepository_Isolation(t *testing.T) {
	repo := NewMemoryRunRepository(0)
	ctx := context.Background()

	run := testRun("iso", 5)
	if err := repo.Create(ctx, run); err != nil {
		t.Fatal(err)
	}

	// Изменения исходного объекта не влияют на сохранённое
	run.Matrix[0][1] = 999
	run.Steps[0].Path[0] = 42
	run.MinCut.SourceSide[0] = 7

	got, _ := repo.GetByID(ctx, run.ID)
	if got.Matrix[0][1] != 5 {
		t.Errorf("stored matrix mutated: %v", got.Matrix)
	}
	if got.Steps[0].Path[0] != 0 {
		t.Errorf("stored path mutated: %v", got.Steps[0].Path)
	}
	if got.MinCut.SourceSide[0] != 0 {
		t.Errorf("stored cut mutated: %v", got.MinCut.SourceSide)
	}

	// И наоборот
	got.Residual[1][0] = -1
	again, _ := repo.GetByID(ctx, run.ID)
	if again.Residual[1][0] != 5 {
		t.Errorf("returned copy shares residual: %v", again.Residual)
	}
}

func TestMemoryRunRepository_NotFound(t *testing.T) {
	repo := NewMemoryRunRepository(0)
	ctx := context.Background()

	if _, err := repo.GetByID(ctx, "missing"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("GetByID() error = %v, want ErrRunNotFound", err)
	}
	if err := repo.Delete(ctx, "missing"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("Delete() error = %v, want ErrRunNotFound", err)
	}
}

func TestMemoryRunRepository_Delete(t *testing.T) {
	repo := NewMemoryRunRepository(0)
	ctx := context.Background()

	a, b := testRun("a", 1), testRun("b", 2)
	_ = repo.Create(ctx, a)
	_ = repo.Create(ctx, b)

	if err := repo.Delete(ctx, a.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	count, _ := repo.Count(ctx)
	if count != 1 {
		t.Errorf("Count() = %d, want 1", count)
	}
	list, total, _ := repo.List(ctx, nil)
	if total != 1 || len(list) != 1 || list[0].ID != b.ID {
		t.Errorf("List() after delete = %v (total %d)", list, total)
	}
}

func TestMemoryRunRepository_Eviction(t *testing.T) {
	repo := steppedRepo(3)
	ctx := context.Background()

	var ids []string
	for i := range 5 {
		run := testRun(fmt.Sprintf("run-%d", i), domain.Capacity(i+1))
		_ = repo.Create(ctx, run)
		ids = append(ids, run.ID)
	}

	count, _ := repo.Count(ctx)
	if count != 3 {
		t.Fatalf("Count() = %d, want 3", count)
	}
	for _, id := range ids[:2] {
		if _, err := repo.GetByID(ctx, id); !errors.Is(err, ErrRunNotFound) {
			t.Errorf("oldest run %s should be evicted", id)
		}
	}
	for _, id := range ids[2:] {
		if _, err := repo.GetByID(ctx, id); err != nil {
			t.Errorf("recent run %s missing: %v", id, err)
		}
	}
}

func TestMemoryRunRepository_List(t *testing.T) {
	repo := steppedRepo(0)
	ctx := context.Background()

	flows := []domain.Capacity{10, 30, 20}
	names := []string{"alpha", "beta", "alpha"}
	for i := range flows {
		_ = repo.Create(ctx, testRun(names[i], flows[i]))
	}

	tests := []struct {
		name      string
		opts      *ListOptions
		wantFlows []domain.Capacity
		wantTotal int64
	}{
		{name: "default newest first", opts: nil, wantFlows: []domain.Capacity{20, 30, 10}, wantTotal: 3},
		{name: "oldest first", opts: &ListOptions{Sort: SortByCreatedAsc}, wantFlows: []domain.Capacity{10, 30, 20}, wantTotal: 3},
		{name: "by max flow", opts: &ListOptions{Sort: SortByMaxFlowDesc}, wantFlows: []domain.Capacity{30, 20, 10}, wantTotal: 3},
		{name: "name filter", opts: &ListOptions{Name: "alpha"}, wantFlows: []domain.Capacity{20, 10}, wantTotal: 2},
		{name: "limit", opts: &ListOptions{Limit: 1}, wantFlows: []domain.Capacity{20}, wantTotal: 3},
		{name: "offset", opts: &ListOptions{Offset: 2}, wantFlows: []domain.Capacity{10}, wantTotal: 3},
		{name: "offset past end", opts: &ListOptions{Offset: 10}, wantFlows: []domain.Capacity{}, wantTotal: 3},
		{name: "unknown sort falls back", opts: &ListOptions{Sort: "random"}, wantFlows: []domain.Capacity{20, 30, 10}, wantTotal: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, total, err := repo.List(ctx, tt.opts)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if total != tt.wantTotal {
				t.Errorf("total = %d, want %d", total, tt.wantTotal)
			}
			if len(list) != len(tt.wantFlows) {
				t.Fatalf("len = %d, want %d", len(list), len(tt.wantFlows))
			}
			for i, s := range list {
				if s.MaxFlow != tt.wantFlows[i] {
					t.Errorf("list[%d].MaxFlow = %d, want %d", i, s.MaxFlow, tt.wantFlows[i])
				}
			}
		})
	}
}

func TestListOptions_Normalize(t *testing.T) {
	var nilOpts *ListOptions
	got := nilOpts.normalize()
	if got.Limit != DefaultLimit || got.Sort != SortByCreatedDesc {
		t.Errorf("nil normalize = %+v", got)
	}

	got = (&ListOptions{Limit: 1000, Offset: -5}).normalize()
	if got.Limit != MaxLimit {
		t.Errorf("Limit = %d, want %d", got.Limit, MaxLimit)
	}
	if got.Offset != 0 {
		t.Errorf("Offset = %d, want 0", got.Offset)
	}
}

func TestMemoryRunRepository_Concurrent(t *testing.T) {
	repo := NewMemoryRunRepository(50)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			run := testRun("c", domain.Capacity(i+1))
			_ = repo.Create(ctx, run)
			_, _ = repo.GetByID(ctx, run.ID)
			_, _, _ = repo.List(ctx, &ListOptions{Limit: 5})
		}(i)
	}
	wg.Wait()

	count, _ := repo.Count(ctx)
	if count != 20 {
		t.Errorf("Count() = %d, want 20", count)
	}
}

func TestRun_TraceAndSummary(t *testing.T) {
	run := testRun("s", 5)
	run.ID = "id-1"

	trace := run.Trace()
	if trace.MaxFlow != 5 || trace.Sink != 1 || len(trace.Steps) != 1 {
		t.Errorf("Trace() = %+v", trace)
	}
	summary := run.Summary()
	if summary.ID != "id-1" || summary.StepCount != 1 || summary.Vertices != 2 {
		t.Errorf("Summary() = %+v", summary)
	}
}

func TestNew(t *testing.T) {
	repo, err := New(config.HistoryConfig{Backend: "memory", MaxRuns: 10}, nil)
	if err != nil {
		t.Fatalf("New(memory) error = %v", err)
	}
	if _, ok := repo.(*MemoryRunRepository); !ok {
		t.Errorf("New(memory) = %T", repo)
	}

	if _, err := New(config.HistoryConfig{Backend: "postgres"}, nil); err == nil {
		t.Error("New(postgres) without db should fail")
	}

	if _, err := New(config.HistoryConfig{Backend: "mongo"}, nil); !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("New(mongo) error = %v, want ErrUnknownBackend", err)
	}
}
