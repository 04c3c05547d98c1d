package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"flowtrace/pkg/domain"
)

// MemoryRunRepository история в памяти процесса, самые старые запуски вытесняются
type MemoryRunRepository struct {
	mu      sync.RWMutex
	runs    map[string]*Run
	order   []string // по времени создания
	maxRuns int
	now     func() time.Time
}

// NewMemoryRunRepository создаёт хранилище; maxRuns<=0 - без ограничения
func NewMemoryRunRepository(maxRuns int) *MemoryRunRepository {
	return &MemoryRunRepository{
		runs:    make(map[string]*Run),
		maxRuns: maxRuns,
		now:     time.Now,
	}
}

func (r *MemoryRunRepository) Create(_ context.Context, run *Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	run.CreatedAt = r.now().UTC()

	r.runs[run.ID] = cloneRun(run)
	r.order = append(r.order, run.ID)

	for r.maxRuns > 0 && len(r.order) > r.maxRuns {
		delete(r.runs, r.order[0])
		r.order = r.order[1:]
	}
	return nil
}

func (r *MemoryRunRepository) GetByID(_ context.Context, id string) (*Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	run, ok := r.runs[id]
	if !ok {
		return nil, ErrRunNotFound
	}
	return cloneRun(run), nil
}

func (r *MemoryRunRepository) List(_ context.Context, opts *ListOptions) ([]*RunSummary, int64, error) {
	o := opts.normalize()

	r.mu.RLock()
	matched := make([]*RunSummary, 0, len(r.order))
	for _, id := range r.order {
		run := r.runs[id]
		if o.Name != "" && run.Name != o.Name {
			continue
		}
		matched = append(matched, run.Summary())
	}
	r.mu.RUnlock()

	// order хранит порядок вставки, sort.SliceStable сохраняет его при равных ключах
	switch o.Sort {
	case SortByCreatedAsc:
		// уже по возрастанию
	case SortByMaxFlowDesc:
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].MaxFlow > matched[j].MaxFlow })
	default:
		for i, j := 0, len(matched)-1; i < j; i, j = i+1, j-1 {
			matched[i], matched[j] = matched[j], matched[i]
		}
	}

	total := int64(len(matched))
	if o.Offset >= len(matched) {
		return []*RunSummary{}, total, nil
	}
	end := min(o.Offset+o.Limit, len(matched))
	return matched[o.Offset:end], total, nil
}

func (r *MemoryRunRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.runs[id]; !ok {
		return ErrRunNotFound
	}
	delete(r.runs, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *MemoryRunRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.runs)), nil
}

// cloneRun глубокая копия, чтобы вызывающий не менял сохранённое
func cloneRun(run *Run) *Run {
	c := *run
	c.Matrix = run.Matrix.Clone()
	c.Residual = run.Residual.Clone()
	if run.Steps != nil {
		c.Steps = make(domain.StepLog, len(run.Steps))
		for i, s := range run.Steps {
			s.Path = append([]int(nil), s.Path...)
			s.ResidualGraph = s.ResidualGraph.Clone()
			c.Steps[i] = s
		}
	}
	if run.MinCut != nil {
		cut := *run.MinCut
		cut.SourceSide = append([]int(nil), cut.SourceSide...)
		cut.SinkSide = append([]int(nil), cut.SinkSide...)
		cut.Edges = append(cut.Edges[:0:0], cut.Edges...)
		c.MinCut = &cut
	}
	return &c
}
