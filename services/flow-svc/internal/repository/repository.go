package repository

import (
	"context"
	"errors"
	"time"

	"flowtrace/pkg/domain"
)

// Стандартные ошибки
var (
	ErrRunNotFound    = errors.New("run not found")
	ErrUnknownBackend = errors.New("unknown history backend")
)

// Run сохранённый запуск: вход, результат и журнал шагов
type Run struct {
	ID         string
	Name       string
	Source     int
	Sink       int
	Vertices   int
	Edges      int
	MaxFlow    domain.Capacity
	StepCount  int
	Matrix     domain.Matrix
	Steps      domain.StepLog
	Residual   domain.Matrix
	MinCut     *domain.MinCut
	DurationMs float64
	CreatedAt  time.Time
}

// Trace восстанавливает трассу для отчётов
func (r *Run) Trace() *domain.Trace {
	return &domain.Trace{
		Source:   r.Source,
		Sink:     r.Sink,
		Original: r.Matrix,
		Residual: r.Residual,
		MaxFlow:  r.MaxFlow,
		Steps:    r.Steps,
		MinCut:   r.MinCut,
	}
}

// Summary краткая информация для списков
func (r *Run) Summary() *RunSummary {
	return &RunSummary{
		ID:         r.ID,
		Name:       r.Name,
		Source:     r.Source,
		Sink:       r.Sink,
		Vertices:   r.Vertices,
		Edges:      r.Edges,
		MaxFlow:    r.MaxFlow,
		StepCount:  r.StepCount,
		DurationMs: r.DurationMs,
		CreatedAt:  r.CreatedAt,
	}
}

// RunSummary краткая информация о запуске
type RunSummary struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Source     int             `json:"source"`
	Sink       int             `json:"sink"`
	Vertices   int             `json:"vertices"`
	Edges      int             `json:"edges"`
	MaxFlow    domain.Capacity `json:"max_flow"`
	StepCount  int             `json:"step_count"`
	DurationMs float64         `json:"duration_ms"`
	CreatedAt  time.Time       `json:"created_at"`
}

// SortOrder порядок сортировки
type SortOrder string

const (
	SortByCreatedDesc SortOrder = "created_desc"
	SortByCreatedAsc  SortOrder = "created_asc"
	SortByMaxFlowDesc SortOrder = "max_flow_desc"
)

// Лимиты пагинации
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// ListOptions опции для списка
type ListOptions struct {
	Limit  int
	Offset int
	Name   string // точное совпадение, пусто - все
	Sort   SortOrder
}

// normalize приводит лимиты и сортировку к допустимым значениям
func (o *ListOptions) normalize() ListOptions {
	out := ListOptions{Limit: DefaultLimit, Sort: SortByCreatedDesc}
	if o == nil {
		return out
	}
	out.Name = o.Name
	if o.Limit > 0 {
		out.Limit = min(o.Limit, MaxLimit)
	}
	if o.Offset > 0 {
		out.Offset = o.Offset
	}
	switch o.Sort {
	case SortByCreatedAsc, SortByMaxFlowDesc:
		out.Sort = o.Sort
	}
	return out
}

// RunRepository хранилище истории запусков
type RunRepository interface {
	// Create присваивает ID (если пуст) и CreatedAt
	Create(ctx context.Context, run *Run) error
	GetByID(ctx context.Context, id string) (*Run, error)
	List(ctx context.Context, opts *ListOptions) ([]*RunSummary, int64, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}
