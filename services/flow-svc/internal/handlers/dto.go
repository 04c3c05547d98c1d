package handlers

import (
	"time"

	"flowtrace/pkg/apperror"
	"flowtrace/pkg/domain"
	"flowtrace/services/flow-svc/internal/examples"
	"flowtrace/services/flow-svc/internal/repository"
	"flowtrace/services/flow-svc/internal/service"
)

// Запросы

type optionsRequest struct {
	RecordSnapshots *bool `json:"record_snapshots"`
	MaxIterations   int   `json:"max_iterations" validate:"gte=0"`
	TimeoutMs       int64 `json:"timeout_ms" validate:"gte=0"`
	NoCache         bool  `json:"no_cache"`
	NoHistory       bool  `json:"no_history"`
}

func (o *optionsRequest) toService() service.RunOptions {
	if o == nil {
		return service.RunOptions{}
	}
	return service.RunOptions{
		RecordSnapshots: o.RecordSnapshots,
		MaxIterations:   o.MaxIterations,
		Timeout:         time.Duration(o.TimeoutMs) * time.Millisecond,
		NoCache:         o.NoCache,
		NoHistory:       o.NoHistory,
	}
}

type edgeRequest struct {
	From     int   `json:"from"`
	To       int   `json:"to"`
	Capacity int64 `json:"capacity"`
}

// solveRequest сеть задаётся матрицей либо списком рёбер с числом вершин.
// Диапазоны индексов и знаки ёмкостей проверяет сервис, чтобы вернуть доменный код ошибки.
type solveRequest struct {
	Name     string          `json:"name" validate:"max=128"`
	Matrix   [][]int64       `json:"matrix" validate:"required_without=Edges,excluded_with=Edges"`
	Vertices int             `json:"vertices" validate:"required_with=Edges"`
	Edges    []edgeRequest   `json:"edges"`
	Source   *int            `json:"source" validate:"required"`
	Sink     *int            `json:"sink" validate:"required"`
	Options  *optionsRequest `json:"options"`
}

// toService строит запрос сервиса. Для списка рёбер матрица vertices×vertices
// выделяется только после проверки лимита maxVertices (0 - без лимита).
func (r *solveRequest) toService(maxVertices int) (*service.SolveRequest, error) {
	matrix := domain.Matrix(r.Matrix)
	if r.Edges != nil {
		if maxVertices > 0 && r.Vertices > maxVertices {
			return nil, apperror.Newf(apperror.CodeTooManyVertices,
				"too many vertices: %d > %d", r.Vertices, maxVertices).WithField("vertices")
		}
		edges := make([]domain.Edge, len(r.Edges))
		for i, e := range r.Edges {
			edges[i] = domain.Edge{From: e.From, To: e.To, Capacity: e.Capacity}
		}
		m, err := domain.FromEdges(r.Vertices, edges)
		if err != nil {
			return nil, err
		}
		matrix = m
	}

	return &service.SolveRequest{
		Name:    r.Name,
		Matrix:  matrix,
		Source:  *r.Source,
		Sink:    *r.Sink,
		Options: r.Options.toService(),
	}, nil
}

type batchRequest struct {
	Tasks []*solveRequest `json:"tasks" validate:"required,min=1,dive,required"`
}

type exampleRunRequest struct {
	Options *optionsRequest `json:"options"`
}

type listQuery struct {
	Limit  int    `json:"limit" validate:"gte=0,lte=100"`
	Offset int    `json:"offset" validate:"gte=0"`
	Name   string `json:"name" validate:"max=128"`
	Sort   string `json:"sort" validate:"omitempty,oneof=created_desc created_asc max_flow_desc"`
}

func (q listQuery) toRepository() *repository.ListOptions {
	return &repository.ListOptions{
		Limit:  q.Limit,
		Offset: q.Offset,
		Name:   q.Name,
		Sort:   repository.SortOrder(q.Sort),
	}
}

// Ответы

type runResponse struct {
	RunID      string                 `json:"run_id"`
	Name       string                 `json:"name,omitempty"`
	Source     int                    `json:"source"`
	Sink       int                    `json:"sink"`
	Vertices   int                    `json:"vertices"`
	MaxFlow    domain.Capacity        `json:"max_flow"`
	Steps      domain.StepLog         `json:"steps"`
	Residual   domain.Matrix          `json:"residual,omitempty"`
	MinCut     *domain.MinCut         `json:"min_cut,omitempty"`
	Statistics *domain.FlowStatistics `json:"flow_statistics,omitempty"`
	CacheHit   bool                   `json:"cache_hit"`
	Persisted  bool                   `json:"persisted"`
	DurationMs float64                `json:"duration_ms"`
	CreatedAt  time.Time              `json:"created_at"`
}

func newRunResponse(res *service.RunResult, withStats bool) *runResponse {
	tr := res.Trace
	out := &runResponse{
		RunID:      res.RunID,
		Name:       res.Name,
		Source:     tr.Source,
		Sink:       tr.Sink,
		Vertices:   tr.Vertices(),
		MaxFlow:    tr.MaxFlow,
		Steps:      nonNilSteps(tr.Steps),
		Residual:   tr.Residual,
		MinCut:     tr.MinCut,
		CacheHit:   res.CacheHit,
		Persisted:  res.Persisted,
		DurationMs: durationMs(res.Duration),
		CreatedAt:  res.CreatedAt,
	}
	if withStats && tr.Residual != nil {
		out.Statistics = domain.CalculateFlowStatistics(tr.Original, tr.Residual, tr.Source)
	}
	return out
}

type batchItemResponse struct {
	Index int            `json:"index"`
	Data  *runResponse   `json:"data,omitempty"`
	Error *apperror.Body `json:"error,omitempty"`
}

type batchResponse struct {
	Results   []batchItemResponse `json:"results"`
	Succeeded int                 `json:"succeeded"`
	Failed    int                 `json:"failed"`
}

type runDetailResponse struct {
	ID         string          `json:"id"`
	Name       string          `json:"name,omitempty"`
	Source     int             `json:"source"`
	Sink       int             `json:"sink"`
	Vertices   int             `json:"vertices"`
	Edges      int             `json:"edges"`
	MaxFlow    domain.Capacity `json:"max_flow"`
	StepCount  int             `json:"step_count"`
	Matrix     domain.Matrix   `json:"matrix"`
	Steps      domain.StepLog  `json:"steps"`
	Residual   domain.Matrix   `json:"residual,omitempty"`
	MinCut     *domain.MinCut  `json:"min_cut,omitempty"`
	DurationMs float64         `json:"duration_ms"`
	CreatedAt  time.Time       `json:"created_at"`
}

func newRunDetailResponse(run *repository.Run) *runDetailResponse {
	return &runDetailResponse{
		ID:         run.ID,
		Name:       run.Name,
		Source:     run.Source,
		Sink:       run.Sink,
		Vertices:   run.Vertices,
		Edges:      run.Edges,
		MaxFlow:    run.MaxFlow,
		StepCount:  run.StepCount,
		Matrix:     run.Matrix,
		Steps:      nonNilSteps(run.Steps),
		Residual:   run.Residual,
		MinCut:     run.MinCut,
		DurationMs: run.DurationMs,
		CreatedAt:  run.CreatedAt,
	}
}

type runListResponse struct {
	Runs   []*repository.RunSummary `json:"runs"`
	Total  int64                    `json:"total"`
	Limit  int                      `json:"limit"`
	Offset int                      `json:"offset"`
}

type exampleResponse struct {
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Vertices        int             `json:"vertices"`
	Edges           int             `json:"edges"`
	Source          int             `json:"source"`
	Sink            int             `json:"sink"`
	ExpectedMaxFlow domain.Capacity `json:"expected_max_flow"`
	Matrix          domain.Matrix   `json:"matrix"`
}

func newExampleResponse(ex examples.Example) exampleResponse {
	return exampleResponse{
		Name:            ex.Name,
		Description:     ex.Description,
		Vertices:        ex.Matrix.Size(),
		Edges:           ex.Matrix.EdgeCount(),
		Source:          ex.Source,
		Sink:            ex.Sink,
		ExpectedMaxFlow: ex.ExpectedMaxFlow,
		Matrix:          ex.Matrix,
	}
}

// nonNilSteps пустой журнал сериализуется как [], а не null
func nonNilSteps(steps domain.StepLog) domain.StepLog {
	if steps == nil {
		return domain.StepLog{}
	}
	return steps
}

func durationMs(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}
