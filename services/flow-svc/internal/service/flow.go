// Package service связывает движок максимального потока с кэшем трасс,
// историей запусков, метриками и экспортом отчётов.
package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"flowtrace/pkg/apperror"
	"flowtrace/pkg/cache"
	"flowtrace/pkg/config"
	"flowtrace/pkg/domain"
	"flowtrace/pkg/logger"
	"flowtrace/pkg/metrics"
	"flowtrace/pkg/telemetry"
	"flowtrace/services/flow-svc/internal/algorithms"
	"flowtrace/services/flow-svc/internal/examples"
	"flowtrace/services/flow-svc/internal/report"
	"flowtrace/services/flow-svc/internal/repository"
)

// RunOptions переопределения для одного запуска
type RunOptions struct {
	RecordSnapshots *bool         // nil - из конфигурации
	MaxIterations   int           // 0 - из конфигурации
	Timeout         time.Duration // не больше solver.timeout
	NoCache         bool
	NoHistory       bool
}

// SolveRequest запрос на вычисление
type SolveRequest struct {
	Name    string
	Matrix  domain.Matrix
	Source  int
	Sink    int
	Options RunOptions
}

// RunResult результат запуска
type RunResult struct {
	RunID     string
	Name      string
	Trace     *domain.Trace
	Duration  time.Duration
	CacheHit  bool
	Persisted bool
	CreatedAt time.Time
}

// BatchItem результат одной задачи пакета, задан ровно один из Result и Err
type BatchItem struct {
	Index  int
	Result *RunResult
	Err    *apperror.Error
}

// ReadinessCheck проверка зависимости для /ready
type ReadinessCheck func(ctx context.Context) error

// FlowService сервис вычисления и хранения трасс
type FlowService struct {
	version string
	cfg     config.SolverConfig
	pool    *algorithms.SolverPool
	cache   *cache.TraceCache
	runs    repository.RunRepository
	reports *report.Registry
	metrics *metrics.Metrics
	checks  map[string]ReadinessCheck
}

// Option настройка сервиса
type Option func(*FlowService)

// WithCache включает кэш трасс
func WithCache(c *cache.TraceCache) Option {
	return func(s *FlowService) { s.cache = c }
}

// WithHistory включает историю запусков
func WithHistory(r repository.RunRepository) Option {
	return func(s *FlowService) { s.runs = r }
}

// WithReports задаёт реестр генераторов отчётов
func WithReports(r *report.Registry) Option {
	return func(s *FlowService) { s.reports = r }
}

// WithMetrics задаёт метрики; по умолчанию metrics.Get()
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *FlowService) { s.metrics = m }
}

// WithReadinessCheck добавляет проверку готовности
func WithReadinessCheck(name string, check ReadinessCheck) Option {
	return func(s *FlowService) { s.checks[name] = check }
}

// NewFlowService создаёт сервис
func NewFlowService(version string, cfg config.SolverConfig, opts ...Option) *FlowService {
	s := &FlowService{
		version: version,
		cfg:     cfg,
		pool:    algorithms.NewSolverPool(cfg.MaxConcurrent),
		metrics: metrics.Get(),
		checks:  make(map[string]ReadinessCheck),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.reports == nil {
		s.reports = report.NewRegistry(report.DefaultOptions())
	}
	return s
}

// Version версия сервиса
func (s *FlowService) Version() string {
	return s.version
}

// HistoryEnabled сохраняются ли запуски
func (s *FlowService) HistoryEnabled() bool {
	return s.runs != nil
}

// runPlan проверенный запрос с итоговыми опциями движка
type runPlan struct {
	req  *SolveRequest
	opts *algorithms.SolverOptions
	key  cache.RunKeyInput
}

// Solve вычисляет максимальный поток с журналом шагов.
// Повторный запрос той же сети отдаётся из кэша, каждый запуск сохраняется в историю.
func (s *FlowService) Solve(ctx context.Context, req *SolveRequest) (*RunResult, error) {
	if req == nil {
		return nil, apperror.New(apperror.CodeNilInput, "request is nil")
	}

	ctx, span := telemetry.StartSpan(ctx, "FlowService.Solve",
		trace.WithAttributes(telemetry.NetworkAttributes(len(req.Matrix), req.Matrix.EdgeCount(), req.Source, req.Sink)...),
	)
	defer span.End()

	plan, err := s.prepare(req)
	if err != nil {
		return nil, s.fail(ctx, err)
	}

	if res := s.lookup(ctx, plan); res != nil {
		s.persist(ctx, plan, res)
		return res, nil
	}

	s.observePool()
	out, err := s.pool.SolvePooled(ctx, plan.req.Matrix, plan.req.Source, plan.req.Sink, plan.opts)
	s.observePool()
	if err != nil {
		return nil, s.fail(ctx, err)
	}

	res := s.complete(ctx, plan, out)
	s.persist(ctx, plan, res)
	return res, nil
}

// SolveBatch решает независимые задачи через пул движка.
// Ошибка одной задачи не прерывает остальные; порядок результатов совпадает с порядком запросов.
func (s *FlowService) SolveBatch(ctx context.Context, reqs []*SolveRequest) ([]BatchItem, error) {
	ctx, span := telemetry.StartSpan(ctx, "FlowService.SolveBatch",
		trace.WithAttributes(attribute.Int(telemetry.AttrBatchSize, len(reqs))),
	)
	defer span.End()

	if len(reqs) == 0 {
		return nil, apperror.NewWithField(apperror.CodeInvalidArgument, "batch is empty", "tasks")
	}
	if s.cfg.MaxBatchSize > 0 && len(reqs) > s.cfg.MaxBatchSize {
		return nil, apperror.Newf(apperror.CodeInvalidArgument,
			"batch has %d tasks, limit is %d", len(reqs), s.cfg.MaxBatchSize).WithField("tasks")
	}

	items := make([]BatchItem, len(reqs))
	var (
		plans []*runPlan
		tasks []algorithms.BatchTask
	)

	for i, req := range reqs {
		items[i].Index = i
		if req == nil {
			items[i].Err = apperror.New(apperror.CodeNilInput, "task is nil")
			continue
		}
		plan, err := s.prepare(req)
		if err != nil {
			items[i].Err = s.fail(ctx, err)
			continue
		}
		if res := s.lookup(ctx, plan); res != nil {
			s.persist(ctx, plan, res)
			items[i].Result = res
			continue
		}
		plans = append(plans, plan)
		tasks = append(tasks, algorithms.BatchTask{
			TaskID:  strconv.Itoa(i),
			Matrix:  req.Matrix,
			Source:  req.Source,
			Sink:    req.Sink,
			Options: plan.opts,
		})
	}

	// Промахи кэша считаются параллельно
	for k, out := range s.pool.BatchSolve(ctx, tasks) {
		i, _ := strconv.Atoi(out.TaskID)
		if out.Err != nil {
			items[i].Err = s.fail(ctx, out.Err)
			continue
		}
		res := s.complete(ctx, plans[k], out.Result)
		s.persist(ctx, plans[k], res)
		items[i].Result = res
	}

	return items, nil
}

// Examples встроенные примеры сетей, по алфавиту
func (s *FlowService) Examples() []examples.Example {
	return examples.All()
}

// RunExample запускает встроенный пример
func (s *FlowService) RunExample(ctx context.Context, name string, opts RunOptions) (*RunResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "FlowService.RunExample",
		trace.WithAttributes(attribute.String(telemetry.AttrExampleName, name)),
	)
	defer span.End()

	if name == "" {
		name = examples.Default
	}
	ex, ok := examples.Get(name)
	if !ok {
		return nil, apperror.Newf(apperror.CodeNotFound, "example %q not found", name).
			WithDetails("available", examples.Names())
	}

	return s.Solve(ctx, &SolveRequest{
		Name:    ex.Name,
		Matrix:  ex.Matrix,
		Source:  ex.Source,
		Sink:    ex.Sink,
		Options: opts,
	})
}

// Ready проверяет зависимости; результат - статус по имени компонента
func (s *FlowService) Ready(ctx context.Context) (map[string]string, error) {
	statuses := make(map[string]string, len(s.checks)+1)
	var failed []string

	check := func(name string, fn ReadinessCheck) {
		if err := fn(ctx); err != nil {
			statuses[name] = err.Error()
			failed = append(failed, name)
			return
		}
		statuses[name] = "ok"
	}

	if s.cache != nil {
		check("cache", s.cache.Ping)
	}
	for name, fn := range s.checks {
		check(name, fn)
	}

	if len(failed) > 0 {
		sort.Strings(failed)
		return statuses, apperror.Newf(apperror.CodeUnavailable, "not ready: %v", failed)
	}
	return statuses, nil
}

// prepare проверяет сеть и собирает опции движка
func (s *FlowService) prepare(req *SolveRequest) (*runPlan, error) {
	net := domain.Network{Name: req.Name, Matrix: req.Matrix, Source: req.Source, Sink: req.Sink}
	if err := net.Validate(); err != nil {
		return nil, err
	}
	if req.Source == req.Sink {
		return nil, fmt.Errorf("%w: vertex %d", algorithms.ErrSourceEqualsSink, req.Source)
	}

	opts := algorithms.DefaultSolverOptions().
		WithTimeout(s.cfg.Timeout).
		WithMaxIterations(s.cfg.MaxIterations).
		WithMaxVertices(s.cfg.MaxVertices).
		WithRecordSnapshots(s.cfg.RecordSnapshots)

	o := req.Options
	if o.RecordSnapshots != nil {
		opts.RecordSnapshots = *o.RecordSnapshots
	}
	if o.MaxIterations > 0 && (opts.MaxIterations <= 0 || o.MaxIterations < opts.MaxIterations) {
		opts.MaxIterations = o.MaxIterations
	}
	if o.Timeout > 0 && (opts.Timeout <= 0 || o.Timeout < opts.Timeout) {
		opts.Timeout = o.Timeout
	}

	return &runPlan{
		req:  req,
		opts: opts,
		key: cache.RunKeyInput{
			Matrix:        req.Matrix,
			Source:        req.Source,
			Sink:          req.Sink,
			RecordPaths:   opts.RecordPaths,
			MaxIterations: opts.MaxIterations,
		},
	}, nil
}

// lookup ищет трассу в кэше; nil - промах или кэш выключен
func (s *FlowService) lookup(ctx context.Context, plan *runPlan) *RunResult {
	if s.cache == nil || plan.req.Options.NoCache {
		return nil
	}

	cached, found, err := s.cache.Get(ctx, plan.key)
	if err != nil {
		logger.WithContext(ctx).Warn("trace cache lookup failed", "error", err)
		return nil
	}
	// Запись без снимков не может ответить на запрос со снимками
	if found && plan.opts.RecordSnapshots && len(cached.Steps) > 0 && cached.Steps[0].ResidualGraph == nil {
		found = false
	}
	if s.metrics != nil {
		s.metrics.RecordCacheLookup(found)
	}
	if !found {
		return nil
	}

	steps := cached.Steps
	if !plan.opts.RecordSnapshots {
		steps = steps.WithoutSnapshots()
	}

	telemetry.AddEvent(ctx, "cache_hit", attribute.Int64(telemetry.AttrRunMaxFlow, cached.MaxFlow))
	telemetry.SetAttributes(ctx, telemetry.RunAttributes(len(cached.Steps), cached.MaxFlow, true)...)
	if s.metrics != nil {
		s.metrics.RecordCachedRun()
	}

	req := plan.req
	return &RunResult{
		Name: req.Name,
		Trace: &domain.Trace{
			Source:   req.Source,
			Sink:     req.Sink,
			Original: req.Matrix.Clone(),
			Residual: cached.Residual,
			MaxFlow:  cached.MaxFlow,
			Steps:    steps,
			MinCut:   cached.MinCut,
		},
		CacheHit: true,
	}
}

// complete оформляет результат движка, пишет метрики и кэш
func (s *FlowService) complete(ctx context.Context, plan *runPlan, out *algorithms.SolverResult) *RunResult {
	req := plan.req

	telemetry.SetAttributes(ctx, telemetry.RunAttributes(len(out.Steps), out.MaxFlow, false)...)
	if s.metrics != nil {
		s.metrics.RecordRun(len(req.Matrix), len(out.Steps), out.MaxFlow, out.Duration)
	}

	if s.cache != nil && !req.Options.NoCache {
		entry := &cache.CachedRun{
			MaxFlow:  out.MaxFlow,
			Steps:    out.Steps,
			Residual: out.Residual,
			MinCut:   out.MinCut,
		}
		if err := s.cache.Set(ctx, plan.key, entry, 0); err != nil {
			logger.WithContext(ctx).Warn("failed to cache trace", "error", err)
		}
	}

	return &RunResult{
		Name:     req.Name,
		Trace:    out.Trace(req.Matrix.Clone(), req.Source, req.Sink),
		Duration: out.Duration,
	}
}

// persist назначает ID и сохраняет запуск в историю.
// Ошибка хранилища не отменяет уже посчитанный результат.
func (s *FlowService) persist(ctx context.Context, plan *runPlan, res *RunResult) {
	res.RunID = uuid.NewString()
	res.CreatedAt = time.Now().UTC()
	ctx = logger.ContextWithRunID(ctx, res.RunID)
	telemetry.SetAttributes(ctx, attribute.String(telemetry.AttrRunID, res.RunID))

	log := logger.WithContext(ctx)
	log.Info("max flow computed",
		"name", res.Name,
		"vertices", res.Trace.Vertices(),
		"max_flow", res.Trace.MaxFlow,
		"steps", res.Trace.StepCount(),
		"cache_hit", res.CacheHit,
		"duration", res.Duration,
	)

	if s.runs == nil || plan.req.Options.NoHistory {
		return
	}

	run := &repository.Run{
		ID:         res.RunID,
		Name:       res.Name,
		Source:     res.Trace.Source,
		Sink:       res.Trace.Sink,
		Vertices:   res.Trace.Vertices(),
		Edges:      res.Trace.Original.EdgeCount(),
		MaxFlow:    res.Trace.MaxFlow,
		StepCount:  res.Trace.StepCount(),
		Matrix:     res.Trace.Original,
		Steps:      res.Trace.Steps,
		Residual:   res.Trace.Residual,
		MinCut:     res.Trace.MinCut,
		DurationMs: float64(res.Duration.Microseconds()) / 1000,
	}
	err := s.runs.Create(ctx, run)
	if s.metrics != nil {
		s.metrics.RecordHistoryOp("create", err)
	}
	if err != nil {
		log.Warn("failed to persist run", "error", err)
		return
	}
	res.Persisted = true
	res.CreatedAt = run.CreatedAt
}

// fail переводит ошибку в apperror, отмечает её в спане и метриках
func (s *FlowService) fail(ctx context.Context, err error) *apperror.Error {
	appErr := FromSolverError(err)
	telemetry.SetError(ctx, err)
	telemetry.SetAttributes(ctx, attribute.String(telemetry.AttrErrorCode, string(appErr.Code)))
	if s.metrics != nil {
		s.metrics.RecordRunError(string(appErr.Code))
	}

	log := logger.WithContext(ctx)
	if appErr.Code == apperror.CodeInternal {
		log.Error("max flow run failed", "error", err)
	} else {
		log.Debug("max flow run rejected", "code", appErr.Code, "error", err)
	}
	return appErr
}

func (s *FlowService) observePool() {
	if s.metrics != nil {
		s.metrics.SolverPoolInUse.Set(float64(s.pool.InUse()))
	}
}

// errHistoryDisabled история выключена в конфигурации
func errHistoryDisabled() *apperror.Error {
	return apperror.New(apperror.CodeUnavailable, "run history is disabled")
}
