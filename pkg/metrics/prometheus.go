package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics контейнер метрик сервиса
type Metrics struct {
	registry *prometheus.Registry

	// HTTP
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Движок
	RunsTotal        *prometheus.CounterVec
	RunDuration      prometheus.Histogram
	Augmentations    prometheus.Histogram
	NetworkVertices  prometheus.Histogram
	LastMaxFlow      prometheus.Gauge
	SolverPoolInUse  prometheus.Gauge
	CacheLookups     *prometheus.CounterVec
	HistoryOps       *prometheus.CounterVec
	ReportsGenerated *prometheus.CounterVec
	ReportDuration   *prometheus.HistogramVec

	// Информация о сервисе
	ServiceInfo *prometheus.GaugeVec
}

var (
	defaultMetrics *Metrics
	defaultMu      sync.Mutex
)

// New создаёт метрики в собственном реестре.
// Реестр также содержит Go/process коллекторы и RuntimeCollector.
func New(namespace, subsystem string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		NewRuntimeCollector(namespace, subsystem),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,

		HTTPRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),

		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"method", "route"}),

		HTTPRequestsInFlight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "http_requests_in_flight",
			Help:      "Current number of HTTP requests being processed",
		}),

		RunsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "runs_total",
			Help:      "Total number of max-flow runs by outcome",
		}, []string{"status", "source"}),

		RunDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "run_duration_seconds",
			Help:      "Duration of computed max-flow runs",
			Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5, 30},
		}),

		Augmentations: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "augmentations_per_run",
			Help:      "Number of augmenting paths per run",
			Buckets:   []float64{0, 1, 2, 5, 10, 50, 100, 500, 1000},
		}),

		NetworkVertices: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "network_vertices",
			Help:      "Number of vertices in solved networks",
			Buckets:   []float64{2, 5, 10, 25, 50, 100, 250, 500},
		}),

		LastMaxFlow: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "last_max_flow",
			Help:      "Max flow value of the last computed run",
		}),

		SolverPoolInUse: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "solver_pool_in_use",
			Help:      "Occupied solver pool slots",
		}),

		CacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "cache_lookups_total",
			Help:      "Trace cache lookups by result",
		}, []string{"result"}),

		HistoryOps: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "history_operations_total",
			Help:      "Run history operations by kind and outcome",
		}, []string{"operation", "status"}),

		ReportsGenerated: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "reports_generated_total",
			Help:      "Generated reports by format",
		}, []string{"format"}),

		ReportDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "report_duration_seconds",
			Help:      "Report generation time by format",
			Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 5},
		}, []string{"format"}),

		ServiceInfo: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "service_info",
			Help:      "Service information",
		}, []string{"version", "environment"}),
	}
}

// InitMetrics создаёт глобальные метрики
func InitMetrics(namespace, subsystem string) *Metrics {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	defaultMetrics = New(namespace, subsystem)
	return defaultMetrics
}

// Get возвращает глобальные метрики, создавая их при первом обращении
func Get() *Metrics {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultMetrics == nil {
		defaultMetrics = New("flowtrace", "")
	}
	return defaultMetrics
}

// Registry реестр метрик
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordHTTPRequest записывает метрики HTTP запроса
func (m *Metrics) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordRun записывает метрики вычисленного запуска
func (m *Metrics) RecordRun(vertices, steps int, maxFlow int64, duration time.Duration) {
	m.RunsTotal.WithLabelValues("success", "computed").Inc()
	m.RunDuration.Observe(duration.Seconds())
	m.Augmentations.Observe(float64(steps))
	m.NetworkVertices.Observe(float64(vertices))
	m.LastMaxFlow.Set(float64(maxFlow))
}

// RecordCachedRun отмечает запуск, отданный из кэша
func (m *Metrics) RecordCachedRun() {
	m.RunsTotal.WithLabelValues("success", "cache").Inc()
}

// RecordRunError отмечает неуспешный запуск с кодом ошибки
func (m *Metrics) RecordRunError(code string) {
	m.RunsTotal.WithLabelValues(code, "computed").Inc()
}

// RecordCacheLookup hit или miss
func (m *Metrics) RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

// RecordHistoryOp записывает операцию с историей запусков
func (m *Metrics) RecordHistoryOp(operation string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.HistoryOps.WithLabelValues(operation, status).Inc()
}

// RecordReport отмечает сгенерированный отчёт
func (m *Metrics) RecordReport(format string) {
	m.ReportsGenerated.WithLabelValues(format).Inc()
}

// SetServiceInfo устанавливает информацию о сервисе
func (m *Metrics) SetServiceInfo(version, environment string) {
	m.ServiceInfo.WithLabelValues(version, environment).Set(1)
}

// Handler HTTP handler для /metrics
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// StartMetricsServer отдельный HTTP сервер метрик, останавливается по ctx
func (m *Metrics) StartMetricsServer(ctx context.Context, port int, path string) error {
	if path == "" {
		path = "/metrics"
	}

	mux := http.NewServeMux()
	mux.Handle(path, m.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	server := &http.Server{
		Addr:              ":" + strconv.Itoa(port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
