package cli

import (
	"context"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"flowtrace/gen/openapi"
	"flowtrace/migrations"
	"flowtrace/pkg/cache"
	"flowtrace/pkg/config"
	"flowtrace/pkg/database"
	"flowtrace/pkg/logger"
	"flowtrace/pkg/metrics"
	"flowtrace/pkg/ratelimit"
	"flowtrace/pkg/server"
	"flowtrace/pkg/swagger"
	"flowtrace/pkg/telemetry"
	"flowtrace/services/flow-svc/internal/handlers"
	"flowtrace/services/flow-svc/internal/middleware"
	"flowtrace/services/flow-svc/internal/report"
	"flowtrace/services/flow-svc/internal/repository"
	"flowtrace/services/flow-svc/internal/service"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), a.cfg)
		},
	}
}

// runServe поднимает зависимости по конфигурации и блокируется до отмены ctx.
// Кэш и трассировка необязательны: ошибка их инициализации только логируется.
// История на PostgreSQL обязательна, если включена.
func runServe(ctx context.Context, cfg *config.Config) error {
	var serverOpts []server.Option

	// =========================================================================
	// Telemetry / metrics
	// =========================================================================
	tp, err := telemetry.Init(ctx, telemetry.FromConfig(cfg.App, cfg.Tracing))
	if err != nil {
		logger.Log.Warn("Failed to init telemetry", "error", err)
	} else {
		serverOpts = append(serverOpts, server.WithCloser("telemetry", tp.Shutdown))
		if cfg.Tracing.Enabled {
			logger.Log.Info("Telemetry initialized",
				"endpoint", cfg.Tracing.Endpoint,
				"sample_rate", cfg.Tracing.SampleRate,
			)
		}
	}

	m := metrics.InitMetrics(cfg.Metrics.Namespace, cfg.Metrics.Subsystem)
	serverOpts = append(serverOpts, server.WithMetrics(m))

	svcOpts := []service.Option{
		service.WithMetrics(m),
		service.WithReports(report.NewRegistry(report.OptionsFromConfig(cfg.Report))),
	}

	// =========================================================================
	// Trace cache
	// =========================================================================
	if cfg.Cache.Enabled {
		base, err := cache.New(cache.FromConfig(&cfg.Cache))
		if err != nil {
			logger.Log.Warn("Failed to create cache, continuing without cache", "error", err)
		} else {
			tc := cache.NewTraceCache(base, cfg.Cache.DefaultTTL)
			svcOpts = append(svcOpts, service.WithCache(tc))
			serverOpts = append(serverOpts, server.WithCloser("cache", func(context.Context) error {
				return tc.Close()
			}))
			logger.Log.Info("Trace cache initialized",
				"driver", cfg.Cache.Driver,
				"ttl", cfg.Cache.DefaultTTL,
			)
		}
	}

	// =========================================================================
	// Run history
	// =========================================================================
	if cfg.History.Enabled {
		var db database.DB
		if cfg.UsesPostgres() {
			pg, err := database.NewPostgresDB(ctx, &cfg.Database)
			if err != nil {
				return err
			}
			serverOpts = append(serverOpts, server.WithCloser("database", func(context.Context) error {
				pg.Close()
				return nil
			}))
			if err := database.RunMigrations(ctx, pg.Pool(), cfg.Database.AutoMigrate, migrations.FS); err != nil {
				pg.Close()
				return err
			}
			db = pg
			svcOpts = append(svcOpts, service.WithReadinessCheck("database", pg.Ping))
		}

		runs, err := repository.New(cfg.History, db)
		if err != nil {
			return err
		}
		svcOpts = append(svcOpts, service.WithHistory(runs))
		logger.Log.Info("Run history enabled", "backend", cfg.History.Backend)
	}

	svc := service.NewFlowService(cfg.App.Version, cfg.Solver, svcOpts...)

	// =========================================================================
	// HTTP
	// =========================================================================
	var limiter ratelimit.Limiter
	if cfg.RateLimit.Enabled {
		limiter, err = ratelimit.New(ratelimit.FromConfig(cfg.RateLimit))
		if err != nil {
			logger.Log.Warn("Failed to create rate limiter, continuing without it", "error", err)
			limiter = nil
		} else {
			serverOpts = append(serverOpts, server.WithCloser("rate limiter", func(context.Context) error {
				return limiter.Close()
			}))
			logger.Log.Info("Rate limiter initialized",
				"requests", cfg.RateLimit.Requests,
				"window", cfg.RateLimit.Window,
				"backend", cfg.RateLimit.Backend,
			)
		}
	}

	handler, err := buildHandler(cfg, svc, m, limiter)
	if err != nil {
		return err
	}

	logger.Log.Info("Starting flowtrace",
		"port", cfg.HTTP.Port,
		"environment", cfg.App.Environment,
		"version", cfg.App.Version,
		"history", cfg.History.Enabled,
		"cache", cfg.Cache.Enabled,
	)

	return server.New(cfg, handler, serverOpts...).Run(ctx)
}

// buildHandler собирает router API со swagger и /metrics и оборачивает его цепочкой middleware
func buildHandler(cfg *config.Config, svc handlers.FlowService, m *metrics.Metrics, limiter ratelimit.Limiter) (http.Handler, error) {
	h := handlers.New(svc, handlers.Options{
		DefaultReportFormat: cfg.Report.DefaultFormat,
		IncludeStatistics:   true,
		MaxVertices:         cfg.Solver.MaxVertices,
	})
	router := handlers.NewRouter(h)

	metricsPath := cfg.Metrics.Path
	if metricsPath == "" {
		metricsPath = "/metrics"
	}
	// metrics.port = 0: метрики на основном порту
	if cfg.Metrics.Enabled && cfg.Metrics.Port == 0 {
		router.Handler(http.MethodGet, metricsPath, m.Handler())
	}

	if cfg.Swagger.Enabled {
		spec, err := openapi.GetSpec()
		if err != nil {
			return nil, fmt.Errorf("load openapi spec: %w", err)
		}
		swagger.NewHandler(swagger.FromConfig(cfg.Swagger), spec).Register(router)
	}

	chain := middleware.Chain(middleware.ChainConfig{
		CORS:         cfg.HTTP.CORS,
		Metrics:      m,
		Limiter:      limiter,
		RateExcluded: []string{"/health", "/ready", metricsPath},
		MaxBodyBytes: cfg.HTTP.MaxBodyBytes,
	})
	return chain.Then(router), nil
}
