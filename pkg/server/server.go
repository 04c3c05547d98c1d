package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"flowtrace/pkg/config"
	"flowtrace/pkg/logger"
	"flowtrace/pkg/metrics"
)

const defaultShutdownTimeout = 30 * time.Second

// Closer ресурс, освобождаемый после остановки HTTP сервера
type Closer struct {
	Name  string
	Close func(ctx context.Context) error
}

// HTTPServer обёртка над http.Server с сервером метрик и graceful shutdown
type HTTPServer struct {
	server  *http.Server
	config  *config.Config
	metrics *metrics.Metrics
	closers []Closer
}

// Option опция сервера
type Option func(*HTTPServer)

// WithMetrics сервер метрик на отдельном порту (metrics.port > 0)
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *HTTPServer) { s.metrics = m }
}

// WithCloser регистрирует ресурс для закрытия при остановке, закрываются в обратном порядке
func WithCloser(name string, fn func(ctx context.Context) error) Option {
	return func(s *HTTPServer) {
		s.closers = append(s.closers, Closer{Name: name, Close: fn})
	}
}

// New создаёт HTTP сервер для handler
func New(cfg *config.Config, handler http.Handler, opts ...Option) *HTTPServer {
	s := &HTTPServer{
		config: cfg,
		server: &http.Server{
			Addr:              cfg.HTTP.Address(),
			Handler:           handler,
			ReadTimeout:       cfg.HTTP.ReadTimeout,
			ReadHeaderTimeout: 10 * time.Second,
			WriteTimeout:      cfg.HTTP.WriteTimeout,
			IdleTimeout:       cfg.HTTP.IdleTimeout,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run слушает http.port и блокируется до отмены ctx или ошибки сервера
func (s *HTTPServer) Run(ctx context.Context) error {
	lc := net.ListenConfig{}
	lis, err := lc.Listen(ctx, "tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	return s.Serve(ctx, lis)
}

// Serve обслуживает lis. Отмена ctx запускает остановку:
// новые соединения не принимаются, активные запросы дорабатывают не дольше shutdown_timeout.
func (s *HTTPServer) Serve(ctx context.Context, lis net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)
	s.server.BaseContext = func(net.Listener) context.Context { return ctx }

	g.Go(func() error {
		logger.Log.Info("Starting HTTP server",
			"service", s.config.App.Name,
			"addr", lis.Addr().String(),
			"environment", s.config.App.Environment,
			"version", s.config.App.Version,
		)
		if err := s.server.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if s.metrics != nil && s.config.Metrics.Enabled && s.config.Metrics.Port > 0 {
		g.Go(func() error {
			logger.Log.Info("Starting metrics server",
				"port", s.config.Metrics.Port,
				"path", s.config.Metrics.Path,
			)
			if err := s.metrics.StartMetricsServer(gctx, s.config.Metrics.Port, s.config.Metrics.Path); err != nil {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
	}

	if s.metrics != nil {
		s.metrics.SetServiceInfo(s.config.App.Version, s.config.App.Environment)
	}

	g.Go(func() error {
		<-gctx.Done()
		return s.shutdown()
	})

	return g.Wait()
}

func (s *HTTPServer) shutdown() error {
	timeout := s.config.HTTP.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	logger.Log.Info("Shutting down HTTP server", "timeout", timeout)

	err := s.server.Shutdown(ctx)
	if err != nil {
		logger.Log.Warn("Forcing server stop", "error", err)
		_ = s.server.Close()
	} else {
		logger.Log.Info("Server stopped gracefully")
	}

	for i := len(s.closers) - 1; i >= 0; i-- {
		c := s.closers[i]
		if cerr := c.Close(ctx); cerr != nil {
			logger.Log.Warn("Failed to close resource", "resource", c.Name, "error", cerr)
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

// Handler корневой handler сервера
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}
