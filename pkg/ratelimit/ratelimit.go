package ratelimit

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"flowtrace/pkg/config"
)

// Ошибки лимитера
var (
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	ErrLimiterClosed     = errors.New("limiter is closed")
	ErrUnknownBackend    = errors.New("unknown rate limit backend")
)

// Стратегии
const (
	StrategySlidingWindow = "sliding_window"
	StrategyTokenBucket   = "token_bucket"
)

// Limiter ограничитель частоты запросов по ключу
type Limiter interface {
	// Allow пропускает один запрос, если лимит не исчерпан
	Allow(ctx context.Context, key string) (*Decision, error)
	Reset(ctx context.Context, key string) error
	Close() error
}

// Decision результат проверки лимита, отдаётся в заголовках X-RateLimit-*
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// Options параметры лимитера
type Options struct {
	Requests        int
	Window          time.Duration
	Strategy        string
	Backend         string
	BurstSize       int
	CleanupInterval time.Duration
	RedisAddr       string
}

// DefaultOptions 120 запросов в минуту на клиента
func DefaultOptions() Options {
	return Options{
		Requests:        120,
		Window:          time.Minute,
		Strategy:        StrategySlidingWindow,
		Backend:         "memory",
		BurstSize:       20,
		CleanupInterval: 5 * time.Minute,
	}
}

// FromConfig переносит секцию rate_limit, нулевые поля берутся из умолчаний
func FromConfig(cfg config.RateLimitConfig) Options {
	opts := DefaultOptions()
	if cfg.Requests > 0 {
		opts.Requests = cfg.Requests
	}
	if cfg.Window > 0 {
		opts.Window = cfg.Window
	}
	if cfg.Strategy != "" {
		opts.Strategy = cfg.Strategy
	}
	if cfg.Backend != "" {
		opts.Backend = cfg.Backend
	}
	if cfg.BurstSize > 0 {
		opts.BurstSize = cfg.BurstSize
	}
	if cfg.CleanupInterval > 0 {
		opts.CleanupInterval = cfg.CleanupInterval
	}
	opts.RedisAddr = cfg.RedisAddr
	return opts
}

// New создаёт лимитер по имени бэкенда
func New(opts Options) (Limiter, error) {
	switch opts.Backend {
	case "memory", "":
		return NewMemoryLimiter(opts), nil
	case "redis":
		return NewRedisLimiter(opts)
	default:
		return nil, ErrUnknownBackend
	}
}

// ClientKey ключ клиента: X-Forwarded-For, X-Real-IP, затем адрес соединения
func ClientKey(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
