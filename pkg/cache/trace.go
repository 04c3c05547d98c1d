package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"flowtrace/pkg/domain"
	"flowtrace/pkg/logger"
)

// TraceCache типизированный кэш результатов запусков
type TraceCache struct {
	cache      Cache
	defaultTTL time.Duration
}

// CachedRun закэшированная трасса
type CachedRun struct {
	MaxFlow    domain.Capacity `json:"max_flow"`
	Steps      domain.StepLog  `json:"steps"`
	Residual   domain.Matrix   `json:"residual,omitempty"`
	MinCut     *domain.MinCut  `json:"min_cut,omitempty"`
	ComputedAt time.Time       `json:"computed_at"`
}

// NewTraceCache создаёт кэш трасс поверх произвольного бэкенда
func NewTraceCache(c Cache, defaultTTL time.Duration) *TraceCache {
	if defaultTTL <= 0 {
		defaultTTL = 10 * time.Minute
	}
	return &TraceCache{cache: c, defaultTTL: defaultTTL}
}

// Get возвращает трассу; found=false при промахе
func (tc *TraceCache) Get(ctx context.Context, in RunKeyInput) (*CachedRun, bool, error) {
	key := RunKey(in)

	data, err := tc.cache.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var run CachedRun
	if err := json.Unmarshal(data, &run); err != nil {
		// Повреждённая запись - удаляем
		logger.Log.Warn("dropping corrupted cache entry", "key", key, "error", err)
		_ = tc.cache.Delete(ctx, key)
		return nil, false, nil
	}

	return &run, true, nil
}

// Set сохраняет трассу, ttl<=0 - TTL по умолчанию
func (tc *TraceCache) Set(ctx context.Context, in RunKeyInput, run *CachedRun, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = tc.defaultTTL
	}
	if run.ComputedAt.IsZero() {
		run.ComputedAt = time.Now().UTC()
	}

	data, err := json.Marshal(run)
	if err != nil {
		return err
	}
	return tc.cache.Set(ctx, RunKey(in), data, ttl)
}

// Invalidate удаляет одну трассу
func (tc *TraceCache) Invalidate(ctx context.Context, in RunKeyInput) error {
	return tc.cache.Delete(ctx, RunKey(in))
}

// InvalidateAll удаляет все трассы
func (tc *TraceCache) InvalidateAll(ctx context.Context) (int64, error) {
	return tc.cache.DeleteByPattern(ctx, KeyPrefix+"*")
}

// Stats статистика бэкенда
func (tc *TraceCache) Stats(ctx context.Context) (*Stats, error) {
	return tc.cache.Stats(ctx)
}

// Ping проверка доступности бэкенда
func (tc *TraceCache) Ping(ctx context.Context) error {
	return tc.cache.Ping(ctx)
}

// Close закрывает бэкенд
func (tc *TraceCache) Close() error {
	return tc.cache.Close()
}
