package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryLimiter лимитер в памяти процесса
type MemoryLimiter struct {
	mu      sync.Mutex
	opts    Options
	clients map[string]*window
	now     func() time.Time
	stopCh  chan struct{}
	closed  bool
}

type window struct {
	hits     []time.Time // sliding window
	tokens   float64     // token bucket
	lastSeen time.Time
}

// NewMemoryLimiter создаёт лимитер и запускает фоновую очистку
func NewMemoryLimiter(opts Options) *MemoryLimiter {
	if opts.Requests <= 0 {
		opts.Requests = DefaultOptions().Requests
	}
	if opts.Window <= 0 {
		opts.Window = DefaultOptions().Window
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = DefaultOptions().CleanupInterval
	}

	l := &MemoryLimiter{
		opts:    opts,
		clients: make(map[string]*window),
		now:     time.Now,
		stopCh:  make(chan struct{}),
	}
	go l.cleanupLoop()
	return l
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (*Decision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil, ErrLimiterClosed
	}

	now := l.now()
	w, ok := l.clients[key]
	if !ok {
		w = &window{tokens: float64(l.capacity()), lastSeen: now}
		l.clients[key] = w
	}

	if l.opts.Strategy == StrategyTokenBucket {
		return l.takeToken(w, now), nil
	}
	return l.slide(w, now), nil
}

func (l *MemoryLimiter) capacity() int {
	if l.opts.Strategy == StrategyTokenBucket {
		return l.opts.Requests + l.opts.BurstSize
	}
	return l.opts.Requests
}

func (l *MemoryLimiter) takeToken(w *window, now time.Time) *Decision {
	rate := float64(l.opts.Requests) / l.opts.Window.Seconds()
	w.tokens += now.Sub(w.lastSeen).Seconds() * rate
	if maxTokens := float64(l.capacity()); w.tokens > maxTokens {
		w.tokens = maxTokens
	}
	w.lastSeen = now

	d := &Decision{Limit: l.capacity()}
	if w.tokens >= 1 {
		w.tokens--
		d.Allowed = true
		d.Remaining = int(w.tokens)
		return d
	}
	d.RetryAfter = time.Duration((1 - w.tokens) / rate * float64(time.Second))
	return d
}

func (l *MemoryLimiter) slide(w *window, now time.Time) *Decision {
	w.hits = trim(w.hits, now.Add(-l.opts.Window))
	w.lastSeen = now

	d := &Decision{Limit: l.opts.Requests}
	if len(w.hits) < l.opts.Requests {
		w.hits = append(w.hits, now)
		d.Allowed = true
		d.Remaining = l.opts.Requests - len(w.hits)
		return d
	}
	d.RetryAfter = w.hits[0].Add(l.opts.Window).Sub(now)
	return d
}

// trim отбрасывает отметки не позже start, срез отсортирован по времени
func trim(hits []time.Time, start time.Time) []time.Time {
	i := 0
	for i < len(hits) && !hits[i].After(start) {
		i++
	}
	return hits[i:]
}

func (l *MemoryLimiter) Reset(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.clients, key)
	return nil
}

// Len число отслеживаемых клиентов
func (l *MemoryLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

func (l *MemoryLimiter) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	close(l.stopCh)
	l.clients = nil
	return nil
}

func (l *MemoryLimiter) cleanupLoop() {
	ticker := time.NewTicker(l.opts.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stopCh:
			return
		case <-ticker.C:
			l.evictIdle()
		}
	}
}

// evictIdle удаляет клиентов, не появлявшихся дольше двух окон
func (l *MemoryLimiter) evictIdle() {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-2 * l.opts.Window)
	for key, w := range l.clients {
		if w.lastSeen.Before(cutoff) {
			delete(l.clients, key)
		}
	}
}
