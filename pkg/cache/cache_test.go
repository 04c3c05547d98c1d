package cache

import (
	"errors"
	"testing"
	"time"

	"flowtrace/pkg/config"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	if opts.Backend != BackendMemory {
		t.Errorf("expected backend 'memory', got %s", opts.Backend)
	}
	if opts.DefaultTTL != 10*time.Minute {
		t.Errorf("expected default TTL 10m, got %v", opts.DefaultTTL)
	}
	if opts.MaxEntries != 1024 {
		t.Errorf("expected max entries 1024, got %d", opts.MaxEntries)
	}
}

func TestFromConfig(t *testing.T) {
	cfg := &config.CacheConfig{
		Driver:     "redis",
		Host:       "redis.local",
		Port:       6380,
		Password:   "secret",
		DB:         1,
		DefaultTTL: 3 * time.Minute,
		MaxEntries: 50,
	}

	opts := FromConfig(cfg)

	if opts.Backend != BackendRedis {
		t.Errorf("expected backend 'redis', got %s", opts.Backend)
	}
	if opts.DefaultTTL != 3*time.Minute {
		t.Errorf("expected TTL 3m, got %v", opts.DefaultTTL)
	}
	if opts.MaxEntries != 50 {
		t.Errorf("expected max entries 50, got %d", opts.MaxEntries)
	}
	if opts.RedisAddr != "redis.local:6380" {
		t.Errorf("expected addr 'redis.local:6380', got %s", opts.RedisAddr)
	}
	if opts.RedisPassword != "secret" || opts.RedisDB != 1 {
		t.Errorf("redis credentials not carried over: %+v", opts)
	}
}

func TestFromConfig_KeepsDefaults(t *testing.T) {
	opts := FromConfig(&config.CacheConfig{})
	if opts.Backend != BackendMemory {
		t.Errorf("empty driver should keep memory backend, got %s", opts.Backend)
	}
	if opts.DefaultTTL != 10*time.Minute {
		t.Errorf("zero TTL should keep default, got %v", opts.DefaultTTL)
	}
}

func TestNew(t *testing.T) {
	c, err := New(&Options{Backend: BackendMemory})
	if err != nil {
		t.Fatalf("New(memory) error = %v", err)
	}
	defer c.Close()

	if _, ok := c.(*MemoryCache); !ok {
		t.Errorf("expected *MemoryCache, got %T", c)
	}

	c2, err := New(nil)
	if err != nil {
		t.Fatalf("New(nil) error = %v", err)
	}
	c2.Close()

	if _, err := New(&Options{Backend: "memcached"}); !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("expected ErrUnknownBackend, got %v", err)
	}
}
