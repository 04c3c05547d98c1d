package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		App:    AppConfig{Name: "flowtrace"},
		HTTP:   HTTPConfig{Port: 8080},
		Log:    LogConfig{Level: "info"},
		Solver: SolverConfig{MaxVertices: 100, MaxConcurrent: 4, Timeout: time.Second},
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid config", mutate: func(c *Config) {}},
		{
			name:    "missing app name",
			mutate:  func(c *Config) { c.App.Name = "" },
			wantErr: "app.name",
		},
		{
			name:    "invalid port - zero",
			mutate:  func(c *Config) { c.HTTP.Port = 0 },
			wantErr: "http.port",
		},
		{
			name:    "invalid port - too high",
			mutate:  func(c *Config) { c.HTTP.Port = 70000 },
			wantErr: "http.port",
		},
		{
			name:    "invalid log level",
			mutate:  func(c *Config) { c.Log.Level = "verbose" },
			wantErr: "log.level",
		},
		{
			name:   "empty log level defaults to info",
			mutate: func(c *Config) { c.Log.Level = "" },
		},
		{
			name:    "sample rate out of range",
			mutate:  func(c *Config) { c.Tracing.SampleRate = 1.5 },
			wantErr: "tracing.sample_rate",
		},
		{
			name: "unknown cache driver",
			mutate: func(c *Config) {
				c.Cache.Enabled = true
				c.Cache.Driver = "memcached"
			},
			wantErr: "cache.driver",
		},
		{
			name:    "zero max vertices",
			mutate:  func(c *Config) { c.Solver.MaxVertices = 0 },
			wantErr: "solver.max_vertices",
		},
		{
			name:    "negative iteration limit",
			mutate:  func(c *Config) { c.Solver.MaxIterations = -1 },
			wantErr: "solver.max_iterations",
		},
		{
			name:    "zero concurrency",
			mutate:  func(c *Config) { c.Solver.MaxConcurrent = 0 },
			wantErr: "solver.max_concurrent",
		},
		{
			name: "unknown history backend",
			mutate: func(c *Config) {
				c.History.Enabled = true
				c.History.Backend = "mongo"
			},
			wantErr: "history.backend",
		},
		{
			name:    "unsupported report format",
			mutate:  func(c *Config) { c.Report.DefaultFormat = "docx" },
			wantErr: "report.default_format",
		},
		{
			name:   "svg report format",
			mutate: func(c *Config) { c.Report.DefaultFormat = "svg" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error = %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error mentioning %s", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Validate_CollectsAll(t *testing.T) {
	cfg := Config{}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, key := range []string{"app.name", "http.port", "solver.max_vertices", "solver.max_concurrent"} {
		if !strings.Contains(err.Error(), key) {
			t.Errorf("error should mention %s: %v", key, err)
		}
	}
}

func TestConfig_IsDevelopment(t *testing.T) {
	tests := []struct {
		env      string
		expected bool
	}{
		{"development", true},
		{"dev", true},
		{"production", false},
		{"staging", false},
	}

	for _, tt := range tests {
		cfg := &Config{App: AppConfig{Environment: tt.env}}
		if got := cfg.IsDevelopment(); got != tt.expected {
			t.Errorf("IsDevelopment() for %s = %v, want %v", tt.env, got, tt.expected)
		}
	}
}

func TestConfig_IsProduction(t *testing.T) {
	tests := []struct {
		env      string
		expected bool
	}{
		{"production", true},
		{"prod", true},
		{"development", false},
	}

	for _, tt := range tests {
		cfg := &Config{App: AppConfig{Environment: tt.env}}
		if got := cfg.IsProduction(); got != tt.expected {
			t.Errorf("IsProduction() for %s = %v, want %v", tt.env, got, tt.expected)
		}
	}
}

func TestConfig_UsesPostgres(t *testing.T) {
	cfg := &Config{History: HistoryConfig{Enabled: true, Backend: "postgres"}}
	if !cfg.UsesPostgres() {
		t.Error("expected postgres")
	}
	cfg.History.Enabled = false
	if cfg.UsesPostgres() {
		t.Error("disabled history should not need postgres")
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db",
		Port:     5432,
		Username: "flow",
		Password: "secret",
		Database: "flowtrace",
		SSLMode:  "disable",
	}

	expected := "host=db port=5432 user=flow password=secret dbname=flowtrace sslmode=disable"
	if got := cfg.DSN(); got != expected {
		t.Errorf("DSN() = %s, want %s", got, expected)
	}
}

func TestCacheConfig_Address(t *testing.T) {
	cfg := CacheConfig{Host: "redis", Port: 6380}
	if got := cfg.Address(); got != "redis:6380" {
		t.Errorf("Address() = %s, want redis:6380", got)
	}
}

func TestHTTPConfig_Address(t *testing.T) {
	cfg := HTTPConfig{Port: 8080}
	if got := cfg.Address(); got != ":8080" {
		t.Errorf("Address() = %s, want :8080", got)
	}
}
