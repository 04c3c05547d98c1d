package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix    = "FLOWTRACE_"
	configEnvVar = "FLOWTRACE_CONFIG"
)

// Loader загружает конфигурацию из разных источников
type Loader struct {
	k           *koanf.Koanf
	configFile  string
	configPaths []string
	envPrefix   string
	// fileUsed путь к реально прочитанному файлу, пусто если файла не было
	fileUsed string
}

// NewLoader создаёт новый загрузчик конфигурации
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		k: koanf.New("."),
		configPaths: []string{
			"config.yaml",
			"configs/config.yaml",
			"/etc/flowtrace/config.yaml",
		},
		envPrefix: envPrefix,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// LoaderOption - опция для конфигурации загрузчика
type LoaderOption func(*Loader)

// WithConfigPaths устанавливает пути поиска конфигурации
func WithConfigPaths(paths ...string) LoaderOption {
	return func(l *Loader) {
		l.configPaths = paths
	}
}

// WithConfigFile задаёт явный файл (флаг --config). Отсутствие файла - ошибка.
func WithConfigFile(path string) LoaderOption {
	return func(l *Loader) {
		l.configFile = path
	}
}

// WithEnvPrefix устанавливает префикс переменных окружения
func WithEnvPrefix(prefix string) LoaderOption {
	return func(l *Loader) {
		l.envPrefix = prefix
	}
}

// FileUsed возвращает путь прочитанного файла конфигурации
func (l *Loader) FileUsed() string {
	return l.fileUsed
}

// Load загружает конфигурацию с приоритетом:
// 1. Defaults (самый низкий)
// 2. Config file (yaml)
// 3. Environment variables (самый высокий)
func (l *Loader) Load() (*Config, error) {
	if err := l.k.Load(confmap.Provider(defaultValues(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if err := l.loadConfigFile(); err != nil {
		return nil, err
	}

	if err := l.loadEnv(); err != nil {
		return nil, fmt.Errorf("failed to load env: %w", err)
	}

	var cfg Config
	if err := l.k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// defaultValues значения по умолчанию. Ключи также задают маппинг env переменных.
func defaultValues() map[string]any {
	return map[string]any{
		// App
		"app.name":        "flowtrace",
		"app.version":     "1.0.0",
		"app.environment": "development",
		"app.debug":       false,

		// HTTP
		"http.port":             8080,
		"http.read_timeout":     15 * time.Second,
		"http.write_timeout":    60 * time.Second,
		"http.idle_timeout":     120 * time.Second,
		"http.shutdown_timeout": 10 * time.Second,
		"http.max_body_bytes":   int64(8 * 1024 * 1024),

		"http.cors.enabled":           true,
		"http.cors.allowed_origins":   []string{"*"},
		"http.cors.allowed_methods":   []string{"GET", "POST", "DELETE", "OPTIONS"},
		"http.cors.allowed_headers":   []string{"Accept", "Content-Type", "Origin", "X-Request-ID"},
		"http.cors.exposed_headers":   []string{"X-Request-ID", "X-Cache"},
		"http.cors.allow_credentials": false,
		"http.cors.max_age":           300,

		// Log
		"log.level":       "info",
		"log.format":      "json",
		"log.output":      "stdout",
		"log.file_path":   "",
		"log.max_size":    100,
		"log.max_backups": 3,
		"log.max_age":     7,
		"log.compress":    true,

		// Metrics
		"metrics.enabled":   true,
		"metrics.port":      0,
		"metrics.path":      "/metrics",
		"metrics.namespace": "flowtrace",
		"metrics.subsystem": "",

		// Tracing
		"tracing.enabled":      false,
		"tracing.endpoint":     "localhost:4317",
		"tracing.service_name": "flowtrace",
		"tracing.sample_rate":  0.1,
		"tracing.insecure":     true,

		// Database
		"database.host":               "localhost",
		"database.port":               5432,
		"database.database":           "flowtrace",
		"database.username":           "postgres",
		"database.password":           "",
		"database.ssl_mode":           "disable",
		"database.max_open_conns":     10,
		"database.max_idle_conns":     2,
		"database.conn_max_lifetime":  30 * time.Minute,
		"database.conn_max_idle_time": 5 * time.Minute,
		"database.auto_migrate":       true,

		// Cache
		"cache.enabled":     true,
		"cache.driver":      "memory",
		"cache.host":        "localhost",
		"cache.port":        6379,
		"cache.password":    "",
		"cache.db":          0,
		"cache.default_ttl": 10 * time.Minute,
		"cache.max_entries": 1000,

		// Rate Limit
		"rate_limit.enabled":          false,
		"rate_limit.requests":         60,
		"rate_limit.window":           time.Minute,
		"rate_limit.strategy":         "token_bucket",
		"rate_limit.backend":          "memory",
		"rate_limit.burst_size":       10,
		"rate_limit.cleanup_interval": 5 * time.Minute,
		"rate_limit.redis_addr":       "localhost:6379",

		// Solver
		"solver.max_vertices":     500,
		"solver.max_iterations":   0,
		"solver.timeout":          30 * time.Second,
		"solver.record_snapshots": true,
		"solver.max_concurrent":   8,
		"solver.max_batch_size":   32,

		// History
		"history.enabled":  true,
		"history.backend":  "memory",
		"history.max_runs": 1000,

		// Report
		"report.default_format":          "json",
		"report.max_steps":               200,
		"report.title":                   "Max-flow trace",
		"report.pdf.margin_top":          15.0,
		"report.pdf.margin_left":         15.0,
		"report.pdf.margin_right":        15.0,
		"report.pdf.enable_page_numbers": true,

		// Swagger
		"swagger.enabled": true,
		"swagger.title":   "flowtrace API",
	}
}

// loadConfigFile загружает конфигурацию из файла
func (l *Loader) loadConfigFile() error {
	if l.configFile != "" {
		if _, err := os.Stat(l.configFile); err != nil {
			return fmt.Errorf("config file %s: %w", l.configFile, err)
		}
		return l.loadFile(l.configFile)
	}

	if configPath := os.Getenv(configEnvVar); configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return l.loadFile(configPath)
		}
	}

	for _, path := range l.configPaths {
		absPath, err := filepath.Abs(path)
		if err != nil {
			continue
		}
		if _, err := os.Stat(absPath); err == nil {
			return l.loadFile(absPath)
		}
	}

	// Файл не обязателен
	return nil
}

func (l *Loader) loadFile(path string) error {
	if err := l.k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	l.fileUsed = path
	return nil
}

// loadEnv загружает конфигурацию из переменных окружения.
// FLOWTRACE_SOLVER_MAX_VERTICES -> solver.max_vertices; имена берутся из ключей defaults,
// неизвестные переменные раскладываются по точкам.
func (l *Loader) loadEnv() error {
	mappings := envKeyMappings()

	return l.k.Load(env.ProviderWithValue(l.envPrefix, ".", func(envKey string, value string) (string, any) {
		key := strings.ToLower(strings.TrimPrefix(envKey, l.envPrefix))

		if mappedKey, ok := mappings[key]; ok {
			key = mappedKey
		} else {
			key = strings.ReplaceAll(key, "_", ".")
		}

		if isSliceField(key) {
			return key, splitAndTrim(value)
		}

		return key, value
	}), nil)
}

// envKeyMappings строит маппинг "solver_max_vertices" -> "solver.max_vertices"
func envKeyMappings() map[string]string {
	defaults := defaultValues()
	m := make(map[string]string, len(defaults))
	for key := range defaults {
		m[strings.ReplaceAll(key, ".", "_")] = key
	}
	return m
}

// sliceFields - поля, которые должны парситься как слайсы
var sliceFields = map[string]bool{
	"http.cors.allowed_origins": true,
	"http.cors.allowed_methods": true,
	"http.cors.allowed_headers": true,
	"http.cors.exposed_headers": true,
}

func isSliceField(key string) bool {
	return sliceFields[key]
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// MustLoad загружает конфигурацию или паникует
func MustLoad(opts ...LoaderOption) *Config {
	cfg, err := NewLoader(opts...).Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}

// Load - удобная функция для загрузки с дефолтными настройками
func Load(opts ...LoaderOption) (*Config, error) {
	return NewLoader(opts...).Load()
}
