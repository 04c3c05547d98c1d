// pkg/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config - главная структура конфигурации
type Config struct {
	App       AppConfig       `koanf:"app"`
	HTTP      HTTPConfig      `koanf:"http"`
	Log       LogConfig       `koanf:"log"`
	Metrics   MetricsConfig   `koanf:"metrics"`
	Tracing   TracingConfig   `koanf:"tracing"`
	Database  DatabaseConfig  `koanf:"database"`
	Cache     CacheConfig     `koanf:"cache"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
	Solver    SolverConfig    `koanf:"solver"`
	History   HistoryConfig   `koanf:"history"`
	Report    ReportConfig    `koanf:"report"`
	Swagger   SwaggerConfig   `koanf:"swagger"`
}

// AppConfig - общие настройки приложения
type AppConfig struct {
	Name        string `koanf:"name"`
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"` // development, staging, production
	Debug       bool   `koanf:"debug"`
}

// HTTPConfig - настройки HTTP API
type HTTPConfig struct {
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	MaxBodyBytes    int64         `koanf:"max_body_bytes"`
	CORS            CORSConfig    `koanf:"cors"`
}

// Address возвращает адрес для прослушивания
func (h HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", h.Port)
}

// CORSConfig - настройки CORS
type CORSConfig struct {
	Enabled          bool     `koanf:"enabled"`
	AllowedOrigins   []string `koanf:"allowed_origins"`
	AllowedMethods   []string `koanf:"allowed_methods"`
	AllowedHeaders   []string `koanf:"allowed_headers"`
	ExposedHeaders   []string `koanf:"exposed_headers"`
	AllowCredentials bool     `koanf:"allow_credentials"`
	MaxAge           int      `koanf:"max_age"`
}

// LogConfig - настройки логирования
type LogConfig struct {
	Level      string `koanf:"level"`       // debug, info, warn, error
	Format     string `koanf:"format"`      // json, text
	Output     string `koanf:"output"`      // stdout, stderr, file
	FilePath   string `koanf:"file_path"`   // путь к файлу логов
	MaxSize    int    `koanf:"max_size"`    // MB
	MaxBackups int    `koanf:"max_backups"` // количество бэкапов
	MaxAge     int    `koanf:"max_age"`     // дней
	Compress   bool   `koanf:"compress"`
}

// MetricsConfig - настройки Prometheus метрик
type MetricsConfig struct {
	Enabled   bool   `koanf:"enabled"`
	Port      int    `koanf:"port"` // 0 - отдавать /metrics на основном HTTP порту
	Path      string `koanf:"path"`
	Namespace string `koanf:"namespace"`
	Subsystem string `koanf:"subsystem"`
}

// TracingConfig - настройки OpenTelemetry
type TracingConfig struct {
	Enabled     bool    `koanf:"enabled"`
	Endpoint    string  `koanf:"endpoint"`
	ServiceName string  `koanf:"service_name"`
	SampleRate  float64 `koanf:"sample_rate"`
	Insecure    bool    `koanf:"insecure"`
}

// DatabaseConfig - настройки базы данных
type DatabaseConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Database        string        `koanf:"database"`
	Username        string        `koanf:"username"`
	Password        string        `koanf:"password"`
	SSLMode         string        `koanf:"ssl_mode"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time"`
	AutoMigrate     bool          `koanf:"auto_migrate"`
}

// DSN возвращает строку подключения к PostgreSQL
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.Username, d.Password, d.Database, d.SSLMode,
	)
}

// CacheConfig - настройки кэширования трасс
type CacheConfig struct {
	Enabled    bool          `koanf:"enabled"`
	Driver     string        `koanf:"driver"` // redis, memory
	Host       string        `koanf:"host"`
	Port       int           `koanf:"port"`
	Password   string        `koanf:"password"`
	DB         int           `koanf:"db"`
	DefaultTTL time.Duration `koanf:"default_ttl"`
	MaxEntries int           `koanf:"max_entries"` // для in-memory
}

// Address возвращает адрес кэша
func (c CacheConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// RateLimitConfig конфигурация rate limiting
type RateLimitConfig struct {
	Enabled         bool          `koanf:"enabled"`
	Requests        int           `koanf:"requests"`
	Window          time.Duration `koanf:"window"`
	Strategy        string        `koanf:"strategy"`
	Backend         string        `koanf:"backend"`
	BurstSize       int           `koanf:"burst_size"`
	CleanupInterval time.Duration `koanf:"cleanup_interval"`
	RedisAddr       string        `koanf:"redis_addr"`
}

// SolverConfig - лимиты и поведение движка максимального потока
type SolverConfig struct {
	MaxVertices     int           `koanf:"max_vertices"`
	MaxIterations   int           `koanf:"max_iterations"`
	Timeout         time.Duration `koanf:"timeout"`
	RecordSnapshots bool          `koanf:"record_snapshots"`
	MaxConcurrent   int           `koanf:"max_concurrent"`
	MaxBatchSize    int           `koanf:"max_batch_size"`
}

// HistoryConfig - хранилище истории запусков
type HistoryConfig struct {
	Enabled bool   `koanf:"enabled"`
	Backend string `koanf:"backend"` // memory, postgres
	MaxRuns int    `koanf:"max_runs"`
}

// ReportConfig конфигурация экспорта трасс
type ReportConfig struct {
	DefaultFormat string    `koanf:"default_format"`
	MaxSteps      int       `koanf:"max_steps"` // максимум шагов в табличных отчётах
	Title         string    `koanf:"title"`
	PDF           PDFConfig `koanf:"pdf"`
}

// PDFConfig конфигурация PDF генератора
type PDFConfig struct {
	MarginTop         float64 `koanf:"margin_top"`   // mm
	MarginLeft        float64 `koanf:"margin_left"`  // mm
	MarginRight       float64 `koanf:"margin_right"` // mm
	EnablePageNumbers bool    `koanf:"enable_page_numbers"`
}

// SwaggerConfig конфигурация Swagger UI
type SwaggerConfig struct {
	Enabled bool   `koanf:"enabled"`
	Title   string `koanf:"title"`
}

var (
	validLevels         = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	validCacheDrivers   = map[string]bool{"memory": true, "redis": true}
	validHistoryBackend = map[string]bool{"memory": true, "postgres": true}
	validReportFormats  = map[string]bool{
		"json": true, "csv": true, "markdown": true, "xlsx": true, "pdf": true, "dot": true, "svg": true,
	}
)

// Validate проверяет конфигурацию
func (c *Config) Validate() error {
	var errs []string

	if c.App.Name == "" {
		errs = append(errs, "app.name is required")
	}

	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		errs = append(errs, fmt.Sprintf("http.port must be between 1 and 65535, got %d", c.HTTP.Port))
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, fmt.Sprintf("log.level must be one of: debug, info, warn, error, got %s", c.Log.Level))
	}

	if c.Metrics.Port < 0 || c.Metrics.Port > 65535 {
		errs = append(errs, fmt.Sprintf("metrics.port must be between 0 and 65535, got %d", c.Metrics.Port))
	}

	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		errs = append(errs, fmt.Sprintf("tracing.sample_rate must be in [0, 1], got %v", c.Tracing.SampleRate))
	}

	if c.Cache.Enabled && !validCacheDrivers[c.Cache.Driver] {
		errs = append(errs, fmt.Sprintf("cache.driver must be one of: memory, redis, got %s", c.Cache.Driver))
	}

	// Лимиты движка
	if c.Solver.MaxVertices <= 0 {
		errs = append(errs, "solver.max_vertices must be positive")
	}
	if c.Solver.MaxIterations < 0 {
		errs = append(errs, "solver.max_iterations must be non-negative")
	}
	if c.Solver.Timeout < 0 {
		errs = append(errs, "solver.timeout must be non-negative")
	}
	if c.Solver.MaxConcurrent <= 0 {
		errs = append(errs, "solver.max_concurrent must be positive")
	}

	if c.History.Enabled && !validHistoryBackend[c.History.Backend] {
		errs = append(errs, fmt.Sprintf("history.backend must be one of: memory, postgres, got %s", c.History.Backend))
	}

	if c.Report.DefaultFormat != "" && !validReportFormats[c.Report.DefaultFormat] {
		errs = append(errs, fmt.Sprintf("report.default_format is not supported: %s", c.Report.DefaultFormat))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return nil
}

// IsDevelopment проверяет режим разработки
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development" || c.App.Environment == "dev"
}

// IsProduction проверяет продакшн режим
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production" || c.App.Environment == "prod"
}

// UsesPostgres сообщает, нужна ли подключённая база данных
func (c *Config) UsesPostgres() bool {
	return c.History.Enabled && c.History.Backend == "postgres"
}
