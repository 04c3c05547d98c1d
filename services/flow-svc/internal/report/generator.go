// Package report exports a recorded max-flow trace in the supported formats.
package report

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"flowtrace/pkg/config"
	"flowtrace/pkg/domain"
)

// Format имя формата экспорта
type Format string

// Поддерживаемые форматы
const (
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatXLSX     Format = "xlsx"
	FormatPDF      Format = "pdf"
	FormatDOT      Format = "dot"
	FormatSVG      Format = "svg"
)

// ErrUnsupportedFormat формат не зарегистрирован
var ErrUnsupportedFormat = errors.New("unsupported report format")

var formatAliases = map[string]Format{
	"md":    FormatMarkdown,
	"excel": FormatXLSX,
	"xls":   FormatXLSX,
	"gv":    FormatDOT,
}

// ParseFormat нормализует имя формата, принимает короткие псевдонимы
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if f, ok := formatAliases[s]; ok {
		return f, nil
	}
	switch f := Format(s); f {
	case FormatJSON, FormatCSV, FormatMarkdown, FormatXLSX, FormatPDF, FormatDOT, FormatSVG:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// Data данные для генерации отчёта
type Data struct {
	Title       string
	RunID       string
	Name        string
	Trace       *domain.Trace
	Duration    time.Duration
	GeneratedAt time.Time
}

// Generator интерфейс генератора отчётов
type Generator interface {
	Generate(ctx context.Context, data *Data) ([]byte, error)
	Format() Format
	ContentType() string
	Extension() string
}

// Options общие настройки генераторов
type Options struct {
	Title    string
	MaxSteps int // 0 - без ограничения
	PDF      config.PDFConfig
}

// DefaultOptions настройки по умолчанию
func DefaultOptions() Options {
	return Options{
		Title:    "Max Flow Trace",
		MaxSteps: 500,
		PDF: config.PDFConfig{
			MarginTop:         15,
			MarginLeft:        15,
			MarginRight:       15,
			EnablePageNumbers: true,
		},
	}
}

// OptionsFromConfig переносит секцию report поверх умолчаний
func OptionsFromConfig(cfg config.ReportConfig) Options {
	opts := DefaultOptions()
	if cfg.Title != "" {
		opts.Title = cfg.Title
	}
	if cfg.MaxSteps > 0 {
		opts.MaxSteps = cfg.MaxSteps
	}
	if cfg.PDF.MarginTop > 0 {
		opts.PDF.MarginTop = cfg.PDF.MarginTop
	}
	if cfg.PDF.MarginLeft > 0 {
		opts.PDF.MarginLeft = cfg.PDF.MarginLeft
	}
	if cfg.PDF.MarginRight > 0 {
		opts.PDF.MarginRight = cfg.PDF.MarginRight
	}
	opts.PDF.EnablePageNumbers = cfg.PDF.EnablePageNumbers
	return opts
}

// Registry генераторы по имени формата
type Registry struct {
	generators map[Format]Generator
}

// NewRegistry регистрирует все встроенные генераторы
func NewRegistry(opts Options) *Registry {
	base := BaseGenerator{opts: opts}
	r := &Registry{generators: make(map[Format]Generator)}
	for _, g := range []Generator{
		&JSONGenerator{base},
		&CSVGenerator{base},
		&MarkdownGenerator{base},
		&ExcelGenerator{base},
		&PDFGenerator{base},
		&DOTGenerator{base},
		&SVGGenerator{base},
	} {
		r.Register(g)
	}
	return r
}

// Register добавляет или заменяет генератор
func (r *Registry) Register(g Generator) {
	r.generators[g.Format()] = g
}

// Get возвращает генератор формата
func (r *Registry) Get(format Format) (Generator, error) {
	g, ok := r.generators[format]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return g, nil
}

// Formats зарегистрированные форматы по алфавиту
func (r *Registry) Formats() []Format {
	out := make([]Format, 0, len(r.generators))
	for f := range r.generators {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Generate находит генератор и строит отчёт
func (r *Registry) Generate(ctx context.Context, format Format, data *Data) ([]byte, Generator, error) {
	g, err := r.Get(format)
	if err != nil {
		return nil, nil, err
	}
	if data == nil || data.Trace == nil {
		return nil, g, errors.New("report data has no trace")
	}
	out, err := g.Generate(ctx, data)
	if err != nil {
		return nil, g, fmt.Errorf("generate %s report: %w", format, err)
	}
	return out, g, nil
}

// BaseGenerator общие утилиты генераторов
type BaseGenerator struct {
	opts Options
}

// title заголовок отчёта
func (b BaseGenerator) title(data *Data) string {
	if data.Title != "" {
		return data.Title
	}
	if data.Name != "" {
		return fmt.Sprintf("%s: %s", b.opts.Title, data.Name)
	}
	return b.opts.Title
}

// steps шаги с учётом MaxSteps; truncated - число отброшенных
func (b BaseGenerator) steps(data *Data) (domain.StepLog, int) {
	steps := data.Trace.Steps
	if b.opts.MaxSteps > 0 && len(steps) > b.opts.MaxSteps {
		return steps[:b.opts.MaxSteps], len(steps) - b.opts.MaxSteps
	}
	return steps, 0
}

func (b BaseGenerator) generatedAt(data *Data) time.Time {
	if data.GeneratedAt.IsZero() {
		return time.Now().UTC()
	}
	return data.GeneratedAt
}

// formatPath путь вида 0 → 1 → 3
func formatPath(path []int) string {
	parts := make([]string, len(path))
	for i, v := range path {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, " → ")
}

func formatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

func formatDuration(d time.Duration) string {
	ms := float64(d) / float64(time.Millisecond)
	if ms < 1000 {
		return fmt.Sprintf("%.2f ms", ms)
	}
	return fmt.Sprintf("%.2f s", ms/1000)
}

func formatPercent(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}
