package service

import (
	"context"
	"regexp"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"flowtrace/pkg/metrics"
	"flowtrace/pkg/telemetry"
	"flowtrace/services/flow-svc/internal/report"
)

// Report готовый к отдаче отчёт
type Report struct {
	Format      report.Format
	Content     []byte
	ContentType string
	Filename    string
}

// Formats доступные форматы отчётов
func (s *FlowService) Formats() []report.Format {
	return s.reports.Formats()
}

// RunReport экспортирует сохранённый запуск
func (s *FlowService) RunReport(ctx context.Context, id, format string) (*Report, error) {
	ctx, span := telemetry.StartSpan(ctx, "FlowService.RunReport",
		trace.WithAttributes(
			attribute.String(telemetry.AttrRunID, id),
			attribute.String(telemetry.AttrReportFormat, format),
		),
	)
	defer span.End()

	run, err := s.GetRun(ctx, id)
	if err != nil {
		return nil, err
	}

	return s.render(ctx, format, &report.Data{
		RunID:    run.ID,
		Name:     run.Name,
		Trace:    run.Trace(),
		Duration: time.Duration(run.DurationMs * float64(time.Millisecond)),
	})
}

// ResultReport экспортирует только что вычисленный результат
func (s *FlowService) ResultReport(ctx context.Context, res *RunResult, format string) (*Report, error) {
	ctx, span := telemetry.StartSpan(ctx, "FlowService.ResultReport",
		trace.WithAttributes(attribute.String(telemetry.AttrReportFormat, format)),
	)
	defer span.End()

	return s.render(ctx, format, &report.Data{
		RunID:    res.RunID,
		Name:     res.Name,
		Trace:    res.Trace,
		Duration: res.Duration,
	})
}

func (s *FlowService) render(ctx context.Context, format string, data *report.Data) (*Report, error) {
	f, err := report.ParseFormat(format)
	if err != nil {
		return nil, FromSolverError(err)
	}

	var timer *metrics.Timer
	if s.metrics != nil {
		timer = metrics.NewTimer(s.metrics.ReportDuration.WithLabelValues(string(f)))
	}

	content, gen, err := s.reports.Generate(ctx, f, data)
	if err != nil {
		telemetry.SetError(ctx, err)
		return nil, FromSolverError(err)
	}
	if timer != nil {
		timer.ObserveDuration()
		s.metrics.RecordReport(string(f))
	}

	return &Report{
		Format:      f,
		Content:     content,
		ContentType: gen.ContentType(),
		Filename:    reportFilename(data) + gen.Extension(),
	}, nil
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// reportFilename имя файла без расширения
func reportFilename(data *report.Data) string {
	base := data.Name
	if base == "" {
		base = data.RunID
	}
	base = strings.Trim(unsafeFilenameChars.ReplaceAllString(base, "-"), "-")
	if base == "" {
		return "flowtrace"
	}
	return "flowtrace-" + base
}
