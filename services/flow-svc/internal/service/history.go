package service

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"flowtrace/pkg/telemetry"
	"flowtrace/services/flow-svc/internal/repository"
)

// GetRun возвращает сохранённый запуск
func (s *FlowService) GetRun(ctx context.Context, id string) (*repository.Run, error) {
	ctx, span := telemetry.StartSpan(ctx, "FlowService.GetRun",
		trace.WithAttributes(attribute.String(telemetry.AttrRunID, id)),
	)
	defer span.End()

	if s.runs == nil {
		return nil, errHistoryDisabled()
	}

	run, err := s.runs.GetByID(ctx, id)
	if s.metrics != nil {
		s.metrics.RecordHistoryOp("get", err)
	}
	if err != nil {
		return nil, FromSolverError(err)
	}
	return run, nil
}

// ListRuns страница истории и общее число подходящих запусков
func (s *FlowService) ListRuns(ctx context.Context, opts *repository.ListOptions) ([]*repository.RunSummary, int64, error) {
	ctx, span := telemetry.StartSpan(ctx, "FlowService.ListRuns")
	defer span.End()

	if s.runs == nil {
		return nil, 0, errHistoryDisabled()
	}

	runs, total, err := s.runs.List(ctx, opts)
	if s.metrics != nil {
		s.metrics.RecordHistoryOp("list", err)
	}
	if err != nil {
		return nil, 0, FromSolverError(err)
	}
	return runs, total, nil
}

// DeleteRun удаляет запуск из истории
func (s *FlowService) DeleteRun(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "FlowService.DeleteRun",
		trace.WithAttributes(attribute.String(telemetry.AttrRunID, id)),
	)
	defer span.End()

	if s.runs == nil {
		return errHistoryDisabled()
	}

	err := s.runs.Delete(ctx, id)
	if s.metrics != nil {
		s.metrics.RecordHistoryOp("delete", err)
	}
	if err != nil {
		return FromSolverError(err)
	}
	return nil
}
