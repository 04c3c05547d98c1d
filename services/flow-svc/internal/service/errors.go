package service

import (
	"context"
	"errors"

	"flowtrace/pkg/apperror"
	"flowtrace/pkg/domain"
	"flowtrace/services/flow-svc/internal/algorithms"
	"flowtrace/services/flow-svc/internal/input"
	"flowtrace/services/flow-svc/internal/report"
	"flowtrace/services/flow-svc/internal/repository"
)

// FromSolverError переводит ошибки движка, хранилища и экспорта в apperror.
// Уже преобразованные ошибки возвращаются как есть.
func FromSolverError(err error) *apperror.Error {
	if err == nil {
		return nil
	}

	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, algorithms.ErrInvalidIndex), errors.Is(err, domain.ErrInvalidEndpoint):
		return apperror.Wrap(err, apperror.CodeInvalidIndex, err.Error())
	case errors.Is(err, algorithms.ErrMalformedMatrix):
		return apperror.Wrap(err, apperror.CodeMalformedMatrix, err.Error()).WithField("matrix")
	case errors.Is(err, algorithms.ErrNegativeCapacity):
		return apperror.Wrap(err, apperror.CodeNegativeCapacity, err.Error()).WithField("matrix")
	case errors.Is(err, algorithms.ErrCapacityOverflow):
		return apperror.Wrap(err, apperror.CodeCapacityOverflow, err.Error()).WithField("matrix")
	case errors.Is(err, algorithms.ErrSourceEqualsSink):
		return apperror.Wrap(err, apperror.CodeSourceEqualsSink, err.Error()).WithField("sink")
	case errors.Is(err, algorithms.ErrTooManyVertices):
		return apperror.Wrap(err, apperror.CodeTooManyVertices, err.Error()).WithField("matrix")
	case errors.Is(err, algorithms.ErrNilGraph):
		return apperror.Wrap(err, apperror.CodeNilInput, err.Error())
	case errors.Is(err, algorithms.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return apperror.Wrap(err, apperror.CodeTimeout, "max flow computation timed out")
	case errors.Is(err, algorithms.ErrContextCanceled), errors.Is(err, context.Canceled):
		return apperror.Wrap(err, apperror.CodeCanceled, "max flow computation canceled")
	case errors.Is(err, algorithms.ErrIterationLimit):
		return apperror.Wrap(err, apperror.CodeIterationLimit, err.Error())
	case errors.Is(err, repository.ErrRunNotFound):
		return apperror.Wrap(err, apperror.CodeNotFound, "run not found")
	case errors.Is(err, report.ErrUnsupportedFormat), errors.Is(err, input.ErrUnsupportedFormat):
		return apperror.Wrap(err, apperror.CodeUnsupportedFormat, err.Error()).WithField("format")
	case errors.Is(err, input.ErrAmbiguousNetwork):
		return apperror.Wrap(err, apperror.CodeInvalidArgument, err.Error())
	default:
		return apperror.Wrap(err, apperror.CodeInternal, err.Error())
	}
}
