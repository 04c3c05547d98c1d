// Package handlers реализует HTTP/JSON API сервиса поверх httprouter.
// Ответы оборачиваются в {"data": ...}, ошибки - в {"error": ..., "request_id": ...}.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/julienschmidt/httprouter"

	"flowtrace/pkg/apperror"
	"flowtrace/pkg/logger"
	"flowtrace/services/flow-svc/internal/examples"
	"flowtrace/services/flow-svc/internal/report"
	"flowtrace/services/flow-svc/internal/repository"
	"flowtrace/services/flow-svc/internal/service"
)

// FlowService операции сервиса, нужные API
type FlowService interface {
	Solve(ctx context.Context, req *service.SolveRequest) (*service.RunResult, error)
	SolveBatch(ctx context.Context, reqs []*service.SolveRequest) ([]service.BatchItem, error)
	Examples() []examples.Example
	RunExample(ctx context.Context, name string, opts service.RunOptions) (*service.RunResult, error)
	GetRun(ctx context.Context, id string) (*repository.Run, error)
	ListRuns(ctx context.Context, opts *repository.ListOptions) ([]*repository.RunSummary, int64, error)
	DeleteRun(ctx context.Context, id string) error
	RunReport(ctx context.Context, id, format string) (*service.Report, error)
	Formats() []report.Format
	Ready(ctx context.Context) (map[string]string, error)
	Version() string
}

// APIPrefix префикс версионированных маршрутов
const APIPrefix = "/api/v1"

type envelope map[string]any

// Options настройки обработчиков
type Options struct {
	DefaultReportFormat string
	IncludeStatistics   bool // flow_statistics в ответе на запуск
	MaxVertices         int  // лимит vertices для сетей из списка рёбер
}

// Handler HTTP обработчики API
type Handler struct {
	svc       FlowService
	opts      Options
	validate  *validator.Validate
	trans     ut.Translator
	startedAt time.Time
}

// New создаёт обработчики
func New(svc FlowService, opts Options) *Handler {
	if opts.DefaultReportFormat == "" {
		opts.DefaultReportFormat = string(report.FormatJSON)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	// В сообщениях используются имена полей из json тегов
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")
	_ = enTranslations.RegisterDefaultTranslations(validate, trans)

	return &Handler{
		svc:       svc,
		opts:      opts,
		validate:  validate,
		trans:     trans,
		startedAt: time.Now(),
	}
}

// Routes регистрирует маршруты API на router
func (h *Handler) Routes(router *httprouter.Router) {
	router.GET("/health", h.health)
	router.GET("/ready", h.ready)

	router.POST(APIPrefix+"/maxflow", h.solve)
	router.POST(APIPrefix+"/maxflow/batch", h.solveBatch)

	router.GET(APIPrefix+"/runs", h.listRuns)
	router.GET(APIPrefix+"/runs/:id", h.getRun)
	router.DELETE(APIPrefix+"/runs/:id", h.deleteRun)
	router.GET(APIPrefix+"/runs/:id/report", h.runReport)

	router.GET(APIPrefix+"/examples", h.listExamples)
	router.POST(APIPrefix+"/examples/:name/run", h.runExample)

	router.GET(APIPrefix+"/formats", h.listFormats)
}

// NewRouter router с маршрутами API и JSON ответами 404/405
func NewRouter(h *Handler) *httprouter.Router {
	router := httprouter.New()
	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, apperror.Newf(apperror.CodeNotFound, "route %s not found", r.URL.Path))
	})
	router.MethodNotAllowed = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		e := apperror.Newf(apperror.CodeInvalidArgument, "method %s not allowed", r.Method)
		writeErrorStatus(w, r, http.StatusMethodNotAllowed, e)
	})
	h.Routes(router)
	return router
}

// writeJSON пишет тело с заданным статусом
func writeJSON(w http.ResponseWriter, status int, data any, headers http.Header) error {
	js, err := json.Marshal(data)
	if err != nil {
		return err
	}
	for key, value := range headers {
		w.Header()[key] = value
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(append(js, '\n'))
	return err
}

func writeData(w http.ResponseWriter, r *http.Request, status int, data any) {
	if err := writeJSON(w, status, envelope{"data": data}, nil); err != nil {
		logger.WithContext(r.Context()).Error("failed to write response", "error", err)
	}
}

// writeError переводит ошибку в apperror и её HTTP статус
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := service.FromSolverError(err)
	writeErrorStatus(w, r, appErr.HTTPStatus(), appErr)
}

func writeErrorStatus(w http.ResponseWriter, r *http.Request, status int, appErr *apperror.Error) {
	log := logger.WithContext(r.Context())
	if status >= http.StatusInternalServerError {
		log.Error("request failed", "code", appErr.Code, "error", appErr)
	}

	body := envelope{
		"error":      appErr.ToBody(),
		"request_id": logger.RequestIDFromContext(r.Context()),
	}
	if err := writeJSON(w, status, body, nil); err != nil {
		log.Error("failed to write error response", "error", err)
	}
}

// decodeJSON читает тело в dst; allowEmpty - пустое тело не ошибка
func decodeJSON(r *http.Request, dst any, allowEmpty bool) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err == nil {
		if dec.More() {
			return apperror.New(apperror.CodeInvalidArgument, "body must contain a single JSON value")
		}
		return nil
	}

	var (
		syntaxErr   *json.SyntaxError
		typeErr     *json.UnmarshalTypeError
		maxBytesErr *http.MaxBytesError
	)
	switch {
	case errors.Is(err, io.EOF):
		if allowEmpty {
			return nil
		}
		return apperror.New(apperror.CodeInvalidArgument, "request body is empty")
	case errors.As(err, &syntaxErr):
		return apperror.Newf(apperror.CodeInvalidArgument, "malformed JSON at offset %d", syntaxErr.Offset)
	case errors.Is(err, io.ErrUnexpectedEOF):
		return apperror.New(apperror.CodeInvalidArgument, "malformed JSON")
	case errors.As(err, &typeErr):
		return apperror.NewWithField(apperror.CodeInvalidArgument,
			fmt.Sprintf("field has wrong type, expected %s", typeErr.Type), typeErr.Field)
	case errors.As(err, &maxBytesErr):
		return apperror.Newf(apperror.CodeInvalidArgument, "request body exceeds %d bytes", maxBytesErr.Limit)
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		field := strings.Trim(strings.TrimPrefix(err.Error(), "json: unknown field "), `"`)
		return apperror.NewWithField(apperror.CodeInvalidArgument, "unknown field", field)
	default:
		return apperror.Wrap(err, apperror.CodeInvalidArgument, "invalid request body")
	}
}

// validateStruct проверяет теги validate и собирает все нарушения под кодом code
func (h *Handler) validateStruct(v any, code apperror.ErrorCode) error {
	err := h.validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperror.Wrap(err, code, err.Error())
	}

	collected := apperror.NewValidationErrors()
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), rootNamespace(fe))
		collected.AddErrorWithField(code, fe.Translate(h.trans), field)
	}
	return collected.AsError()
}

// rootNamespace префикс "dtoName." в Namespace ошибки
func rootNamespace(fe validator.FieldError) string {
	root, _, found := strings.Cut(fe.Namespace(), ".")
	if !found {
		return ""
	}
	return root + "."
}
