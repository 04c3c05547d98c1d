package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"

	"flowtrace/pkg/apperror"
	"flowtrace/pkg/logger"
)

// listRuns GET /api/v1/runs?limit=&offset=&name=&sort=
func (h *Handler) listRuns(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	q, err := parseListQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.validateStruct(&q, apperror.CodeInvalidPagination); err != nil {
		writeError(w, r, err)
		return
	}

	opts := q.toRepository()
	runs, total, err := h.svc.ListRuns(r.Context(), opts)
	if err != nil {
		writeError(w, r, err)
		return
	}

	limit := q.Limit
	if limit == 0 {
		limit = len(runs)
	}
	writeData(w, r, http.StatusOK, runListResponse{
		Runs:   runs,
		Total:  total,
		Limit:  limit,
		Offset: q.Offset,
	})
}

// getRun GET /api/v1/runs/:id
func (h *Handler) getRun(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	run, err := h.svc.GetRun(r.Context(), p.ByName("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, newRunDetailResponse(run))
}

// deleteRun DELETE /api/v1/runs/:id
func (h *Handler) deleteRun(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	if err := h.svc.DeleteRun(r.Context(), p.ByName("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// runReport GET /api/v1/runs/:id/report?format=
func (h *Handler) runReport(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = h.opts.DefaultReportFormat
	}

	rep, err := h.svc.RunReport(r.Context(), p.ByName("id"), format)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", rep.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", rep.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(rep.Content)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(rep.Content); err != nil {
		logger.WithContext(r.Context()).Error("failed to write report", "error", err)
	}
}

// listFormats GET /api/v1/formats
func (h *Handler) listFormats(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	writeData(w, r, http.StatusOK, h.svc.Formats())
}

func parseListQuery(r *http.Request) (listQuery, error) {
	qs := r.URL.Query()
	q := listQuery{
		Name: qs.Get("name"),
		Sort: qs.Get("sort"),
	}

	var err error
	if q.Limit, err = queryInt(qs.Get("limit"), "limit"); err != nil {
		return q, err
	}
	if q.Offset, err = queryInt(qs.Get("offset"), "offset"); err != nil {
		return q, err
	}
	return q, nil
}

func queryInt(raw, field string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperror.NewWithField(apperror.CodeInvalidPagination,
			fmt.Sprintf("%s must be an integer", field), field)
	}
	return v, nil
}
