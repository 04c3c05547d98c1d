package handlers

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"flowtrace/pkg/apperror"
	"flowtrace/pkg/logger"
	"flowtrace/services/flow-svc/internal/service"
)

// solve POST /api/v1/maxflow
func (h *Handler) solve(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req solveRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.validateStruct(&req, apperror.CodeInvalidArgument); err != nil {
		writeError(w, r, err)
		return
	}

	sreq, err := req.toService(h.opts.MaxVertices)
	if err != nil {
		writeError(w, r, err)
		return
	}

	res, err := h.svc.Solve(r.Context(), sreq)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, r, http.StatusOK, newRunResponse(res, h.opts.IncludeStatistics))
}

// solveBatch POST /api/v1/maxflow/batch.
// Ошибка отдельной задачи не прерывает пакет и возвращается в её элементе.
func (h *Handler) solveBatch(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req batchRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.validateStruct(&req, apperror.CodeInvalidArgument); err != nil {
		writeError(w, r, err)
		return
	}

	resp := batchResponse{Results: make([]batchItemResponse, len(req.Tasks))}
	sreqs := make([]*service.SolveRequest, len(req.Tasks))
	for i, task := range req.Tasks {
		sreq, err := task.toService(h.opts.MaxVertices)
		if err != nil {
			body := service.FromSolverError(err).ToBody()
			resp.Results[i] = batchItemResponse{Index: i, Error: &body}
			continue
		}
		sreqs[i] = sreq
	}

	items, err := h.svc.SolveBatch(r.Context(), sreqs)
	if err != nil {
		writeError(w, r, err)
		return
	}

	for _, item := range items {
		// Ошибка разбора рёбер уже записана, сервису ушёл nil
		if resp.Results[item.Index].Error != nil {
			continue
		}
		if item.Err != nil {
			body := item.Err.ToBody()
			resp.Results[item.Index] = batchItemResponse{Index: item.Index, Error: &body}
			continue
		}
		resp.Results[item.Index] = batchItemResponse{
			Index: item.Index,
			Data:  newRunResponse(item.Result, h.opts.IncludeStatistics),
		}
	}

	for _, res := range resp.Results {
		if res.Error != nil {
			resp.Failed++
		} else {
			resp.Succeeded++
		}
	}

	logger.WithContext(r.Context()).Debug("batch handled",
		"tasks", len(req.Tasks),
		"succeeded", resp.Succeeded,
		"failed", resp.Failed,
	)

	writeData(w, r, http.StatusOK, resp)
}

// listExamples GET /api/v1/examples
func (h *Handler) listExamples(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	all := h.svc.Examples()
	out := make([]exampleResponse, len(all))
	for i, ex := range all {
		out[i] = newExampleResponse(ex)
	}
	writeData(w, r, http.StatusOK, out)
}

// runExample POST /api/v1/examples/:name/run, тело с options необязательно
func (h *Handler) runExample(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var req exampleRunRequest
	if err := decodeJSON(r, &req, true); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.validateStruct(&req, apperror.CodeInvalidArgument); err != nil {
		writeError(w, r, err)
		return
	}

	res, err := h.svc.RunExample(r.Context(), p.ByName("name"), req.Options.toService())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, r, http.StatusOK, newRunResponse(res, h.opts.IncludeStatistics))
}
