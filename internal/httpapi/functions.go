package httpapi

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/LVRodrigues/fpa-management/internal/domain/fpa"
	svcerrors "github.com/LVRodrigues/fpa-management/internal/errors"
	"github.com/LVRodrigues/fpa-management/internal/httputil"
)

func functionIDs(r *http.Request) (project, frontier, function uuid.UUID, err error) {
	if project, frontier, err = scopeIDs(r); err != nil {
		return
	}
	function, err = pathID(r, "function")
	return
}

func (h *Handler) listFunctions(w http.ResponseWriter, r *http.Request) {
	project, frontier, err := scopeIDs(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	query := pageQuery(r)
	if raw := r.URL.Query().Get("type"); raw != "" {
		kind, err := fpa.ParseFunctionType(raw)
		if err != nil {
			h.respondError(w, r, svcerrors.BadRequest("Unknown function type.", err).
				WithDetails("type", raw))
			return
		}
		query.Type = kind
	}

	_, tx, done, ok := h.begin(w, r)
	if !ok {
		return
	}
	defer done()

	page, err := h.store.ListFunctions(r.Context(), tx, project, frontier, query)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if !h.commit(w, r, tx) {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, page)
}

func (h *Handler) functionByID(w http.ResponseWriter, r *http.Request) {
	project, frontier, function, err := functionIDs(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	_, tx, done, ok := h.begin(w, r)
	if !ok {
		return
	}
	defer done()

	record, err := h.store.FunctionByID(r.Context(), tx, project, frontier, function)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if !h.commit(w, r, tx) {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fpa.Tagged(record))
}

func (h *Handler) createFunction(w http.ResponseWriter, r *http.Request) {
	project, frontier, err := scopeIDs(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var param fpa.FunctionParam
	if err := decodeJSON(r.Body, &param); err != nil {
		h.respondError(w, r, err)
		return
	}

	ident, tx, done, ok := h.begin(w, r)
	if !ok {
		return
	}
	defer done()

	record, err := h.store.CreateFunction(r.Context(), tx, ident, project, frontier, param)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if !h.commit(w, r, tx) {
		return
	}
	w.Header().Set("Location", h.location(
		"projects", project.String(),
		"frontiers", frontier.String(),
		"functions", record.FunctionID().String()))
	httputil.WriteJSON(w, http.StatusCreated, fpa.Tagged(record))
}

func (h *Handler) updateFunction(w http.ResponseWriter, r *http.Request) {
	project, frontier, function, err := functionIDs(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var param fpa.FunctionParam
	if err := decodeJSON(r.Body, &param); err != nil {
		h.respondError(w, r, err)
		return
	}

	_, tx, done, ok := h.begin(w, r)
	if !ok {
		return
	}
	defer done()

	record, err := h.store.UpdateFunction(r.Context(), tx, project, frontier, function, param)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if !h.commit(w, r, tx) {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fpa.Tagged(record))
}

func (h *Handler) removeFunction(w http.ResponseWriter, r *http.Request) {
	project, frontier, function, err := functionIDs(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	_, tx, done, ok := h.begin(w, r)
	if !ok {
		return
	}
	defer done()

	if err := h.store.RemoveFunction(r.Context(), tx, project, frontier, function); err != nil {
		h.respondError(w, r, err)
		return
	}
	if !h.commit(w, r, tx) {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
