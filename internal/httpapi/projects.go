package httpapi

import (
	"net/http"

	"github.com/LVRodrigues/fpa-management/internal/httputil"
)

// namedParam is the request body for creating or renaming projects and
// frontiers.
type namedParam struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

func (h *Handler) listProjects(w http.ResponseWriter, r *http.Request) {
	_, tx, done, ok := h.begin(w, r)
	if !ok {
		return
	}
	defer done()

	page, err := h.store.ListProjects(r.Context(), tx, pageQuery(r))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if !h.commit(w, r, tx) {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, page)
}

func (h *Handler) projectByID(w http.ResponseWriter, r *http.Request) {
	project, err := pathID(r, "project")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	_, tx, done, ok := h.begin(w, r)
	if !ok {
		return
	}
	defer done()

	record, err := h.store.ProjectByID(r.Context(), tx, project)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if !h.commit(w, r, tx) {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, record)
}

func (h *Handler) createProject(w http.ResponseWriter, r *http.Request) {
	var param namedParam
	if err := decodeJSON(r.Body, &param); err != nil {
		h.respondError(w, r, err)
		return
	}

	ident, tx, done, ok := h.begin(w, r)
	if !ok {
		return
	}
	defer done()

	record, err := h.store.CreateProject(r.Context(), tx, ident, param.Name, param.Description)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if !h.commit(w, r, tx) {
		return
	}
	w.Header().Set("Location", h.location("projects", record.ID.String()))
	httputil.WriteJSON(w, http.StatusCreated, record)
}

func (h *Handler) updateProject(w http.ResponseWriter, r *http.Request) {
	project, err := pathID(r, "project")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var param namedParam
	if err := decodeJSON(r.Body, &param); err != nil {
		h.respondError(w, r, err)
		return
	}

	_, tx, done, ok := h.begin(w, r)
	if !ok {
		return
	}
	defer done()

	record, err := h.store.UpdateProject(r.Context(), tx, project, param.Name, param.Description)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if !h.commit(w, r, tx) {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, record)
}

func (h *Handler) removeProject(w http.ResponseWriter, r *http.Request) {
	project, err := pathID(r, "project")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	_, tx, done, ok := h.begin(w, r)
	if !ok {
		return
	}
	defer done()

	if err := h.store.RemoveProject(r.Context(), tx, project); err != nil {
		h.respondError(w, r, err)
		return
	}
	if !h.commit(w, r, tx) {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
