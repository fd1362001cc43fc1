package httpapi

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/LVRodrigues/fpa-management/internal/domain/fpa"
	svcerrors "github.com/LVRodrigues/fpa-management/internal/errors"
	"github.com/LVRodrigues/fpa-management/internal/httputil"
)

// scopeIDs parses the project and frontier URL parameters.
func scopeIDs(r *http.Request) (project, frontier uuid.UUID, err error) {
	if project, err = pathID(r, "project"); err != nil {
		return
	}
	frontier, err = pathID(r, "frontier")
	return
}

func (h *Handler) listFrontiers(w http.ResponseWriter, r *http.Request) {
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

	page, err := h.store.ListFrontiers(r.Context(), tx, project, pageQuery(r))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if !h.commit(w, r, tx) {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, page)
}

func (h *Handler) frontierByID(w http.ResponseWriter, r *http.Request) {
	project, frontier, err := scopeIDs(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	_, tx, done, ok := h.begin(w, r)
	if !ok {
		return
	}
	defer done()

	record, err := h.store.FrontierByID(r.Context(), tx, project, frontier)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if !h.commit(w, r, tx) {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, record)
}

func (h *Handler) createFrontier(w http.ResponseWriter, r *http.Request) {
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

	ident, tx, done, ok := h.begin(w, r)
	if !ok {
		return
	}
	defer done()

	record, err := h.store.CreateFrontier(r.Context(), tx, ident, project, param.Name, param.Description)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if !h.commit(w, r, tx) {
		return
	}
	w.Header().Set("Location", h.location("projects", project.String(), "frontiers", record.ID.String()))
	httputil.WriteJSON(w, http.StatusCreated, record)
}

func (h *Handler) updateFrontier(w http.ResponseWriter, r *http.Request) {
	project, frontier, err := scopeIDs(r)
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

	record, err := h.store.UpdateFrontier(r.Context(), tx, project, frontier, param.Name, param.Description)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if !h.commit(w, r, tx) {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, record)
}

func (h *Handler) removeFrontier(w http.ResponseWriter, r *http.Request) {
	project, frontier, err := scopeIDs(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	_, tx, done, ok := h.begin(w, r)
	if !ok {
		return
	}
	defer done()

	if err := h.store.RemoveFrontier(r.Context(), tx, project, frontier); err != nil {
		h.respondError(w, r, err)
		return
	}
	if !h.commit(w, r, tx) {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// factorParam adjusts the influence of one factor.
type factorParam struct {
	Factor    fpa.FactorType    `json:"factor"`
	Influence fpa.InfluenceType `json:"influence"`
}

func (h *Handler) listFactors(w http.ResponseWriter, r *http.Request) {
	project, frontier, err := scopeIDs(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	_, tx, done, ok := h.begin(w, r)
	if !ok {
		return
	}
	defer done()

	page, err := h.store.ListFactors(r.Context(), tx, project, frontier)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if !h.commit(w, r, tx) {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, page)
}

func (h *Handler) updateFactor(w http.ResponseWriter, r *http.Request) {
	project, frontier, err := scopeIDs(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var param factorParam
	if err := decodeJSON(r.Body, &param); err != nil {
		h.respondError(w, r, err)
		return
	}
	if !param.Factor.Valid() {
		h.respondError(w, r, svcerrors.BadRequest("Unknown adjustment factor.", nil).
			WithDetails("factor", string(param.Factor)))
		return
	}
	if !param.Influence.Valid() {
		h.respondError(w, r, svcerrors.BadRequest("Unknown influence grade.", nil).
			WithDetails("influence", string(param.Influence)))
		return
	}

	_, tx, done, ok := h.begin(w, r)
	if !ok {
		return
	}
	defer done()

	record, err := h.store.UpdateFactor(r.Context(), tx, project, frontier, param.Factor, param.Influence)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if !h.commit(w, r, tx) {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, record)
}

// empiricalParam adjusts the percentage of one empirical factor.
type empiricalParam struct {
	Empirical fpa.EmpiricalType `json:"empirical"`
	Value     int               `json:"value"`
}

func (h *Handler) listEmpiricals(w http.ResponseWriter, r *http.Request) {
	project, frontier, err := scopeIDs(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	_, tx, done, ok := h.begin(w, r)
	if !ok {
		return
	}
	defer done()

	page, err := h.store.ListEmpiricals(r.Context(), tx, project, frontier)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if !h.commit(w, r, tx) {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, page)
}

func (h *Handler) updateEmpirical(w http.ResponseWriter, r *http.Request) {
	project, frontier, err := scopeIDs(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var param empiricalParam
	if err := decodeJSON(r.Body, &param); err != nil {
		h.respondError(w, r, err)
		return
	}
	if !param.Empirical.Valid() {
		h.respondError(w, r, svcerrors.BadRequest("Unknown empirical factor.", nil).
			WithDetails("empirical", string(param.Empirical)))
		return
	}

	_, tx, done, ok := h.begin(w, r)
	if !ok {
		return
	}
	defer done()

	record, err := h.store.UpdateEmpirical(r.Context(), tx, project, frontier, param.Empirical, param.Value)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if !h.commit(w, r, tx) {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, record)
}
