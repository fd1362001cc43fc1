// Package httpapi exposes the REST API over the tenant-scoped stores.
package httpapi

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/LVRodrigues/fpa-management/internal/auth"
	svcerrors "github.com/LVRodrigues/fpa-management/internal/errors"
	"github.com/LVRodrigues/fpa-management/internal/httputil"
	"github.com/LVRodrigues/fpa-management/internal/logging"
	"github.com/LVRodrigues/fpa-management/internal/storage"
)

// Handler bundles the REST endpoints over the store layer.
type Handler struct {
	sessions *storage.Sessions
	store    storage.Store
	logger   *logging.Logger
	baseURL  string
}

// New builds the API router. Every route runs behind the authentication gate.
func New(sessions *storage.Sessions, store storage.Store, gate *auth.Gate, logger *logging.Logger, baseURL string) http.Handler {
	h := &Handler{sessions: sessions, store: store, logger: logger, baseURL: baseURL}

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Use(gate.Require)
		r.Get("/health", h.health)

		r.Route("/projects", func(r chi.Router) {
			r.Get("/", h.listProjects)
			r.Post("/", h.createProject)
			r.Route("/{project}", func(r chi.Router) {
				r.Get("/", h.projectByID)
				r.Put("/", h.updateProject)
				r.Delete("/", h.removeProject)

				r.Route("/frontiers", func(r chi.Router) {
					r.Get("/", h.listFrontiers)
					r.Post("/", h.createFrontier)
					r.Route("/{frontier}", func(r chi.Router) {
						r.Get("/", h.frontierByID)
						r.Put("/", h.updateFrontier)
						r.Delete("/", h.removeFrontier)

						r.Get("/factors", h.listFactors)
						r.Put("/factors", h.updateFactor)
						r.Get("/empiricals", h.listEmpiricals)
						r.Put("/empiricals", h.updateEmpirical)

						r.Route("/functions", func(r chi.Router) {
							r.Get("/", h.listFunctions)
							r.Post("/", h.createFunction)
							r.Get("/{function}", h.functionByID)
							r.Put("/{function}", h.updateFunction)
							r.Delete("/{function}", h.removeFunction)
						})
					})
				})
			})
		})
	})
	return r
}

// begin extracts the identity, opens the tenant-bound transaction and
// registers the user. The returned cleanup rolls the transaction back unless
// it was committed.
func (h *Handler) begin(w http.ResponseWriter, r *http.Request) (auth.Context, *sql.Tx, func(), bool) {
	ident, err := auth.FromContext(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return auth.Context{}, nil, nil, false
	}

	tx, err := h.sessions.Open(r.Context(), ident.Tenant)
	if err != nil {
		h.respondError(w, r, err)
		return auth.Context{}, nil, nil, false
	}

	if err := h.store.RegisterUser(r.Context(), tx, ident); err != nil {
		_ = tx.Rollback()
		h.respondError(w, r, err)
		return auth.Context{}, nil, nil, false
	}

	return ident, tx, func() { _ = tx.Rollback() }, true
}

// commit finishes the unit of work. A commit failure is a transient service
// condition, never a partial write.
func (h *Handler) commit(w http.ResponseWriter, r *http.Request, tx *sql.Tx) bool {
	if err := tx.Commit(); err != nil {
		h.respondError(w, r, svcerrors.ServiceUnavailable("", err))
		return false
	}
	return true
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	svcErr := svcerrors.GetServiceError(err)
	if svcErr == nil {
		svcErr = svcerrors.Internal("", err)
	}
	if svcErr.HTTPStatus >= http.StatusInternalServerError {
		h.logger.WithContext(r.Context()).WithError(err).Error("Request failed")
	} else {
		h.logger.WithContext(r.Context()).WithError(err).Warn("Request rejected")
	}
	httputil.WriteErrorResponse(w, r, svcErr.HTTPStatus, string(svcErr.Code), svcErr.Message, svcErr.Details)
}

// health opens and discards a tenant session to verify the database path.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	ident, err := auth.FromContext(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	tx, err := h.sessions.Open(r.Context(), ident.Tenant)
	if err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	_ = tx.Rollback()
	w.WriteHeader(http.StatusNoContent)
}

// pathID parses the named URL parameter as a UUID.
func pathID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, svcerrors.NotFound(name)
	}
	return id, nil
}

// pageQuery parses pagination parameters: page (default 1), size (default 10,
// max 50), name filter and optional function type.
func pageQuery(r *http.Request) storage.PageQuery {
	q := storage.PageQuery{Name: r.URL.Query().Get("name")}
	fmt.Sscan(r.URL.Query().Get("page"), &q.Index)
	fmt.Sscan(r.URL.Query().Get("size"), &q.Size)
	return q.Normalize()
}

func decodeJSON(body io.Reader, v any) error {
	decoder := json.NewDecoder(body)
	if err := decoder.Decode(v); err != nil {
		return svcerrors.BadRequest("", err)
	}
	return nil
}

// location builds the Location header value of a created resource.
func (h *Handler) location(parts ...string) string {
	url := h.baseURL + "/api"
	for _, part := range parts {
		url += "/" + part
	}
	return url
}
