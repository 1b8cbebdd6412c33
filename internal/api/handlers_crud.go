package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/wondertwin-ai/backoffice/internal/crud"
	"github.com/wondertwin-ai/backoffice/pkg/server"
)

// resource resolves the registry service named in the URL. It writes the
// error response itself and returns nil on failure.
func (h *Handler) resource(w http.ResponseWriter, r *http.Request) *crud.Service {
	svc, err := h.f.CRUD.Resource(chi.URLParam(r, "resource"))
	if err != nil {
		h.fail(w, r, err)
		return nil
	}
	return svc
}

// ListEntities handles GET /crud/{resource}. With ?limit= the response is a
// page; ?cursor= continues after the given id.
func (h *Handler) ListEntities(w http.ResponseWriter, r *http.Request) {
	svc := h.resource(w, r)
	if svc == nil {
		return
	}

	q := r.URL.Query()
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			server.Error(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		server.JSON(w, http.StatusOK, svc.Paginate(q.Get("cursor"), limit))
		return
	}
	server.JSON(w, http.StatusOK, items(svc.List()))
}

// CreateEntity handles POST /crud/{resource}.
func (h *Handler) CreateEntity(w http.ResponseWriter, r *http.Request) {
	svc := h.resource(w, r)
	if svc == nil {
		return
	}
	body, err := readObject(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	server.JSON(w, http.StatusCreated, svc.Create(body))
}

// GetEntity handles GET /crud/{resource}/{id}.
func (h *Handler) GetEntity(w http.ResponseWriter, r *http.Request) {
	svc := h.resource(w, r)
	if svc == nil {
		return
	}
	e, ok := svc.Get(chi.URLParam(r, "id"))
	if !ok {
		notFound(w)
		return
	}
	server.JSON(w, http.StatusOK, e)
}

// UpdateEntity handles PATCH /crud/{resource}/{id}.
func (h *Handler) UpdateEntity(w http.ResponseWriter, r *http.Request) {
	svc := h.resource(w, r)
	if svc == nil {
		return
	}
	body, err := readObject(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	e, ok := svc.Update(chi.URLParam(r, "id"), body)
	if !ok {
		notFound(w)
		return
	}
	server.JSON(w, http.StatusOK, e)
}

// RemoveEntity handles DELETE /crud/{resource}/{id}.
func (h *Handler) RemoveEntity(w http.ResponseWriter, r *http.Request) {
	svc := h.resource(w, r)
	if svc == nil {
		return
	}
	if !svc.Remove(chi.URLParam(r, "id")) {
		notFound(w)
		return
	}
	server.JSON(w, http.StatusOK, removed())
}
