package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wondertwin-ai/backoffice/internal/storage"
	"github.com/wondertwin-ai/backoffice/pkg/server"
)

// Upload handles POST /storage/upload.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	body, err := readObject(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var in storage.UploadInput
	if in.Name, err = requireString(body, "name"); err != nil {
		h.fail(w, r, err)
		return
	}
	if in.ContentType, err = optionalString(body, "contentType"); err != nil {
		h.fail(w, r, err)
		return
	}
	if in.Size, err = optionalSize(body, "size"); err != nil {
		h.fail(w, r, err)
		return
	}
	server.JSON(w, http.StatusCreated, h.f.Storage.Upload(in))
}

// ListFiles handles GET /storage.
func (h *Handler) ListFiles(w http.ResponseWriter, r *http.Request) {
	server.JSON(w, http.StatusOK, items(h.f.Storage.List()))
}

// GetFile handles GET /storage/{id}.
func (h *Handler) GetFile(w http.ResponseWriter, r *http.Request) {
	f, ok := h.f.Storage.Get(chi.URLParam(r, "id"))
	if !ok {
		notFound(w)
		return
	}
	server.JSON(w, http.StatusOK, f)
}

// RemoveFile handles DELETE /storage/{id}.
func (h *Handler) RemoveFile(w http.ResponseWriter, r *http.Request) {
	if !h.f.Storage.Remove(chi.URLParam(r, "id")) {
		notFound(w)
		return
	}
	server.JSON(w, http.StatusOK, removed())
}
