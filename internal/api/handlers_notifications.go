package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wondertwin-ai/backoffice/internal/notifications"
	"github.com/wondertwin-ai/backoffice/pkg/server"
)

func parseSendNotification(body map[string]any) (notifications.SendInput, error) {
	var (
		in  notifications.SendInput
		err error
	)
	if in.Title, err = requireString(body, "title"); err != nil {
		return in, err
	}
	if in.UserID, err = optionalString(body, "userId"); err != nil {
		return in, err
	}
	if in.Body, err = optionalString(body, "body"); err != nil {
		return in, err
	}
	if in.Type, err = optionalString(body, "type"); err != nil {
		return in, err
	}
	if in.Read, err = optionalBool(body, "read"); err != nil {
		return in, err
	}
	return in, nil
}

// SendNotification handles POST /notifications/send.
func (h *Handler) SendNotification(w http.ResponseWriter, r *http.Request) {
	body, err := readObject(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	in, err := parseSendNotification(body)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	server.JSON(w, http.StatusOK, h.f.Notifications.Send(in))
}

// ListNotifications handles GET /notifications?userId=.
func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	server.JSON(w, http.StatusOK, items(h.f.Notifications.List(r.URL.Query().Get("userId"))))
}

// MarkRead handles POST /notifications/{id}/read.
func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	n, ok := h.f.Notifications.MarkRead(chi.URLParam(r, "id"))
	if !ok {
		notFound(w)
		return
	}
	server.JSON(w, http.StatusOK, n)
}
