package api

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/wondertwin-ai/backoffice/internal/webhooks"
	"github.com/wondertwin-ai/backoffice/pkg/server"
	"github.com/wondertwin-ai/backoffice/pkg/webhook"
)

// IngestWebhook handles POST /webhooks/ingest. When a webhook secret is
// configured the body must carry a valid signature.
func (h *Handler) IngestWebhook(w http.ResponseWriter, r *http.Request) {
	data, err := readBody(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	verified := false
	if h.opts.WebhookSecret != "" {
		err := webhook.Verify(r.Header.Get(webhook.Header), data, h.opts.WebhookSecret, time.Now(), webhook.DefaultTolerance)
		if err != nil {
			h.logger.Warn("rejected webhook", zap.Error(err))
			server.Error(w, http.StatusUnauthorized, "Invalid signature")
			return
		}
		verified = true
	}

	body, err := parseObject(data)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	in := webhooks.IngestInput{Verified: verified, Payload: objectOrWrap(body["payload"])}
	if in.Provider, err = requireString(body, "provider"); err != nil {
		h.fail(w, r, err)
		return
	}
	if in.Type, err = requireString(body, "type"); err != nil {
		h.fail(w, r, err)
		return
	}
	server.JSON(w, http.StatusOK, h.f.Webhooks.Ingest(in))
}

// ListWebhooks handles GET /webhooks?provider=.
func (h *Handler) ListWebhooks(w http.ResponseWriter, r *http.Request) {
	server.JSON(w, http.StatusOK, items(h.f.Webhooks.List(r.URL.Query().Get("provider"))))
}
