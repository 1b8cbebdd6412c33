package api

import (
	"bytes"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/wondertwin-ai/backoffice/internal/audit"
	"github.com/wondertwin-ai/backoffice/pkg/server"
)

// ReportError handles POST /errors: client-side error reports are recorded
// in the audit trail under audit.ActionClientError. Any body is accepted;
// bodies that are not JSON objects are wrapped as {"value": ...}.
func (h *Handler) ReportError(w http.ResponseWriter, r *http.Request) {
	key := clientKey(r)
	if !h.limiter.allow(key) {
		h.f.Metrics.RecordErrorReport("rate_limited")
		h.logger.Warn("error report rate limited", zap.String("client", key))
		server.Error(w, http.StatusTooManyRequests, "Too many error reports")
		return
	}

	data, err := readBody(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.f.Audit.Log(audit.LogInput{
		Action:   audit.ActionClientError,
		ActorID:  bearerSubject(r),
		Metadata: reportMetadata(data),
	})
	h.f.Metrics.RecordErrorReport("accepted")
	server.JSON(w, http.StatusAccepted, map[string]bool{"ok": true})
}

func reportMetadata(data []byte) map[string]any {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return map[string]any{"value": string(trimmed)}
	}
	return objectOrWrap(v)
}
