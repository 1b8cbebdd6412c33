package api

import (
	"net/http"

	"github.com/wondertwin-ai/backoffice/internal/audit"
	"github.com/wondertwin-ai/backoffice/pkg/server"
)

func parseAuditLog(body map[string]any) (audit.LogInput, error) {
	var (
		in  audit.LogInput
		err error
	)
	if in.Action, err = requireString(body, "action"); err != nil {
		return in, err
	}
	if in.ActorID, err = optionalString(body, "actorId"); err != nil {
		return in, err
	}
	if in.Entity, err = optionalString(body, "entity"); err != nil {
		return in, err
	}
	if in.EntityID, err = optionalString(body, "entityId"); err != nil {
		return in, err
	}
	in.Metadata = objectOrWrap(body["metadata"])
	return in, nil
}

// LogAudit handles POST /audit/log. Without an explicit actorId the actor is
// taken from the bearer token subject.
func (h *Handler) LogAudit(w http.ResponseWriter, r *http.Request) {
	body, err := readObject(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	in, err := parseAuditLog(body)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if in.ActorID == "" {
		in.ActorID = bearerSubject(r)
	}
	server.JSON(w, http.StatusOK, h.f.Audit.Log(in))
}

// ListAudit handles GET /audit?action=&actorId=.
func (h *Handler) ListAudit(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	server.JSON(w, http.StatusOK, items(h.f.Audit.List(audit.Filter{
		Action:  q.Get("action"),
		ActorID: q.Get("actorId"),
	})))
}
