package api

import (
	"net/http"

	"github.com/wondertwin-ai/backoffice/internal/email"
	"github.com/wondertwin-ai/backoffice/pkg/server"
)

func parseSendEmail(body map[string]any) (email.SendInput, error) {
	var (
		in  email.SendInput
		err error
	)
	if in.To, err = stringList(body, "to"); err != nil {
		return in, err
	}
	if len(in.To) == 0 {
		return in, badRequestf("to is required")
	}
	if in.Subject, err = requireString(body, "subject"); err != nil {
		return in, err
	}
	if in.Text, err = optionalString(body, "text"); err != nil {
		return in, err
	}
	if in.HTML, err = optionalString(body, "html"); err != nil {
		return in, err
	}
	if in.From, err = optionalString(body, "from"); err != nil {
		return in, err
	}
	if in.CC, err = stringList(body, "cc"); err != nil {
		return in, err
	}
	if in.BCC, err = stringList(body, "bcc"); err != nil {
		return in, err
	}
	return in, nil
}

// SendEmail handles POST /email/send.
func (h *Handler) SendEmail(w http.ResponseWriter, r *http.Request) {
	body, err := readObject(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	in, err := parseSendEmail(body)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	server.JSON(w, http.StatusOK, h.f.Email.Send(in))
}

// Outbox handles GET /email/outbox.
func (h *Handler) Outbox(w http.ResponseWriter, r *http.Request) {
	server.JSON(w, http.StatusOK, items(h.f.Email.Outbox()))
}
