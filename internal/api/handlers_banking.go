package api

import (
	"net/http"

	"github.com/wondertwin-ai/backoffice/pkg/server"
)

// ListAccounts handles GET /banking/accounts.
func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	server.JSON(w, http.StatusOK, items(h.f.Banking.ListAccounts()))
}

// SyncTransactions handles POST /banking/sync.
func (h *Handler) SyncTransactions(w http.ResponseWriter, r *http.Request) {
	body, err := readObject(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	accountID, err := requireString(body, "accountId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	server.JSON(w, http.StatusOK, items(h.f.Banking.SyncTransactions(accountID)))
}

// ListTransactions handles GET /banking/transactions?accountId=.
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	server.JSON(w, http.StatusOK, items(h.f.Banking.ListTransactions(r.URL.Query().Get("accountId"))))
}
