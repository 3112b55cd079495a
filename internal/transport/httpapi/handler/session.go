package handler

import (
	"net/http"

	"github.com/masikip/notewallet/internal/platform/history"
	"github.com/masikip/notewallet/internal/platform/session"
)

// SessionHandler exposes the wallet session over HTTP
type SessionHandler struct {
	controller *session.Controller
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(controller *session.Controller) *SessionHandler {
	return &SessionHandler{controller: controller}
}

// Connect handles POST /session/connect
func (h *SessionHandler) Connect(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.controller.Connect(r.Context())
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, snapshot, http.StatusOK)
}

// Disconnect handles DELETE /session
func (h *SessionHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	h.controller.Disconnect(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// Get handles GET /session
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, h.controller.Status(), http.StatusOK)
}

// TransactionsResponse wraps the reconciled transaction list
type TransactionsResponse struct {
	Transactions []history.Transaction `json:"transactions"`
	Count        int                   `json:"count"`
}

// GetTransactions handles GET /transactions
func (h *SessionHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	snapshot := h.controller.Status()
	txs := snapshot.Transactions
	if txs == nil {
		txs = []history.Transaction{}
	}
	respondJSON(w, TransactionsResponse{Transactions: txs, Count: len(txs)}, http.StatusOK)
}

// GetBalance handles GET /balance
func (h *SessionHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, h.controller.Status().Balance, http.StatusOK)
}
