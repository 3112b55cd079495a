package handler

import (
	"encoding/json"
	"net/http"

	"github.com/masikip/notewallet/internal/platform/history"
	"github.com/masikip/notewallet/internal/platform/payment"
	"github.com/masikip/notewallet/internal/platform/session"
)

// PaymentHandler executes note-operation payments over HTTP
type PaymentHandler struct {
	controller *session.Controller
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(controller *session.Controller) *PaymentHandler {
	return &PaymentHandler{controller: controller}
}

// CreatePaymentRequest represents the payment request body
type CreatePaymentRequest struct {
	Operation string   `json:"operation"`
	Recipient string   `json:"recipient,omitempty"`
	Memo      []string `json:"memo,omitempty"`
}

// Create handles POST /payments
func (h *PaymentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.Operation == "" {
		respondError(w, "operation is required", http.StatusBadRequest)
		return
	}

	tx, err := h.controller.Pay(r.Context(), payment.Request{
		Operation: history.ActionKind(req.Operation),
		Recipient: req.Recipient,
		Memo:      req.Memo,
	})
	if err != nil {
		respondAppError(w, err)
		return
	}

	respondJSON(w, tx, http.StatusCreated)
}
