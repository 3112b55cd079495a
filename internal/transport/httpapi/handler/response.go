package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	apperrors "github.com/masikip/notewallet/internal/shared/errors"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	respondJSON(w, ErrorResponse{Error: message}, statusCode)
}

// respondAppError maps an application error onto an HTTP status. Unknown
// errors become an opaque 500; AppError messages are written for users and
// safe to return verbatim.
func respondAppError(w http.ResponseWriter, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		respondError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	status := http.StatusInternalServerError
	switch appErr.Code {
	case apperrors.ErrCodeValidation, apperrors.ErrCodeBadRequest:
		status = http.StatusBadRequest
	case apperrors.ErrCodeUnauthorized:
		status = http.StatusUnauthorized
	case apperrors.ErrCodeNotFound:
		status = http.StatusNotFound
	case apperrors.ErrCodeConflict:
		status = http.StatusConflict
	case apperrors.ErrCodeInsufficientBalance, apperrors.ErrCodeWalletRejected:
		status = http.StatusUnprocessableEntity
	case apperrors.ErrCodeNoWalletProvider, apperrors.ErrCodeNotConnected:
		status = http.StatusFailedDependency
	}

	respondJSON(w, ErrorResponse{Error: appErr.Message, Code: appErr.Code}, status)
}
