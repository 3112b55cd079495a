package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/masikip/notewallet/internal/platform/auth"
)

// AuthService verifies the operator's access passphrase
type AuthService interface {
	Login(passphrase string) error
}

// JWTService issues operator tokens
type JWTService interface {
	GenerateToken() (string, error)
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	authService AuthService
	jwtService  JWTService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService AuthService, jwtService JWTService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		jwtService:  jwtService,
	}
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Passphrase string `json:"passphrase"`
}

// AuthResponse represents the authentication response
type AuthResponse struct {
	Token string `json:"token"`
}

// Login handles operator login (POST /auth/login)
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.Passphrase == "" {
		respondError(w, "passphrase is required", http.StatusBadRequest)
		return
	}

	if err := h.authService.Login(req.Passphrase); err != nil {
		if errors.Is(err, auth.ErrInvalidPassphrase) {
			respondError(w, "invalid passphrase", http.StatusUnauthorized)
			return
		}
		respondError(w, "failed to login", http.StatusInternalServerError)
		return
	}

	token, err := h.jwtService.GenerateToken()
	if err != nil {
		respondError(w, "failed to generate token", http.StatusInternalServerError)
		return
	}

	respondJSON(w, AuthResponse{Token: token}, http.StatusOK)
}
