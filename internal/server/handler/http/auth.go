// Package http provides HTTP handlers for signup, login, email
// verification and profile management.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/deutschio/server/internal/models"
	"github.com/deutschio/server/internal/repository"
	"github.com/deutschio/server/internal/service"
)

// AuthService defines the interface for authentication operations
// required by the HTTP handlers.
type AuthService interface {
	// Register creates a new user from the given credentials.
	Register(ctx context.Context, email, password string) (*models.User, error)
	// Login checks credentials and issues a bearer token.
	Login(ctx context.Context, email, password string) (string, error)
	// VerifyEmail consumes a single-use verification token.
	VerifyEmail(ctx context.Context, verificationToken string) error
}

// AuthHandler handles HTTP requests for signup, login and verification.
type AuthHandler struct {
	// AuthService performs the underlying authentication operations.
	AuthService AuthService
}

// credentialsRequest represents the JSON payload for signup and login.
type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// writeMessage writes a JSON {"message": ...} body with the given status.
func writeMessage(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": msg})
}

// writeJSON writes v as a JSON response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Signup handles POST /signup.
// It expects a JSON body with "email" and "password" and responds 201
// on success. Missing fields, a short password and a duplicate email
// all answer 400 with a user-facing message.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request")
		return
	}

	_, err := h.AuthService.Register(r.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		writeMessage(w, http.StatusBadRequest, "Missing fields")
	case errors.Is(err, service.ErrPasswordTooShort):
		writeMessage(w, http.StatusBadRequest, "Password too short")
	case errors.Is(err, repository.ErrDuplicateEmail):
		writeMessage(w, http.StatusBadRequest, "User already exists")
	case err != nil:
		writeMessage(w, http.StatusInternalServerError, "Server error")
	default:
		writeMessage(w, http.StatusCreated, "OK")
	}
}

// Login handles POST /login.
// On success it responds 200 with {"token": ...}. An unknown email and
// a wrong password produce the identical 400 body; an unverified
// account answers 403.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request")
		return
	}

	token, err := h.AuthService.Login(r.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		writeMessage(w, http.StatusBadRequest, "Invalid credentials")
	case errors.Is(err, service.ErrUnverified):
		writeMessage(w, http.StatusForbidden, "Email not verified")
	case err != nil:
		writeMessage(w, http.StatusInternalServerError, "Server error")
	default:
		writeJSON(w, http.StatusOK, map[string]string{"token": token})
	}
}

// VerifyEmail handles GET /verify-email?token=.
// It consumes the token from the confirmation link and renders a small
// HTML acknowledgement; an unknown or used token answers 400.
func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	err := h.AuthService.VerifyEmail(r.Context(), r.URL.Query().Get("token"))
	switch {
	case errors.Is(err, service.ErrVerificationInvalid):
		http.Error(w, "invalid or expired verification link", http.StatusBadRequest)
	case err != nil:
		http.Error(w, "server error", http.StatusInternalServerError)
	default:
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html><body><h1>Email verified</h1><p>You can log in now.</p></body></html>"))
	}
}
