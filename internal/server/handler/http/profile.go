package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/deutschio/server/internal/middleware"
	"github.com/deutschio/server/internal/models"
	"github.com/deutschio/server/internal/repository"
	"github.com/deutschio/server/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// ProfileService defines the interface for profile operations required
// by the HTTP handlers. Every call is scoped to the authenticated user.
type ProfileService interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.User, error)
	Update(ctx context.Context, userID uuid.UUID, upd models.ProfileUpdate) (*models.User, error)
	SetName(ctx context.Context, userID uuid.UUID, name string) (*models.User, error)
	SetAvatar(ctx context.Context, userID uuid.UUID, avatar string) (*models.User, error)
	AppendNote(ctx context.Context, userID uuid.UUID, text string) ([]models.Note, error)
	DeleteNote(ctx context.Context, userID uuid.UUID, noteID string) ([]models.Note, error)
	ReplaceNotes(ctx context.Context, userID uuid.UUID, notes []models.Note) ([]models.Note, error)
	DeleteAccount(ctx context.Context, userID uuid.UUID) error
}

// ProfileHandler handles HTTP requests for the authenticated user's
// profile document.
type ProfileHandler struct {
	ProfileService ProfileService
}

// writeProfileError maps profile-layer failures onto responses.
// A lookup after account deletion answers 404.
func writeProfileError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, service.ErrNoteNotFound):
		writeMessage(w, http.StatusNotFound, "Not found")
	default:
		writeMessage(w, http.StatusInternalServerError, "Server error")
	}
}

// Get handles GET /profile.
// It responds with {email, name, avatar, notes}; the password hash is
// never serialized.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())

	user, err := h.ProfileService.Get(r.Context(), userID)
	if err != nil {
		writeProfileError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Update handles PUT /profile, the partial-merge compatibility route.
// Any of "name", "avatar" and "notes" may be present; absent fields are
// left unchanged.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())

	var req struct {
		Name   *string       `json:"name"`
		Avatar *string       `json:"avatar"`
		Notes  []models.Note `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request")
		return
	}

	user, err := h.ProfileService.Update(r.Context(), userID, models.ProfileUpdate{
		Name:   req.Name,
		Avatar: req.Avatar,
		Notes:  req.Notes,
	})
	if err != nil {
		writeProfileError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// SetName handles PUT /profile/name.
func (h *ProfileHandler) SetName(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request")
		return
	}

	user, err := h.ProfileService.SetName(r.Context(), userID, req.Name)
	if err != nil {
		writeProfileError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// SetAvatar handles PUT /profile/avatar. The image reference (a data
// URI in the observed client) is stored as submitted.
func (h *ProfileHandler) SetAvatar(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())

	var req struct {
		Avatar string `json:"avatar"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request")
		return
	}

	user, err := h.ProfileService.SetAvatar(r.Context(), userID, req.Avatar)
	if err != nil {
		writeProfileError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// AppendNote handles POST /profile/notes.
// The note gets a server-assigned id and timestamp; the updated list is
// returned.
func (h *ProfileHandler) AppendNote(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())

	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request")
		return
	}

	notes, err := h.ProfileService.AppendNote(r.Context(), userID, req.Text)
	if err != nil {
		writeProfileError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]models.Note{"notes": notes})
}

// ReplaceNotes handles PUT /profile/notes, the bulk-overwrite
// compatibility route. Concurrent replacements are last-write-wins.
func (h *ProfileHandler) ReplaceNotes(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())

	var req struct {
		Notes []models.Note `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request")
		return
	}

	notes, err := h.ProfileService.ReplaceNotes(r.Context(), userID, req.Notes)
	if err != nil {
		writeProfileError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]models.Note{"notes": notes})
}

// DeleteNote handles DELETE /profile/notes/{id}.
// Deletion is by the note's stable id, not by list position; an unknown
// id answers 404.
func (h *ProfileHandler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())

	notes, err := h.ProfileService.DeleteNote(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeProfileError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]models.Note{"notes": notes})
}

// DeleteAccount handles DELETE /profile.
// The record is removed permanently; the bearer token keeps verifying
// cryptographically until expiry but identity resolution fails from
// here on.
func (h *ProfileHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())

	if err := h.ProfileService.DeleteAccount(r.Context(), userID); err != nil {
		writeProfileError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "Account deleted")
}
