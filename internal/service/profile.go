package service

import (
	"context"
	"errors"
	"time"

	"github.com/deutschio/server/internal/models"
	"github.com/google/uuid"
)

// ErrNoteNotFound is returned when a note deletion names an id the
// user's list does not contain.
var ErrNoteNotFound = errors.New("note not found")

// ProfileService implements reads and mutations of a single user's
// profile document. Every operation is scoped to the authenticated id
// supplied by the caller; no other record is reachable.
type ProfileService struct {
	repo UserRepository
}

// NewProfileService constructs a ProfileService using the provided repository.
func NewProfileService(repo UserRepository) *ProfileService {
	return &ProfileService{repo: repo}
}

// Get returns the user's profile document.
func (s *ProfileService) Get(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return s.repo.GetByID(ctx, userID)
}

// Update merges the supplied partial fields into the profile. Notes
// passed through here get ids and timestamps assigned where missing,
// so the bulk-replace client contract keeps working.
func (s *ProfileService) Update(ctx context.Context, userID uuid.UUID, upd models.ProfileUpdate) (*models.User, error) {
	if upd.Notes != nil {
		upd.Notes = fillNoteDefaults(upd.Notes)
	}
	return s.repo.UpdateProfile(ctx, userID, upd)
}

// SetName updates the display name.
func (s *ProfileService) SetName(ctx context.Context, userID uuid.UUID, name string) (*models.User, error) {
	return s.repo.UpdateProfile(ctx, userID, models.ProfileUpdate{Name: &name})
}

// SetAvatar updates the avatar image reference. The payload is stored
// as submitted; no size or type validation happens server-side.
func (s *ProfileService) SetAvatar(ctx context.Context, userID uuid.UUID, avatar string) (*models.User, error) {
	return s.repo.UpdateProfile(ctx, userID, models.ProfileUpdate{Avatar: &avatar})
}

// AppendNote adds a note to the end of the list, stamping it with a
// stable id and the submission time. Text is stored as submitted.
func (s *ProfileService) AppendNote(ctx context.Context, userID uuid.UUID, text string) ([]models.Note, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	notes := append(user.Notes, models.Note{
		ID:        uuid.NewString(),
		Text:      text,
		CreatedAt: time.Now(),
	})
	updated, err := s.repo.UpdateProfile(ctx, userID, models.ProfileUpdate{Notes: notes})
	if err != nil {
		return nil, err
	}
	return updated.Notes, nil
}

// DeleteNote removes the note with the given id, keeping the creation
// order of the survivors. An unknown id is rejected with ErrNoteNotFound.
func (s *ProfileService) DeleteNote(ctx context.Context, userID uuid.UUID, noteID string) ([]models.Note, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	notes := make([]models.Note, 0, len(user.Notes))
	found := false
	for _, n := range user.Notes {
		if n.ID == noteID {
			found = true
			continue
		}
		notes = append(notes, n)
	}
	if !found {
		return nil, ErrNoteNotFound
	}

	updated, err := s.repo.UpdateProfile(ctx, userID, models.ProfileUpdate{Notes: notes})
	if err != nil {
		return nil, err
	}
	return updated.Notes, nil
}

// ReplaceNotes overwrites the whole list. Concurrent replacements are
// last-write-wins; the store gives no cross-request coordination.
func (s *ProfileService) ReplaceNotes(ctx context.Context, userID uuid.UUID, notes []models.Note) ([]models.Note, error) {
	if notes == nil {
		notes = []models.Note{}
	}
	updated, err := s.repo.UpdateProfile(ctx, userID, models.ProfileUpdate{Notes: fillNoteDefaults(notes)})
	if err != nil {
		return nil, err
	}
	return updated.Notes, nil
}

// DeleteAccount permanently removes the user's record. Outstanding
// tokens stay cryptographically valid until expiry but fail identity
// resolution afterwards.
func (s *ProfileService) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	return s.repo.Delete(ctx, userID)
}

// fillNoteDefaults assigns ids and timestamps to notes submitted
// without them, as the bulk-replace clients do.
func fillNoteDefaults(notes []models.Note) []models.Note {
	out := make([]models.Note, len(notes))
	for i, n := range notes {
		if n.ID == "" {
			n.ID = uuid.NewString()
		}
		if n.CreatedAt.IsZero() {
			n.CreatedAt = time.Now()
		}
		out[i] = n
	}
	return out
}
