// Package models defines the core data structures for users and notes.
package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered account with its profile document.
type User struct {
	// ID is the unique identifier for the user.
	ID uuid.UUID `json:"-"`
	// Email is the unique login email, immutable after creation.
	Email string `json:"email"`
	// PasswordHash is the bcrypt hash of the user's password.
	// It is never serialized into a response.
	PasswordHash string `json:"-"`
	// Verified reports whether the user's email address has been confirmed.
	Verified bool `json:"-"`
	// VerificationToken is the single-use email confirmation token.
	// Empty once the user is verified.
	VerificationToken string `json:"-"`
	// CreatedAt is the account creation time.
	CreatedAt time.Time `json:"-"`
	// Name is the optional display name, empty by default.
	Name string `json:"name"`
	// Avatar is an image reference (data URI or URL), empty by default.
	Avatar string `json:"avatar"`
	// Notes is the user's note list in creation order.
	Notes []Note `json:"notes"`
}

// Note is a single free-text note in a user's profile.
type Note struct {
	// ID is a stable identifier assigned at creation, used for deletion.
	ID string `json:"id"`
	// Text is the note body, stored as submitted.
	Text string `json:"text"`
	// CreatedAt is the submission timestamp.
	CreatedAt time.Time `json:"createdAt"`
}

// ProfileUpdate describes a partial profile mutation. Nil fields are
// left unchanged. Email and password are not reachable through it.
type ProfileUpdate struct {
	Name   *string
	Avatar *string
	Notes  []Note
}
