// Package repository provides persistence for user records
// using a PostgreSQL database.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/deutschio/server/internal/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

var (
	// ErrDuplicateEmail is returned when a create collides with an
	// existing user's email.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrNotFound is returned when no user matches the lookup.
	ErrNotFound = errors.New("user not found")
)

// uniqueViolation is the PostgreSQL error code for unique constraint breaches.
const uniqueViolation = "23505"

// PostgresUserRepository implements user persistence against a PostgreSQL database.
type PostgresUserRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository with the given
// database connection. db must be a valid *sql.DB connected to a PostgreSQL instance.
func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{DB: db}
}

// Create persists a new user record. The caller supplies the id, email,
// password hash and verification state; profile fields start empty.
// Returns ErrDuplicateEmail if the email is already taken.
func (r *PostgresUserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	_, err := r.DB.ExecContext(
		ctx,
		`INSERT INTO users (id, email, password_hash, verified, verification_token, name, avatar, notes)
		 VALUES ($1, $2, $3, $4, $5, '', '', '[]')`,
		user.ID, user.Email, user.PasswordHash, user.Verified, nullable(user.VerificationToken),
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// GetByEmail fetches the user with the given email.
// Returns ErrNotFound if no such user exists.
func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, email, password_hash, verified, verification_token, created_at, name, avatar, notes
		  FROM users WHERE email = $1
	`, email)
	return scanUser(row)
}

// GetByID fetches the user with the given id.
// Returns ErrNotFound if no such user exists.
func (r *PostgresUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, email, password_hash, verified, verification_token, created_at, name, avatar, notes
		  FROM users WHERE id = $1
	`, id)
	return scanUser(row)
}

// UpdateProfile merges the supplied profile fields into the record and
// returns the updated user. Nil fields are left untouched. Email and
// password hash cannot be altered through this path.
func (r *PostgresUserRepository) UpdateProfile(ctx context.Context, id uuid.UUID, upd models.ProfileUpdate) (*models.User, error) {
	var notesJSON sql.NullString
	if upd.Notes != nil {
		data, err := json.Marshal(upd.Notes)
		if err != nil {
			return nil, fmt.Errorf("marshal notes: %w", err)
		}
		notesJSON = sql.NullString{String: string(data), Valid: true}
	}

	row := r.DB.QueryRowContext(ctx, `
		UPDATE users
		   SET name = COALESCE($2, name),
		       avatar = COALESCE($3, avatar),
		       notes = COALESCE($4::jsonb, notes)
		 WHERE id = $1
		RETURNING id, email, password_hash, verified, verification_token, created_at, name, avatar, notes
	`, id, nullablePtr(upd.Name), nullablePtr(upd.Avatar), notesJSON)
	return scanUser(row)
}

// Delete permanently removes the user record. Deleting a non-existent
// id is not an error.
func (r *PostgresUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.DB.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// Verify consumes a single-use verification token, marking the matching
// user verified and clearing the token. It returns false when the token
// matches no record.
func (r *PostgresUserRepository) Verify(ctx context.Context, verificationToken string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE users
		   SET verified = true, verification_token = NULL
		 WHERE verification_token = $1
	`, verificationToken)
	if err != nil {
		return false, fmt.Errorf("verify user: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("verify user: %w", err)
	}
	return rows > 0, nil
}

// scanUser reads one user row, decoding the JSONB notes column.
func scanUser(row *sql.Row) (*models.User, error) {
	var (
		user      models.User
		verifTok  sql.NullString
		notesJSON []byte
	)
	err := row.Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.Verified,
		&verifTok, &user.CreatedAt, &user.Name, &user.Avatar, &notesJSON,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	user.VerificationToken = verifTok.String
	user.Notes = []models.Note{}
	if len(notesJSON) > 0 {
		if err := json.Unmarshal(notesJSON, &user.Notes); err != nil {
			return nil, fmt.Errorf("decode notes: %w", err)
		}
	}
	return &user, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullablePtr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
