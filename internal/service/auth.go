// Package service provides the authentication and profile business logic,
// delegating persistence to a UserRepository.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/deutschio/server/internal/mail"
	"github.com/deutschio/server/internal/models"
	"github.com/deutschio/server/internal/repository"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the shortest password accepted at signup.
const MinPasswordLength = 6

var (
	// ErrInvalidInput is returned when signup fields are missing.
	ErrInvalidInput = errors.New("missing fields")
	// ErrPasswordTooShort is returned when the password is under the minimum length.
	ErrPasswordTooShort = errors.New("password too short")
	// ErrInvalidCredentials covers both an unknown email and a wrong
	// password. The two are deliberately indistinguishable so responses
	// cannot be used to enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnverified is returned when login is attempted before the
	// email address has been confirmed.
	ErrUnverified = errors.New("email not verified")
	// ErrVerificationInvalid is returned for an unknown or already
	// consumed verification token.
	ErrVerificationInvalid = errors.New("invalid or expired verification token")
)

// UserRepository defines the persistence operations required by the
// authentication and profile services.
type UserRepository interface {
	// Create persists a new user record.
	// Returns repository.ErrDuplicateEmail if the email is taken.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	// GetByEmail returns the user with the given email or repository.ErrNotFound.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// GetByID returns the user with the given id or repository.ErrNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	// UpdateProfile merges profile fields into the record and returns
	// the updated user.
	UpdateProfile(ctx context.Context, id uuid.UUID, upd models.ProfileUpdate) (*models.User, error)
	// Delete permanently removes the record; idempotent.
	Delete(ctx context.Context, id uuid.UUID) error
	// Verify consumes a verification token; false when nothing matched.
	Verify(ctx context.Context, verificationToken string) (bool, error)
}

// TokenIssuer signs a bearer token for a user id.
type TokenIssuer interface {
	Issue(userID uuid.UUID) (string, error)
}

// AuthService implements signup, login and email verification.
type AuthService struct {
	repo                UserRepository
	tokens              TokenIssuer
	mailer              mail.Sender
	requireVerification bool
}

// NewAuthService constructs an AuthService. mailer is only consulted
// when requireVerification is set.
func NewAuthService(repo UserRepository, tokens TokenIssuer, mailer mail.Sender, requireVerification bool) *AuthService {
	return &AuthService{
		repo:                repo,
		tokens:              tokens,
		mailer:              mailer,
		requireVerification: requireVerification,
	}
}

// Register validates the credentials and creates a new user with empty
// profile fields. The password is stored only as a salted bcrypt hash.
// When verification is required the account starts unverified and the
// confirmation link is handed to the mail collaborator.
func (s *AuthService) Register(ctx context.Context, email, password string) (*models.User, error) {
	if email == "" || password == "" {
		return nil, ErrInvalidInput
	}
	if len(password) < MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		Verified:     !s.requireVerification,
		CreatedAt:    time.Now(),
		Notes:        []models.Note{},
	}
	if s.requireVerification {
		user.VerificationToken = uuid.NewString()
	}

	user, err = s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	if s.requireVerification {
		if err := s.mailer.SendVerification(ctx, user.Email, user.VerificationToken); err != nil {
			return nil, fmt.Errorf("send verification: %w", err)
		}
	}

	return user, nil
}

// Login checks the credentials and issues a bearer token. An unknown
// email and a wrong password produce the same ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", ErrInvalidCredentials
	}

	if !user.Verified {
		return "", ErrUnverified
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}

// VerifyEmail consumes the single-use token from the confirmation link.
func (s *AuthService) VerifyEmail(ctx context.Context, verificationToken string) error {
	if verificationToken == "" {
		return ErrVerificationInvalid
	}
	ok, err := s.repo.Verify(ctx, verificationToken)
	if err != nil {
		return err
	}
	if !ok {
		return ErrVerificationInvalid
	}
	return nil
}
