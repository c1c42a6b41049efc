package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/deutschio/server/internal/mail"
	"github.com/deutschio/server/internal/models"
	"github.com/deutschio/server/internal/repository"
	"github.com/deutschio/server/internal/service"
	"github.com/deutschio/server/internal/token"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// memUserRepo is an in-memory store backing the full-router scenario test.
type memUserRepo struct {
	users map[uuid.UUID]*models.User
}

func (m *memUserRepo) Create(_ context.Context, user *models.User) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == user.Email {
			return nil, repository.ErrDuplicateEmail
		}
	}
	clone := *user
	m.users[user.ID] = &clone
	return user, nil
}

func (m *memUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memUserRepo) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (m *memUserRepo) UpdateProfile(_ context.Context, id uuid.UUID, upd models.ProfileUpdate) (*models.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.Avatar != nil {
		u.Avatar = *upd.Avatar
	}
	if upd.Notes != nil {
		u.Notes = append([]models.Note(nil), upd.Notes...)
	}
	clone := *u
	return &clone, nil
}

func (m *memUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.users, id)
	return nil
}

func (m *memUserRepo) Verify(_ context.Context, verificationToken string) (bool, error) {
	for _, u := range m.users {
		if u.VerificationToken == verificationToken {
			u.Verified = true
			u.VerificationToken = ""
			return true, nil
		}
	}
	return false, nil
}

func newTestRouter() http.Handler {
	repo := &memUserRepo{users: make(map[uuid.UUID]*models.User)}
	logger := zap.NewNop()
	jwtManager := token.NewJWT("test-secret", time.Hour)
	mailer := mail.NewLogSender(logger, "http://localhost:8080")

	authService := service.NewAuthService(repo, jwtManager, mailer, false)
	profileService := service.NewProfileService(repo)

	return NewRouter(
		&AuthHandler{AuthService: authService},
		&ProfileHandler{ProfileService: profileService},
		jwtManager,
		logger,
		[]string{"https://ddeutschio.netlify.app"},
	)
}

func doJSON(t *testing.T, router http.Handler, method, target, bearer, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// TestRouter_FullLifecycle walks a user through signup, login, profile
// edits, note management, account deletion and the state left behind.
func TestRouter_FullLifecycle(t *testing.T) {
	router := newTestRouter()

	// Health endpoint is public.
	if rec := doJSON(t, router, "GET", "/", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("health: expected 200, got %d", rec.Code)
	}

	// Signup.
	if rec := doJSON(t, router, "POST", "/signup", "", `{"email":"a@x.com","password":"secret1"}`); rec.Code != http.StatusCreated {
		t.Fatalf("signup: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	// Duplicate signup fails regardless of password.
	if rec := doJSON(t, router, "POST", "/signup", "", `{"email":"a@x.com","password":"another1"}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("duplicate signup: expected 400, got %d", rec.Code)
	}

	// Wrong password and unknown email produce the identical error shape.
	wrongPass := doJSON(t, router, "POST", "/login", "", `{"email":"a@x.com","password":"wrongpass"}`)
	unknown := doJSON(t, router, "POST", "/login", "", `{"email":"nobody@x.com","password":"secret1"}`)
	if wrongPass.Code != http.StatusBadRequest || unknown.Code != http.StatusBadRequest {
		t.Fatalf("bad logins: expected 400/400, got %d/%d", wrongPass.Code, unknown.Code)
	}
	if wrongPass.Body.String() != unknown.Body.String() {
		t.Errorf("credential errors must be indistinguishable: %q vs %q", wrongPass.Body.String(), unknown.Body.String())
	}

	// Login.
	rec := doJSON(t, router, "POST", "/login", "", `{"email":"a@x.com","password":"secret1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var loginResp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&loginResp); err != nil {
		t.Fatalf("login: failed to decode: %v", err)
	}
	bearer := loginResp["token"]
	if bearer == "" {
		t.Fatal("login: empty token")
	}

	// Profile is gated.
	if rec := doJSON(t, router, "GET", "/profile", "", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated profile: expected 401, got %d", rec.Code)
	}
	if rec := doJSON(t, router, "GET", "/profile", "tampered.token.here", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad token profile: expected 401, got %d", rec.Code)
	}

	// Fresh profile: empty notes.
	rec = doJSON(t, router, "GET", "/profile", bearer, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("profile: expected 200, got %d", rec.Code)
	}
	var profile struct {
		Email string        `json:"email"`
		Name  string        `json:"name"`
		Notes []models.Note `json:"notes"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&profile); err != nil {
		t.Fatalf("profile: failed to decode: %v", err)
	}
	if profile.Email != "a@x.com" || len(profile.Notes) != 0 {
		t.Fatalf("unexpected fresh profile: %+v", profile)
	}

	// Set a display name.
	rec = doJSON(t, router, "PUT", "/profile/name", bearer, `{"name":"Anna"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("set name: expected 200, got %d", rec.Code)
	}

	// Append two notes, delete the earlier one, keep the second.
	rec = doJSON(t, router, "POST", "/profile/notes", bearer, `{"text":"hallo"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("append note: expected 200, got %d", rec.Code)
	}
	var notesResp struct {
		Notes []models.Note `json:"notes"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&notesResp); err != nil {
		t.Fatalf("append note: failed to decode: %v", err)
	}
	if len(notesResp.Notes) != 1 {
		t.Fatalf("append note: expected 1 note, got %d", len(notesResp.Notes))
	}
	firstID := notesResp.Notes[0].ID

	rec = doJSON(t, router, "POST", "/profile/notes", bearer, `{"text":"tschüss"}`)
	if err := json.NewDecoder(rec.Body).Decode(&notesResp); err != nil {
		t.Fatalf("append second note: failed to decode: %v", err)
	}
	if len(notesResp.Notes) != 2 {
		t.Fatalf("append second note: expected 2 notes, got %d", len(notesResp.Notes))
	}

	rec = doJSON(t, router, "DELETE", "/profile/notes/"+firstID, bearer, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("delete note: expected 200, got %d", rec.Code)
	}
	if err := json.NewDecoder(rec.Body).Decode(&notesResp); err != nil {
		t.Fatalf("delete note: failed to decode: %v", err)
	}
	if len(notesResp.Notes) != 1 || notesResp.Notes[0].Text != "tschüss" {
		t.Fatalf("delete note: expected only the second note, got %+v", notesResp.Notes)
	}

	// Deleting an unknown note id is rejected.
	if rec := doJSON(t, router, "DELETE", "/profile/notes/"+uuid.NewString(), bearer, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("delete unknown note: expected 404, got %d", rec.Code)
	}

	// Delete the account.
	if rec := doJSON(t, router, "DELETE", "/profile", bearer, ""); rec.Code != http.StatusOK {
		t.Fatalf("delete account: expected 200, got %d", rec.Code)
	}

	// The token still verifies cryptographically but resolves no user.
	if rec := doJSON(t, router, "GET", "/profile", bearer, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("profile after delete: expected 404, got %d", rec.Code)
	}

	// The email is free again.
	if rec := doJSON(t, router, "POST", "/signup", "", `{"email":"a@x.com","password":"secret1"}`); rec.Code != http.StatusCreated {
		t.Fatalf("re-signup: expected 201, got %d", rec.Code)
	}
}

// TestRouter_BulkReplaceNotes covers the compatibility contract used by
// the older client: overwrite the whole list through PUT.
func TestRouter_BulkReplaceNotes(t *testing.T) {
	router := newTestRouter()

	doJSON(t, router, "POST", "/signup", "", `{"email":"b@x.com","password":"secret1"}`)
	rec := doJSON(t, router, "POST", "/login", "", `{"email":"b@x.com","password":"secret1"}`)
	var loginResp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&loginResp); err != nil {
		t.Fatalf("login: %v", err)
	}
	bearer := loginResp["token"]

	rec = doJSON(t, router, "PUT", "/profile/notes", bearer, `{"notes":[{"text":"eins"},{"text":"zwei"}]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("replace notes: expected 200, got %d", rec.Code)
	}
	var notesResp struct {
		Notes []models.Note `json:"notes"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&notesResp); err != nil {
		t.Fatalf("replace notes: %v", err)
	}
	if len(notesResp.Notes) != 2 || notesResp.Notes[0].ID == "" {
		t.Fatalf("replace notes: expected 2 notes with assigned ids, got %+v", notesResp.Notes)
	}

	// The generic partial update also reaches the same fields.
	rec = doJSON(t, router, "PUT", "/profile", bearer, `{"avatar":"data:image/png;base64,abc"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("partial update: expected 200, got %d", rec.Code)
	}
	var profile struct {
		Avatar string        `json:"avatar"`
		Notes  []models.Note `json:"notes"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&profile); err != nil {
		t.Fatalf("partial update: %v", err)
	}
	if profile.Avatar != "data:image/png;base64,abc" || len(profile.Notes) != 2 {
		t.Fatalf("partial update must leave notes untouched: %+v", profile)
	}
}

// TestRouter_ContentTypeEnforced rejects bodied requests that are not JSON.
func TestRouter_ContentTypeEnforced(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest("POST", "/signup", bytes.NewBufferString("email=a@x.com"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("expected 415, got %d", rec.Code)
	}
}
