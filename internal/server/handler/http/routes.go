package http

import (
	"net/http"

	"github.com/deutschio/server/internal/middleware"
	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter constructs and returns the HTTP handler serving the API.
// It applies CORS for the configured origins, JSON content-type
// enforcement and request logging, and mounts the public auth endpoints
// next to the bearer-token protected profile resource.
//
// Routes:
//
//	GET  /                        → health check
//	POST /signup                  → authHandler.Signup
//	POST /login                   → authHandler.Login
//	GET  /verify-email            → authHandler.VerifyEmail
//	GET    /profile               → profileHandler.Get           (bearer)
//	PUT    /profile               → profileHandler.Update        (bearer)
//	DELETE /profile               → profileHandler.DeleteAccount (bearer)
//	PUT    /profile/name          → profileHandler.SetName       (bearer)
//	PUT    /profile/avatar        → profileHandler.SetAvatar     (bearer)
//	POST   /profile/notes         → profileHandler.AppendNote    (bearer)
//	PUT    /profile/notes         → profileHandler.ReplaceNotes  (bearer)
//	DELETE /profile/notes/{id}    → profileHandler.DeleteNote    (bearer)
//
// The health, signup, login and verification endpoints are the only
// unauthenticated entry points.
func NewRouter(
	authHandler *AuthHandler,
	profileHandler *ProfileHandler,
	verifier middleware.TokenVerifier,
	logger *zap.Logger,
	allowedOrigins []string,
) http.Handler {
	r := chi.NewRouter()

	// Browser clients live on another origin
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: false,
	}))

	// Only allow requests with Content-Type: application/json
	r.Use(chiMiddleware.AllowContentType("application/json"))

	// Log each request and its metadata
	r.Use(middleware.WithRequestLogging(logger))

	// Health/landing endpoint
	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("OK"))
	})

	// Public endpoints
	r.Post("/signup", authHandler.Signup)
	r.Post("/login", authHandler.Login)
	r.Get("/verify-email", authHandler.VerifyEmail)

	// Protected group: requires a valid bearer token
	r.Group(func(r chi.Router) {
		r.Use(middleware.BearerAuth(verifier))

		r.Route("/profile", func(r chi.Router) {
			r.Get("/", profileHandler.Get)
			r.Put("/", profileHandler.Update)
			r.Delete("/", profileHandler.DeleteAccount)
			r.Put("/name", profileHandler.SetName)
			r.Put("/avatar", profileHandler.SetAvatar)
			r.Post("/notes", profileHandler.AppendNote)
			r.Put("/notes", profileHandler.ReplaceNotes)
			r.Delete("/notes/{id}", profileHandler.DeleteNote)
		})
	})

	return r
}
