// Package main initializes and starts the deutschio HTTP server,
// setting up configuration, logging, database connections, repositories,
// services and handlers.
package main

import (
	"context"
	"fmt"
	"time"

	nethttp "net/http"

	"github.com/deutschio/server/internal/config"
	"github.com/deutschio/server/internal/db"
	"github.com/deutschio/server/internal/logger"
	"github.com/deutschio/server/internal/mail"
	"github.com/deutschio/server/internal/repository"
	"github.com/deutschio/server/internal/server/handler/http"
	"github.com/deutschio/server/internal/service"
	"github.com/deutschio/server/internal/token"
	"go.uber.org/zap"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Parse command-line and environment configuration.
	options := config.Parse()

	// Print build metadata (or "N/A" if unset).
	if version == "" {
		version = "N/A"
	}
	if buildDate == "" {
		buildDate = "N/A"
	}
	fmt.Printf("Build version: %s\n", version)
	fmt.Printf("Build date: %s\n", buildDate)

	// Initialize structured logging.
	log := logger.New()
	if err := log.Init("info"); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}
	defer func() { _ = log.Log.Sync() }()
	zapLogger := log.Log

	// Initialize PostgreSQL connection.
	postgresDB, err := db.InitPostgres(options.DatabaseDSN)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}

	// Purge accounts that never confirmed their email.
	if options.RequireVerification {
		db.StartUnverifiedCleaner(context.Background(), postgresDB,
			time.Hour,      // interval
			7*24*time.Hour, // retention: 7 days
			zapLogger,
		)
	}

	// Initialize the user repository.
	userRepo := repository.NewPostgresUserRepository(postgresDB)

	// Token manager: the signing secret is process-wide and loaded once.
	jwtManager := token.NewJWT(options.JWTSecret, options.TokenTTL)

	// Verification mail goes through the log-only sender; delivery is
	// an external collaborator.
	mailer := mail.NewLogSender(zapLogger, options.BaseURL)

	// Initialize business-logic services.
	authService := service.NewAuthService(userRepo, jwtManager, mailer, options.RequireVerification)
	profileService := service.NewProfileService(userRepo)

	// Create HTTP handlers for auth and profile endpoints.
	authHandler := &http.AuthHandler{AuthService: authService}
	profileHandler := &http.ProfileHandler{ProfileService: profileService}

	// Build the router with middleware and routes.
	router := http.NewRouter(authHandler, profileHandler, jwtManager, zapLogger, options.AllowedOrigins)

	server := &nethttp.Server{
		Addr:    options.Port,
		Handler: router,
	}

	zapLogger.Info("starting HTTP server", zap.String("addr", options.Port))
	if err := server.ListenAndServe(); err != nil {
		zapLogger.Fatal("failed to start HTTP server", zap.Error(err))
	}
}
