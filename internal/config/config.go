// Package config provides functionality for managing configuration options
// for the application using command-line flags and environment variables.
package config

import (
	"flag"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
)

// Options holds the configuration values for the application.
type Options struct {
	// Port defines the server's listening address (ip:port).
	Port string `env:"SERVER_ADDRESS"`

	// DatabaseDSN holds the database connection string for the application.
	DatabaseDSN string `env:"DATABASE_DSN"`

	// JWTSecret is the process-wide token signing key, loaded once at
	// startup and never rotated at runtime.
	JWTSecret string `env:"JWT_SECRET"`

	// TokenTTL is the lifetime of issued bearer tokens.
	TokenTTL time.Duration `env:"TOKEN_TTL"`

	// AllowedOrigins lists the origins permitted by CORS,
	// comma-separated in the environment variable.
	AllowedOrigins []string `env:"ALLOWED_ORIGINS"`

	// RequireVerification gates login on email confirmation.
	RequireVerification bool `env:"REQUIRE_VERIFICATION"`

	// BaseURL is the public URL of this service, used to build
	// verification links.
	BaseURL string `env:"BASE_URL"`
}

// options holds the current configuration values.
var options = &Options{}

// init initializes command-line flags and sets default values.
func init() {
	flag.StringVar(&options.Port, "a", "localhost:8080", "run on ip:port server")
	flag.StringVar(&options.DatabaseDSN, "d", "", "db address")
	flag.StringVar(&options.JWTSecret, "s", "devsecret", "token signing secret")
	flag.DurationVar(&options.TokenTTL, "ttl", 168*time.Hour, "bearer token lifetime")
	flag.BoolVar(&options.RequireVerification, "verify", false, "require email verification before login")
	flag.StringVar(&options.BaseURL, "base-url", "http://localhost:8080", "public base URL")
}

// Parse parses the command-line flags and environment variables to set
// configuration values. Environment variables take precedence over flags.
// It returns a pointer to the Options struct containing the parsed
// configuration values.
func Parse() *Options {
	flag.Parse()

	if err := env.Parse(options); err != nil {
		log.Fatalf("error while parsing environment: %v", err)
	}

	return options
}
