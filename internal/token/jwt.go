// Package token issues and verifies the signed bearer tokens that carry
// a user's identity between requests.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Verification failure modes. Handlers collapse all of them into one
// external response; the distinction exists for logging and tests.
var (
	// ErrExpired means the token was valid but its lifetime has elapsed.
	ErrExpired = errors.New("token expired")
	// ErrBadSignature means the token was not signed with the process secret.
	ErrBadSignature = errors.New("token signature invalid")
	// ErrMalformed means the token could not be parsed at all.
	ErrMalformed = errors.New("token malformed")
)

// Claims represents JWT claims carrying the user identifier.
type Claims struct {
	jwt.RegisteredClaims
	UserID uuid.UUID `json:"user_id"`
}

// JWT issues and verifies HS256 tokens using a process-wide secret.
type JWT struct {
	secretKey string
	ttl       time.Duration
}

// NewJWT creates a token manager with the provided secret key and
// token lifetime.
func NewJWT(secretKey string, ttl time.Duration) *JWT {
	return &JWT{secretKey: secretKey, ttl: ttl}
}

// Issue produces a signed token embedding the user identifier and an
// expiry ttl from now.
func (j *JWT) Issue(userID uuid.UUID) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
		},
		UserID: userID,
	})

	tokenString, err := token.SignedString([]byte(j.secretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// Verify validates the token and extracts the user identifier. It is a
// pure function of the token and the process secret; no store access.
func (j *JWT) Verify(tokenString string) (uuid.UUID, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
		}
		return []byte(j.secretKey), nil
	})
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return uuid.Nil, ErrExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return uuid.Nil, ErrBadSignature
	case err != nil:
		return uuid.Nil, ErrMalformed
	}
	if !token.Valid {
		return uuid.Nil, ErrMalformed
	}
	return claims.UserID, nil
}
