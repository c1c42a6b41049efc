package token

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueVerify_Roundtrip(t *testing.T) {
	manager := NewJWT("test-secret", time.Hour)
	userID := uuid.New()

	tokenString, err := manager.Issue(userID)
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)

	got, err := manager.Verify(tokenString)
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestVerify_Expired(t *testing.T) {
	manager := NewJWT("test-secret", -time.Minute)

	tokenString, err := manager.Issue(uuid.New())
	require.NoError(t, err)

	_, err = manager.Verify(tokenString)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestVerify_BadSignature(t *testing.T) {
	issuer := NewJWT("secret-one", time.Hour)
	verifier := NewJWT("secret-two", time.Hour)

	tokenString, err := issuer.Issue(uuid.New())
	require.NoError(t, err)

	_, err = verifier.Verify(tokenString)
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestVerify_Malformed(t *testing.T) {
	manager := NewJWT("test-secret", time.Hour)

	for _, tokenString := range []string{"", "garbage", "a.b.c"} {
		_, err := manager.Verify(tokenString)
		assert.ErrorIs(t, err, ErrMalformed, "token %q", tokenString)
	}
}
