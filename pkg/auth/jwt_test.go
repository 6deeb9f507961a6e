package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTService_RoundTrip(t *testing.T) {
	svc, err := NewJWTService("secret", "clinic-api", 0)
	require.NoError(t, err)

	token, err := svc.Issue("session-1", "patient")
	require.NoError(t, err)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "session-1", claims.Subject)
	assert.Equal(t, "patient", claims.Role)
	assert.Nil(t, claims.ExpiresAt)
}

func TestJWTService_RejectsForeignSecret(t *testing.T) {
	a, _ := NewJWTService("secret-a", "clinic-api", 0)
	b, _ := NewJWTService("secret-b", "clinic-api", 0)

	token, err := a.Issue("session-1", "admin")
	require.NoError(t, err)

	_, err = b.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_Expiry(t *testing.T) {
	svc, _ := NewJWTService("secret", "", time.Minute)
	hs := svc.(*hmacService)
	hs.now = func() time.Time { return time.Now().Add(-2 * time.Minute) }

	token, err := svc.Issue("session-1", "admin")
	require.NoError(t, err)

	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewJWTService_EmptySecret(t *testing.T) {
	_, err := NewJWTService("", "", 0)
	assert.ErrorIs(t, err, ErrEmptySecret)
}
