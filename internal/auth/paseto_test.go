package auth

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func testPasetoKey() []byte {
	return bytes.Repeat([]byte("k"), 32)
}

func TestPasetoService_RoundTrip(t *testing.T) {
	t.Parallel()

	svc, err := NewPasetoService(testPasetoKey())
	require.NoError(t, err)

	userID := uuid.NewString()
	token, err := svc.CreateToken(userID, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.VerifyToken(token)
	require.NoError(t, err)
	require.Equal(t, userID, claims.UserID)
	require.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt, time.Minute)
}

func TestPasetoService_Expired(t *testing.T) {
	t.Parallel()

	svc, err := NewPasetoService(testPasetoKey())
	require.NoError(t, err)

	token, err := svc.CreateToken(uuid.NewString(), -time.Minute)
	require.NoError(t, err)

	_, err = svc.VerifyToken(token)
	require.ErrorIs(t, err, ErrExpiredToken)
}

func TestPasetoService_WrongKey(t *testing.T) {
	t.Parallel()

	svc, err := NewPasetoService(testPasetoKey())
	require.NoError(t, err)

	other, err := NewPasetoService(bytes.Repeat([]byte("x"), 32))
	require.NoError(t, err)

	token, err := svc.CreateToken(uuid.NewString(), time.Hour)
	require.NoError(t, err)

	_, err = other.VerifyToken(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasetoService_Malformed(t *testing.T) {
	t.Parallel()

	svc, err := NewPasetoService(testPasetoKey())
	require.NoError(t, err)

	_, err = svc.VerifyToken("not-a-paseto-token")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewPasetoService_RejectsShortKey(t *testing.T) {
	t.Parallel()

	_, err := NewPasetoService([]byte("too-short"))
	require.Error(t, err)
}
