package user

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashPassword_NeverStoresPlaintext(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("test123")
	require.NoError(t, err)
	require.NotContains(t, hash, "test123")
	require.True(t, strings.HasPrefix(hash, "$argon2id$"))
}

func TestHashPassword_SaltedPerCall(t *testing.T) {
	t.Parallel()

	first, err := HashPassword("test123")
	require.NoError(t, err)
	second, err := HashPassword("test123")
	require.NoError(t, err)
	require.NotEqual(t, first, second)
}

func TestVerifyPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("test123")
	require.NoError(t, err)

	require.True(t, VerifyPassword(hash, "test123"))
	require.False(t, VerifyPassword(hash, "wrongPassword"))
	require.False(t, VerifyPassword("not-an-encoded-hash", "test123"))
	require.False(t, VerifyPassword("", "test123"))
}
