package crypto

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-admin")
	require.NoError(t, err)
	require.NotEqual(t, "s3cret-admin", hash)

	require.True(t, VerifyPassword(hash, "s3cret-admin"))
	require.False(t, VerifyPassword(hash, "wrong"))
	require.False(t, VerifyPassword("", "s3cret-admin"))
	require.False(t, VerifyPassword("not-a-bcrypt-hash", "s3cret-admin"))

	_, err = HashPassword("   ")
	require.ErrorIs(t, err, ErrEmptyPassword)
}

func TestGenerateToken(t *testing.T) {
	token, err := GenerateToken(32)
	require.NoError(t, err)

	raw, err := base64.RawURLEncoding.DecodeString(token)
	require.NoError(t, err)
	require.Len(t, raw, 32)

	other, err := GenerateToken(32)
	require.NoError(t, err)
	require.NotEqual(t, token, other)

	_, err = GenerateToken(0)
	require.Error(t, err)
}
