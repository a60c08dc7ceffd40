package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("a-long-enough-password", testBcryptCost)
	require.NoError(t, err)
	assert.NotEqual(t, "a-long-enough-password", hash)

	assert.NoError(t, CheckPassword("a-long-enough-password", hash))
	assert.ErrorIs(t, CheckPassword("a-different-password", hash), ErrInvalidPassword)
}

func TestHashPassword_LengthLimits(t *testing.T) {
	_, err := HashPassword("short", testBcryptCost)
	assert.ErrorIs(t, err, ErrPasswordTooShort)

	long := make([]byte, 80)
	for i := range long {
		long[i] = 'a'
	}
	_, err = HashPassword(string(long), testBcryptCost)
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}

func TestGenerateAPIToken(t *testing.T) {
	plaintext, hash, err := GenerateAPIToken()
	require.NoError(t, err)

	assert.Len(t, plaintext, 64) // 32 random bytes, hex encoded
	assert.NotEqual(t, plaintext, hash)
	assert.Equal(t, hash, HashToken(plaintext))

	other, _, err := GenerateAPIToken()
	require.NoError(t, err)
	assert.NotEqual(t, plaintext, other)
}

func TestGenerateSessionSecret(t *testing.T) {
	secret, err := GenerateSessionSecret()
	require.NoError(t, err)
	assert.Len(t, secret, 64)
}
