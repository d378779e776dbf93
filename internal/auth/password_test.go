package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerifyPassword(t *testing.T) {
	t.Parallel()

	for _, pw := range []string{"p", "correct horse battery staple", "ünïcödé", " "} {
		hash, err := HashPassword(pw, bcrypt.MinCost)
		require.NoError(t, err)
		assert.NotEqual(t, pw, hash)
		assert.True(t, VerifyPassword(hash, pw), pw)
		assert.False(t, VerifyPassword(hash, pw+"x"), pw)
	}
}

func TestHashPasswordSalts(t *testing.T) {
	t.Parallel()

	a, err := HashPassword("same", bcrypt.MinCost)
	require.NoError(t, err)
	b, err := HashPassword("same", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestHashPasswordTooLong(t *testing.T) {
	t.Parallel()

	_, err := HashPassword(strings.Repeat("a", 73), bcrypt.MinCost)
	require.ErrorIs(t, err, ErrPasswordTooLong)
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	t.Parallel()

	assert.False(t, VerifyPassword("", "p"))
	assert.False(t, VerifyPassword("not-a-bcrypt-hash", "p"))
	assert.False(t, VerifyPassword("$2a$10$short", "p"))
}
