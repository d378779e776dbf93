package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueVerifyRoundTrip(t *testing.T) {
	t.Parallel()

	iss := NewIssuer("secret", time.Hour)
	tok, err := iss.Issue(42)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), tok.Exp, 5*time.Second)

	id, err := iss.Verify(tok.Token)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), id)
}

func TestTokensAreBoundToTheirIdentity(t *testing.T) {
	t.Parallel()

	iss := NewIssuer("secret", time.Hour)
	a, err := iss.Issue(1)
	require.NoError(t, err)
	b, err := iss.Issue(2)
	require.NoError(t, err)

	idA, err := iss.Verify(a.Token)
	require.NoError(t, err)
	idB, err := iss.Verify(b.Token)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), idA)
	assert.Equal(t, uint64(2), idB)
	assert.NotEqual(t, a.Token, b.Token)
}

func TestVerifyRejects(t *testing.T) {
	t.Parallel()

	iss := NewIssuer("secret", time.Hour)
	good, err := iss.Issue(7)
	require.NoError(t, err)

	expiredIss := NewIssuer("secret", time.Hour)
	expiredIss.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := expiredIss.Issue(7)
	require.NoError(t, err)

	forged, err := NewIssuer("other-secret", time.Hour).Issue(7)
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "7",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: "7",
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	badSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	tests := map[string]string{
		"expired":      expired.Token,
		"wrong secret": forged.Token,
		"alg none":     none,
		"no expiry":    noExp,
		"bad subject":  badSubject,
		"garbage":      "not.a.jwt",
		"tampered":     good.Token + "x",
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := iss.Verify(raw)
			require.ErrorIs(t, err, ErrInvalidToken)
		})
	}

	t.Run("empty", func(t *testing.T) {
		t.Parallel()
		_, err := iss.Verify("")
		require.ErrorIs(t, err, ErrMissingToken)
	})
}
