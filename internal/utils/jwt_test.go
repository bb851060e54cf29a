package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestAccessTokenRoundTrip(t *testing.T) {
	in := Identity{UserID: 42, Email: "amy@example.com", FullName: "Amy Tan", Role: "user"}

	tok, err := NewAccessToken(testSecret, in, 15)
	require.NoError(t, err)
	assert.NotEmpty(t, tok.Token)
	assert.WithinDuration(t, time.Now().UTC().Add(15*time.Minute), tok.Exp, 5*time.Second)

	out, err := DecodeIdentity(testSecret, tok.Token)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestDecodeIdentityRejectsWrongSecret(t *testing.T) {
	tok, err := NewAccessToken(testSecret, Identity{UserID: 1, Role: "user"}, 15)
	require.NoError(t, err)

	_, err = DecodeIdentity("other-secret", tok.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestDecodeIdentityRejectsGarbage(t *testing.T) {
	_, err := DecodeIdentity(testSecret, "not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestResetTokenRoundTrip(t *testing.T) {
	raw, err := NewResetToken(testSecret, 7, "amy@example.com", 15)
	require.NoError(t, err)

	uid, err := ParseResetToken(testSecret, raw)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), uid)
}

func TestResetTokenIsNotAnAccessToken(t *testing.T) {
	raw, err := NewResetToken(testSecret, 7, "amy@example.com", 15)
	require.NoError(t, err)

	// A reset token carries no role claim, so it cannot authenticate.
	_, err = DecodeIdentity(testSecret, raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAccessTokenIsNotAResetToken(t *testing.T) {
	tok, err := NewAccessToken(testSecret, Identity{UserID: 7, Role: "user"}, 15)
	require.NoError(t, err)

	_, err = ParseResetToken(testSecret, tok.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshTokenHashIsStable(t *testing.T) {
	rt, err := NewRefreshToken(30)
	require.NoError(t, err)
	assert.Len(t, rt.Raw, 96)

	h1 := HashRefreshRaw(rt.Raw)
	h2 := HashRefreshRaw(rt.Raw)
	assert.Equal(t, h1, h2)
	assert.NotEqual(t, rt.Raw, h1)
}
