package utils

import (
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestAccessTokenSubject(t *testing.T) {
	tok, err := NewAccessToken("0123456789abcdef", 42, 5)
	require.NoError(t, err)

	parsed, err := jwt.Parse(tok.Token, func(*jwt.Token) (interface{}, error) {
		return []byte("0123456789abcdef"), nil
	})
	require.NoError(t, err)
	sub, err := parsed.Claims.GetSubject()
	require.NoError(t, err)
	assert.Equal(t, "42", sub)
}

func TestRefreshTokenHash(t *testing.T) {
	rt, err := NewRefreshToken(1)
	require.NoError(t, err)
	assert.Len(t, rt.Raw, 96)
	assert.Len(t, HashRefreshRaw(rt.Raw), 64)
	assert.Equal(t, HashRefreshRaw(rt.Raw), HashRefreshRaw(rt.Raw))
}

func TestPassword(t *testing.T) {
	h, err := HashPassword("s3cret!", bcrypt.MinCost)
	require.NoError(t, err)
	assert.True(t, VerifyPassword(h, "s3cret!"))
	assert.False(t, VerifyPassword(h, "nope"))
}

func TestHashPasswordRejectsTruncation(t *testing.T) {
	_, err := HashPassword(strings.Repeat("é", 40), bcrypt.MinCost) // 80 bytes
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}
