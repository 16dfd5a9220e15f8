// Copyright (c) 2026 Renkei. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/renkei/internal/platform/sec"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTokenService(t *testing.T) *sec.TokenService {
	t.Helper()
	service, err := sec.NewTokenService(testSecret, "renkei-gateway")
	require.NoError(t, err)
	return service
}

/*
TestTokenService_RoundTrip verifies that a generated credential carries the
identity claims back through verification.
*/
func TestTokenService_RoundTrip(t *testing.T) {
	service := newTokenService(t)

	token, err := service.GenerateAccessToken("1001", "tai", "admin", "avatar.png", time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := service.VerifyToken(token)
	require.NoError(t, err)

	assert.Equal(t, "1001", claims.UserID)
	assert.Equal(t, "tai", claims.Username)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "avatar.png", claims.Avatar)
	assert.Equal(t, "1001", claims.Subject)
	assert.Equal(t, "renkei-gateway", claims.Issuer)
}

/*
TestTokenService_ExpiredClassification verifies that an expired credential is
distinguishable from a malformed one.
*/
func TestTokenService_ExpiredClassification(t *testing.T) {
	service := newTokenService(t)

	token, err := service.GenerateAccessToken("1001", "tai", "admin", "", -time.Minute)
	require.NoError(t, err)

	_, err = service.VerifyToken(token)
	require.Error(t, err)
	assert.ErrorIs(t, err, sec.ErrTokenExpired)
	assert.NotErrorIs(t, err, sec.ErrTokenMalformed)
}

/*
TestTokenService_MalformedClassification covers garbage input and wrong-key
signatures, both of which collapse to the malformed class.
*/
func TestTokenService_MalformedClassification(t *testing.T) {
	service := newTokenService(t)

	_, err := service.VerifyToken("not-a-jwt")
	assert.ErrorIs(t, err, sec.ErrTokenMalformed)

	// Signed by a different secret.
	other, err := sec.NewTokenService("ffffffffffffffffffffffffffffffff", "renkei-gateway")
	require.NoError(t, err)
	foreign, err := other.GenerateAccessToken("1001", "tai", "admin", "", time.Minute)
	require.NoError(t, err)

	_, err = service.VerifyToken(foreign)
	assert.ErrorIs(t, err, sec.ErrTokenMalformed)
}

/*
TestTokenService_WrongIssuer verifies the issuer claim is enforced.
*/
func TestTokenService_WrongIssuer(t *testing.T) {
	service := newTokenService(t)

	other, err := sec.NewTokenService(testSecret, "someone-else")
	require.NoError(t, err)
	foreign, err := other.GenerateAccessToken("1001", "tai", "admin", "", time.Minute)
	require.NoError(t, err)

	_, err = service.VerifyToken(foreign)
	assert.ErrorIs(t, err, sec.ErrTokenMalformed)
}

/*
TestNewTokenService_RejectsShortSecret guards against weak HMAC keys.
*/
func TestNewTokenService_RejectsShortSecret(t *testing.T) {
	_, err := sec.NewTokenService("too-short", "renkei-gateway")
	assert.Error(t, err)
}

/*
TestGenerateSecureToken verifies entropy-backed token generation.
*/
func TestGenerateSecureToken(t *testing.T) {
	first, err := sec.GenerateSecureToken(32)
	require.NoError(t, err)
	second, err := sec.GenerateSecureToken(32)
	require.NoError(t, err)

	// 32 bytes base64url-encoded without padding is 43 characters.
	assert.Len(t, first, 43)
	assert.NotEqual(t, first, second)
}

/*
TestHashToken verifies the digest is deterministic and hides the input.
*/
func TestHashToken(t *testing.T) {
	digest := sec.HashToken("my-refresh-secret")

	assert.Len(t, digest, 64) // hex-encoded SHA-256
	assert.Equal(t, digest, sec.HashToken("my-refresh-secret"))
	assert.NotEqual(t, digest, sec.HashToken("my-refresh-secre"))
	assert.NotContains(t, digest, "refresh")
}

/*
TestConstantTimeEquals covers the CSRF comparison helper.
*/
func TestConstantTimeEquals(t *testing.T) {
	assert.True(t, sec.ConstantTimeEquals("abc123", "abc123"))
	assert.False(t, sec.ConstantTimeEquals("abc123", "abc124"))
	assert.False(t, sec.ConstantTimeEquals("abc123", ""))
}
