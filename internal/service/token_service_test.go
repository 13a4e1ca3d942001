package service

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auth-service/internal/domain"
)

var fixedNow = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func testTokenConfig() TokenConfig {
	return TokenConfig{
		AccessSecret:  []byte("access-secret-access-secret-1234"),
		RefreshSecret: []byte("refresh-secret-refresh-secret-12"),
		Issuer:        "auth-service",
		Now:           func() time.Time { return fixedNow },
	}
}

func parseClaims(t *testing.T, token string, key any) *Claims {
	t.Helper()
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return key, nil
	}, jwt.WithTimeFunc(func() time.Time { return fixedNow }))
	require.NoError(t, err)
	return claims
}

func TestNewTokenServiceValidation(t *testing.T) {
	cfg := testTokenConfig()
	cfg.AccessSecret = nil
	_, err := NewTokenService(cfg, &fakeTokenRepo{})
	assert.ErrorContains(t, err, "access token signing key")

	cfg = testTokenConfig()
	cfg.RefreshSecret = nil
	_, err = NewTokenService(cfg, &fakeTokenRepo{})
	assert.ErrorContains(t, err, "refresh token secret")

	cfg = testTokenConfig()
	cfg.AccessTTL = 2 * DefaultRefreshTTL
	_, err = NewTokenService(cfg, &fakeTokenRepo{})
	assert.ErrorContains(t, err, "shorter")
}

func TestGenerateAccessTokenHS256(t *testing.T) {
	svc, err := NewTokenService(testTokenConfig(), &fakeTokenRepo{})
	require.NoError(t, err)

	token, err := svc.GenerateAccessToken(domain.TokenPayload{Subject: "7", Role: domain.RoleCustomer})
	require.NoError(t, err)

	claims := parseClaims(t, token, []byte("access-secret-access-secret-1234"))
	assert.Equal(t, "7", claims.Subject)
	assert.Equal(t, domain.RoleCustomer, claims.Role)
	assert.Equal(t, "auth-service", claims.Issuer)
	assert.True(t, claims.ExpiresAt.Time.Equal(fixedNow.Add(time.Hour)))
	assert.Empty(t, claims.ID)
}

func TestGenerateAccessTokenRS256(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	cfg := testTokenConfig()
	cfg.AccessSecret = nil
	cfg.PrivateKey = key
	svc, err := NewTokenService(cfg, &fakeTokenRepo{})
	require.NoError(t, err)

	token, err := svc.GenerateAccessToken(domain.TokenPayload{Subject: "7", Role: domain.RoleAdmin})
	require.NoError(t, err)

	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(tok *jwt.Token) (any, error) {
		assert.Equal(t, jwt.SigningMethodRS256, tok.Method)
		return &key.PublicKey, nil
	}, jwt.WithTimeFunc(func() time.Time { return fixedNow }))
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, parsed.Claims.(*Claims).Role)
}

func TestRefreshTokenEmbedsRecord(t *testing.T) {
	repo := &fakeTokenRepo{}
	svc, err := NewTokenService(testTokenConfig(), repo)
	require.NoError(t, err)

	record, err := svc.PersistRefreshToken(context.Background(), &domain.User{ID: 7})
	require.NoError(t, err)
	require.Len(t, repo.records, 1)
	assert.Equal(t, int64(7), record.UserID)
	assert.Equal(t, fixedNow.Add(DefaultRefreshTTL), record.ExpiresAt)

	token, err := svc.GenerateRefreshToken(domain.TokenPayload{Subject: "7", Role: domain.RoleCustomer}, record)
	require.NoError(t, err)

	claims := parseClaims(t, token, []byte("refresh-secret-refresh-secret-12"))
	assert.Equal(t, strconv.FormatInt(record.ID, 10), claims.ID)
	assert.Equal(t, "7", claims.Subject)
	assert.True(t, claims.ExpiresAt.Time.Equal(record.ExpiresAt), "token expiry must match the record")
}

func TestRefreshTokenRequiresPersistedRecord(t *testing.T) {
	svc, err := NewTokenService(testTokenConfig(), &fakeTokenRepo{})
	require.NoError(t, err)

	_, err = svc.GenerateRefreshToken(domain.TokenPayload{Subject: "7"}, &domain.RefreshToken{ExpiresAt: fixedNow})
	assert.ErrorIs(t, err, ErrTokenSigning)

	_, err = svc.GenerateRefreshToken(domain.TokenPayload{Subject: "7"}, nil)
	assert.ErrorIs(t, err, ErrTokenSigning)
}

func TestPersistRefreshTokenFailure(t *testing.T) {
	repo := &fakeTokenRepo{err: errors.New("db down")}
	svc, err := NewTokenService(testTokenConfig(), repo)
	require.NoError(t, err)

	_, err = svc.PersistRefreshToken(context.Background(), &domain.User{ID: 1})
	assert.ErrorIs(t, err, ErrRefreshPersist)
}

func TestAccessTTLShorterThanRefresh(t *testing.T) {
	svc, err := NewTokenService(testTokenConfig(), &fakeTokenRepo{})
	require.NoError(t, err)
	assert.Less(t, svc.AccessTTL(), svc.RefreshTTL())
}
