package service

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"auth-service/internal/domain"
	"auth-service/internal/repository"
)

const (
	DefaultAccessTTL  = time.Hour
	DefaultRefreshTTL = 365 * 24 * time.Hour
)

var (
	// ErrTokenSigning wraps any failure to sign an access or refresh credential.
	ErrTokenSigning = errors.New("token signing failed")
	// ErrRefreshPersist wraps failures to store a refresh-token record.
	ErrRefreshPersist = errors.New("refresh token persistence failed")
)

// Claims are the JWT claims carried by both credentials.
type Claims struct {
	Role domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenConfig holds signing material and lifetimes.
// When PrivateKey is set access tokens are signed RS256, otherwise HS256 with AccessSecret.
// Refresh tokens are always HS256 with RefreshSecret.
type TokenConfig struct {
	PrivateKey    *rsa.PrivateKey
	AccessSecret  []byte
	RefreshSecret []byte
	Issuer        string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Now           func() time.Time
}

// TokenService issues access and refresh credentials.
type TokenService interface {
	GenerateAccessToken(payload domain.TokenPayload) (string, error)
	PersistRefreshToken(ctx context.Context, user *domain.User) (*domain.RefreshToken, error)
	GenerateRefreshToken(payload domain.TokenPayload, record *domain.RefreshToken) (string, error)
	AccessTTL() time.Duration
	RefreshTTL() time.Duration
}

type tokenService struct {
	cfg     TokenConfig
	refresh repository.RefreshTokenRepository
}

func NewTokenService(cfg TokenConfig, refresh repository.RefreshTokenRepository) (TokenService, error) {
	if cfg.PrivateKey == nil && len(cfg.AccessSecret) == 0 {
		return nil, errors.New("access token signing key is required")
	}
	if len(cfg.RefreshSecret) == 0 {
		return nil, errors.New("refresh token secret is required")
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = DefaultAccessTTL
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = DefaultRefreshTTL
	}
	if cfg.AccessTTL >= cfg.RefreshTTL {
		return nil, fmt.Errorf("access ttl %s must be shorter than refresh ttl %s", cfg.AccessTTL, cfg.RefreshTTL)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &tokenService{cfg: cfg, refresh: refresh}, nil
}

func (s *tokenService) AccessTTL() time.Duration  { return s.cfg.AccessTTL }
func (s *tokenService) RefreshTTL() time.Duration { return s.cfg.RefreshTTL }

func (s *tokenService) GenerateAccessToken(payload domain.TokenPayload) (string, error) {
	now := s.cfg.Now()
	claims := s.claims(payload, now, now.Add(s.cfg.AccessTTL))

	var (
		signed string
		err    error
	)
	if s.cfg.PrivateKey != nil {
		signed, err = jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(s.cfg.PrivateKey)
	} else {
		signed, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.cfg.AccessSecret)
	}
	if err != nil {
		return "", fmt.Errorf("%w: access: %v", ErrTokenSigning, err)
	}
	return signed, nil
}

// PersistRefreshToken stores one record expiring RefreshTTL from now.
func (s *tokenService) PersistRefreshToken(ctx context.Context, user *domain.User) (*domain.RefreshToken, error) {
	record := &domain.RefreshToken{
		UserID:    user.ID,
		ExpiresAt: s.cfg.Now().Add(s.cfg.RefreshTTL),
	}
	if _, err := s.refresh.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRefreshPersist, err)
	}
	return record, nil
}

// GenerateRefreshToken mints a credential embedding the record id as jti.
// Its expiry is taken from the record so both always agree.
func (s *tokenService) GenerateRefreshToken(payload domain.TokenPayload, record *domain.RefreshToken) (string, error) {
	if record == nil || record.ID == 0 {
		return "", fmt.Errorf("%w: refresh record has no id", ErrTokenSigning)
	}

	claims := s.claims(payload, s.cfg.Now(), record.ExpiresAt)
	claims.ID = strconv.FormatInt(record.ID, 10)

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.cfg.RefreshSecret)
	if err != nil {
		return "", fmt.Errorf("%w: refresh: %v", ErrTokenSigning, err)
	}
	return signed, nil
}

func (s *tokenService) claims(payload domain.TokenPayload, issuedAt, expiresAt time.Time) Claims {
	return Claims{
		Role: payload.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   payload.Subject,
			Issuer:    s.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
}
