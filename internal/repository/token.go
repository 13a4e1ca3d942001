package repository

import (
	"context"
	"time"

	"auth-service/internal/domain"
)

// RefreshTokenRepository persists refresh-token records keyed by the id
// embedded in issued refresh credentials.
type RefreshTokenRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, token *domain.RefreshToken) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.RefreshToken, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
