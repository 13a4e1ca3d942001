package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"auth-service/internal/domain"
	"auth-service/internal/repository"
)

const (
	createRefreshTokensTable = `
CREATE TABLE IF NOT EXISTS refresh_tokens (
	id BIGSERIAL PRIMARY KEY,
	user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	expires_at TIMESTAMPTZ NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
)`
	createRefreshTokensIndex = `CREATE INDEX IF NOT EXISTS idx_refresh_tokens_expires_at ON refresh_tokens(expires_at)`
)

type RefreshTokenRepository struct {
	db *pgxpool.Pool
}

func NewRefreshTokenRepository(db *pgxpool.Pool) repository.RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

func (r *RefreshTokenRepository) Init(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, createRefreshTokensTable); err != nil {
		return fmt.Errorf("create refresh_tokens table: %w", err)
	}
	if _, err := r.db.Exec(ctx, createRefreshTokensIndex); err != nil {
		return fmt.Errorf("create refresh_tokens index: %w", err)
	}
	return nil
}

func (r *RefreshTokenRepository) Create(ctx context.Context, token *domain.RefreshToken) (int64, error) {
	token.CreatedAt = time.Now().UTC()
	token.ExpiresAt = token.ExpiresAt.UTC()

	err := r.db.QueryRow(ctx, `
		INSERT INTO refresh_tokens (user_id, expires_at, created_at)
		VALUES ($1, $2, $3)
		RETURNING id`,
		token.UserID, token.ExpiresAt, token.CreatedAt,
	).Scan(&token.ID)
	if err != nil {
		return 0, fmt.Errorf("insert refresh token: %w", err)
	}
	return token.ID, nil
}

func (r *RefreshTokenRepository) GetByID(ctx context.Context, id int64) (*domain.RefreshToken, error) {
	var token domain.RefreshToken
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, expires_at, created_at
		FROM refresh_tokens
		WHERE id = $1`, id,
	).Scan(&token.ID, &token.UserID, &token.ExpiresAt, &token.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan refresh token: %w", err)
	}
	return &token, nil
}

func (r *RefreshTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM refresh_tokens WHERE expires_at <= $1`, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("delete expired refresh tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}
