package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"auth-service/internal/domain"
	"auth-service/internal/repository"
)

const createRefreshTokensTable = `
CREATE TABLE IF NOT EXISTS refresh_tokens (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	expires_at DATETIME NOT NULL,
	created_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_refresh_tokens_expires_at ON refresh_tokens(expires_at);
`

type RefreshTokenRepository struct {
	db *sql.DB
}

func NewRefreshTokenRepository(db *sql.DB) repository.RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

func (r *RefreshTokenRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createRefreshTokensTable); err != nil {
		return fmt.Errorf("create refresh_tokens table: %w", err)
	}
	return nil
}

// Timestamps are stored by the driver as text, so expires_at only orders
// correctly when every value is written in UTC. Create and DeleteExpired
// normalize to UTC for that reason.
func (r *RefreshTokenRepository) Create(ctx context.Context, token *domain.RefreshToken) (int64, error) {
	token.CreatedAt = time.Now().UTC()
	token.ExpiresAt = token.ExpiresAt.UTC()

	res, err := r.db.ExecContext(ctx, `
INSERT INTO refresh_tokens (user_id, expires_at, created_at)
VALUES (?, ?, ?)`,
		token.UserID,
		token.ExpiresAt,
		token.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert refresh token: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("refresh token last insert id: %w", err)
	}
	token.ID = id
	return id, nil
}

func (r *RefreshTokenRepository) GetByID(ctx context.Context, id int64) (*domain.RefreshToken, error) {
	var token domain.RefreshToken
	err := r.db.QueryRowContext(ctx, `
SELECT id, user_id, expires_at, created_at
FROM refresh_tokens
WHERE id = ?`,
		id,
	).Scan(&token.ID, &token.UserID, &token.ExpiresAt, &token.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan refresh token: %w", err)
	}
	return &token, nil
}

func (r *RefreshTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE expires_at <= ?`, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("delete expired refresh tokens: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("expired refresh tokens rows affected: %w", err)
	}
	return n, nil
}
