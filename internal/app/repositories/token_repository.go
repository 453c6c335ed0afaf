package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TokenRepository stores refresh tokens. Tokens are opaque values; the access
// token lifecycle lives entirely in the JWT itself.
type TokenRepository interface {
	CreateToken(ctx context.Context, token, userID string, expiresAt time.Time) error
	TokenByValue(ctx context.Context, token string) (userID string, expiresAt time.Time, revoked bool, err error)
	RevokeToken(ctx context.Context, token string) error
	RevokeAllForUser(ctx context.Context, userID string) error
}

// PgTokenRepository implements TokenRepository over Postgres
type PgTokenRepository struct {
	db *pgxpool.Pool
}

var _ TokenRepository = (*PgTokenRepository)(nil)

// NewTokenRepository creates a new PgTokenRepository
func NewTokenRepository(db *pgxpool.Pool) *PgTokenRepository {
	return &PgTokenRepository{db: db}
}

// CreateToken stores a refresh token for a user
func (r *PgTokenRepository) CreateToken(ctx context.Context, token, userID string, expiresAt time.Time) error {
	_, err := r.db.Exec(ctx,
		"INSERT INTO refresh_tokens (token, user_id, expires_at) VALUES ($1, $2, $3)",
		token, userID, expiresAt,
	)
	if err != nil {
		return fmt.Errorf("error creating refresh token: %w", err)
	}
	return nil
}

// TokenByValue retrieves a refresh token's owner and status. An unknown token
// reports empty userID, not an error.
func (r *PgTokenRepository) TokenByValue(ctx context.Context, token string) (string, time.Time, bool, error) {
	var userID string
	var expiresAt time.Time
	var revoked bool
	err := r.db.QueryRow(ctx,
		"SELECT user_id, expires_at, revoked FROM refresh_tokens WHERE token = $1",
		token,
	).Scan(&userID, &expiresAt, &revoked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", time.Time{}, false, nil
		}
		return "", time.Time{}, false, fmt.Errorf("error retrieving refresh token: %w", err)
	}
	return userID, expiresAt, revoked, nil
}

// RevokeToken marks one refresh token revoked
func (r *PgTokenRepository) RevokeToken(ctx context.Context, token string) error {
	_, err := r.db.Exec(ctx,
		"UPDATE refresh_tokens SET revoked = TRUE WHERE token = $1",
		token,
	)
	if err != nil {
		return fmt.Errorf("error revoking refresh token: %w", err)
	}
	return nil
}

// RevokeAllForUser revokes every refresh token of a user, e.g. on sign-out
func (r *PgTokenRepository) RevokeAllForUser(ctx context.Context, userID string) error {
	_, err := r.db.Exec(ctx,
		"UPDATE refresh_tokens SET revoked = TRUE WHERE user_id = $1 AND revoked = FALSE",
		userID,
	)
	if err != nil {
		return fmt.Errorf("error revoking refresh tokens: %w", err)
	}
	return nil
}
