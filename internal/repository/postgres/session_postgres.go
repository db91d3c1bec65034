package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/itaymdigi/coldtherapylanding/internal/domain"
	"github.com/itaymdigi/coldtherapylanding/internal/repository"
)

type sessionTokenRepository struct {
	db *sqlx.DB
}

// NewSessionTokenRepository creates a new PostgreSQL session token repository
func NewSessionTokenRepository(db *sqlx.DB) repository.SessionTokenRepository {
	return &sessionTokenRepository{db: db}
}

// Create inserts a new session token
func (r *sessionTokenRepository) Create(ctx context.Context, token *domain.SessionToken) error {
	query := `
		INSERT INTO session_tokens (
			id, user_id, token_hash, user_agent, ip_address, expires_at, created_at
		) VALUES (
			:id, :user_id, :token_hash, :user_agent, :ip_address, :expires_at, :created_at
		)`

	if _, err := r.db.NamedExecContext(ctx, query, token); err != nil {
		return fmt.Errorf("failed to create session token: %w", err)
	}

	return nil
}

// GetByHash retrieves a session token by its hash
func (r *sessionTokenRepository) GetByHash(ctx context.Context, tokenHash string) (*domain.SessionToken, error) {
	query := `
		SELECT id, user_id, token_hash, user_agent, ip_address, expires_at, created_at
		FROM session_tokens
		WHERE token_hash = $1`

	var token domain.SessionToken
	if err := r.db.GetContext(ctx, &token, query, tokenHash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("session token not found: %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get session token: %w", err)
	}

	return &token, nil
}

// DeleteByHash removes a single session token
func (r *sessionTokenRepository) DeleteByHash(ctx context.Context, tokenHash string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM session_tokens WHERE token_hash = $1`, tokenHash)
	if err != nil {
		return fmt.Errorf("failed to delete session token: %w", err)
	}

	return expectRows(result, "session token")
}

// DeleteByUserID removes every token a user holds
func (r *sessionTokenRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM session_tokens WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete user session tokens: %w", err)
	}

	return result.RowsAffected()
}

// DeleteExpired removes all tokens that expired at or before now
func (r *sessionTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM session_tokens WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired session tokens: %w", err)
	}

	return result.RowsAffected()
}
