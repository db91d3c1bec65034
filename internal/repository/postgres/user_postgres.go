package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/itaymdigi/coldtherapylanding/internal/domain"
	"github.com/itaymdigi/coldtherapylanding/internal/repository"
)

const userColumns = `
	id, email, password_hash, full_name, phone, locale, role, status,
	total_sessions, total_duration, failed_logins, locked_until,
	password_reset_token, password_reset_token_expires_at,
	created_at, updated_at, last_login_at`

type userRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new PostgreSQL user repository
func NewUserRepository(db *sqlx.DB) repository.UserRepository {
	return &userRepository{db: db}
}

// Create inserts a new user into the database
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (` + userColumns + `
		) VALUES (
			:id, :email, :password_hash, :full_name, :phone, :locale, :role, :status,
			:total_sessions, :total_duration, :failed_logins, :locked_until,
			:password_reset_token, :password_reset_token_expires_at,
			:created_at, :updated_at, :last_login_at
		)`

	_, err := r.db.NamedExecContext(ctx, query, user)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("user %s: %w", user.Email, repository.ErrDuplicate)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by their ID
func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetByEmail retrieves a user by email, case-insensitively
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email)
}

// GetByPasswordResetToken retrieves the user holding an unexpired reset token
func (r *userRepository) GetByPasswordResetToken(ctx context.Context, token string) (*domain.User, error) {
	query := `SELECT ` + userColumns + `
		FROM users
		WHERE password_reset_token = $1 AND password_reset_token_expires_at > NOW()`
	return r.getOne(ctx, query, token)
}

func (r *userRepository) getOne(ctx context.Context, query string, args ...any) (*domain.User, error) {
	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user not found: %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// Update writes the mutable profile and credential fields. Practice counters
// are owned by the practice repository and are not touched here.
func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users
		SET email = :email,
			password_hash = :password_hash,
			full_name = :full_name,
			phone = :phone,
			locale = :locale,
			role = :role,
			status = :status,
			failed_logins = :failed_logins,
			locked_until = :locked_until,
			password_reset_token = :password_reset_token,
			password_reset_token_expires_at = :password_reset_token_expires_at,
			updated_at = NOW()
		WHERE id = :id`

	result, err := r.db.NamedExecContext(ctx, query, user)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("user %s: %w", user.Email, repository.ErrDuplicate)
		}
		return fmt.Errorf("failed to update user: %w", err)
	}

	return expectRows(result, "user")
}

func (r *userRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET last_login_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}

func (r *userRepository) IncrementFailedLogins(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET failed_logins = failed_logins + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to increment failed logins: %w", err)
	}
	return nil
}

func (r *userRepository) ResetFailedLogins(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE users SET failed_logins = 0, locked_until = NULL, status = 'active' WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to reset failed logins: %w", err)
	}
	return nil
}

// RepairCounters recomputes every user's counters from practice_sessions
func (r *userRepository) RepairCounters(ctx context.Context) (int64, error) {
	query := `
		UPDATE users u
		SET total_sessions = agg.sessions,
			total_duration = agg.duration,
			updated_at = NOW()
		FROM (
			SELECT u2.id,
				   COUNT(p.id) AS sessions,
				   COALESCE(SUM(p.duration_seconds), 0) AS duration
			FROM users u2
			LEFT JOIN practice_sessions p ON p.user_id = u2.id
			GROUP BY u2.id
		) agg
		WHERE u.id = agg.id
		  AND (u.total_sessions <> agg.sessions OR u.total_duration <> agg.duration)`

	result, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to repair counters: %w", err)
	}

	return result.RowsAffected()
}

func expectRows(result sql.Result, entity string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%s not found: %w", entity, repository.ErrNotFound)
	}
	return nil
}
