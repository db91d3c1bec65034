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
	"github.com/itaymdigi/coldtherapylanding/internal/stats"
)

const practiceColumns = `
	id, user_id, duration_seconds, temperature, notes, mood,
	pause_count, personal_best, completed_at`

type practiceRepository struct {
	db *sqlx.DB
}

// NewPracticeRepository creates a new PostgreSQL practice session repository
func NewPracticeRepository(db *sqlx.DB) repository.PracticeRepository {
	return &practiceRepository{db: db}
}

// Record inserts a practice session and bumps the owner's counters in one transaction
func (r *practiceRepository) Record(ctx context.Context, session *domain.PracticeSession) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollback(tx)

	if err := lockUser(ctx, tx, session.UserID); err != nil {
		return err
	}

	var longest sql.NullInt64
	err = tx.GetContext(ctx, &longest,
		`SELECT MAX(duration_seconds) FROM practice_sessions WHERE user_id = $1`, session.UserID)
	if err != nil {
		return fmt.Errorf("failed to read longest session: %w", err)
	}
	session.PersonalBest = stats.IsPersonalBest(session.Duration, int(longest.Int64), longest.Valid)

	query := `
		INSERT INTO practice_sessions (` + practiceColumns + `
		) VALUES (
			:id, :user_id, :duration_seconds, :temperature, :notes, :mood,
			:pause_count, :personal_best, :completed_at
		)`
	if _, err := tx.NamedExecContext(ctx, query, session); err != nil {
		return fmt.Errorf("failed to insert practice session: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE users
		SET total_sessions = total_sessions + 1,
			total_duration = total_duration + $2,
			updated_at = NOW()
		WHERE id = $1`, session.UserID, session.Duration)
	if err != nil {
		return fmt.Errorf("failed to increment user counters: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit practice session: %w", err)
	}

	return nil
}

// GetByID retrieves a practice session by its ID
func (r *practiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.PracticeSession, error) {
	var session domain.PracticeSession
	err := r.db.GetContext(ctx, &session, `SELECT `+practiceColumns+` FROM practice_sessions WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("practice session not found: %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get practice session: %w", err)
	}

	return &session, nil
}

// ListByUser retrieves a user's sessions, newest first
func (r *practiceRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.PracticeSession, error) {
	query := `SELECT ` + practiceColumns + `
		FROM practice_sessions
		WHERE user_id = $1
		ORDER BY completed_at DESC`
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	sessions := []*domain.PracticeSession{}
	if err := r.db.SelectContext(ctx, &sessions, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list practice sessions: %w", err)
	}

	return sessions, nil
}

// Remove deletes a practice session and decrements the owner's counters
func (r *practiceRepository) Remove(ctx context.Context, session *domain.PracticeSession) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollback(tx)

	if err := lockUser(ctx, tx, session.UserID); err != nil {
		return err
	}

	// Re-read the duration under the lock; the caller's copy may be stale.
	var duration int
	err = tx.GetContext(ctx, &duration, `
		DELETE FROM practice_sessions
		WHERE id = $1 AND user_id = $2
		RETURNING duration_seconds`, session.ID, session.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("practice session not found: %w", repository.ErrNotFound)
		}
		return fmt.Errorf("failed to delete practice session: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE users
		SET total_sessions = GREATEST(total_sessions - 1, 0),
			total_duration = GREATEST(total_duration - $2, 0),
			updated_at = NOW()
		WHERE id = $1`, session.UserID, duration)
	if err != nil {
		return fmt.Errorf("failed to decrement user counters: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit practice session removal: %w", err)
	}

	return nil
}

func lockUser(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID) error {
	var id uuid.UUID
	err := tx.GetContext(ctx, &id, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("user not found: %w", repository.ErrNotFound)
		}
		return fmt.Errorf("failed to lock user: %w", err)
	}
	return nil
}
