package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/itaymdigi/coldtherapylanding/internal/domain"
)

type PracticeRepository interface {
	// Record inserts the session and bumps the owner's counters atomically.
	// PersonalBest is decided against the owner's earlier sessions while the
	// owner is locked, so concurrent inserts cannot both claim it.
	Record(ctx context.Context, session *domain.PracticeSession) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.PracticeSession, error)
	// ListByUser returns newest first; limit <= 0 returns everything.
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.PracticeSession, error)
	// Remove deletes the session and decrements the owner's counters, never below zero.
	Remove(ctx context.Context, session *domain.PracticeSession) error
}
