package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/itaymdigi/coldtherapylanding/internal/domain"
	"github.com/itaymdigi/coldtherapylanding/internal/repository"
	"github.com/itaymdigi/coldtherapylanding/internal/stats"
)

type practiceRepository struct {
	s *Store
}

func (r *practiceRepository) Record(_ context.Context, session *domain.PracticeSession) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	owner, ok := r.s.users[session.UserID]
	if !ok {
		return fmt.Errorf("user not found: %w", repository.ErrNotFound)
	}

	longest, has := 0, false
	for _, p := range r.s.practice {
		if p.UserID != session.UserID {
			continue
		}
		if !has || p.Duration > longest {
			longest = p.Duration
		}
		has = true
	}
	session.PersonalBest = stats.IsPersonalBest(session.Duration, longest, has)

	r.s.practice[session.ID] = *session
	owner.TotalSessions++
	owner.TotalDuration += session.Duration
	r.s.users[owner.ID] = owner
	return nil
}

func (r *practiceRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.PracticeSession, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.practice[id]
	if !ok {
		return nil, fmt.Errorf("practice session not found: %w", repository.ErrNotFound)
	}
	return &p, nil
}

func (r *practiceRepository) ListByUser(_ context.Context, userID uuid.UUID, limit int) ([]*domain.PracticeSession, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	sessions := []*domain.PracticeSession{}
	for _, p := range r.s.practice {
		if p.UserID == userID {
			sessions = append(sessions, &p)
		}
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].CompletedAt.After(sessions[j].CompletedAt)
	})
	if limit > 0 && len(sessions) > limit {
		sessions = sessions[:limit]
	}
	return sessions, nil
}

func (r *practiceRepository) Remove(_ context.Context, session *domain.PracticeSession) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	owner, ok := r.s.users[session.UserID]
	if !ok {
		return fmt.Errorf("user not found: %w", repository.ErrNotFound)
	}
	stored, ok := r.s.practice[session.ID]
	if !ok || stored.UserID != session.UserID {
		return fmt.Errorf("practice session not found: %w", repository.ErrNotFound)
	}

	delete(r.s.practice, session.ID)
	owner.TotalSessions = max(owner.TotalSessions-1, 0)
	owner.TotalDuration = max(owner.TotalDuration-stored.Duration, 0)
	r.s.users[owner.ID] = owner
	return nil
}
