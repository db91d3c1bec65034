package memory

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/itaymdigi/coldtherapylanding/internal/domain"
	"github.com/itaymdigi/coldtherapylanding/internal/repository"
)

type userRepository struct {
	s *Store
}

func (r *userRepository) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return fmt.Errorf("user %s: %w", user.Email, repository.ErrDuplicate)
		}
	}
	r.s.users[user.ID] = *user
	return nil
}

func (r *userRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, fmt.Errorf("user not found: %w", repository.ErrNotFound)
	}
	return &u, nil
}

func (r *userRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, fmt.Errorf("user not found: %w", repository.ErrNotFound)
}

func (r *userRepository) GetByPasswordResetToken(_ context.Context, token string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	now := r.s.now()
	for _, u := range r.s.users {
		if u.PasswordResetToken != nil && *u.PasswordResetToken == token &&
			u.PasswordResetTokenExpiresAt != nil && now.Before(*u.PasswordResetTokenExpiresAt) {
			return &u, nil
		}
	}
	return nil, fmt.Errorf("user not found: %w", repository.ErrNotFound)
}

// Update keeps the stored counters; they belong to the practice repository.
func (r *userRepository) Update(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.users[user.ID]
	if !ok {
		return fmt.Errorf("user not found: %w", repository.ErrNotFound)
	}
	for id, u := range r.s.users {
		if id != user.ID && strings.EqualFold(u.Email, user.Email) {
			return fmt.Errorf("user %s: %w", user.Email, repository.ErrDuplicate)
		}
	}

	updated := *user
	updated.TotalSessions = current.TotalSessions
	updated.TotalDuration = current.TotalDuration
	updated.UpdatedAt = r.s.now()
	r.s.users[user.ID] = updated
	return nil
}

func (r *userRepository) UpdateLastLogin(_ context.Context, id uuid.UUID) error {
	return r.mutate(id, func(u *domain.User) {
		now := r.s.now()
		u.LastLoginAt = &now
	})
}

func (r *userRepository) IncrementFailedLogins(_ context.Context, id uuid.UUID) error {
	return r.mutate(id, func(u *domain.User) { u.FailedLogins++ })
}

func (r *userRepository) ResetFailedLogins(_ context.Context, id uuid.UUID) error {
	return r.mutate(id, func(u *domain.User) {
		u.FailedLogins = 0
		u.LockedUntil = nil
		u.Status = domain.UserStatusActive
	})
}

func (r *userRepository) RepairCounters(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	type totals struct{ sessions, duration int }
	sums := make(map[uuid.UUID]totals)
	for _, p := range r.s.practice {
		t := sums[p.UserID]
		t.sessions++
		t.duration += p.Duration
		sums[p.UserID] = t
	}

	var changed int64
	for id, u := range r.s.users {
		t := sums[id]
		if u.TotalSessions != t.sessions || u.TotalDuration != t.duration {
			u.TotalSessions = t.sessions
			u.TotalDuration = t.duration
			r.s.users[id] = u
			changed++
		}
	}
	return changed, nil
}

func (r *userRepository) mutate(id uuid.UUID, fn func(*domain.User)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return fmt.Errorf("user not found: %w", repository.ErrNotFound)
	}
	fn(&u)
	r.s.users[id] = u
	return nil
}
