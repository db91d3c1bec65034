package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/itaymdigi/coldtherapylanding/internal/domain"
	"github.com/itaymdigi/coldtherapylanding/internal/repository"
)

type sessionTokenRepository struct {
	s *Store
}

func (r *sessionTokenRepository) Create(_ context.Context, token *domain.SessionToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.tokens[token.TokenHash] = *token
	return nil
}

func (r *sessionTokenRepository) GetByHash(_ context.Context, tokenHash string) (*domain.SessionToken, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.tokens[tokenHash]
	if !ok {
		return nil, fmt.Errorf("session token not found: %w", repository.ErrNotFound)
	}
	return &t, nil
}

func (r *sessionTokenRepository) DeleteByHash(_ context.Context, tokenHash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.tokens[tokenHash]; !ok {
		return fmt.Errorf("session token not found: %w", repository.ErrNotFound)
	}
	delete(r.s.tokens, tokenHash)
	return nil
}

func (r *sessionTokenRepository) DeleteByUserID(_ context.Context, userID uuid.UUID) (int64, error) {
	return r.deleteWhere(func(t domain.SessionToken) bool { return t.UserID == userID }), nil
}

func (r *sessionTokenRepository) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	return r.deleteWhere(func(t domain.SessionToken) bool { return t.Expired(now) }), nil
}

func (r *sessionTokenRepository) deleteWhere(match func(domain.SessionToken) bool) int64 {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for hash, t := range r.s.tokens {
		if match(t) {
			delete(r.s.tokens, hash)
			n++
		}
	}
	return n
}
