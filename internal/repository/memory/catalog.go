package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/itaymdigi/coldtherapylanding/internal/domain"
	"github.com/itaymdigi/coldtherapylanding/internal/repository"
)

type packageRepository struct {
	s *Store
}

func (r *packageRepository) List(_ context.Context, activeOnly bool) ([]*domain.Package, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	pkgs := []*domain.Package{}
	for _, p := range r.s.packages {
		if activeOnly && !p.Active {
			continue
		}
		pkgs = append(pkgs, &p)
	}
	sort.Slice(pkgs, func(i, j int) bool {
		if pkgs[i].SortOrder != pkgs[j].SortOrder {
			return pkgs[i].SortOrder < pkgs[j].SortOrder
		}
		return pkgs[i].Slug < pkgs[j].Slug
	})
	return pkgs, nil
}

func (r *packageRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.Package, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.packages[id]
	if !ok {
		return nil, fmt.Errorf("package not found: %w", repository.ErrNotFound)
	}
	return &p, nil
}

func (r *packageRepository) GetBySlug(_ context.Context, slug string) (*domain.Package, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, p := range r.s.packages {
		if p.Slug == slug {
			return &p, nil
		}
	}
	return nil, fmt.Errorf("package not found: %w", repository.ErrNotFound)
}

func (r *packageRepository) Upsert(_ context.Context, pkg *domain.Package) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for id, p := range r.s.packages {
		if p.Slug == pkg.Slug {
			pkg.ID = id
			pkg.CreatedAt = p.CreatedAt
			break
		}
	}
	if pkg.ID == uuid.Nil {
		pkg.ID = uuid.New()
	}
	r.s.packages[pkg.ID] = *pkg
	return nil
}

type mediaRepository struct {
	s *Store
}

func (r *mediaRepository) Create(_ context.Context, item *domain.MediaItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.media[item.ID] = *item
	return nil
}

func (r *mediaRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.MediaItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	item, ok := r.s.media[id]
	if !ok {
		return nil, fmt.Errorf("media item not found: %w", repository.ErrNotFound)
	}
	return &item, nil
}

func (r *mediaRepository) List(_ context.Context, publishedOnly bool) ([]*domain.MediaItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	items := []*domain.MediaItem{}
	for _, item := range r.s.media {
		if publishedOnly && !item.Published {
			continue
		}
		items = append(items, &item)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].SortOrder != items[j].SortOrder {
			return items[i].SortOrder < items[j].SortOrder
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}

func (r *mediaRepository) Update(_ context.Context, item *domain.MediaItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.media[item.ID]; !ok {
		return fmt.Errorf("media item not found: %w", repository.ErrNotFound)
	}
	r.s.media[item.ID] = *item
	return nil
}

func (r *mediaRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.media[id]; !ok {
		return fmt.Errorf("media item not found: %w", repository.ErrNotFound)
	}
	delete(r.s.media, id)
	return nil
}
