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

const mediaColumns = `id, kind, object_key, content_type, title_he, title_en, sort_order, published, created_at`

type mediaRepository struct {
	db *sqlx.DB
}

// NewMediaRepository creates a new PostgreSQL gallery repository
func NewMediaRepository(db *sqlx.DB) repository.MediaRepository {
	return &mediaRepository{db: db}
}

func (r *mediaRepository) Create(ctx context.Context, item *domain.MediaItem) error {
	query := `
		INSERT INTO media_items (` + mediaColumns + `)
		VALUES (:id, :kind, :object_key, :content_type, :title_he, :title_en, :sort_order, :published, :created_at)`

	if _, err := r.db.NamedExecContext(ctx, query, item); err != nil {
		return fmt.Errorf("failed to create media item: %w", err)
	}

	return nil
}

func (r *mediaRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.MediaItem, error) {
	var item domain.MediaItem
	err := r.db.GetContext(ctx, &item, `SELECT `+mediaColumns+` FROM media_items WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("media item not found: %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get media item: %w", err)
	}

	return &item, nil
}

func (r *mediaRepository) List(ctx context.Context, publishedOnly bool) ([]*domain.MediaItem, error) {
	query := `SELECT ` + mediaColumns + ` FROM media_items`
	if publishedOnly {
		query += ` WHERE published`
	}
	query += ` ORDER BY sort_order, created_at DESC`

	items := []*domain.MediaItem{}
	if err := r.db.SelectContext(ctx, &items, query); err != nil {
		return nil, fmt.Errorf("failed to list media items: %w", err)
	}

	return items, nil
}

func (r *mediaRepository) Update(ctx context.Context, item *domain.MediaItem) error {
	query := `
		UPDATE media_items
		SET title_he = :title_he, title_en = :title_en, sort_order = :sort_order, published = :published
		WHERE id = :id`

	result, err := r.db.NamedExecContext(ctx, query, item)
	if err != nil {
		return fmt.Errorf("failed to update media item: %w", err)
	}

	return expectRows(result, "media item")
}

func (r *mediaRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM media_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete media item: %w", err)
	}

	return expectRows(result, "media item")
}
