package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/itaymdigi/coldtherapylanding/internal/config"
	"github.com/itaymdigi/coldtherapylanding/internal/domain"
	"github.com/itaymdigi/coldtherapylanding/internal/repository"
)

var ErrStorageDisabled = errors.New("media storage is not configured")

// ObjectStore is the part of *storage.Client the gallery needs.
type ObjectStore interface {
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
	PresignPut(ctx context.Context, key, contentType string, ttl time.Duration) (string, error)
	DeleteObject(ctx context.Context, key string) error
}

type MediaService struct {
	media     repository.MediaRepository
	store     ObjectStore
	viewTTL   time.Duration
	uploadTTL time.Duration
	logger    zerolog.Logger
	now       func() time.Time
}

type MediaView struct {
	*domain.MediaItem
	URL string `json:"url,omitempty"`
}

type CreateUploadRequest struct {
	Kind        string `json:"kind" validate:"required,oneof=photo video"`
	ContentType string `json:"content_type" validate:"required,max=100"`
	FileName    string `json:"file_name" validate:"required,max=255"`
	TitleHe     string `json:"title_he" validate:"max=200"`
	TitleEn     string `json:"title_en" validate:"max=200"`
	SortOrder   int    `json:"sort_order"`
}

type UploadResponse struct {
	Item      *domain.MediaItem `json:"item"`
	UploadURL string            `json:"upload_url"`
	ExpiresIn int               `json:"expires_in"`
}

// NewMediaService accepts a nil store when object storage is disabled; the
// gallery then lists metadata without URLs and rejects uploads.
func NewMediaService(media repository.MediaRepository, store ObjectStore, cfg config.StorageConfig) *MediaService {
	return &MediaService{
		media:     media,
		store:     store,
		viewTTL:   cfg.MediaURLTTL,
		uploadTTL: cfg.UploadURLTTL,
		logger:    log.With().Str("component", "media_service").Logger(),
		now:       time.Now,
	}
}

func (s *MediaService) List(ctx context.Context, publishedOnly bool) ([]MediaView, error) {
	items, err := s.media.List(ctx, publishedOnly)
	if err != nil {
		return nil, err
	}

	views := make([]MediaView, 0, len(items))
	for _, item := range items {
		view := MediaView{MediaItem: item}
		if s.store != nil {
			url, err := s.store.PresignGet(ctx, item.ObjectKey, s.viewTTL)
			if err != nil {
				return nil, err
			}
			view.URL = url
		}
		views = append(views, view)
	}
	return views, nil
}

// CreateUpload registers an unpublished item and returns a presigned PUT URL
// for the browser to upload the bytes directly.
func (s *MediaService) CreateUpload(ctx context.Context, req CreateUploadRequest) (*UploadResponse, error) {
	if s.store == nil {
		return nil, ErrStorageDisabled
	}

	kind := domain.MediaKind(req.Kind)
	wantPrefix := "image/"
	if kind == domain.MediaKindVideo {
		wantPrefix = "video/"
	}
	if !strings.HasPrefix(req.ContentType, wantPrefix) {
		return nil, fmt.Errorf("%w: content_type %q does not match kind %q", ErrInvalidInput, req.ContentType, req.Kind)
	}

	id := uuid.New()
	item := &domain.MediaItem{
		ID:          id,
		Kind:        kind,
		ObjectKey:   "gallery/" + id.String() + strings.ToLower(path.Ext(req.FileName)),
		ContentType: req.ContentType,
		TitleHe:     req.TitleHe,
		TitleEn:     req.TitleEn,
		SortOrder:   req.SortOrder,
		CreatedAt:   s.now(),
	}

	url, err := s.store.PresignPut(ctx, item.ObjectKey, item.ContentType, s.uploadTTL)
	if err != nil {
		return nil, err
	}
	if err := s.media.Create(ctx, item); err != nil {
		return nil, err
	}

	s.logger.Info().Str("media_id", id.String()).Str("key", item.ObjectKey).Msg("media upload created")
	return &UploadResponse{Item: item, UploadURL: url, ExpiresIn: int(s.uploadTTL.Seconds())}, nil
}

func (s *MediaService) Publish(ctx context.Context, id uuid.UUID, published bool) (*domain.MediaItem, error) {
	item, err := s.media.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	item.Published = published
	if err := s.media.Update(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// Delete removes the metadata row first; a leftover object is only logged.
func (s *MediaService) Delete(ctx context.Context, id uuid.UUID) error {
	item, err := s.media.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.media.Delete(ctx, id); err != nil {
		return err
	}
	if s.store != nil {
		if err := s.store.DeleteObject(ctx, item.ObjectKey); err != nil {
			s.logger.Warn().Err(err).Str("key", item.ObjectKey).Msg("failed to delete media object")
		}
	}
	return nil
}
