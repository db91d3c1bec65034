package domain

import (
	"time"

	"github.com/google/uuid"
)

type MediaKind string

const (
	MediaKindPhoto MediaKind = "photo"
	MediaKindVideo MediaKind = "video"
)

// MediaItem is gallery metadata; the bytes live in object storage under ObjectKey.
type MediaItem struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Kind        MediaKind `json:"kind" db:"kind"`
	ObjectKey   string    `json:"object_key" db:"object_key"`
	ContentType string    `json:"content_type" db:"content_type"`
	TitleHe     string    `json:"title_he" db:"title_he"`
	TitleEn     string    `json:"title_en" db:"title_en"`
	SortOrder   int       `json:"sort_order" db:"sort_order"`
	Published   bool      `json:"published" db:"published"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
