package domain

import (
	"time"

	"github.com/google/uuid"
)

type PackageKind string

const (
	PackageKindSingle     PackageKind = "single"
	PackageKindPack       PackageKind = "pack"
	PackageKindMembership PackageKind = "membership"
)

// Package is an entry in the studio price list.
type Package struct {
	ID            uuid.UUID   `json:"id" db:"id" yaml:"-"`
	Slug          string      `json:"slug" db:"slug" yaml:"slug"`
	NameHe        string      `json:"name_he" db:"name_he" yaml:"name_he"`
	NameEn        string      `json:"name_en" db:"name_en" yaml:"name_en"`
	DescriptionHe string      `json:"description_he" db:"description_he" yaml:"description_he"`
	DescriptionEn string      `json:"description_en" db:"description_en" yaml:"description_en"`
	Kind          PackageKind `json:"kind" db:"kind" yaml:"kind"`
	PriceMinor    int64       `json:"price_minor" db:"price_minor" yaml:"price_minor"`
	Currency      string      `json:"currency" db:"currency" yaml:"currency"`
	SessionCount  int         `json:"session_count" db:"session_count" yaml:"session_count"`
	DurationDays  int         `json:"duration_days" db:"duration_days" yaml:"duration_days"`
	Active        bool        `json:"active" db:"active" yaml:"active"`
	SortOrder     int         `json:"sort_order" db:"sort_order" yaml:"sort_order"`
	CreatedAt     time.Time   `json:"created_at" db:"created_at" yaml:"-"`
	UpdatedAt     time.Time   `json:"updated_at" db:"updated_at" yaml:"-"`
}

// Name returns the localized package name, falling back to Hebrew.
func (p *Package) Name(locale Locale) string {
	if locale == LocaleEnglish && p.NameEn != "" {
		return p.NameEn
	}
	return p.NameHe
}
