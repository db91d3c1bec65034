package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/itaymdigi/coldtherapylanding/internal/domain"
	"github.com/itaymdigi/coldtherapylanding/internal/repository"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

type CatalogService struct {
	packages repository.PackageRepository
	currency string
	logger   zerolog.Logger
	now      func() time.Time
}

type UpsertPackageRequest struct {
	Slug          string `json:"slug" yaml:"slug" validate:"required,max=64"`
	NameHe        string `json:"name_he" yaml:"name_he" validate:"required,max=120"`
	NameEn        string `json:"name_en" yaml:"name_en" validate:"max=120"`
	DescriptionHe string `json:"description_he" yaml:"description_he" validate:"max=2000"`
	DescriptionEn string `json:"description_en" yaml:"description_en" validate:"max=2000"`
	Kind          string `json:"kind" yaml:"kind" validate:"required,oneof=single pack membership"`
	PriceMinor    int64  `json:"price_minor" yaml:"price_minor" validate:"gte=0"`
	Currency      string `json:"currency" yaml:"currency" validate:"omitempty,len=3"`
	SessionCount  int    `json:"session_count" yaml:"session_count" validate:"gte=0"`
	DurationDays  int    `json:"duration_days" yaml:"duration_days" validate:"gte=0"`
	Active        *bool  `json:"active" yaml:"active"`
	SortOrder     int    `json:"sort_order" yaml:"sort_order"`
}

// catalogFile is the layout read by `studioctl packages import`.
type catalogFile struct {
	Packages []UpsertPackageRequest `yaml:"packages"`
}

func NewCatalogService(packages repository.PackageRepository, currency string) *CatalogService {
	return &CatalogService{
		packages: packages,
		currency: currency,
		logger:   log.With().Str("component", "catalog_service").Logger(),
		now:      time.Now,
	}
}

func (s *CatalogService) List(ctx context.Context, activeOnly bool) ([]*domain.Package, error) {
	return s.packages.List(ctx, activeOnly)
}

func (s *CatalogService) Upsert(ctx context.Context, req UpsertPackageRequest) (*domain.Package, error) {
	if !slugPattern.MatchString(req.Slug) {
		return nil, fmt.Errorf("%w: slug %q must be lowercase words joined by dashes", ErrInvalidInput, req.Slug)
	}
	kind := domain.PackageKind(req.Kind)
	switch kind {
	case domain.PackageKindSingle, domain.PackageKindPack, domain.PackageKindMembership:
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidInput, req.Kind)
	}
	if kind == domain.PackageKindMembership && req.DurationDays <= 0 {
		return nil, fmt.Errorf("%w: membership %q needs duration_days", ErrInvalidInput, req.Slug)
	}

	currency := req.Currency
	if currency == "" {
		currency = s.currency
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}

	now := s.now()
	pkg := &domain.Package{
		Slug:          req.Slug,
		NameHe:        req.NameHe,
		NameEn:        req.NameEn,
		DescriptionHe: req.DescriptionHe,
		DescriptionEn: req.DescriptionEn,
		Kind:          kind,
		PriceMinor:    req.PriceMinor,
		Currency:      currency,
		SessionCount:  req.SessionCount,
		DurationDays:  req.DurationDays,
		Active:        active,
		SortOrder:     req.SortOrder,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.packages.Upsert(ctx, pkg); err != nil {
		return nil, err
	}

	s.logger.Info().Str("slug", pkg.Slug).Bool("active", pkg.Active).Msg("package upserted")
	return pkg, nil
}

// Import upserts every package of a YAML catalogue. It stops at the first
// invalid entry; entries before it stay applied.
func (s *CatalogService) Import(ctx context.Context, r io.Reader) (int, error) {
	var file catalogFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return 0, fmt.Errorf("%w: empty catalogue", ErrInvalidInput)
		}
		return 0, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	for i, req := range file.Packages {
		if req.NameHe == "" {
			return i, fmt.Errorf("%w: package %q has no name_he", ErrInvalidInput, req.Slug)
		}
		if _, err := s.Upsert(ctx, req); err != nil {
			return i, err
		}
	}
	return len(file.Packages), nil
}
