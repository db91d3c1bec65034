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

const packageColumns = `
	id, slug, name_he, name_en, description_he, description_en, kind,
	price_minor, currency, session_count, duration_days, active, sort_order,
	created_at, updated_at`

type packageRepository struct {
	db *sqlx.DB
}

// NewPackageRepository creates a new PostgreSQL price list repository
func NewPackageRepository(db *sqlx.DB) repository.PackageRepository {
	return &packageRepository{db: db}
}

func (r *packageRepository) List(ctx context.Context, activeOnly bool) ([]*domain.Package, error) {
	query := `SELECT ` + packageColumns + ` FROM packages`
	if activeOnly {
		query += ` WHERE active`
	}
	query += ` ORDER BY sort_order, slug`

	pkgs := []*domain.Package{}
	if err := r.db.SelectContext(ctx, &pkgs, query); err != nil {
		return nil, fmt.Errorf("failed to list packages: %w", err)
	}

	return pkgs, nil
}

func (r *packageRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Package, error) {
	return r.getOne(ctx, `SELECT `+packageColumns+` FROM packages WHERE id = $1`, id)
}

func (r *packageRepository) GetBySlug(ctx context.Context, slug string) (*domain.Package, error) {
	return r.getOne(ctx, `SELECT `+packageColumns+` FROM packages WHERE slug = $1`, slug)
}

func (r *packageRepository) getOne(ctx context.Context, query string, args ...any) (*domain.Package, error) {
	var pkg domain.Package
	if err := r.db.GetContext(ctx, &pkg, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("package not found: %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get package: %w", err)
	}
	return &pkg, nil
}

// Upsert inserts a package or updates the existing row with the same slug
func (r *packageRepository) Upsert(ctx context.Context, pkg *domain.Package) error {
	query := `
		INSERT INTO packages (` + packageColumns + `
		) VALUES (
			:id, :slug, :name_he, :name_en, :description_he, :description_en, :kind,
			:price_minor, :currency, :session_count, :duration_days, :active, :sort_order,
			:created_at, :updated_at
		)
		ON CONFLICT (slug) DO UPDATE SET
			name_he = EXCLUDED.name_he,
			name_en = EXCLUDED.name_en,
			description_he = EXCLUDED.description_he,
			description_en = EXCLUDED.description_en,
			kind = EXCLUDED.kind,
			price_minor = EXCLUDED.price_minor,
			currency = EXCLUDED.currency,
			session_count = EXCLUDED.session_count,
			duration_days = EXCLUDED.duration_days,
			active = EXCLUDED.active,
			sort_order = EXCLUDED.sort_order,
			updated_at = EXCLUDED.updated_at
		RETURNING id`

	rows, err := r.db.NamedQueryContext(ctx, query, pkg)
	if err != nil {
		return fmt.Errorf("failed to upsert package: %w", err)
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&pkg.ID); err != nil {
			return fmt.Errorf("failed to scan package id: %w", err)
		}
	}

	return rows.Err()
}
