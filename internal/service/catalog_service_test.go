package service

import (
	"context"
	"errors"
	"strings"
	"testing"
)

const testCatalogue = `
packages:
  - slug: single-dip
    name_he: טבילה בודדת
    name_en: Single dip
    kind: single
    price_minor: 15000
    sort_order: 1
  - slug: monthly
    name_he: מנוי חודשי
    name_en: Monthly membership
    kind: membership
    price_minor: 45000
    duration_days: 30
    sort_order: 2
  - slug: retired
    name_he: ישן
    kind: pack
    session_count: 5
    active: false
`

func TestCatalogImport(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	n, err := env.catalog.Import(ctx, strings.NewReader(testCatalogue))
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if n != 3 {
		t.Fatalf("Import() = %d, want 3", n)
	}

	active, err := env.catalog.List(ctx, true)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(active) != 2 || active[0].Slug != "single-dip" || active[1].Slug != "monthly" {
		t.Fatalf("List(active) = %v", active)
	}
	if active[0].Currency != "ILS" {
		t.Fatalf("Currency = %q, want default ILS", active[0].Currency)
	}

	// importing again updates in place
	before := active[0].ID
	if _, err := env.catalog.Import(ctx, strings.NewReader(testCatalogue)); err != nil {
		t.Fatalf("second Import() error = %v", err)
	}
	again, _ := env.catalog.List(ctx, false)
	if len(again) != 3 {
		t.Fatalf("List(all) = %d packages, want 3", len(again))
	}
	for _, pkg := range again {
		if pkg.Slug == "single-dip" && pkg.ID != before {
			t.Fatalf("upsert changed the package id")
		}
	}
}

func TestCatalogUpsertRejects(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		req  UpsertPackageRequest
	}{
		{"bad slug", UpsertPackageRequest{Slug: "Bad Slug", NameHe: "x", Kind: "single"}},
		{"unknown kind", UpsertPackageRequest{Slug: "x", NameHe: "x", Kind: "gift"}},
		{"membership without days", UpsertPackageRequest{Slug: "m", NameHe: "x", Kind: "membership"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := env.catalog.Upsert(context.Background(), tt.req); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("Upsert() error = %v, want ErrInvalidInput", err)
			}
		})
	}

	if _, err := env.catalog.Import(context.Background(), strings.NewReader("")); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("Import(empty) error = %v, want ErrInvalidInput", err)
	}
}
