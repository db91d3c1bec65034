package database

import (
	"io/fs"
	"strings"
	"testing"
)

func TestEmbeddedMigrations(t *testing.T) {
	files, err := fs.Glob(migrations, migrationsDir+"/*.sql")
	if err != nil {
		t.Fatalf("Glob() error = %v", err)
	}
	if len(files) == 0 {
		t.Fatalf("no migrations embedded")
	}

	for _, name := range files {
		t.Run(name, func(t *testing.T) {
			body, err := fs.ReadFile(migrations, name)
			if err != nil {
				t.Fatalf("ReadFile() error = %v", err)
			}
			for _, marker := range []string{"-- +goose Up", "-- +goose Down"} {
				if !strings.Contains(string(body), marker) {
					t.Fatalf("%s missing %q", name, marker)
				}
			}
		})
	}
}
