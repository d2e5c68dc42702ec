package migrate

import (
	"io/fs"
	"strings"
	"testing"

	"jobfetch/db"
)

func TestEmbeddedMigrationsPresent(t *testing.T) {
	names, err := fs.Glob(db.Migrations, "migrations/*.sql")
	if err != nil {
		t.Fatalf("glob embedded migrations: %v", err)
	}
	if len(names) == 0 {
		t.Fatalf("no migrations embedded")
	}

	found := false
	for _, name := range names {
		body, err := fs.ReadFile(db.Migrations, name)
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		sql := string(body)
		if !strings.Contains(sql, "-- +goose Up") || !strings.Contains(sql, "-- +goose Down") {
			t.Errorf("%s is missing goose direction markers", name)
		}
		if strings.Contains(sql, "extraction_attempts") {
			found = true
		}
	}
	if !found {
		t.Errorf("no embedded migration creates extraction_attempts: %v", names)
	}
}
