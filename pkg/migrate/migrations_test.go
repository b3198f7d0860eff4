package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/TinoSanchez/app-achatrevente/pkg/migrate"
)

func TestMigrationsDirIsValid(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations dir: %v", err)
	}
}

func TestRecordsMigrationContainsSchemas(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_product_records_table.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no product records migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS product_records",
		"statut                TEXT NOT NULL DEFAULT 'En ligne'",
		"quantite              INTEGER NOT NULL DEFAULT 1",
		"CREATE INDEX IF NOT EXISTS idx_product_records_owner",
		"CREATE INDEX IF NOT EXISTS idx_product_records_owner_nom",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestPreferencesMigrationContainsDefaults(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_preferences_table.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no preferences migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"monthly_goal NUMERIC NOT NULL DEFAULT 500",
		"sku_prefix   TEXT NOT NULL DEFAULT 'P'",
		"sku_counter  INTEGER NOT NULL DEFAULT 1",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestCreateSQLMigrationWritesTemplate(t *testing.T) {
	dir := t.TempDir()

	path, err := migrate.CreateSQLMigration(dir, "Add Something New!")
	if err != nil {
		t.Fatalf("create migration: %v", err)
	}
	if !strings.HasSuffix(path, "_add_something_new.sql") {
		t.Fatalf("unexpected filename %q", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	if !strings.Contains(string(data), "-- +goose Up") || !strings.Contains(string(data), "-- +goose Down") {
		t.Fatalf("template missing goose markers:\n%s", data)
	}

	if err := migrate.ValidateDir(dir); err != nil {
		t.Fatalf("validate created migration: %v", err)
	}
}
