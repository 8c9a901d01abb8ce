package migrate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestValidateDirAcceptsRepoMigrations(t *testing.T) {
	if err := ValidateDir("migrations"); err != nil {
		t.Fatalf("repo migrations failed validation: %v", err)
	}
}

func TestMigrationsCreateStorefrontSchema(t *testing.T) {
	entries, err := os.ReadDir("migrations")
	if err != nil {
		t.Fatalf("read migrations: %v", err)
	}
	var all strings.Builder
	for _, e := range entries {
		data, err := os.ReadFile(filepath.Join("migrations", e.Name()))
		if err != nil {
			t.Fatalf("read %s: %v", e.Name(), err)
		}
		all.Write(data)
	}
	content := all.String()

	for _, stmt := range []string{
		"CREATE TABLE IF NOT EXISTS users",
		"CONSTRAINT users_email_key UNIQUE (email)",
		"CREATE TABLE IF NOT EXISTS categories",
		"CREATE TABLE IF NOT EXISTS products",
		"price numeric(12,2) NOT NULL",
		"CREATE TABLE IF NOT EXISTS reviews",
		"CONSTRAINT reviews_user_product_key UNIQUE (user_id, product_id)",
		"CREATE TABLE IF NOT EXISTS wishlist_items",
		"CREATE TABLE IF NOT EXISTS orders",
		"total numeric(14,4) NOT NULL",
		"CREATE TABLE IF NOT EXISTS order_items",
	} {
		if !strings.Contains(content, stmt) {
			t.Errorf("missing expected statement %q", stmt)
		}
	}
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 3, 4, 10, 30, 0, 0, time.UTC)

	path, err := CreateSQLMigration(dir, "Add Coupons Table!", now)
	if err != nil {
		t.Fatalf("create migration: %v", err)
	}
	if filepath.Base(path) != "20260304103000_add_coupons_table.sql" {
		t.Fatalf("unexpected filename %s", filepath.Base(path))
	}
	if err := ValidateDir(dir); err != nil {
		t.Fatalf("generated migration should validate: %v", err)
	}
	if _, err := CreateSQLMigration(dir, "add coupons table", now); err == nil {
		t.Fatal("expected duplicate migration to fail")
	}
	if _, err := CreateSQLMigration(dir, "!!!", now); err == nil {
		t.Fatal("expected empty sanitized name to fail")
	}
}

func TestValidateSQL(t *testing.T) {
	tests := []struct {
		name string
		txt  string
		ok   bool
	}{
		{name: "missing up", txt: "-- +goose Down\n", ok: false},
		{name: "missing down", txt: "-- +goose Up\n", ok: false},
		{name: "reversed", txt: "-- +goose Down\n-- +goose Up\n", ok: false},
		{name: "unbalanced", txt: "-- +goose Up\n-- +goose StatementBegin\n-- +goose Down\n", ok: false},
		{name: "valid", txt: "-- +goose Up\nSELECT 1;\n-- +goose Down\nSELECT 1;\n", ok: true},
	}
	for _, tt := range tests {
		err := validateSQL(tt.name, tt.txt)
		if (err == nil) != tt.ok {
			t.Fatalf("%s: expected ok=%v, got err=%v", tt.name, tt.ok, err)
		}
	}
}

func TestValidateDirRejectsBadFilename(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "001_init.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := ValidateDir(dir); err == nil {
		t.Fatal("expected invalid filename error")
	}
}
