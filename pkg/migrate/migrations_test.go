package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Saadasw/BookOrderBackend/pkg/migrate"
)

func TestMigrationsDirIsValid(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("migrations dir invalid: %v", err)
	}
}

func TestSessionsMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_verification_sessions.sql")

	checks := []string{
		"CREATE TABLE verification_sessions",
		"CREATE UNIQUE INDEX idx_verification_sessions_session_token",
		"expires_at TIMESTAMPTZ NOT NULL",
		"order_data JSONB",
		"DROP TABLE verification_sessions",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestOrdersMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_orders.sql")

	checks := []string{
		"CREATE TABLE orders",
		"CREATE TABLE order_line_items",
		"REFERENCES orders (id) ON DELETE CASCADE",
		"status TEXT NOT NULL DEFAULT 'verified'",
		"payment_status TEXT NOT NULL DEFAULT 'pending'",
		"DROP TABLE order_line_items",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration file matching %s", pattern)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}
