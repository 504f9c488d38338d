package migrations

import (
	"context"
	"strings"
	"testing"

	"github.com/nerrad567/fleet-core/internal/infrastructure/database"
)

func TestEmbeddedMigrations(t *testing.T) {
	db, err := database.Open(database.Config{Path: database.InMemory, BusyTimeout: 1})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close() //nolint:errcheck // Test cleanup

	ctx := context.Background()
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	var name string
	err = db.QueryRowContext(ctx,
		"SELECT name FROM sqlite_master WHERE type='table' AND name='audit_logs'",
	).Scan(&name)
	if err != nil {
		t.Fatalf("audit_logs not created: %v", err)
	}

	applied, pending, err := db.GetMigrationStatus(ctx)
	if err != nil {
		t.Fatalf("GetMigrationStatus() error = %v", err)
	}
	if len(applied) == 0 || len(pending) != 0 {
		t.Errorf("applied = %d, pending = %d", len(applied), len(pending))
	}

	// Every embedded file is an up migration; schema changes are forward-only.
	entries, err := migrationsFS.ReadDir(".")
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	for _, e := range entries {
		if !strings.HasSuffix(e.Name(), ".up.sql") {
			t.Errorf("embedded file %q is not an up migration", e.Name())
		}
	}
	if len(entries) != len(applied) {
		t.Errorf("embedded files = %d, applied = %d", len(entries), len(applied))
	}
}
