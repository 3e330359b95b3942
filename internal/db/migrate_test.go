package db

import (
	"context"
	"io"
	"log/slog"
	"testing"

	dbfs "github.com/expertlane/matchd/db"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	d, err := New(context.Background(), "file:"+t.Name()+"?mode=memory&cache=shared", logger)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

func TestMigrateCreatesSchemaAndSeeds(t *testing.T) {
	ctx := context.Background()
	d := openTestDB(t)

	if err := Migrate(ctx, d, dbfs.Migrations, dbfs.SeedFiles); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	for _, table := range []string{
		"accounts", "briefs", "candidate_profiles", "matching_runs",
		"expert_invites", "settings", "outbox_emails", "notifications",
		"jobs", "dead_letter_jobs", "schema_migrations",
	} {
		var n int
		row := d.QueryRow(ctx, `SELECT COUNT(1) FROM sqlite_master WHERE type = 'table' AND name = ?`, table)
		if err := row.Scan(&n); err != nil || n != 1 {
			t.Errorf("table %s missing (n=%d err=%v)", table, n, err)
		}
	}

	// synonym tables are seeded
	var v string
	row := d.QueryRow(ctx, `SELECT value FROM settings WHERE key = 'tool_synonyms'`)
	if err := row.Scan(&v); err != nil || v == "" {
		t.Errorf("tool_synonyms seed missing: %q %v", v, err)
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	d := openTestDB(t)

	if err := Migrate(ctx, d, dbfs.Migrations, dbfs.SeedFiles); err != nil {
		t.Fatalf("first Migrate: %v", err)
	}

	// overwrite a seeded value; a re-run must not clobber it
	if _, err := d.Exec(ctx, `UPDATE settings SET value = '{"custom":["x"]}' WHERE key = 'tool_synonyms'`); err != nil {
		t.Fatalf("update seed: %v", err)
	}

	if err := Migrate(ctx, d, dbfs.Migrations, dbfs.SeedFiles); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}

	var applied int
	row := d.QueryRow(ctx, `SELECT COUNT(1) FROM schema_migrations`)
	if err := row.Scan(&applied); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if applied != 1 {
		t.Errorf("applied migrations = %d, want 1", applied)
	}

	var v string
	row = d.QueryRow(ctx, `SELECT value FROM settings WHERE key = 'tool_synonyms'`)
	if err := row.Scan(&v); err != nil || v != `{"custom":["x"]}` {
		t.Errorf("seed overwrote admin value: %q %v", v, err)
	}
}
