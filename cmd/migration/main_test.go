package main

import (
	"strings"
	"testing"
)

func TestWithMigrationsTable(t *testing.T) {
	t.Parallel()

	got, err := withMigrationsTable("postgres://u:p@localhost:5432/sync?sslmode=disable", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(got, "x-migrations-table=competition_sync_migrations") || !strings.Contains(got, "sslmode=disable") {
		t.Fatalf("unexpected url, got=%q", got)
	}

	got, err = withMigrationsTable("postgres://localhost/sync?x-migrations-table=custom", "ignored")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(got, "x-migrations-table=custom") {
		t.Fatalf("expected existing table to be kept, got=%q", got)
	}
}

func TestPositiveInt(t *testing.T) {
	t.Parallel()

	if v, err := positiveInt(" 3 "); err != nil || v != 3 {
		t.Fatalf("expected 3, got=%d err=%v", v, err)
	}
	for _, raw := range []string{"0", "-1", "abc"} {
		if _, err := positiveInt(raw); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
	if v, err := nonNegativeInt("0"); err != nil || v != 0 {
		t.Fatalf("expected 0, got=%d err=%v", v, err)
	}
}
