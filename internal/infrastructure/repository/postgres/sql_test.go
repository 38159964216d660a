package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/lib/pq"
)

func TestIsUniqueViolation(t *testing.T) {
	t.Parallel()

	dup := &pq.Error{Code: "23505", Constraint: "matches_team_external_uidx"}

	t.Run("matches named constraint through wrapping", func(t *testing.T) {
		if !isUniqueViolation(fmt.Errorf("insert match: %w", dup), "matches_team_external_uidx") {
			t.Fatalf("expected unique violation match")
		}
	})

	t.Run("ignores other constraint", func(t *testing.T) {
		if isUniqueViolation(dup, "matches_pkey") {
			t.Fatalf("expected mismatch for a different constraint")
		}
	})

	t.Run("ignores non pq errors", func(t *testing.T) {
		if isUniqueViolation(errors.New("boom"), "") {
			t.Fatalf("expected false for plain error")
		}
	})
}

func TestIsNotFound(t *testing.T) {
	t.Parallel()

	if !isNotFound(fmt.Errorf("get team: %w", sql.ErrNoRows)) {
		t.Fatalf("expected wrapped ErrNoRows to be not found")
	}
}

func TestNullHelpers(t *testing.T) {
	t.Parallel()

	if got := nullStringValue(sql.NullString{}); got != "" {
		t.Fatalf("expected empty string, got=%q", got)
	}
	if got := nullTimePtr(sql.NullTime{}); got != nil {
		t.Fatalf("expected nil time, got=%v", got)
	}
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("WIB", 7*3600))
	if got := nullTimePtr(sql.NullTime{Time: at, Valid: true}); got == nil || got.Location() != time.UTC {
		t.Fatalf("expected utc time, got=%v", got)
	}
	if optionalString("  ") != nil {
		t.Fatalf("expected nil for blank string")
	}
}

func TestAdvisoryLockKey_StableAndDistinct(t *testing.T) {
	t.Parallel()

	if advisoryLockKey("team-a") != advisoryLockKey("team-a") {
		t.Fatalf("expected stable lock key")
	}
	if advisoryLockKey("team-a") == advisoryLockKey("team-b") {
		t.Fatalf("expected distinct lock keys")
	}
}
