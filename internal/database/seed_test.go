package database

import (
	"testing"
)

func TestSeedIdempotent(t *testing.T) {
	db, err := Connect(testDSN())
	if err != nil {
		t.Skipf("skipping: DB not available: %v", err)
	}
	defer db.Close()

	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	// Seed creates data only when missing. We call it twice to verify
	// idempotency; the database is not cleared first because other test
	// packages may run concurrently against it.
	if err := Seed(db); err != nil {
		t.Fatalf("first Seed: %v", err)
	}
	if err := Seed(db); err != nil {
		t.Fatalf("second Seed: %v", err)
	}

	// Verify at least one admin exists.
	var adminCount int
	if err := db.QueryRow("SELECT COUNT(*) FROM users WHERE role = 'admin'").Scan(&adminCount); err != nil {
		t.Fatalf("count admins: %v", err)
	}
	if adminCount < 1 {
		t.Errorf("expected at least 1 admin user, got %d", adminCount)
	}

	// Verify the three system templates exist exactly once each.
	for _, name := range []string{"Article", "Recipe", "Review"} {
		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM templates WHERE name = $1 AND is_system", name).Scan(&count); err != nil {
			t.Fatalf("count template %s: %v", name, err)
		}
		if count != 1 {
			t.Errorf("system template %s: got %d rows, want 1", name, count)
		}
	}
}
