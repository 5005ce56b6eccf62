// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"testing"

	"schemapress/internal/models"
)

func TestUserCreateAndFind(t *testing.T) {
	db := testDB(t)
	users := NewUserStore(db)
	t.Cleanup(func() { cleanUsers(t, db, "user-create@test.local") })

	u, err := users.Create("user-create@test.local", "a-strong-password", "Creator", models.RoleContributor)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if u.ID == 0 {
		t.Error("expected generated id")
	}
	if u.PasswordHash == "a-strong-password" {
		t.Error("password stored in plaintext")
	}

	byEmail, err := users.FindByEmail("user-create@test.local")
	if err != nil {
		t.Fatalf("FindByEmail: %v", err)
	}
	if byEmail == nil || byEmail.ID != u.ID {
		t.Error("user not found by email")
	}

	byID, err := users.FindByID(u.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if byID == nil || byID.Email != u.Email {
		t.Error("user not found by id")
	}
}

func TestUserFindMissingReturnsNil(t *testing.T) {
	db := testDB(t)
	users := NewUserStore(db)

	u, err := users.FindByEmail("no-such-user@test.local")
	if err != nil {
		t.Fatalf("FindByEmail: %v", err)
	}
	if u != nil {
		t.Error("expected nil for missing user")
	}
}

func TestUserCheckPassword(t *testing.T) {
	db := testDB(t)
	users := NewUserStore(db)
	t.Cleanup(func() { cleanUsers(t, db, "user-pass@test.local") })

	u, err := users.Create("user-pass@test.local", "correct horse battery", "Pass", models.RoleReviewer)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if !users.CheckPassword(u, "correct horse battery") {
		t.Error("correct password rejected")
	}
	if users.CheckPassword(u, "wrong password") {
		t.Error("wrong password accepted")
	}
}

func TestUserRolesRoundTrip(t *testing.T) {
	db := testDB(t)
	users := NewUserStore(db)

	tests := []struct {
		email     string
		role      models.UserRole
		canReview bool
	}{
		{"user-role-contrib@test.local", models.RoleContributor, false},
		{"user-role-reviewer@test.local", models.RoleReviewer, true},
		{"user-role-admin@test.local", models.RoleAdmin, true},
	}
	for _, tt := range tests {
		t.Cleanup(func() { cleanUsers(t, db, tt.email) })
		u, err := users.Create(tt.email, "password-12345", "Role Test", tt.role)
		if err != nil {
			t.Fatalf("Create %s: %v", tt.role, err)
		}
		if u.Role != tt.role {
			t.Errorf("role = %q, want %q", u.Role, tt.role)
		}
		if u.CanReview() != tt.canReview {
			t.Errorf("CanReview for %s = %v, want %v", tt.role, u.CanReview(), tt.canReview)
		}
	}
}

func TestUserDelete(t *testing.T) {
	db := testDB(t)
	users := NewUserStore(db)

	u, err := users.Create("user-delete@test.local", "password-12345", "Doomed", models.RoleContributor)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := users.Delete(u.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	found, err := users.FindByID(u.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if found != nil {
		t.Error("user still present after delete")
	}
}
