// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// UserRole distinguishes contributors from reviewers and administrators.
type UserRole string

const (
	RoleContributor UserRole = "contributor"
	RoleReviewer    UserRole = "reviewer"
	RoleAdmin       UserRole = "admin"
)

// User owns templates and content records and, for reviewers, appears as
// the reviewer reference on reviewed records. Interactive authentication
// is handled outside this service; the password hash exists so the seeded
// admin account is usable by the external auth collaborator.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	DisplayName  string    `json:"display_name"`
	Role         UserRole  `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CanReview returns true for roles allowed to approve or reject content.
func (u *User) CanReview() bool {
	return u.Role == RoleReviewer || u.Role == RoleAdmin
}
