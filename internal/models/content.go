// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// ContentStatus represents the review state of a content record.
type ContentStatus string

const (
	ContentStatusDraft         ContentStatus = "draft"
	ContentStatusPendingReview ContentStatus = "pending_review"
	ContentStatusApproved      ContentStatus = "approved"
	ContentStatusPublished     ContentStatus = "published"
	ContentStatusRejected      ContentStatus = "rejected"
)

// Content is one structured record under review. Its structured data is a
// field-name-to-value mapping validated against the record's template.
// LinkedData, HTML, and Markdown are derived outputs: regenerated together
// on every render-relevant change, never authored independently.
type Content struct {
	ID         int64          `json:"id"`
	OwnerID    int64          `json:"owner_id"`
	TemplateID int64          `json:"template_id"`
	Title      string         `json:"title"`
	Data       map[string]any `json:"data"`

	// Generated outputs, cached on the record.
	LinkedData string `json:"linked_data"`
	HTML       string `json:"html"`
	Markdown   string `json:"markdown"`

	// Copyright metadata.
	CopyrightNotice string `json:"copyright_notice,omitempty"`
	Source          string `json:"source,omitempty"`
	AuthorName      string `json:"author_name,omitempty"`
	IsOriginal      bool   `json:"is_original"`

	IntegrityScore  float64       `json:"integrity_score"`
	Status          ContentStatus `json:"status"`
	ReviewerID      *int64        `json:"reviewer_id,omitempty"`
	RejectionReason *string       `json:"rejection_reason,omitempty"`
	ViewCount       int64         `json:"view_count"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`

	// Virtual fields populated by store methods.
	CategoryIDs []int64 `json:"category_ids,omitempty"`
	TagIDs      []int64 `json:"tag_ids,omitempty"`
}

// IsPublished returns true if the record is in published status.
func (c *Content) IsPublished() bool {
	return c.Status == ContentStatusPublished
}
