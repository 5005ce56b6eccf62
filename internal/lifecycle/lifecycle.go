// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package lifecycle owns the content review state machine: which status
// transitions are legal, which preconditions apply, and which timestamps
// and review fields each transition records. Functions here are pure state
// manipulation — persistence, rendering, and cache invalidation happen in
// the engine around them. The caller injects the clock.
package lifecycle

import (
	"fmt"
	"time"

	"schemapress/internal/models"
)

// Transition names a lifecycle operation, carried in errors so callers
// can report what was attempted.
type Transition string

const (
	TransitionSubmit         Transition = "submit_for_review"
	TransitionApprove        Transition = "approve"
	TransitionReject         Transition = "reject"
	TransitionPublish        Transition = "publish"
	TransitionDirectPublish  Transition = "direct_publish"
	TransitionUnpublish      Transition = "unpublish"
	TransitionAdminUnpublish Transition = "admin_unpublish"
)

// UnpublishReason is the fixed system reason recorded when an owner pulls
// their own published record.
const UnpublishReason = "unpublished by owner"

// DefaultAdminUnpublishReason is used when an administrator unpublishes
// without supplying a reason.
const DefaultAdminUnpublishReason = "removed by administrator"

// InvalidStateError is the terminal business error for an illegal
// transition. It carries the attempted transition and the current state
// and is never retried.
type InvalidStateError struct {
	Transition Transition
	Current    models.ContentStatus
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("invalid transition %q from state %q", e.Transition, e.Current)
}

// PreconditionError is a correctable business-rule failure, such as
// publishing a record with no category assigned.
type PreconditionError struct {
	Reason string
}

func (e *PreconditionError) Error() string {
	return "precondition failed: " + e.Reason
}

// allowedFrom lists the states each guarded transition accepts.
// admin_unpublish and delete are deliberately absent: they are legal from
// any state.
var allowedFrom = map[Transition][]models.ContentStatus{
	TransitionSubmit:        {models.ContentStatusDraft},
	TransitionApprove:       {models.ContentStatusPendingReview},
	TransitionReject:        {models.ContentStatusPendingReview},
	TransitionPublish:       {models.ContentStatusApproved},
	TransitionDirectPublish: {models.ContentStatusPendingReview, models.ContentStatusApproved},
	TransitionUnpublish:     {models.ContentStatusPublished},
}

// Check returns an InvalidStateError if the transition is not legal from
// the record's current status.
func Check(c *models.Content, t Transition) error {
	states, guarded := allowedFrom[t]
	if !guarded {
		return nil
	}
	for _, s := range states {
		if c.Status == s {
			return nil
		}
	}
	return &InvalidStateError{Transition: t, Current: c.Status}
}

// SubmitForReview moves a draft into the review queue.
func SubmitForReview(c *models.Content, now time.Time) error {
	if err := Check(c, TransitionSubmit); err != nil {
		return err
	}
	c.Status = models.ContentStatusPendingReview
	c.SubmittedAt = &now
	return nil
}

// Approve records the reviewer and moves the record to approved.
func Approve(c *models.Content, reviewerID int64, now time.Time) error {
	if err := Check(c, TransitionApprove); err != nil {
		return err
	}
	c.Status = models.ContentStatusApproved
	c.ReviewerID = &reviewerID
	c.ReviewedAt = &now
	return nil
}

// Reject records the reviewer and reason and moves the record to rejected.
func Reject(c *models.Content, reviewerID int64, reason string, now time.Time) error {
	if err := Check(c, TransitionReject); err != nil {
		return err
	}
	c.Status = models.ContentStatusRejected
	c.ReviewerID = &reviewerID
	c.ReviewedAt = &now
	c.RejectionReason = &reason
	return nil
}

// Publish moves an approved record to published. A record may only reach
// published with at least one category assigned.
func Publish(c *models.Content, categoryCount int, now time.Time) error {
	if err := Check(c, TransitionPublish); err != nil {
		return err
	}
	if categoryCount == 0 {
		return &PreconditionError{Reason: "cannot publish without at least one category"}
	}
	c.Status = models.ContentStatusPublished
	c.PublishedAt = &now
	return nil
}

// DirectPublish is the administrative override: review and publish in one
// step, from pending review or approved. The category guard applies only
// when requireCategory is set (configurable — the normal publish path
// always enforces it).
func DirectPublish(c *models.Content, reviewerID int64, categoryCount int, requireCategory bool, now time.Time) error {
	if err := Check(c, TransitionDirectPublish); err != nil {
		return err
	}
	if requireCategory && categoryCount == 0 {
		return &PreconditionError{Reason: "cannot publish without at least one category"}
	}
	c.Status = models.ContentStatusPublished
	c.ReviewerID = &reviewerID
	c.ReviewedAt = &now
	c.PublishedAt = &now
	return nil
}

// Unpublish is owner-initiated: a published record moves to rejected with
// the fixed system reason.
func Unpublish(c *models.Content, now time.Time) error {
	if err := Check(c, TransitionUnpublish); err != nil {
		return err
	}
	reason := UnpublishReason
	c.Status = models.ContentStatusRejected
	c.RejectionReason = &reason
	c.ReviewedAt = &now
	return nil
}

// AdminUnpublish is admin-initiated and legal from any state. An empty
// reason falls back to the default.
func AdminUnpublish(c *models.Content, reason string, now time.Time) {
	if reason == "" {
		reason = DefaultAdminUnpublishReason
	}
	c.Status = models.ContentStatusRejected
	c.RejectionReason = &reason
	c.ReviewedAt = &now
}

// MarkEdited applies the edit rule: a record in approved, published, or
// rejected state falls back to draft and loses its rejection reason —
// content cannot bypass re-review after modification. Returns true when
// the status changed.
func MarkEdited(c *models.Content) bool {
	switch c.Status {
	case models.ContentStatusApproved, models.ContentStatusPublished, models.ContentStatusRejected:
		c.Status = models.ContentStatusDraft
		c.RejectionReason = nil
		return true
	}
	return false
}
