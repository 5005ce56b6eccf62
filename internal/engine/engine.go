// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package engine orchestrates the content lifecycle: every mutation runs
// validate → score → render → persist → invalidate → notify as one pass.
// The engine is request-scoped and stateless between invocations; the
// store layer is the serialization point for concurrent transitions on
// the same record. Cache invalidation and owner notification are
// fire-and-forget — their failures are logged by the collaborators and
// never fail a transition.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"time"

	"schemapress/internal/cache"
	"schemapress/internal/integrity"
	"schemapress/internal/lifecycle"
	"schemapress/internal/models"
	"schemapress/internal/notify"
	"schemapress/internal/render"
)

// ErrNotFound is returned when a record or template does not exist.
var ErrNotFound = errors.New("not found")

// ContentStore is the persistence port for content records.
type ContentStore interface {
	FindByID(id int64) (*models.Content, error)
	Create(c *models.Content) (*models.Content, error)
	Update(c *models.Content) error
	Delete(id int64) error
	IncrementViews(id int64) error
}

// TemplateStore is the template lookup collaborator.
type TemplateStore interface {
	FindByID(id int64) (*models.Template, error)
}

// CategoryCounter is the category-membership collaborator consulted by
// the publish guard.
type CategoryCounter interface {
	CountForContent(contentID int64) (int, error)
}

// Invalidator is the cache invalidation port. Calls must not block or
// fail the transition that triggered them.
type Invalidator interface {
	Invalidate(ctx context.Context, kind cache.Kind, recordID int64)
}

// Notifier is the owner notification collaborator, fire-and-forget.
type Notifier interface {
	Notify(ctx context.Context, recordID int64, kind string, payload map[string]any)
}

// AuditLog records emitted invalidations for debugging. May be nil.
type AuditLog interface {
	Log(kind string, recordID int64, action string)
}

// Options tunes engine behavior.
type Options struct {
	// DirectPublishRequiresCategory extends the at-least-one-category
	// guard to the administrative direct-publish path. Off by default.
	DirectPublishRequiresCategory bool
}

// Engine wires the validator, renderer, and lifecycle rules to the
// stores and collaborators.
type Engine struct {
	contents    ContentStore
	templates   TemplateStore
	categories  CategoryCounter
	invalidator Invalidator
	notifier    Notifier
	audit       AuditLog
	opts        Options

	now func() time.Time
}

// New creates an Engine. audit may be nil.
func New(contents ContentStore, templates TemplateStore, categories CategoryCounter,
	invalidator Invalidator, notifier Notifier, audit AuditLog, opts Options) *Engine {
	return &Engine{
		contents:    contents,
		templates:   templates,
		categories:  categories,
		invalidator: invalidator,
		notifier:    notifier,
		audit:       audit,
		opts:        opts,
		now:         time.Now,
	}
}

// Submission carries the contributor's input for creating or editing a
// record. FieldOrder, when non-empty, sets the render emission order.
type Submission struct {
	OwnerID    int64
	TemplateID int64
	Title      string
	Data       map[string]any

	CopyrightNotice string
	Source          string
	AuthorName      string
	IsOriginal      bool

	FieldOrder []string
}

// Create validates a submission against its template, scores it, renders
// all outputs, and stores the record in draft.
func (e *Engine) Create(ctx context.Context, sub Submission) (*models.Content, error) {
	tmpl, err := e.template(sub.TemplateID)
	if err != nil {
		return nil, err
	}

	if err := integrity.Validate(sub.Data, tmpl.Fields).Err(); err != nil {
		return nil, err
	}

	rec := &models.Content{
		OwnerID:         sub.OwnerID,
		TemplateID:      tmpl.ID,
		Title:           sub.Title,
		Data:            sub.Data,
		CopyrightNotice: sub.CopyrightNotice,
		Source:          sub.Source,
		AuthorName:      sub.AuthorName,
		IsOriginal:      sub.IsOriginal,
		Status:          models.ContentStatusDraft,
	}
	rec.IntegrityScore = integrity.ScoreOrZero([]byte(tmpl.Definition), sub.Data)

	if err := e.renderInto(rec, tmpl, sub.FieldOrder); err != nil {
		return nil, err
	}

	created, err := e.contents.Create(rec)
	if err != nil {
		return nil, fmt.Errorf("create record: %w", err)
	}
	slog.Info("content created",
		"record_id", created.ID,
		"template_id", tmpl.ID,
		"integrity_score", created.IntegrityScore,
	)
	return created, nil
}

// Update applies an edit. Validation gates the save; a record in
// approved, published, or rejected state falls back to draft and loses
// its rejection reason. All three outputs are regenerated together when
// any render-relevant input changed, and a record that was published
// immediately before the edit emits the full publish-scope invalidations.
func (e *Engine) Update(ctx context.Context, id int64, sub Submission) (*models.Content, error) {
	rec, err := e.record(id)
	if err != nil {
		return nil, err
	}

	// The template reference is fixed at creation; edits cannot move a
	// record to a different schema.
	tmpl, err := e.template(rec.TemplateID)
	if err != nil {
		return nil, err
	}

	if err := integrity.Validate(sub.Data, tmpl.Fields).Err(); err != nil {
		return nil, err
	}

	wasPublished := rec.IsPublished()
	renderRelevant := rec.Title != sub.Title ||
		!reflect.DeepEqual(rec.Data, sub.Data) ||
		rec.CopyrightNotice != sub.CopyrightNotice ||
		rec.Source != sub.Source ||
		rec.AuthorName != sub.AuthorName ||
		rec.IsOriginal != sub.IsOriginal ||
		len(sub.FieldOrder) > 0

	rec.Title = sub.Title
	rec.Data = sub.Data
	rec.CopyrightNotice = sub.CopyrightNotice
	rec.Source = sub.Source
	rec.AuthorName = sub.AuthorName
	rec.IsOriginal = sub.IsOriginal

	if reverted := lifecycle.MarkEdited(rec); reverted {
		slog.Info("content reverted to draft by edit", "record_id", rec.ID)
	}

	if renderRelevant {
		rec.IntegrityScore = integrity.ScoreOrZero([]byte(tmpl.Definition), sub.Data)
		if err := e.renderInto(rec, tmpl, sub.FieldOrder); err != nil {
			return nil, err
		}
	}

	if err := e.contents.Update(rec); err != nil {
		return nil, fmt.Errorf("update record: %w", err)
	}

	if wasPublished {
		e.emitPublishScope(ctx, rec.ID, "edit")
	}
	return rec, nil
}

// SubmitForReview moves a draft into the review queue.
func (e *Engine) SubmitForReview(ctx context.Context, id int64) (*models.Content, error) {
	rec, err := e.record(id)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.SubmitForReview(rec, e.now()); err != nil {
		return nil, err
	}
	if err := e.contents.Update(rec); err != nil {
		return nil, fmt.Errorf("submit record: %w", err)
	}
	return rec, nil
}

// Approve records the reviewer's approval and notifies the owner.
func (e *Engine) Approve(ctx context.Context, id, reviewerID int64) (*models.Content, error) {
	rec, err := e.record(id)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.Approve(rec, reviewerID, e.now()); err != nil {
		return nil, err
	}
	if err := e.contents.Update(rec); err != nil {
		return nil, fmt.Errorf("approve record: %w", err)
	}
	e.notifier.Notify(ctx, rec.ID, notify.EventApproved, map[string]any{"title": rec.Title})
	return rec, nil
}

// Reject records the reviewer's rejection and reason and notifies the owner.
func (e *Engine) Reject(ctx context.Context, id, reviewerID int64, reason string) (*models.Content, error) {
	rec, err := e.record(id)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.Reject(rec, reviewerID, reason, e.now()); err != nil {
		return nil, err
	}
	if err := e.contents.Update(rec); err != nil {
		return nil, fmt.Errorf("reject record: %w", err)
	}
	e.notifier.Notify(ctx, rec.ID, notify.EventRejected, map[string]any{
		"title":  rec.Title,
		"reason": reason,
	})
	return rec, nil
}

// Publish moves an approved record live. Requires at least one category.
func (e *Engine) Publish(ctx context.Context, id int64) (*models.Content, error) {
	rec, err := e.record(id)
	if err != nil {
		return nil, err
	}
	count, err := e.categories.CountForContent(rec.ID)
	if err != nil {
		return nil, fmt.Errorf("count categories: %w", err)
	}
	if err := lifecycle.Publish(rec, count, e.now()); err != nil {
		return nil, err
	}
	if err := e.contents.Update(rec); err != nil {
		return nil, fmt.Errorf("publish record: %w", err)
	}
	e.emitPublishScope(ctx, rec.ID, "publish")
	e.notifier.Notify(ctx, rec.ID, notify.EventPublished, map[string]any{"title": rec.Title})
	return rec, nil
}

// DirectPublish is the administrative one-step review-and-publish. The
// category guard applies only when configured.
func (e *Engine) DirectPublish(ctx context.Context, id, reviewerID int64) (*models.Content, error) {
	rec, err := e.record(id)
	if err != nil {
		return nil, err
	}
	count, err := e.categories.CountForContent(rec.ID)
	if err != nil {
		return nil, fmt.Errorf("count categories: %w", err)
	}
	if err := lifecycle.DirectPublish(rec, reviewerID, count, e.opts.DirectPublishRequiresCategory, e.now()); err != nil {
		return nil, err
	}
	if err := e.contents.Update(rec); err != nil {
		return nil, fmt.Errorf("direct publish record: %w", err)
	}
	e.emitPublishScope(ctx, rec.ID, "direct_publish")
	e.notifier.Notify(ctx, rec.ID, notify.EventPublished, map[string]any{"title": rec.Title})
	return rec, nil
}

// Unpublish is the owner-initiated pull of a published record.
func (e *Engine) Unpublish(ctx context.Context, id int64) (*models.Content, error) {
	rec, err := e.record(id)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.Unpublish(rec, e.now()); err != nil {
		return nil, err
	}
	if err := e.contents.Update(rec); err != nil {
		return nil, fmt.Errorf("unpublish record: %w", err)
	}
	e.emitPublishScope(ctx, rec.ID, "unpublish")
	return rec, nil
}

// AdminUnpublish pulls a record from any state with a supplied-or-default
// reason.
func (e *Engine) AdminUnpublish(ctx context.Context, id int64, reason string) (*models.Content, error) {
	rec, err := e.record(id)
	if err != nil {
		return nil, err
	}
	lifecycle.AdminUnpublish(rec, reason, e.now())
	if err := e.contents.Update(rec); err != nil {
		return nil, fmt.Errorf("admin unpublish record: %w", err)
	}
	e.emitPublishScope(ctx, rec.ID, "admin_unpublish")
	return rec, nil
}

// Delete removes a record from any state — deliberately unguarded so
// owners and admins can remove content regardless of review state.
func (e *Engine) Delete(ctx context.Context, id int64) error {
	rec, err := e.record(id)
	if err != nil {
		return err
	}
	if err := e.contents.Delete(rec.ID); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	e.emitPublishScope(ctx, rec.ID, "delete")
	return nil
}

// Get loads one record.
func (e *Engine) Get(ctx context.Context, id int64) (*models.Content, error) {
	return e.record(id)
}

// RecordView loads a record and increments its view counter, best-effort.
func (e *Engine) RecordView(ctx context.Context, id int64) (*models.Content, error) {
	rec, err := e.record(id)
	if err != nil {
		return nil, err
	}
	if err := e.contents.IncrementViews(rec.ID); err != nil {
		slog.Warn("view counter increment failed", "record_id", rec.ID, "error", err)
	} else {
		rec.ViewCount++
	}
	return rec, nil
}

// ExportTable produces the delimited-table export for a record on demand.
func (e *Engine) ExportTable(ctx context.Context, id int64) (string, error) {
	in, err := e.exportInput(id)
	if err != nil {
		return "", err
	}
	return render.Table(in)
}

// ExportWordDocument produces the word-processor export on demand.
func (e *Engine) ExportWordDocument(ctx context.Context, id int64) (string, error) {
	in, err := e.exportInput(id)
	if err != nil {
		return "", err
	}
	return render.WordDocument(in), nil
}

// renderInto regenerates all three stored outputs together.
func (e *Engine) renderInto(rec *models.Content, tmpl *models.Template, fieldOrder []string) error {
	out, err := render.Render(render.Input{
		Title:           rec.Title,
		Data:            rec.Data,
		VocabType:       tmpl.VocabType,
		Fields:          tmpl.Fields,
		FieldOrder:      fieldOrder,
		CopyrightNotice: rec.CopyrightNotice,
		Source:          rec.Source,
		AuthorName:      rec.AuthorName,
		IsOriginal:      rec.IsOriginal,
	})
	if err != nil {
		return fmt.Errorf("render record: %w", err)
	}
	rec.LinkedData = out.LinkedData
	rec.HTML = out.HTML
	rec.Markdown = out.Markdown
	return nil
}

// exportInput rebuilds the render input for the on-demand exports.
func (e *Engine) exportInput(id int64) (render.Input, error) {
	rec, err := e.record(id)
	if err != nil {
		return render.Input{}, err
	}
	tmpl, err := e.template(rec.TemplateID)
	if err != nil {
		return render.Input{}, err
	}
	return render.Input{
		Title:           rec.Title,
		Data:            rec.Data,
		VocabType:       tmpl.VocabType,
		Fields:          tmpl.Fields,
		CopyrightNotice: rec.CopyrightNotice,
		Source:          rec.Source,
		AuthorName:      rec.AuthorName,
		IsOriginal:      rec.IsOriginal,
	}, nil
}

// emitPublishScope fires the full invalidation set for publish-affecting
// transitions: the record's rendered cache entry plus every aggregate
// cache keyed by published contents.
func (e *Engine) emitPublishScope(ctx context.Context, recordID int64, action string) {
	for _, kind := range cache.PublishKinds {
		e.invalidator.Invalidate(ctx, kind, recordID)
		if e.audit != nil {
			e.audit.Log(string(kind), recordID, action)
		}
	}
}

func (e *Engine) record(id int64) (*models.Content, error) {
	rec, err := e.contents.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("find record: %w", err)
	}
	if rec == nil {
		return nil, ErrNotFound
	}
	return rec, nil
}

func (e *Engine) template(id int64) (*models.Template, error) {
	tmpl, err := e.templates.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("find template: %w", err)
	}
	if tmpl == nil {
		return nil, ErrNotFound
	}
	return tmpl, nil
}
