// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"schemapress/internal/cache"
	"schemapress/internal/engine"
	"schemapress/internal/markdown"
	"schemapress/internal/models"
	"schemapress/internal/store"
)

// Content groups the content-record handlers: CRUD, lifecycle
// transitions, taxonomy assignment, and the output endpoints.
type Content struct {
	engine      *engine.Engine
	contents    *store.ContentStore
	tags        *store.TagStore
	recordCache *cache.RecordCache
}

// NewContent creates a new Content handler group.
func NewContent(eng *engine.Engine, contents *store.ContentStore, tags *store.TagStore, recordCache *cache.RecordCache) *Content {
	return &Content{engine: eng, contents: contents, tags: tags, recordCache: recordCache}
}

// contentRequest is the request body for creating and updating records.
type contentRequest struct {
	OwnerID         int64          `json:"owner_id"`
	TemplateID      int64          `json:"template_id"`
	Title           string         `json:"title"`
	Data            map[string]any `json:"data"`
	CopyrightNotice string         `json:"copyright_notice"`
	Source          string         `json:"source"`
	AuthorName      string         `json:"author_name"`
	IsOriginal      bool           `json:"is_original"`
	FieldOrder      []string       `json:"field_order"`
}

func (cr *contentRequest) submission() engine.Submission {
	return engine.Submission{
		OwnerID:         cr.OwnerID,
		TemplateID:      cr.TemplateID,
		Title:           cr.Title,
		Data:            cr.Data,
		CopyrightNotice: cr.CopyrightNotice,
		Source:          cr.Source,
		AuthorName:      cr.AuthorName,
		IsOriginal:      cr.IsOriginal,
		FieldOrder:      cr.FieldOrder,
	}
}

// Create handles POST /content.
func (c *Content) Create(w http.ResponseWriter, r *http.Request) {
	var req contentRequest
	if err := decodeBody(w, r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if msg := validateTitle(req.Title); msg != "" {
		badRequest(w, msg)
		return
	}
	if req.OwnerID <= 0 || req.TemplateID <= 0 {
		badRequest(w, "owner_id and template_id are required")
		return
	}

	rec, err := c.engine.Create(r.Context(), req.submission())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, rec)
}

// Get handles GET /content/{id}.
func (c *Content) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		badRequest(w, "invalid id")
		return
	}
	rec, err := c.engine.Get(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

// Update handles PUT /content/{id}.
func (c *Content) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		badRequest(w, "invalid id")
		return
	}
	var req contentRequest
	if err := decodeBody(w, r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if msg := validateTitle(req.Title); msg != "" {
		badRequest(w, msg)
		return
	}

	rec, err := c.engine.Update(r.Context(), id, req.submission())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

// Delete handles DELETE /content/{id}.
func (c *Content) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		badRequest(w, "invalid id")
		return
	}
	if err := c.engine.Delete(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// List handles GET /content. Filters: ?status=pending_review,
// ?owner=<id>, or ?category=<id>; without a filter it returns published
// records.
func (c *Content) List(w http.ResponseWriter, r *http.Request) {
	var (
		items []models.Content
		err   error
	)
	switch {
	case r.URL.Query().Get("status") != "":
		items, err = c.contents.ListByStatus(models.ContentStatus(r.URL.Query().Get("status")))
	case r.URL.Query().Get("owner") != "":
		var ownerID int64
		if _, perr := fmt.Sscanf(r.URL.Query().Get("owner"), "%d", &ownerID); perr != nil || ownerID <= 0 {
			badRequest(w, "invalid owner filter")
			return
		}
		items, err = c.contents.ListByOwner(ownerID)
	case r.URL.Query().Get("category") != "":
		var categoryID int64
		if _, perr := fmt.Sscanf(r.URL.Query().Get("category"), "%d", &categoryID); perr != nil || categoryID <= 0 {
			badRequest(w, "invalid category filter")
			return
		}
		items, err = c.contents.ListPublishedByCategory(categoryID)
	default:
		items, err = c.contents.ListPublished()
	}
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"items": items})
}

// --- lifecycle transitions ---

type reviewRequest struct {
	ReviewerID int64  `json:"reviewer_id"`
	Reason     string `json:"reason,omitempty"`
}

// Submit handles POST /content/{id}/submit.
func (c *Content) Submit(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		badRequest(w, "invalid id")
		return
	}
	rec, err := c.engine.SubmitForReview(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

// Approve handles POST /content/{id}/approve.
func (c *Content) Approve(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		badRequest(w, "invalid id")
		return
	}
	var req reviewRequest
	if err := decodeBody(w, r, &req); err != nil || req.ReviewerID <= 0 {
		badRequest(w, "reviewer_id is required")
		return
	}
	rec, err := c.engine.Approve(r.Context(), id, req.ReviewerID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

// Reject handles POST /content/{id}/reject.
func (c *Content) Reject(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		badRequest(w, "invalid id")
		return
	}
	var req reviewRequest
	if err := decodeBody(w, r, &req); err != nil || req.ReviewerID <= 0 {
		badRequest(w, "reviewer_id is required")
		return
	}
	if msg := validateReason(req.Reason); msg != "" {
		badRequest(w, msg)
		return
	}
	rec, err := c.engine.Reject(r.Context(), id, req.ReviewerID, req.Reason)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

// Publish handles POST /content/{id}/publish.
func (c *Content) Publish(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		badRequest(w, "invalid id")
		return
	}
	rec, err := c.engine.Publish(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

// DirectPublish handles POST /content/{id}/direct-publish, the
// administrative review-and-publish shortcut.
func (c *Content) DirectPublish(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		badRequest(w, "invalid id")
		return
	}
	var req reviewRequest
	if err := decodeBody(w, r, &req); err != nil || req.ReviewerID <= 0 {
		badRequest(w, "reviewer_id is required")
		return
	}
	rec, err := c.engine.DirectPublish(r.Context(), id, req.ReviewerID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

// Unpublish handles POST /content/{id}/unpublish (owner-initiated).
func (c *Content) Unpublish(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		badRequest(w, "invalid id")
		return
	}
	rec, err := c.engine.Unpublish(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

// AdminUnpublish handles POST /content/{id}/admin-unpublish. The reason
// is optional; a default is recorded when omitted.
func (c *Content) AdminUnpublish(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		badRequest(w, "invalid id")
		return
	}
	var req reviewRequest
	if r.ContentLength > 0 {
		if err := decodeBody(w, r, &req); err != nil {
			badRequest(w, "invalid request body")
			return
		}
	}
	rec, err := c.engine.AdminUnpublish(r.Context(), id, req.Reason)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

// --- taxonomy assignment ---

// SetCategories handles PUT /content/{id}/categories.
func (c *Content) SetCategories(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		badRequest(w, "invalid id")
		return
	}
	var req struct {
		CategoryIDs []int64 `json:"category_ids"`
	}
	if err := decodeBody(w, r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if _, err := c.engine.Get(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	if err := c.contents.SetCategories(id, req.CategoryIDs); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetTags handles PUT /content/{id}/tags. Tags are passed by name and
// created on first use.
func (c *Content) SetTags(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		badRequest(w, "invalid id")
		return
	}
	var req struct {
		Tags []string `json:"tags"`
	}
	if err := decodeBody(w, r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if _, err := c.engine.Get(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}

	tagIDs := make([]int64, 0, len(req.Tags))
	for _, name := range req.Tags {
		if msg := validateName(name); msg != "" {
			badRequest(w, msg)
			return
		}
		tag, err := c.tags.EnsureByName(name)
		if err != nil {
			respondError(w, err)
			return
		}
		tagIDs = append(tagIDs, tag.ID)
	}
	if err := c.contents.SetTags(id, tagIDs); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- output endpoints ---

// Data handles GET /content/{id}/data: the machine-readable linked-data
// output. Serving it counts as a view.
func (c *Content) Data(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		badRequest(w, "invalid id")
		return
	}
	rec, err := c.engine.RecordView(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/ld+json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(rec.LinkedData))
}

// HTML handles GET /content/{id}/html: the rendered semantic page,
// served through the Valkey record cache.
func (c *Content) HTML(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		badRequest(w, "invalid id")
		return
	}
	ctx := r.Context()

	if cached, hit := c.recordCache.Get(ctx, id); hit {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(cached)
		return
	}

	rec, err := c.engine.Get(ctx, id)
	if err != nil {
		respondError(w, err)
		return
	}
	c.recordCache.Set(ctx, id, []byte(rec.HTML))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(rec.HTML))
}

// Preview handles GET /content/{id}/preview: the stored Markdown output
// converted to preview HTML.
func (c *Content) Preview(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		badRequest(w, "invalid id")
		return
	}
	rec, err := c.engine.Get(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	html, err := markdown.ToHTML(rec.Markdown)
	if err != nil {
		slog.Error("markdown preview failed", "record_id", id, "error", err)
		respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(html))
}

// ExportTable handles GET /content/{id}/export/table.
func (c *Content) ExportTable(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		badRequest(w, "invalid id")
		return
	}
	out, err := c.engine.ExportTable(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="record-%d.csv"`, id))
	w.Write([]byte(out))
}

// ExportDocument handles GET /content/{id}/export/document.
func (c *Content) ExportDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		badRequest(w, "invalid id")
		return
	}
	out, err := c.engine.ExportWordDocument(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/rtf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="record-%d.rtf"`, id))
	w.Write([]byte(out))
}
