// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"schemapress/internal/models"
	"schemapress/internal/slug"
	"schemapress/internal/store"
)

// Taxonomy groups the category and tag handlers.
type Taxonomy struct {
	categories *store.CategoryStore
	tags       *store.TagStore
}

// NewTaxonomy creates a new Taxonomy handler group.
func NewTaxonomy(categories *store.CategoryStore, tags *store.TagStore) *Taxonomy {
	return &Taxonomy{categories: categories, tags: tags}
}

type categoryRequest struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

// CategoryList handles GET /categories.
func (t *Taxonomy) CategoryList(w http.ResponseWriter, r *http.Request) {
	items, err := t.categories.List()
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"items": items})
}

// CategoryCreate handles POST /categories. An omitted slug is derived
// from the name.
func (t *Taxonomy) CategoryCreate(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeBody(w, r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if msg := validateName(req.Name); msg != "" {
		badRequest(w, msg)
		return
	}
	if req.Slug == "" {
		req.Slug = slug.Generate(req.Name)
	}

	cat, err := t.categories.Create(req.Name, req.Slug, req.Description)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, cat)
}

// CategoryUpdate handles PUT /categories/{id}.
func (t *Taxonomy) CategoryUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		badRequest(w, "invalid id")
		return
	}
	var req categoryRequest
	if err := decodeBody(w, r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if msg := validateName(req.Name); msg != "" {
		badRequest(w, msg)
		return
	}

	cat, err := t.categories.FindByID(id)
	if err != nil {
		respondError(w, err)
		return
	}
	if cat == nil {
		respondJSON(w, http.StatusNotFound, errorBody{Error: "not found"})
		return
	}

	cat.Name = req.Name
	if req.Slug != "" {
		cat.Slug = req.Slug
	}
	cat.Description = req.Description
	if err := t.categories.Update(cat); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, cat)
}

// CategoryDelete handles DELETE /categories/{id}.
func (t *Taxonomy) CategoryDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		badRequest(w, "invalid id")
		return
	}
	if err := t.categories.Delete(id); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// TagList handles GET /tags, most used first.
func (t *Taxonomy) TagList(w http.ResponseWriter, r *http.Request) {
	items, err := t.tags.List()
	if err != nil {
		respondError(w, err)
		return
	}
	if items == nil {
		items = []models.Tag{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"items": items})
}

// TagPruneUnused handles DELETE /tags/unused, an explicit maintenance
// action removing tags whose usage counter has dropped to zero. Tags are
// never pruned automatically.
func (t *Taxonomy) TagPruneUnused(w http.ResponseWriter, r *http.Request) {
	deleted, err := t.tags.DeleteUnused()
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"deleted": deleted})
}
