// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"schemapress/internal/store"
)

// Template groups the schema-template handlers.
type Template struct {
	templates *store.TemplateStore
}

// NewTemplate creates a new Template handler group.
func NewTemplate(templates *store.TemplateStore) *Template {
	return &Template{templates: templates}
}

type templateRequest struct {
	Name       string `json:"name"`
	TypeTag    string `json:"type_tag"`
	Definition string `json:"definition"`
	OwnerID    int64  `json:"owner_id"`
}

// List handles GET /templates.
func (t *Template) List(w http.ResponseWriter, r *http.Request) {
	items, err := t.templates.List()
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"items": items})
}

// Get handles GET /templates/{id}.
func (t *Template) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		badRequest(w, "invalid id")
		return
	}
	tmpl, err := t.templates.FindByID(id)
	if err != nil {
		respondError(w, err)
		return
	}
	if tmpl == nil {
		respondJSON(w, http.StatusNotFound, errorBody{Error: "not found"})
		return
	}
	respondJSON(w, http.StatusOK, tmpl)
}

// Create handles POST /templates. The definition is validated before the
// template is stored; a malformed or unknown-type definition is rejected,
// as is a declared type_tag that differs from the definition's @type.
func (t *Template) Create(w http.ResponseWriter, r *http.Request) {
	var req templateRequest
	if err := decodeBody(w, r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if msg := validateName(req.Name); msg != "" {
		badRequest(w, msg)
		return
	}
	if req.OwnerID <= 0 {
		badRequest(w, "owner_id is required")
		return
	}

	tmpl, err := t.templates.Create(req.Name, req.TypeTag, req.Definition, req.OwnerID, false)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, tmpl)
}

// Update handles PUT /templates/{id}. System templates are immutable.
func (t *Template) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		badRequest(w, "invalid id")
		return
	}
	var req templateRequest
	if err := decodeBody(w, r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if msg := validateName(req.Name); msg != "" {
		badRequest(w, msg)
		return
	}

	tmpl, err := t.templates.Update(id, req.Name, req.TypeTag, req.Definition)
	if err != nil {
		respondError(w, err)
		return
	}
	if tmpl == nil {
		respondJSON(w, http.StatusNotFound, errorBody{Error: "not found"})
		return
	}
	respondJSON(w, http.StatusOK, tmpl)
}

// Delete handles DELETE /templates/{id}. System templates are protected.
func (t *Template) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		badRequest(w, "invalid id")
		return
	}
	if err := t.templates.Delete(id); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
