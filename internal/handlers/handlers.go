// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the JSON HTTP handlers for the SchemaPress
// API. Handlers are grouped by concern (content, templates, taxonomy) and
// receive their dependencies through the handler struct. Authentication
// is terminated by the gateway in front of this service; callers identify
// themselves through request fields validated there.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"schemapress/internal/engine"
	"schemapress/internal/integrity"
	"schemapress/internal/lifecycle"
	"schemapress/internal/schema"
	"schemapress/internal/store"
)

// respondJSON writes v as a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response failed", "error", err)
	}
}

// errorBody is the uniform error response shape.
type errorBody struct {
	Error   string   `json:"error"`
	Missing []string `json:"missing_fields,omitempty"`
	Current string   `json:"current_status,omitempty"`
}

// respondError maps domain errors onto HTTP status codes:
// validation failures are 422, illegal transitions 409, failed
// preconditions 412, missing records 404, protected templates 403.
// Anything unrecognized is a 500 with the detail kept in the log.
func respondError(w http.ResponseWriter, err error) {
	var iverr *integrity.ValidationError
	if errors.As(err, &iverr) {
		respondJSON(w, http.StatusUnprocessableEntity, errorBody{
			Error:   iverr.Error(),
			Missing: iverr.Missing,
		})
		return
	}

	var perr *schema.ParseError
	var sverr *schema.ValidationError
	if errors.As(err, &perr) || errors.As(err, &sverr) {
		respondJSON(w, http.StatusUnprocessableEntity, errorBody{Error: err.Error()})
		return
	}

	var serr *lifecycle.InvalidStateError
	if errors.As(err, &serr) {
		respondJSON(w, http.StatusConflict, errorBody{
			Error:   serr.Error(),
			Current: string(serr.Current),
		})
		return
	}

	var prerr *lifecycle.PreconditionError
	if errors.As(err, &prerr) {
		respondJSON(w, http.StatusPreconditionFailed, errorBody{Error: prerr.Error()})
		return
	}

	if errors.Is(err, engine.ErrNotFound) {
		respondJSON(w, http.StatusNotFound, errorBody{Error: "not found"})
		return
	}

	if errors.Is(err, store.ErrSystemTemplate) {
		respondJSON(w, http.StatusForbidden, errorBody{Error: err.Error()})
		return
	}

	slog.Error("request failed", "error", err)
	respondJSON(w, http.StatusInternalServerError, errorBody{Error: "internal server error"})
}

// badRequest writes a 400 with the given message.
func badRequest(w http.ResponseWriter, msg string) {
	respondJSON(w, http.StatusBadRequest, errorBody{Error: msg})
}

// urlID extracts the {id} route parameter as an int64.
func urlID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// decodeBody decodes the request body into v, rejecting unknown fields
// and bodies larger than the structured-data cap.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxDataBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
