// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package schema parses template definitions into an ordered field list and
// a declared vocabulary type. A definition is a small JSON document carrying
// a Schema.org context marker, a vocabulary type, and a fields array. The
// parse is pure: no lookups, no side effects.
package schema

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ContextMarker is the vocabulary context every template definition must declare.
const ContextMarker = "https://schema.org"

// Field is a single entry in a template's ordered field list.
type Field struct {
	Name     string `json:"name"`
	Type     string `json:"type,omitempty"`
	Required bool   `json:"required,omitempty"`
	Label    string `json:"label,omitempty"`
}

// vocabularyTypes is the closed set of Schema.org types a template may
// declare. The built-in templates cover a subset; user templates must still
// pick from this registry.
var vocabularyTypes = map[string]bool{
	"Article":     true,
	"NewsArticle": true,
	"BlogPosting": true,
	"Recipe":      true,
	"Review":      true,
	"HowTo":       true,
	"FAQPage":     true,
}

// KnownVocabularyType reports whether name is in the vocabulary registry.
func KnownVocabularyType(name string) bool {
	return vocabularyTypes[name]
}

// ParseError indicates a definition that is not well-formed JSON.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("schema parse: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ValidationError indicates a well-formed definition that is semantically
// invalid: missing context marker, missing fields array, nameless fields,
// or a vocabulary type outside the registry or different from the expected one.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "schema validation: " + e.Reason
}

// definition mirrors the JSON shape of a stored template definition.
type definition struct {
	Context json.RawMessage `json:"@context"`
	Type    string          `json:"@type"`
	Fields  []Field         `json:"fields"`
}

// Parse decodes a template definition and returns its vocabulary type and
// ordered field list.
func Parse(definitionJSON []byte) (string, []Field, error) {
	return ParseExpecting(definitionJSON, "")
}

// ParseExpecting is Parse with an additional check that the definition
// declares the given vocabulary type. Used when validating a template
// submission against the type it claims. Pass "" to skip the check.
func ParseExpecting(definitionJSON []byte, expectedType string) (string, []Field, error) {
	var def definition
	if err := json.Unmarshal(definitionJSON, &def); err != nil {
		return "", nil, &ParseError{Err: err}
	}

	if len(def.Context) == 0 {
		return "", nil, &ValidationError{Reason: "missing @context vocabulary marker"}
	}
	var ctx string
	if err := json.Unmarshal(def.Context, &ctx); err != nil || !strings.Contains(ctx, "schema.org") {
		return "", nil, &ValidationError{Reason: "unsupported @context, expected " + ContextMarker}
	}

	if def.Type == "" {
		return "", nil, &ValidationError{Reason: "missing @type vocabulary name"}
	}
	if !vocabularyTypes[def.Type] {
		return "", nil, &ValidationError{Reason: fmt.Sprintf("unknown vocabulary type %q", def.Type)}
	}
	if expectedType != "" && def.Type != expectedType {
		return "", nil, &ValidationError{
			Reason: fmt.Sprintf("vocabulary type %q does not match declared type %q", def.Type, expectedType),
		}
	}

	if def.Fields == nil {
		return "", nil, &ValidationError{Reason: "missing fields array"}
	}
	for i, f := range def.Fields {
		if strings.TrimSpace(f.Name) == "" {
			return "", nil, &ValidationError{Reason: fmt.Sprintf("field %d has no name", i)}
		}
	}

	return def.Type, def.Fields, nil
}
