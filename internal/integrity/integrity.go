// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package integrity checks structured data against a template's field list
// and computes a completeness score. Validation gates create and update;
// scoring is advisory and never blocks a save.
package integrity

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"schemapress/internal/schema"
)

// Result is the outcome of a required-field check. Errors carries one
// message per missing field; Missing carries just the field names.
type Result struct {
	Valid   bool
	Missing []string
	Errors  []string
}

// ValidationError is the user-correctable error surfaced when structured
// data fails the required-field check. It lists every missing field.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return "validation failed: missing required fields: " + strings.Join(e.Missing, ", ")
}

// Validate checks that every required field in the schema is present in
// data with a non-nil value. Presence is a key check only: an empty string
// passes validation (it still counts as unfilled for scoring). Unknown
// extra keys in data are ignored. All failures accumulate; there is no
// short-circuit on the first missing field.
func Validate(data map[string]any, fields []schema.Field) Result {
	res := Result{Valid: true}
	for _, f := range fields {
		if !f.Required {
			continue
		}
		if v, ok := data[f.Name]; !ok || v == nil {
			res.Valid = false
			res.Missing = append(res.Missing, f.Name)
			res.Errors = append(res.Errors, fmt.Sprintf("required field %q is missing", f.Name))
		}
	}
	return res
}

// Err returns a *ValidationError when the result is invalid, nil otherwise.
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	return &ValidationError{Missing: r.Missing}
}

// Score is the detailed completeness breakdown for one record.
type Score struct {
	Fraction float64
	Total    int
	Filled   int
	Missing  []string
}

// Compute counts how many of the schema's fields are filled in data.
// A field is filled when present with a non-nil value and, for strings,
// the trimmed string is non-empty. Non-string values count as filled
// whenever present and non-nil. The fraction is filled/total rounded
// half-up to two decimals; a zero-field schema is vacuously complete (1.0).
func Compute(data map[string]any, fields []schema.Field) Score {
	s := Score{Total: len(fields)}
	if s.Total == 0 {
		s.Fraction = 1.0
		return s
	}

	for _, f := range fields {
		if filled(data, f.Name) {
			s.Filled++
		} else {
			s.Missing = append(s.Missing, f.Name)
		}
	}

	s.Fraction = round2(float64(s.Filled) / float64(s.Total))
	return s
}

// ScoreOrZero parses a stored template definition and scores data against
// it. Any parse or validation failure degrades to 0.0 instead of
// propagating: the score is advisory and must not block a save over a
// cosmetic schema issue. Degraded scores are logged so a corrupt template
// stays visible.
func ScoreOrZero(definitionJSON []byte, data map[string]any) float64 {
	_, fields, err := schema.Parse(definitionJSON)
	if err != nil {
		slog.Warn("integrity score degraded to 0.0", "error", err)
		return 0.0
	}
	return Compute(data, fields).Fraction
}

// filled reports whether data carries a non-trivial value for name.
func filled(data map[string]any, name string) bool {
	v, ok := data[name]
	if !ok || v == nil {
		return false
	}
	if s, isStr := v.(string); isStr {
		return strings.TrimSpace(s) != ""
	}
	return true
}

// round2 rounds half-up to two decimal places.
func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
