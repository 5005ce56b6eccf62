// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"schemapress/internal/schema"
)

// Template is a reusable schema descriptor that content records are
// validated and rendered against. The Definition column stores the raw
// JSON; VocabType and Fields are the parsed form. System templates are
// created once at startup and cannot be edited or deleted.
type Template struct {
	ID         int64          `json:"id"`
	Name       string         `json:"name"`
	TypeTag    string         `json:"type_tag"`
	VocabType  string         `json:"vocab_type"`
	Definition string         `json:"definition"`
	Fields     []schema.Field `json:"fields"`
	OwnerID    int64          `json:"owner_id"`
	IsSystem   bool           `json:"is_system"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// RequiredFields returns the names of all required fields in schema order.
func (t *Template) RequiredFields() []string {
	var names []string
	for _, f := range t.Fields {
		if f.Required {
			names = append(names, f.Name)
		}
	}
	return names
}

// FieldNames returns all field names in schema order.
func (t *Template) FieldNames() []string {
	names := make([]string, 0, len(t.Fields))
	for _, f := range t.Fields {
		names = append(names, f.Name)
	}
	return names
}
