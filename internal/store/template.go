// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"errors"
	"fmt"

	"schemapress/internal/models"
	"schemapress/internal/schema"
)

// ErrSystemTemplate is returned when an update or delete targets one of
// the seeded system templates.
var ErrSystemTemplate = errors.New("system templates cannot be modified")

// TemplateStore handles all template database operations. The raw JSON
// definition is the source of truth; the parsed type tag and field list
// are rebuilt from it on every read.
type TemplateStore struct {
	db *sql.DB
}

// NewTemplateStore creates a new TemplateStore with the given database connection.
func NewTemplateStore(db *sql.DB) *TemplateStore {
	return &TemplateStore{db: db}
}

const templateColumns = `id, name, type_tag, definition, owner_id, is_system, created_at, updated_at`

func scanTemplate(row rowScanner) (*models.Template, error) {
	t := &models.Template{}
	err := row.Scan(&t.ID, &t.Name, &t.TypeTag, &t.Definition, &t.OwnerID, &t.IsSystem, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	vocabType, fields, err := schema.Parse([]byte(t.Definition))
	if err != nil {
		return nil, fmt.Errorf("stored definition for template %d is invalid: %w", t.ID, err)
	}
	t.VocabType = vocabType
	t.Fields = fields
	return t, nil
}

// FindByID retrieves a template by ID. Returns nil if not found.
func (s *TemplateStore) FindByID(id int64) (*models.Template, error) {
	row := s.db.QueryRow(`SELECT `+templateColumns+` FROM templates WHERE id = $1`, id)
	t, err := scanTemplate(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find template by id: %w", err)
	}
	return t, nil
}

// FindByName retrieves a template by its unique name. Returns nil if not found.
func (s *TemplateStore) FindByName(name string) (*models.Template, error) {
	row := s.db.QueryRow(`SELECT `+templateColumns+` FROM templates WHERE name = $1`, name)
	t, err := scanTemplate(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find template by name: %w", err)
	}
	return t, nil
}

// List returns all templates, system templates first, then by name.
func (s *TemplateStore) List() ([]models.Template, error) {
	rows, err := s.db.Query(`SELECT ` + templateColumns + ` FROM templates ORDER BY is_system DESC, name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var items []models.Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		items = append(items, *t)
	}
	return items, rows.Err()
}

// Create validates the definition and inserts a new template. A declared
// type tag must match the definition's vocabulary type; an omitted tag
// defaults to it. The tag is persisted at write time so listings do not
// have to parse JSON.
func (s *TemplateStore) Create(name, typeTag, definition string, ownerID int64, isSystem bool) (*models.Template, error) {
	vocabType, _, err := schema.ParseExpecting([]byte(definition), typeTag)
	if err != nil {
		return nil, err
	}
	if typeTag == "" {
		typeTag = vocabType
	}

	row := s.db.QueryRow(`
		INSERT INTO templates (name, type_tag, definition, owner_id, is_system)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+templateColumns,
		name, typeTag, definition, ownerID, isSystem,
	)
	t, err := scanTemplate(row)
	if err != nil {
		return nil, fmt.Errorf("create template: %w", err)
	}
	return t, nil
}

// Update replaces a template's name, type tag, and definition. System
// templates are immutable. The same declared-type check as Create applies.
func (s *TemplateStore) Update(id int64, name, typeTag, definition string) (*models.Template, error) {
	existing, err := s.FindByID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}
	if existing.IsSystem {
		return nil, ErrSystemTemplate
	}

	vocabType, _, err := schema.ParseExpecting([]byte(definition), typeTag)
	if err != nil {
		return nil, err
	}
	if typeTag == "" {
		typeTag = vocabType
	}

	row := s.db.QueryRow(`
		UPDATE templates SET name = $1, type_tag = $2, definition = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING `+templateColumns,
		name, typeTag, definition, id,
	)
	t, err := scanTemplate(row)
	if err != nil {
		return nil, fmt.Errorf("update template: %w", err)
	}
	return t, nil
}

// Delete removes a template. System templates are protected, and a
// template referenced by content fails on the foreign key.
func (s *TemplateStore) Delete(id int64) error {
	existing, err := s.FindByID(id)
	if err != nil {
		return err
	}
	if existing == nil {
		return nil
	}
	if existing.IsSystem {
		return ErrSystemTemplate
	}

	if _, err := s.db.Exec(`DELETE FROM templates WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	return nil
}
