// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"
	"strings"

	"schemapress/internal/models"
)

// TagStore handles all tag database operations. Tags are created lazily:
// EnsureByName inserts on first use and returns the existing row after
// that. Usage counters are maintained by ContentStore.SetTags.
type TagStore struct {
	db *sql.DB
}

// NewTagStore creates a new TagStore with the given database connection.
func NewTagStore(db *sql.DB) *TagStore {
	return &TagStore{db: db}
}

const tagColumns = `id, name, usage_count, created_at, updated_at`

func scanTag(row rowScanner) (*models.Tag, error) {
	t := &models.Tag{}
	err := row.Scan(&t.ID, &t.Name, &t.UsageCount, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// EnsureByName returns the tag with the given name, creating it if it
// does not exist yet. Names are normalized to lowercase.
func (s *TagStore) EnsureByName(name string) (*models.Tag, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return nil, fmt.Errorf("tag name must not be empty")
	}

	row := s.db.QueryRow(`
		INSERT INTO tags (name) VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET updated_at = tags.updated_at
		RETURNING `+tagColumns,
		name,
	)
	t, err := scanTag(row)
	if err != nil {
		return nil, fmt.Errorf("ensure tag: %w", err)
	}
	return t, nil
}

// FindByName retrieves a tag by its name. Returns nil if not found.
func (s *TagStore) FindByName(name string) (*models.Tag, error) {
	row := s.db.QueryRow(`SELECT `+tagColumns+` FROM tags WHERE name = $1`, strings.ToLower(strings.TrimSpace(name)))
	t, err := scanTag(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find tag by name: %w", err)
	}
	return t, nil
}

// List returns all tags ordered by usage, most used first.
func (s *TagStore) List() ([]models.Tag, error) {
	rows, err := s.db.Query(`SELECT ` + tagColumns + ` FROM tags ORDER BY usage_count DESC, name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	var items []models.Tag
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		items = append(items, *t)
	}
	return items, rows.Err()
}

// ListForContent returns the tags attached to one record, by name.
func (s *TagStore) ListForContent(contentID int64) ([]models.Tag, error) {
	rows, err := s.db.Query(`
		SELECT t.id, t.name, t.usage_count, t.created_at, t.updated_at
		FROM tags t
		JOIN content_tags ct ON ct.tag_id = t.id
		WHERE ct.content_id = $1
		ORDER BY t.name ASC
	`, contentID)
	if err != nil {
		return nil, fmt.Errorf("list tags for content: %w", err)
	}
	defer rows.Close()

	var items []models.Tag
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		items = append(items, *t)
	}
	return items, rows.Err()
}

// DeleteUnused removes tags whose usage counter has dropped to zero.
// Returns how many were removed.
func (s *TagStore) DeleteUnused() (int64, error) {
	res, err := s.db.Exec(`DELETE FROM tags WHERE usage_count <= 0`)
	if err != nil {
		return 0, fmt.Errorf("delete unused tags: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete unused tags: %w", err)
	}
	return n, nil
}
