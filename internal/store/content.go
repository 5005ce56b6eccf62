// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"schemapress/internal/models"
)

// ContentStore handles all content-record database operations. The
// structured data mapping is stored as JSONB; category and tag links live
// in join tables and are loaded into the record's virtual fields.
type ContentStore struct {
	db *sql.DB
}

// NewContentStore creates a new ContentStore with the given database connection.
func NewContentStore(db *sql.DB) *ContentStore {
	return &ContentStore{db: db}
}

const contentColumns = `id, owner_id, template_id, title, data,
       linked_data, html, markdown,
       copyright_notice, source, author_name, is_original,
       integrity_score, status, reviewer_id, rejection_reason, view_count,
       created_at, updated_at, submitted_at, reviewed_at, published_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContent(row rowScanner) (*models.Content, error) {
	c := &models.Content{}
	var data []byte
	err := row.Scan(
		&c.ID, &c.OwnerID, &c.TemplateID, &c.Title, &data,
		&c.LinkedData, &c.HTML, &c.Markdown,
		&c.CopyrightNotice, &c.Source, &c.AuthorName, &c.IsOriginal,
		&c.IntegrityScore, &c.Status, &c.ReviewerID, &c.RejectionReason, &c.ViewCount,
		&c.CreatedAt, &c.UpdatedAt, &c.SubmittedAt, &c.ReviewedAt, &c.PublishedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, &c.Data); err != nil {
		return nil, fmt.Errorf("decode content data: %w", err)
	}
	return c, nil
}

// FindByID retrieves a content record by ID. Returns nil if not found.
func (s *ContentStore) FindByID(id int64) (*models.Content, error) {
	row := s.db.QueryRow(`SELECT `+contentColumns+` FROM content WHERE id = $1`, id)
	c, err := scanContent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find content by id: %w", err)
	}
	if err := s.loadLinks(c); err != nil {
		return nil, err
	}
	return c, nil
}

// Create inserts a new content record and returns it with the generated ID.
func (s *ContentStore) Create(c *models.Content) (*models.Content, error) {
	data, err := json.Marshal(c.Data)
	if err != nil {
		return nil, fmt.Errorf("encode content data: %w", err)
	}

	row := s.db.QueryRow(`
		INSERT INTO content (owner_id, template_id, title, data,
		                     linked_data, html, markdown,
		                     copyright_notice, source, author_name, is_original,
		                     integrity_score, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING `+contentColumns,
		c.OwnerID, c.TemplateID, c.Title, data,
		c.LinkedData, c.HTML, c.Markdown,
		c.CopyrightNotice, c.Source, c.AuthorName, c.IsOriginal,
		c.IntegrityScore, c.Status,
	)
	result, err := scanContent(row)
	if err != nil {
		return nil, fmt.Errorf("create content: %w", err)
	}
	return result, nil
}

// Update modifies an existing content record, including its lifecycle
// fields. The view counter is not touched here; use IncrementViews.
func (s *ContentStore) Update(c *models.Content) error {
	data, err := json.Marshal(c.Data)
	if err != nil {
		return fmt.Errorf("encode content data: %w", err)
	}

	_, err = s.db.Exec(`
		UPDATE content SET
			title = $1, data = $2,
			linked_data = $3, html = $4, markdown = $5,
			copyright_notice = $6, source = $7, author_name = $8, is_original = $9,
			integrity_score = $10, status = $11,
			reviewer_id = $12, rejection_reason = $13,
			submitted_at = $14, reviewed_at = $15, published_at = $16,
			updated_at = NOW()
		WHERE id = $17
	`, c.Title, data,
		c.LinkedData, c.HTML, c.Markdown,
		c.CopyrightNotice, c.Source, c.AuthorName, c.IsOriginal,
		c.IntegrityScore, c.Status,
		c.ReviewerID, c.RejectionReason,
		c.SubmittedAt, c.ReviewedAt, c.PublishedAt,
		c.ID,
	)
	if err != nil {
		return fmt.Errorf("update content: %w", err)
	}
	return nil
}

// Delete removes a content record. Join-table rows cascade; tag usage
// counters are decremented first.
func (s *ContentStore) Delete(id int64) error {
	if _, err := s.db.Exec(`
		UPDATE tags SET usage_count = usage_count - 1, updated_at = NOW()
		WHERE id IN (SELECT tag_id FROM content_tags WHERE content_id = $1)
	`, id); err != nil {
		return fmt.Errorf("release content tags: %w", err)
	}
	if _, err := s.db.Exec(`DELETE FROM content WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete content: %w", err)
	}
	return nil
}

// IncrementViews bumps the view counter for a record.
func (s *ContentStore) IncrementViews(id int64) error {
	_, err := s.db.Exec(`UPDATE content SET view_count = view_count + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("increment views: %w", err)
	}
	return nil
}

// ListByOwner returns all records owned by a user, newest first.
func (s *ContentStore) ListByOwner(ownerID int64) ([]models.Content, error) {
	return s.list(`SELECT `+contentColumns+` FROM content WHERE owner_id = $1 ORDER BY created_at DESC`, ownerID)
}

// ListByStatus returns all records in the given lifecycle state, oldest
// first. Reviewers use this for the pending review queue.
func (s *ContentStore) ListByStatus(status models.ContentStatus) ([]models.Content, error) {
	return s.list(`SELECT `+contentColumns+` FROM content WHERE status = $1 ORDER BY submitted_at ASC NULLS LAST, created_at ASC`, status)
}

// ListPublished returns all published records, newest publication first.
func (s *ContentStore) ListPublished() ([]models.Content, error) {
	return s.list(`SELECT ` + contentColumns + ` FROM content WHERE status = 'published' ORDER BY published_at DESC NULLS LAST`)
}

// ListPublishedByCategory returns published records in one category,
// newest publication first.
func (s *ContentStore) ListPublishedByCategory(categoryID int64) ([]models.Content, error) {
	return s.list(`
		SELECT `+contentColumns+` FROM content
		WHERE status = 'published'
		  AND id IN (SELECT content_id FROM content_categories WHERE category_id = $1)
		ORDER BY published_at DESC NULLS LAST
	`, categoryID)
}

func (s *ContentStore) list(query string, args ...any) ([]models.Content, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list content: %w", err)
	}
	defer rows.Close()

	var items []models.Content
	for rows.Next() {
		c, err := scanContent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan content: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// SetCategories replaces the record's category assignments.
func (s *ContentStore) SetCategories(contentID int64, categoryIDs []int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin set categories: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM content_categories WHERE content_id = $1`, contentID); err != nil {
		return fmt.Errorf("clear categories: %w", err)
	}
	for _, catID := range categoryIDs {
		if _, err := tx.Exec(`
			INSERT INTO content_categories (content_id, category_id) VALUES ($1, $2)
		`, contentID, catID); err != nil {
			return fmt.Errorf("assign category %d: %w", catID, err)
		}
	}
	return tx.Commit()
}

// SetTags replaces the record's tag assignments, adjusting each tag's
// usage counter so counts stay consistent with the join table.
func (s *ContentStore) SetTags(contentID int64, tagIDs []int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin set tags: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		UPDATE tags SET usage_count = usage_count - 1, updated_at = NOW()
		WHERE id IN (SELECT tag_id FROM content_tags WHERE content_id = $1)
	`, contentID); err != nil {
		return fmt.Errorf("release tags: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM content_tags WHERE content_id = $1`, contentID); err != nil {
		return fmt.Errorf("clear tags: %w", err)
	}
	for _, tagID := range tagIDs {
		if _, err := tx.Exec(`
			INSERT INTO content_tags (content_id, tag_id) VALUES ($1, $2)
		`, contentID, tagID); err != nil {
			return fmt.Errorf("assign tag %d: %w", tagID, err)
		}
		if _, err := tx.Exec(`
			UPDATE tags SET usage_count = usage_count + 1, updated_at = NOW() WHERE id = $1
		`, tagID); err != nil {
			return fmt.Errorf("count tag %d: %w", tagID, err)
		}
	}
	return tx.Commit()
}

// loadLinks populates the virtual CategoryIDs and TagIDs fields.
func (s *ContentStore) loadLinks(c *models.Content) error {
	rows, err := s.db.Query(`SELECT category_id FROM content_categories WHERE content_id = $1 ORDER BY category_id`, c.ID)
	if err != nil {
		return fmt.Errorf("load content categories: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("scan category link: %w", err)
		}
		c.CategoryIDs = append(c.CategoryIDs, id)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	tagRows, err := s.db.Query(`SELECT tag_id FROM content_tags WHERE content_id = $1 ORDER BY tag_id`, c.ID)
	if err != nil {
		return fmt.Errorf("load content tags: %w", err)
	}
	defer tagRows.Close()
	for tagRows.Next() {
		var id int64
		if err := tagRows.Scan(&id); err != nil {
			return fmt.Errorf("scan tag link: %w", err)
		}
		c.TagIDs = append(c.TagIDs, id)
	}
	return tagRows.Err()
}
