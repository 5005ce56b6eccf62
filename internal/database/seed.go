package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// System templates created at first startup. They cover the most common
// structured content shapes and cannot be edited or deleted.
var systemTemplates = []struct {
	name       string
	typeTag    string
	definition string
}{
	{
		name:    "Article",
		typeTag: "Article",
		definition: `{
			"@context": "https://schema.org",
			"@type": "Article",
			"fields": [
				{"name": "headline", "type": "string", "required": true, "label": "Headline"},
				{"name": "articleBody", "type": "text", "required": true, "label": "Body"},
				{"name": "keywords", "type": "string", "required": false, "label": "Keywords"},
				{"name": "datePublished", "type": "date", "required": false, "label": "Date Published"}
			]
		}`,
	},
	{
		name:    "Recipe",
		typeTag: "Recipe",
		definition: `{
			"@context": "https://schema.org",
			"@type": "Recipe",
			"fields": [
				{"name": "name", "type": "string", "required": true, "label": "Name"},
				{"name": "recipeIngredient", "type": "text", "required": true, "label": "Ingredients"},
				{"name": "recipeInstructions", "type": "text", "required": true, "label": "Instructions"},
				{"name": "prepTime", "type": "string", "required": false, "label": "Preparation Time"},
				{"name": "recipeYield", "type": "string", "required": false, "label": "Yield"}
			]
		}`,
	},
	{
		name:    "Review",
		typeTag: "Review",
		definition: `{
			"@context": "https://schema.org",
			"@type": "Review",
			"fields": [
				{"name": "itemReviewed", "type": "string", "required": true, "label": "Item Reviewed"},
				{"name": "reviewBody", "type": "text", "required": true, "label": "Review"},
				{"name": "reviewRating", "type": "number", "required": false, "label": "Rating"}
			]
		}`,
	},
}

// Seed populates the database with initial data: a default admin user and
// the immutable system templates. Safe to call on every startup — each
// piece is skipped when already present.
func Seed(db *sql.DB) error {
	adminID, err := seedAdmin(db)
	if err != nil {
		return err
	}
	return seedSystemTemplates(db, adminID)
}

// seedAdmin creates the default admin user if no users exist, and returns
// the id of an admin to own the system templates.
func seedAdmin(db *sql.DB) (int64, error) {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return 0, fmt.Errorf("seed check users: %w", err)
	}

	if count > 0 {
		var id int64
		err := db.QueryRow("SELECT id FROM users WHERE role = 'admin' ORDER BY id LIMIT 1").Scan(&id)
		if err == sql.ErrNoRows {
			return 0, fmt.Errorf("seed: users exist but no admin found")
		}
		if err != nil {
			return 0, fmt.Errorf("seed find admin: %w", err)
		}
		return id, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("seed bcrypt: %w", err)
	}

	var id int64
	err = db.QueryRow(`
		INSERT INTO users (email, password_hash, display_name, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, "admin@schemapress.local", string(hash), "Admin", "admin").Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("seed insert admin: %w", err)
	}

	slog.Info("database seeded with default admin user",
		"email", "admin@schemapress.local",
		"password", "admin",
	)
	return id, nil
}

// seedSystemTemplates inserts any system template that is not present yet.
func seedSystemTemplates(db *sql.DB, ownerID int64) error {
	for _, tmpl := range systemTemplates {
		var exists bool
		err := db.QueryRow("SELECT EXISTS (SELECT 1 FROM templates WHERE name = $1 AND is_system)", tmpl.name).Scan(&exists)
		if err != nil {
			return fmt.Errorf("seed check template %s: %w", tmpl.name, err)
		}
		if exists {
			continue
		}

		_, err = db.Exec(`
			INSERT INTO templates (name, type_tag, definition, owner_id, is_system)
			VALUES ($1, $2, $3, $4, TRUE)
		`, tmpl.name, tmpl.typeTag, tmpl.definition, ownerID)
		if err != nil {
			return fmt.Errorf("seed insert template %s: %w", tmpl.name, err)
		}
		slog.Info("system template seeded", "name", tmpl.name, "type", tmpl.typeTag)
	}
	return nil
}
