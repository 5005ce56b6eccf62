// store_test.go provides a shared test database helper for all store
// integration tests. Tests are skipped if PostgreSQL is not available.
package store

import (
	"database/sql"
	"encoding/json"
	"os"
	"testing"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"schemapress/internal/database"
	"schemapress/internal/models"
)

// testDSN returns the PostgreSQL connection string for testing.
// Uses environment variables with defaults matching docker-compose.yml.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "schemapress")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "schemapress")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database and runs migrations.
// If the database is unavailable, the test is skipped. A cleanup
// function is registered to close the connection when the test finishes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := testDSN()
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	// Run migrations to ensure the schema is current.
	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	// Downgrade goose global state.
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// cleanUsers removes test users by email. Call in t.Cleanup().
func cleanUsers(t *testing.T, db *sql.DB, emails ...string) {
	t.Helper()
	for _, email := range emails {
		db.Exec("DELETE FROM users WHERE email = $1", email)
	}
}

// cleanContent removes test content by title. Call in t.Cleanup().
func cleanContent(t *testing.T, db *sql.DB, titles ...string) {
	t.Helper()
	for _, title := range titles {
		db.Exec("DELETE FROM content WHERE title = $1", title)
	}
}

// cleanTemplates removes test templates by name. Call in t.Cleanup().
func cleanTemplates(t *testing.T, db *sql.DB, names ...string) {
	t.Helper()
	for _, name := range names {
		db.Exec("DELETE FROM templates WHERE name = $1", name)
	}
}

// cleanCategories removes test categories by slug. Call in t.Cleanup().
func cleanCategories(t *testing.T, db *sql.DB, slugs ...string) {
	t.Helper()
	for _, slug := range slugs {
		db.Exec("DELETE FROM categories WHERE slug = $1", slug)
	}
}

// cleanTags removes test tags by name. Call in t.Cleanup().
func cleanTags(t *testing.T, db *sql.DB, names ...string) {
	t.Helper()
	for _, name := range names {
		db.Exec("DELETE FROM tags WHERE name = $1", name)
	}
}

const testDefinition = `{
	"@context": "https://schema.org",
	"@type": "Article",
	"fields": [
		{"name": "headline", "type": "string", "required": true, "label": "Headline"},
		{"name": "body", "type": "text", "required": true, "label": "Body"}
	]
}`

// fixtureUser creates a contributor for tests that need an owner.
func fixtureUser(t *testing.T, db *sql.DB, email string) *models.User {
	t.Helper()
	users := NewUserStore(db)
	u, err := users.Create(email, "test-password-123", "Test User", models.RoleContributor)
	if err != nil {
		t.Fatalf("create fixture user: %v", err)
	}
	t.Cleanup(func() { cleanUsers(t, db, email) })
	return u
}

// fixtureTemplate creates a non-system template for content tests.
func fixtureTemplate(t *testing.T, db *sql.DB, name string, ownerID int64) *models.Template {
	t.Helper()
	templates := NewTemplateStore(db)
	tmpl, err := templates.Create(name, "", testDefinition, ownerID, false)
	if err != nil {
		t.Fatalf("create fixture template: %v", err)
	}
	t.Cleanup(func() { cleanTemplates(t, db, name) })
	return tmpl
}

// fixtureContent creates a draft record for a given owner and template.
func fixtureContent(t *testing.T, db *sql.DB, title string, ownerID, templateID int64) *models.Content {
	t.Helper()
	contents := NewContentStore(db)
	rec, err := contents.Create(&models.Content{
		OwnerID:    ownerID,
		TemplateID: templateID,
		Title:      title,
		Data:       map[string]any{"headline": title, "body": "Body text."},
		Status:     models.ContentStatusDraft,
	})
	if err != nil {
		t.Fatalf("create fixture content: %v", err)
	}
	t.Cleanup(func() { cleanContent(t, db, title) })
	return rec
}

// mustJSONEqual compares two values through their JSON encoding, which
// normalizes numeric types coming back from JSONB columns.
func mustJSONEqual(t *testing.T, got, want any) {
	t.Helper()
	g, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("marshal got: %v", err)
	}
	w, err := json.Marshal(want)
	if err != nil {
		t.Fatalf("marshal want: %v", err)
	}
	if string(g) != string(w) {
		t.Errorf("mismatch:\n got %s\nwant %s", g, w)
	}
}
