// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler
// integration tests. Tests are skipped when PostgreSQL or Valkey are
// unavailable.
package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	"schemapress/internal/cache"
	"schemapress/internal/database"
	"schemapress/internal/engine"
	"schemapress/internal/models"
	"schemapress/internal/notify"
	"schemapress/internal/store"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// withURLParam attaches a chi route parameter to the request context so
// handlers can be invoked without a full router.
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "schemapress")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "schemapress")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testValkeyClient returns a Redis client for handler tests on DB 15.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, "content:*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})

	return client
}

// testEnv holds all dependencies for handler integration tests.
type testEnv struct {
	db        *sql.DB
	router    chi.Router
	contents  *store.ContentStore
	templates *store.TemplateStore
	tags      *store.TagStore
	users     *store.UserStore

	owner    *models.User
	reviewer *models.User
	template *models.Template
}

const envDefinition = `{
	"@context": "https://schema.org",
	"@type": "Article",
	"fields": [
		{"name": "headline", "type": "string", "required": true, "label": "Headline"},
		{"name": "articleBody", "type": "text", "required": true, "label": "Body"}
	]
}`

// newTestEnv builds the full handler stack against real PostgreSQL and
// Valkey, with fixture users and a template.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testDB(t)
	valkey := testValkeyClient(t)

	contents := store.NewContentStore(db)
	templates := store.NewTemplateStore(db)
	categories := store.NewCategoryStore(db)
	tags := store.NewTagStore(db)
	users := store.NewUserStore(db)
	cacheLog := store.NewCacheLogStore(db)

	recordCache := cache.NewRecordCache(valkey, time.Minute)
	notifier := notify.New(valkey)

	eng := engine.New(contents, templates, categories, recordCache, notifier, cacheLog, engine.Options{})

	r := chi.NewRouter()
	content := NewContent(eng, contents, tags, recordCache)
	template := NewTemplate(templates)
	taxonomy := NewTaxonomy(categories, tags)

	r.Route("/content", func(r chi.Router) {
		r.Get("/", content.List)
		r.Post("/", content.Create)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", content.Get)
			r.Put("/", content.Update)
			r.Delete("/", content.Delete)
			r.Post("/submit", content.Submit)
			r.Post("/approve", content.Approve)
			r.Post("/reject", content.Reject)
			r.Post("/publish", content.Publish)
			r.Post("/direct-publish", content.DirectPublish)
			r.Post("/unpublish", content.Unpublish)
			r.Post("/admin-unpublish", content.AdminUnpublish)
			r.Put("/categories", content.SetCategories)
			r.Put("/tags", content.SetTags)
			r.Get("/data", content.Data)
			r.Get("/html", content.HTML)
			r.Get("/preview", content.Preview)
			r.Get("/export/table", content.ExportTable)
			r.Get("/export/document", content.ExportDocument)
		})
	})
	r.Route("/templates", func(r chi.Router) {
		r.Get("/", template.List)
		r.Post("/", template.Create)
		r.Get("/{id}", template.Get)
		r.Put("/{id}", template.Update)
		r.Delete("/{id}", template.Delete)
	})
	r.Route("/categories", func(r chi.Router) {
		r.Get("/", taxonomy.CategoryList)
		r.Post("/", taxonomy.CategoryCreate)
	})
	r.Route("/tags", func(r chi.Router) {
		r.Get("/", taxonomy.TagList)
		r.Delete("/unused", taxonomy.TagPruneUnused)
	})

	env := &testEnv{
		db:        db,
		router:    r,
		contents:  contents,
		templates: templates,
		tags:      tags,
		users:     users,
	}

	owner, err := users.Create("handler-owner@test.local", "password-12345", "Owner", models.RoleContributor)
	if err != nil {
		t.Fatalf("create owner: %v", err)
	}
	reviewer, err := users.Create("handler-reviewer@test.local", "password-12345", "Reviewer", models.RoleReviewer)
	if err != nil {
		t.Fatalf("create reviewer: %v", err)
	}
	tmpl, err := templates.Create("handler-test-article", "", envDefinition, owner.ID, false)
	if err != nil {
		t.Fatalf("create template: %v", err)
	}

	t.Cleanup(func() {
		db.Exec("DELETE FROM content WHERE owner_id = $1", owner.ID)
		db.Exec("DELETE FROM templates WHERE name LIKE 'handler-test-%'")
		db.Exec("DELETE FROM users WHERE email IN ('handler-owner@test.local', 'handler-reviewer@test.local')")
		db.Exec("DELETE FROM categories WHERE slug LIKE 'handler-test-%'")
		db.Exec("DELETE FROM tags WHERE name LIKE 'handler-test-%'")
	})

	env.owner = owner
	env.reviewer = reviewer
	env.template = tmpl
	return env
}
