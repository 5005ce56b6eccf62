// Package router sets up all HTTP routes and middleware chains for the
// SchemaPress API. Routes are grouped by resource with a shared
// middleware stack.
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"schemapress/internal/handlers"
	"schemapress/internal/middleware"
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(content *handlers.Content, template *handlers.Template, taxonomy *handlers.Taxonomy) chi.Router {
	r := chi.NewRouter()

	// Global middleware — applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)

	limiter := middleware.NewRateLimiter(300, time.Minute)
	r.Use(limiter.Middleware)

	// Health check.
	r.Get("/health", healthHandler)

	// Content records: CRUD, lifecycle transitions, outputs.
	r.Route("/content", func(r chi.Router) {
		r.Get("/", content.List)
		r.Post("/", content.Create)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", content.Get)
			r.Put("/", content.Update)
			r.Delete("/", content.Delete)

			// Lifecycle transitions.
			r.Post("/submit", content.Submit)
			r.Post("/approve", content.Approve)
			r.Post("/reject", content.Reject)
			r.Post("/publish", content.Publish)
			r.Post("/direct-publish", content.DirectPublish)
			r.Post("/unpublish", content.Unpublish)
			r.Post("/admin-unpublish", content.AdminUnpublish)

			// Taxonomy assignment.
			r.Put("/categories", content.SetCategories)
			r.Put("/tags", content.SetTags)

			// Generated outputs and exports.
			r.Get("/data", content.Data)
			r.Get("/html", content.HTML)
			r.Get("/preview", content.Preview)
			r.Get("/export/table", content.ExportTable)
			r.Get("/export/document", content.ExportDocument)
		})
	})

	// Schema templates.
	r.Route("/templates", func(r chi.Router) {
		r.Get("/", template.List)
		r.Post("/", template.Create)
		r.Get("/{id}", template.Get)
		r.Put("/{id}", template.Update)
		r.Delete("/{id}", template.Delete)
	})

	// Categories and tags.
	r.Route("/categories", func(r chi.Router) {
		r.Get("/", taxonomy.CategoryList)
		r.Post("/", taxonomy.CategoryCreate)
		r.Put("/{id}", taxonomy.CategoryUpdate)
		r.Delete("/{id}", taxonomy.CategoryDelete)
	})
	r.Route("/tags", func(r chi.Router) {
		r.Get("/", taxonomy.TagList)
		r.Delete("/unused", taxonomy.TagPruneUnused)
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
