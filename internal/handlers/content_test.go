// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"schemapress/internal/models"
)

// doJSON performs a request with a JSON body against the test router.
func doJSON(t *testing.T, env *testEnv, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func decodeContent(t *testing.T, w *httptest.ResponseRecorder) models.Content {
	t.Helper()
	var rec models.Content
	if err := json.NewDecoder(w.Body).Decode(&rec); err != nil {
		t.Fatalf("decode content response: %v", err)
	}
	return rec
}

func createRecord(t *testing.T, env *testEnv, title string) models.Content {
	t.Helper()
	w := doJSON(t, env, "POST", "/content", map[string]any{
		"owner_id":    env.owner.ID,
		"template_id": env.template.ID,
		"title":       title,
		"data": map[string]any{
			"headline":    title,
			"articleBody": "Body text for " + title,
		},
		"author_name": "Handler Test",
		"is_original": true,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create record: status %d, body %s", w.Code, w.Body.String())
	}
	return decodeContent(t, w)
}

func TestContentCreateViaAPI(t *testing.T) {
	env := newTestEnv(t)
	rec := createRecord(t, env, "API Create Test")

	if rec.Status != models.ContentStatusDraft {
		t.Errorf("status = %q, want draft", rec.Status)
	}
	if rec.IntegrityScore != 1.0 {
		t.Errorf("integrity score = %v, want 1.0", rec.IntegrityScore)
	}
	if !strings.Contains(rec.LinkedData, `"@type": "Article"`) {
		t.Error("linked data output missing")
	}
	if rec.HTML == "" || rec.Markdown == "" {
		t.Error("generated outputs missing")
	}
}

func TestContentCreateMissingFieldIs422(t *testing.T) {
	env := newTestEnv(t)

	w := doJSON(t, env, "POST", "/content", map[string]any{
		"owner_id":    env.owner.ID,
		"template_id": env.template.ID,
		"title":       "Incomplete",
		"data":        map[string]any{"headline": "Incomplete"},
	})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422; body %s", w.Code, w.Body.String())
	}

	var body errorBody
	json.NewDecoder(w.Body).Decode(&body)
	if len(body.Missing) != 1 || body.Missing[0] != "articleBody" {
		t.Errorf("missing = %v, want [articleBody]", body.Missing)
	}
}

func TestContentLifecycleViaAPI(t *testing.T) {
	env := newTestEnv(t)
	rec := createRecord(t, env, "API Lifecycle Test")
	base := fmt.Sprintf("/content/%d", rec.ID)

	// Approve before submit is a conflict.
	w := doJSON(t, env, "POST", base+"/approve", map[string]any{"reviewer_id": env.reviewer.ID})
	if w.Code != http.StatusConflict {
		t.Fatalf("approve from draft: status %d, want 409", w.Code)
	}

	// Submit, approve.
	if w := doJSON(t, env, "POST", base+"/submit", nil); w.Code != http.StatusOK {
		t.Fatalf("submit: status %d, body %s", w.Code, w.Body.String())
	}
	if w := doJSON(t, env, "POST", base+"/approve", map[string]any{"reviewer_id": env.reviewer.ID}); w.Code != http.StatusOK {
		t.Fatalf("approve: status %d, body %s", w.Code, w.Body.String())
	}

	// Publish without a category fails the precondition.
	if w := doJSON(t, env, "POST", base+"/publish", nil); w.Code != http.StatusPreconditionFailed {
		t.Fatalf("publish without category: status %d, want 412", w.Code)
	}

	// Create a category, assign it, publish.
	w = doJSON(t, env, "POST", "/categories", map[string]any{
		"name": "Handler Test Category",
		"slug": "handler-test-lifecycle",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create category: status %d", w.Code)
	}
	var cat models.Category
	json.NewDecoder(w.Body).Decode(&cat)

	if w := doJSON(t, env, "PUT", base+"/categories", map[string]any{"category_ids": []int64{cat.ID}}); w.Code != http.StatusNoContent {
		t.Fatalf("set categories: status %d", w.Code)
	}
	w = doJSON(t, env, "POST", base+"/publish", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("publish: status %d, body %s", w.Code, w.Body.String())
	}
	published := decodeContent(t, w)
	if !published.IsPublished() {
		t.Error("record not published")
	}
	if published.PublishedAt == nil {
		t.Error("published timestamp missing")
	}

	// The published record shows up in the category listing.
	w = doJSON(t, env, "GET", fmt.Sprintf("/content?category=%d", cat.ID), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list by category: status %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "API Lifecycle Test") {
		t.Error("published record missing from category listing")
	}
}

func TestContentRejectViaAPI(t *testing.T) {
	env := newTestEnv(t)
	rec := createRecord(t, env, "API Reject Test")
	base := fmt.Sprintf("/content/%d", rec.ID)

	doJSON(t, env, "POST", base+"/submit", nil)

	// Reject requires a reason.
	w := doJSON(t, env, "POST", base+"/reject", map[string]any{"reviewer_id": env.reviewer.ID})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("reject without reason: status %d, want 400", w.Code)
	}

	w = doJSON(t, env, "POST", base+"/reject", map[string]any{
		"reviewer_id": env.reviewer.ID,
		"reason":      "needs sources",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("reject: status %d, body %s", w.Code, w.Body.String())
	}
	rejected := decodeContent(t, w)
	if rejected.Status != models.ContentStatusRejected {
		t.Errorf("status = %q, want rejected", rejected.Status)
	}
	if rejected.RejectionReason == nil || *rejected.RejectionReason != "needs sources" {
		t.Error("rejection reason not recorded")
	}

	// An edit returns the record to draft and clears the reason.
	w = doJSON(t, env, "PUT", base, map[string]any{
		"owner_id":    env.owner.ID,
		"template_id": env.template.ID,
		"title":       "API Reject Test",
		"data": map[string]any{
			"headline":    "API Reject Test",
			"articleBody": "Revised body.",
		},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("update: status %d, body %s", w.Code, w.Body.String())
	}
	edited := decodeContent(t, w)
	if edited.Status != models.ContentStatusDraft {
		t.Errorf("status after edit = %q, want draft", edited.Status)
	}
	if edited.RejectionReason != nil {
		t.Error("rejection reason should be cleared by edit")
	}
}

func TestContentOutputEndpoints(t *testing.T) {
	env := newTestEnv(t)
	rec := createRecord(t, env, "API Output Test")
	base := fmt.Sprintf("/content/%d", rec.ID)

	// Linked data endpoint serves JSON-LD and counts a view.
	w := doJSON(t, env, "GET", base+"/data", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("data: status %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "application/ld+json") {
		t.Errorf("data content-type = %q", ct)
	}
	var ld map[string]any
	if err := json.NewDecoder(w.Body).Decode(&ld); err != nil {
		t.Fatalf("linked data is not JSON: %v", err)
	}
	if ld["@context"] != "https://schema.org" {
		t.Errorf("@context = %v", ld["@context"])
	}

	w = doJSON(t, env, "GET", base, nil)
	viewed := decodeContent(t, w)
	if viewed.ViewCount != 1 {
		t.Errorf("view count = %d, want 1", viewed.ViewCount)
	}

	// HTML endpoint serves the rendered page, then caches it.
	for i := 0; i < 2; i++ {
		w = doJSON(t, env, "GET", base+"/html", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("html pass %d: status %d", i, w.Code)
		}
		if !strings.Contains(w.Body.String(), "itemscope") {
			t.Errorf("html pass %d missing semantic markup", i)
		}
	}

	// Table export is valid CSV with the schema header.
	w = doJSON(t, env, "GET", base+"/export/table", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("table export: status %d", w.Code)
	}
	if !strings.HasPrefix(w.Body.String(), "headline,articleBody") {
		t.Errorf("table header = %q", strings.SplitN(w.Body.String(), "\n", 2)[0])
	}

	// Document export is RTF.
	w = doJSON(t, env, "GET", base+"/export/document", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("document export: status %d", w.Code)
	}
	if !strings.HasPrefix(w.Body.String(), `{\rtf1`) {
		t.Error("document export is not RTF")
	}

	// Markdown preview renders to HTML.
	w = doJSON(t, env, "GET", base+"/preview", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("preview: status %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "<h1") {
		t.Error("preview missing rendered heading")
	}
}

func TestContentTagAssignmentViaAPI(t *testing.T) {
	env := newTestEnv(t)
	rec := createRecord(t, env, "API Tag Test")
	base := fmt.Sprintf("/content/%d", rec.ID)

	w := doJSON(t, env, "PUT", base+"/tags", map[string]any{
		"tags": []string{"handler-test-go", "handler-test-cms"},
	})
	if w.Code != http.StatusNoContent {
		t.Fatalf("set tags: status %d, body %s", w.Code, w.Body.String())
	}

	w = doJSON(t, env, "GET", "/tags", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list tags: status %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "handler-test-go") {
		t.Error("assigned tag missing from listing")
	}
}

func TestTagPruneUnusedViaAPI(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.tags.EnsureByName("handler-test-prune"); err != nil {
		t.Fatalf("create unused tag: %v", err)
	}

	w := doJSON(t, env, "DELETE", "/tags/unused", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("prune unused tags: status %d, body %s", w.Code, w.Body.String())
	}

	gone, err := env.tags.FindByName("handler-test-prune")
	if err != nil {
		t.Fatalf("FindByName: %v", err)
	}
	if gone != nil {
		t.Error("unused tag should have been pruned")
	}
}

func TestTemplateEndpointsViaAPI(t *testing.T) {
	env := newTestEnv(t)

	// Invalid definition is a 422.
	w := doJSON(t, env, "POST", "/templates", map[string]any{
		"name":       "handler-test-bad",
		"owner_id":   env.owner.ID,
		"definition": `{"@type": "Article", "fields": []}`,
	})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("bad definition: status %d, want 422", w.Code)
	}

	// A declared type tag that contradicts the definition is a 422.
	w = doJSON(t, env, "POST", "/templates", map[string]any{
		"name":       "handler-test-mismatch",
		"owner_id":   env.owner.ID,
		"type_tag":   "Recipe",
		"definition": envDefinition,
	})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("mismatched type tag: status %d, want 422", w.Code)
	}

	// A matching declared tag is accepted.
	w = doJSON(t, env, "POST", "/templates", map[string]any{
		"name":       "handler-test-declared",
		"owner_id":   env.owner.ID,
		"type_tag":   "Article",
		"definition": envDefinition,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("declared type tag: status %d, body %s", w.Code, w.Body.String())
	}
	var declared models.Template
	json.NewDecoder(w.Body).Decode(&declared)
	if declared.TypeTag != "Article" {
		t.Errorf("type tag = %q, want Article", declared.TypeTag)
	}

	// Missing record is a 404.
	w = doJSON(t, env, "GET", "/templates/999999999", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing template: status %d, want 404", w.Code)
	}

	w = doJSON(t, env, "GET", fmt.Sprintf("/templates/%d", env.template.ID), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get template: status %d", w.Code)
	}
	var tmpl models.Template
	json.NewDecoder(w.Body).Decode(&tmpl)
	if tmpl.VocabType != "Article" || len(tmpl.Fields) != 2 {
		t.Errorf("template = %+v", tmpl)
	}
}

func TestContentNotFoundIs404(t *testing.T) {
	env := newTestEnv(t)

	w := doJSON(t, env, "GET", "/content/999999999", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}
