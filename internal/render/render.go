// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render produces every downstream representation of a content
// record from one set of inputs: a JSON-LD document, semantic HTML,
// Markdown, a delimited-table export, and a word-processor export.
// Rendering is pure and deterministic — no clocks, no randomness — so the
// three stored outputs can be regenerated together whenever any input
// changes and identical inputs always produce identical bytes.
package render

import (
	"encoding/json"
	"fmt"
	"html"
	"sort"
	"strings"

	"schemapress/internal/schema"
)

// DefaultDataHref is the relative pure-data endpoint linked from the HTML
// head when the caller does not supply one.
const DefaultDataHref = "?format=jsonld"

// Input carries everything the renderer needs. Fields gives the schema
// order (used for the table header and the fallback emission order);
// FieldOrder, when non-empty, overrides the emission order for HTML and
// Markdown. Names in FieldOrder that are absent from Data are skipped.
type Input struct {
	Title      string
	Data       map[string]any
	VocabType  string
	Fields     []schema.Field
	FieldOrder []string

	CopyrightNotice string
	Source          string
	AuthorName      string
	IsOriginal      bool

	DataHref string
}

// Output bundles the three stored representations. They are generated in
// one pass and must never diverge from each other.
type Output struct {
	LinkedData string
	HTML       string
	Markdown   string
}

// Render generates the JSON-LD document, the semantic HTML page, and the
// Markdown rendering from the same inputs in a single pass.
func Render(in Input) (Output, error) {
	doc := LinkedData(in)
	serialized, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return Output{}, fmt.Errorf("serialize linked data: %w", err)
	}

	return Output{
		LinkedData: string(serialized),
		HTML:       renderHTML(in, string(serialized)),
		Markdown:   renderMarkdown(in),
	}, nil
}

// LinkedData assembles the vocabulary-tagged document as a map. The
// context and type markers are seeded first and can never be overwritten
// by structured-data keys; the title becomes the canonical headline, the
// author nests as a typed Person object, and the flat copyright keys are
// added when present.
func LinkedData(in Input) map[string]any {
	doc := map[string]any{
		"@context": schema.ContextMarker,
		"@type":    in.VocabType,
	}

	for k, v := range in.Data {
		if k == "@context" || k == "@type" {
			continue
		}
		doc[k] = v
	}

	if in.Title != "" {
		doc["headline"] = in.Title
	}
	if in.AuthorName != "" {
		doc["author"] = map[string]any{
			"@type": "Person",
			"name":  in.AuthorName,
		}
	}
	if in.CopyrightNotice != "" {
		doc["copyrightNotice"] = in.CopyrightNotice
	}
	if in.Source != "" {
		doc["sourceOrganization"] = in.Source
	}
	doc["isOriginal"] = in.IsOriginal

	return doc
}

// renderHTML builds the full document skeleton. The JSON-LD document is
// embedded verbatim in a head script block so crawlers find the canonical
// data without parsing markup; a link element points at the pure-data
// endpoint. Every field renders as a label/value pair whose itemprop is
// the field's own name — field names double as semantic property
// identifiers on purpose.
func renderHTML(in Input, linkedData string) string {
	dataHref := in.DataHref
	if dataHref == "" {
		dataHref = DefaultDataHref
	}

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	b.WriteString("<meta charset=\"utf-8\">\n")
	b.WriteString("<title>" + esc(in.Title) + "</title>\n")
	b.WriteString(`<link rel="alternate" type="application/ld+json" href="` + esc(dataHref) + "\">\n")
	// json.MarshalIndent already escapes <, >, and & inside string values,
	// so the document cannot break out of the script element.
	b.WriteString("<script type=\"application/ld+json\">\n" + linkedData + "\n</script>\n")
	b.WriteString("</head>\n<body>\n")

	b.WriteString(`<article itemscope itemtype="https://schema.org/` + esc(in.VocabType) + "\">\n")
	b.WriteString(`<h1 itemprop="headline">` + esc(in.Title) + "</h1>\n")

	labels := labelIndex(in.Fields)
	for _, name := range emitOrder(in) {
		value := stringify(in.Data[name])
		b.WriteString("<div class=\"field\">\n")
		b.WriteString(`<span class="field-label">` + esc(labelFor(labels, name)) + "</span>\n")
		b.WriteString(`<span class="field-value" itemprop="` + esc(name) + `">` + esc(value) + "</span>\n")
		b.WriteString("</div>\n")
	}

	if hasCopyrightMeta(in) {
		b.WriteString("<footer class=\"copyright\">\n")
		if in.AuthorName != "" {
			b.WriteString(`<span itemprop="author">` + esc(in.AuthorName) + "</span>\n")
		}
		if in.Source != "" {
			b.WriteString(`<span itemprop="sourceOrganization">` + esc(in.Source) + "</span>\n")
		}
		if in.CopyrightNotice != "" {
			b.WriteString("<p>" + esc(in.CopyrightNotice) + "</p>\n")
		}
		if in.IsOriginal {
			b.WriteString("<p>Original content</p>\n")
		}
		b.WriteString("</footer>\n")
	}

	b.WriteString("</article>\n")

	// Interaction widgets (comments, reactions) load asynchronously after
	// the document is complete; crawlers must never wait on them.
	b.WriteString("<div id=\"interactions\" data-widgets=\"deferred\"></div>\n")

	b.WriteString("</body>\n</html>\n")
	return b.String()
}

// renderMarkdown emits a level-1 title heading, one level-2 section per
// field with the raw value as a paragraph, and a trailing copyright block
// when any of the four metadata fields is present.
func renderMarkdown(in Input) string {
	var b strings.Builder
	b.WriteString("# " + in.Title + "\n\n")

	labels := labelIndex(in.Fields)
	for _, name := range emitOrder(in) {
		b.WriteString("## " + labelFor(labels, name) + "\n\n")
		b.WriteString(stringify(in.Data[name]) + "\n\n")
	}

	if hasCopyrightMeta(in) {
		b.WriteString("---\n\n")
		if in.AuthorName != "" {
			b.WriteString("**Author:** " + in.AuthorName + "\n\n")
		}
		if in.Source != "" {
			b.WriteString("**Source:** " + in.Source + "\n\n")
		}
		if in.CopyrightNotice != "" {
			b.WriteString("**Copyright:** " + in.CopyrightNotice + "\n\n")
		}
		b.WriteString("**Original content:** " + boolWord(in.IsOriginal) + "\n")
	}

	return b.String()
}

// emitOrder resolves the field emission order. An explicit FieldOrder
// wins, skipping names absent from the data. The fallback is schema field
// order followed by leftover data keys sorted — a deterministic stand-in
// for the mapping's own iteration order.
func emitOrder(in Input) []string {
	if len(in.FieldOrder) > 0 {
		var names []string
		for _, name := range in.FieldOrder {
			if _, ok := in.Data[name]; ok {
				names = append(names, name)
			}
		}
		return names
	}

	seen := make(map[string]bool, len(in.Data))
	var names []string
	for _, f := range in.Fields {
		if _, ok := in.Data[f.Name]; ok && !seen[f.Name] {
			seen[f.Name] = true
			names = append(names, f.Name)
		}
	}

	var extras []string
	for k := range in.Data {
		if !seen[k] {
			extras = append(extras, k)
		}
	}
	sort.Strings(extras)
	return append(names, extras...)
}

// hasCopyrightMeta reports whether any of the four copyright metadata
// fields carries information worth a copyright block.
func hasCopyrightMeta(in Input) bool {
	return in.CopyrightNotice != "" || in.Source != "" || in.AuthorName != "" || in.IsOriginal
}

// labelIndex maps field names to their display labels.
func labelIndex(fields []schema.Field) map[string]string {
	idx := make(map[string]string, len(fields))
	for _, f := range fields {
		if f.Label != "" {
			idx[f.Name] = f.Label
		}
	}
	return idx
}

// labelFor returns the display label for a field, falling back to its name.
func labelFor(labels map[string]string, name string) string {
	if l, ok := labels[name]; ok {
		return l
	}
	return name
}

// stringify coerces a structured-data value to text with no type-aware
// formatting.
func stringify(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// boolWord renders the originality flag for human-readable exports.
func boolWord(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// esc escapes the five HTML-reserved characters (& < > " '). No other
// sanitization is applied.
func esc(s string) string {
	return html.EscapeString(s)
}
