// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package render

import (
	"fmt"
	"regexp"
	"strings"
)

// tagRe matches markup tags for stripping before word-processor output.
var tagRe = regexp.MustCompile(`<[^>]*>`)

// WordDocument produces the word-processor export as an RTF document.
// It traverses the same fields in the same order as the other formats,
// but strips markup tags from every value; the copyright section is
// appended under the same presence rule as the Markdown export.
func WordDocument(in Input) string {
	var b strings.Builder
	b.WriteString("{\\rtf1\\ansi\\deff0\n")
	b.WriteString("{\\fonttbl{\\f0 Helvetica;}}\n")
	b.WriteString("\\f0\\fs28 {\\b " + rtfEscape(stripTags(in.Title)) + "}\\par\n\\par\n")

	labels := labelIndex(in.Fields)
	for _, name := range emitOrder(in) {
		b.WriteString("{\\b " + rtfEscape(labelFor(labels, name)) + "}\\par\n")
		b.WriteString(rtfEscape(stripTags(stringify(in.Data[name]))) + "\\par\n\\par\n")
	}

	if hasCopyrightMeta(in) {
		b.WriteString("\\par\n{\\b Copyright}\\par\n")
		if in.AuthorName != "" {
			b.WriteString("Author: " + rtfEscape(in.AuthorName) + "\\par\n")
		}
		if in.Source != "" {
			b.WriteString("Source: " + rtfEscape(in.Source) + "\\par\n")
		}
		if in.CopyrightNotice != "" {
			b.WriteString(rtfEscape(in.CopyrightNotice) + "\\par\n")
		}
		b.WriteString("Original content: " + boolWord(in.IsOriginal) + "\\par\n")
	}

	b.WriteString("}\n")
	return b.String()
}

// stripTags removes markup tags, leaving plain text.
func stripTags(s string) string {
	return tagRe.ReplaceAllString(s, "")
}

// rtfEscape escapes RTF control characters and encodes non-ASCII runes
// as \uN escapes so the output opens cleanly in word processors.
func rtfEscape(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r == '\\':
			b.WriteString(`\\`)
		case r == '{':
			b.WriteString(`\{`)
		case r == '}':
			b.WriteString(`\}`)
		case r == '\n':
			b.WriteString("\\par\n")
		case r == '\r':
			// Skip; \n carries the line break.
		case r > 127:
			b.WriteString(fmt.Sprintf("\\u%d?", r))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
