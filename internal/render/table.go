// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package render

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
)

// SelfCheckError indicates the renderer's own table output failed its
// completeness check. This is an internal defect, not an input problem:
// it should alert rather than silently degrade.
type SelfCheckError struct {
	Reason string
}

func (e *SelfCheckError) Error() string {
	return "render self-check: " + e.Reason
}

// Table produces the delimited-table export on demand: a header row of
// field names in schema order, one data row with values coerced to text
// (values containing a delimiter, quote, or line break are wrapped and
// their quotes doubled), and a metadata block. The finished output is
// verified against the schema before being returned.
func Table(in Input) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := make([]string, 0, len(in.Fields))
	row := make([]string, 0, len(in.Fields))
	for _, f := range in.Fields {
		header = append(header, f.Name)
		row = append(row, stringify(in.Data[f.Name]))
	}

	if err := w.Write(header); err != nil {
		return "", fmt.Errorf("write table header: %w", err)
	}
	if err := w.Write(row); err != nil {
		return "", fmt.Errorf("write table row: %w", err)
	}

	// Metadata block: one key/value row per record attribute.
	meta := [][]string{
		{"Title", in.Title},
		{"Author", in.AuthorName},
		{"Source", in.Source},
		{"Copyright", in.CopyrightNotice},
		{"Original", boolWord(in.IsOriginal)},
	}
	for _, m := range meta {
		if err := w.Write(m); err != nil {
			return "", fmt.Errorf("write table metadata: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush table: %w", err)
	}

	out := buf.String()
	if err := checkTable(out, in); err != nil {
		return "", err
	}
	return out, nil
}

// checkTable re-reads the generated output and verifies it is non-empty
// and that its header row carries every schema field name.
func checkTable(out string, in Input) error {
	if strings.TrimSpace(out) == "" {
		return &SelfCheckError{Reason: "table output is empty"}
	}

	r := csv.NewReader(strings.NewReader(out))
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err != nil {
		return &SelfCheckError{Reason: fmt.Sprintf("table header unreadable: %v", err)}
	}

	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[h] = true
	}
	for _, f := range in.Fields {
		if !present[f.Name] {
			return &SelfCheckError{Reason: fmt.Sprintf("field %q missing from table header", f.Name)}
		}
	}
	return nil
}
