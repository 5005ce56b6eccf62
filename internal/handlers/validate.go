package handlers

import (
	"strings"
	"unicode/utf8"
)

// Validation limits for request fields.
const (
	maxTitleLen  = 300
	maxReasonLen = 1_000
	maxNameLen   = 200
	maxDataBytes = 100_000 // request body cap, enforced in decodeBody
)

// validateTitle checks the content title and returns the first error found.
func validateTitle(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return "Title is required."
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return "Title is too long (max 300 characters)."
	}
	return ""
}

// validateReason checks a rejection reason.
func validateReason(reason string) string {
	if strings.TrimSpace(reason) == "" {
		return "A reason is required."
	}
	if utf8.RuneCountInString(reason) > maxReasonLen {
		return "Reason is too long (max 1,000 characters)."
	}
	return ""
}

// validateName checks template, category, and tag names.
func validateName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Name is required."
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return "Name is too long (max 200 characters)."
	}
	return ""
}
