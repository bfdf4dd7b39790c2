// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskHive Contributors

package workspace

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Validation limits for domain types.
const (
	MaxNameLength = 200
	MaxBodyLength = 8000
)

// ValidateName checks that a name or title is valid.
// Names must be non-empty, valid UTF-8, no control characters, and within
// the length limit.
func ValidateName(name string) error {
	if name == "" {
		return &ValidationError{Field: "name", Message: "cannot be empty"}
	}
	if !utf8.ValidString(name) {
		return &ValidationError{Field: "name", Message: "must be valid UTF-8"}
	}
	if len(name) > MaxNameLength {
		return &ValidationError{Field: "name", Message: fmt.Sprintf("exceeds maximum length of %d", MaxNameLength)}
	}
	if hasControlChars(name) {
		return &ValidationError{Field: "name", Message: "cannot contain control characters"}
	}
	return nil
}

// ValidateBody checks free-form text bodies (activity bodies, comments,
// notification messages). Unlike names, bodies may contain newlines.
func ValidateBody(body string) error {
	if body == "" {
		return &ValidationError{Field: "body", Message: "cannot be empty"}
	}
	if !utf8.ValidString(body) {
		return &ValidationError{Field: "body", Message: "must be valid UTF-8"}
	}
	if len(body) > MaxBodyLength {
		return &ValidationError{Field: "body", Message: fmt.Sprintf("exceeds maximum length of %d", MaxBodyLength)}
	}
	return nil
}

// ValidateEmail performs a light-weight shape check; deliverability is the
// mail layer's problem.
func ValidateEmail(email string) error {
	if email == "" {
		return &ValidationError{Field: "email", Message: "cannot be empty"}
	}
	at := strings.IndexByte(email, '@')
	if at <= 0 || at == len(email)-1 || strings.ContainsAny(email, " \t\n") {
		return &ValidationError{Field: "email", Message: "must be a valid address"}
	}
	return nil
}

func hasControlChars(s string) bool {
	for _, r := range s {
		if unicode.IsControl(r) {
			return true
		}
	}
	return false
}
