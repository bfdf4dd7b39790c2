// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskHive Contributors

package workspace

import (
	"fmt"

	"github.com/oklog/ulid/v2"
)

// ParentKind names the kinds a comment or attachment may be attached to.
type ParentKind string

const (
	ParentTask     ParentKind = "task"
	ParentActivity ParentKind = "activity"
	ParentComment  ParentKind = "comment"
)

// Valid reports whether k is a known parent kind.
func (k ParentKind) Valid() bool {
	switch k {
	case ParentTask, ParentActivity, ParentComment:
		return true
	}
	return false
}

// ParentRef is a tagged reference to a polymorphic parent. Chain-walking code
// switches exhaustively on Kind instead of dispatching on a bare string.
type ParentRef struct {
	Kind ParentKind
	ID   ulid.ULID
}

// Validate checks that the reference is well-formed.
func (r ParentRef) Validate() error {
	if !r.Kind.Valid() {
		return &ValidationError{Field: "parent_kind", Message: fmt.Sprintf("unknown kind %q", r.Kind)}
	}
	if r.ID.IsZero() {
		return &ValidationError{Field: "parent_id", Message: "cannot be zero"}
	}
	return nil
}

func (r ParentRef) String() string {
	return string(r.Kind) + ":" + r.ID.String()
}
