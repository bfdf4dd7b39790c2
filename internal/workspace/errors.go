// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskHive Contributors

package workspace

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when an entity is not found.
var ErrNotFound = errors.New("not found")

// ErrHardDeleteForbidden is the blanket hard-delete policy. There is no
// allow-list; physical removal happens only through the retention reaper.
var ErrHardDeleteForbidden = errors.New("hard delete operations are not allowed, use soft delete instead")

// Error codes carried by oops errors so the HTTP boundary can map them to
// responses without string matching.
const (
	CodeRestoreBlockedParentDeleted     = "RESTORE_BLOCKED_PARENT_DELETED"
	CodeRestoreBlockedDependencyDeleted = "RESTORE_BLOCKED_DEPENDENCY_DELETED"
	CodeNotificationNotRestorable       = "NOTIFICATION_NOT_RESTORABLE"
	CodeHardDeleteForbidden             = "HARD_DELETE_FORBIDDEN"
	CodePlatformOrgProtected            = "PLATFORM_ORG_PROTECTED"
)

// NotFoundCode builds the per-kind missing-entity code, e.g. TASK_NOT_FOUND.
func NotFoundCode(kind Kind) string {
	return kindUpper(kind) + "_NOT_FOUND"
}

// ChainInvalidCode builds the per-kind parent-chain failure code, e.g.
// COMMENT_PARENT_CHAIN_INVALID.
func ChainInvalidCode(kind Kind) string {
	switch kind {
	case KindComment:
		return "COMMENT_PARENT_CHAIN_INVALID"
	case KindAttachment:
		return "ATTACHMENT_PARENT_CHAIN_INVALID"
	default:
		return fmt.Sprintf("%s_PARENT_CHAIN_INVALID", kindUpper(kind))
	}
}

func kindUpper(kind Kind) string {
	b := []byte(kind)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - ('a' - 'A')
		}
	}
	return string(b)
}

// ValidationError represents an input validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
