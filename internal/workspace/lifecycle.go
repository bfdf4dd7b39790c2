// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskHive Contributors

package workspace

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// Lifecycle is the soft-delete field set mixed into every entity.
// Invariant: IsDeleted == (DeletedAt != nil). Deleting clears the restore
// audit; restoring clears the delete audit.
type Lifecycle struct {
	IsDeleted  bool
	DeletedAt  *time.Time
	DeletedBy  *ulid.ULID
	RestoredAt *time.Time
	RestoredBy *ulid.ULID
}

// MarkDeleted transitions the entity to the deleted state.
// Returns false without touching the audit fields if already deleted, so a
// re-run cascade preserves the original delete audit.
func (l *Lifecycle) MarkDeleted(actor ulid.ULID, at time.Time) bool {
	if l.IsDeleted {
		return false
	}
	l.IsDeleted = true
	l.DeletedAt = &at
	l.DeletedBy = &actor
	l.RestoredAt = nil
	l.RestoredBy = nil
	return true
}

// MarkRestored transitions the entity back to the active state.
// Returns false if the entity is not deleted.
func (l *Lifecycle) MarkRestored(actor ulid.ULID, at time.Time) bool {
	if !l.IsDeleted {
		return false
	}
	l.IsDeleted = false
	l.DeletedAt = nil
	l.DeletedBy = nil
	l.RestoredAt = &at
	l.RestoredBy = &actor
	return true
}

// Active reports whether the entity is visible to default reads.
func (l *Lifecycle) Active() bool { return !l.IsDeleted }
