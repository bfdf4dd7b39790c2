// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskHive Contributors

// Package workspace holds the tenant domain model and the lifecycle engine:
// soft delete with cascading ownership, restore with ancestor integrity
// checks, weak-reference repair, and retention-driven expiry policy.
package workspace

// Kind identifies an entity kind participating in the ownership hierarchy.
type Kind string

// Entity kinds, one per table.
const (
	KindOrganization Kind = "organization"
	KindDepartment   Kind = "department"
	KindUser         Kind = "user"
	KindTask         Kind = "task"
	KindActivity     Kind = "activity"
	KindComment      Kind = "comment"
	KindAttachment   Kind = "attachment"
	KindMaterial     Kind = "material"
	KindVendor       Kind = "vendor"
	KindNotification Kind = "notification"
)

// Kinds lists every entity kind in cascade registration order.
func Kinds() []Kind {
	return []Kind{
		KindOrganization, KindDepartment, KindUser, KindTask, KindActivity,
		KindComment, KindAttachment, KindMaterial, KindVendor, KindNotification,
	}
}

// Valid reports whether k names a known entity kind.
func (k Kind) Valid() bool {
	switch k {
	case KindOrganization, KindDepartment, KindUser, KindTask, KindActivity,
		KindComment, KindAttachment, KindMaterial, KindVendor, KindNotification:
		return true
	}
	return false
}

func (k Kind) String() string { return string(k) }

// View selects which lifecycle states a read operation sees.
// The default everywhere is ActiveOnly; WithDeleted is the escape hatch the
// cascade engine uses to resume interrupted traversals, and DeletedOnly backs
// the trash/restore listings.
type View int

const (
	// ActiveOnly hides soft-deleted records (the default).
	ActiveOnly View = iota
	// WithDeleted lifts the filter for one query.
	WithDeleted
	// DeletedOnly inverts the filter.
	DeletedOnly
)
