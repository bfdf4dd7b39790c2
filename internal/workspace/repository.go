// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskHive Contributors

package workspace

import (
	"context"

	"github.com/oklog/ulid/v2"
)

// LifecycleRepository is the operation set shared by every entity kind.
// Get sees active records only; GetAny includes soft-deleted ones and is the
// escape hatch the cascade engine and restore checker rely on.
//
// SoftDelete and Restore are idempotent: they report changed=false (not an
// error) when the record is already in the target state, preserving the
// original audit fields. Operating on a nonexistent id returns ErrNotFound.
// HardDelete always fails: physical removal happens only through the
// retention reaper.
type LifecycleRepository[T any] interface {
	Get(ctx context.Context, id ulid.ULID) (*T, error)
	GetAny(ctx context.Context, id ulid.ULID) (*T, error)
	Create(ctx context.Context, e *T) error
	Update(ctx context.Context, e *T) error
	SoftDelete(ctx context.Context, id, actor ulid.ULID) (changed bool, err error)
	Restore(ctx context.Context, id, actor ulid.ULID) (changed bool, err error)
	HardDelete(ctx context.Context, id ulid.ULID) error
	FindDeletedByIDs(ctx context.Context, ids []ulid.ULID) ([]*T, error)
	CountDeleted(ctx context.Context) (int64, error)
}

// OrganizationRepository manages organization persistence.
type OrganizationRepository interface {
	LifecycleRepository[Organization]
}

// DepartmentRepository manages department persistence.
type DepartmentRepository interface {
	LifecycleRepository[Department]
	ListByOrganization(ctx context.Context, orgID ulid.ULID, view View) ([]*Department, error)
}

// UserRepository manages user persistence.
type UserRepository interface {
	LifecycleRepository[User]
	ListByOrganization(ctx context.Context, orgID ulid.ULID, view View) ([]*User, error)
	ListByDepartment(ctx context.Context, deptID ulid.ULID, view View) ([]*User, error)
}

// TaskRepository manages task persistence across all task subtypes.
type TaskRepository interface {
	LifecycleRepository[Task]
	ListByDepartment(ctx context.Context, deptID ulid.ULID, view View) ([]*Task, error)

	// RemoveWatcher pulls a user out of every task's watcher list.
	// Returns the number of tasks changed.
	RemoveWatcher(ctx context.Context, userID ulid.ULID) (int64, error)

	// RemoveAssignee pulls a user out of every task's assignee list.
	RemoveAssignee(ctx context.Context, userID ulid.ULID) (int64, error)
}

// ActivityRepository manages task activity persistence.
type ActivityRepository interface {
	LifecycleRepository[Activity]
	ListByTask(ctx context.Context, taskID ulid.ULID, view View) ([]*Activity, error)
}

// CommentRepository manages comment persistence.
type CommentRepository interface {
	LifecycleRepository[Comment]
	ListByParent(ctx context.Context, parent ParentRef, view View) ([]*Comment, error)

	// RemoveMention pulls a user out of every comment's mention list.
	RemoveMention(ctx context.Context, userID ulid.ULID) (int64, error)
}

// AttachmentRepository manages attachment persistence.
type AttachmentRepository interface {
	LifecycleRepository[Attachment]
	ListByParent(ctx context.Context, parent ParentRef, view View) ([]*Attachment, error)

	// SoftDeleteByParent soft-deletes every active attachment under the
	// parent. Already-deleted attachments are left untouched.
	SoftDeleteByParent(ctx context.Context, parent ParentRef, actor ulid.ULID) (int64, error)
}

// MaterialRepository manages material persistence.
type MaterialRepository interface {
	LifecycleRepository[Material]
	ListByOrganization(ctx context.Context, orgID ulid.ULID, view View) ([]*Material, error)
	SoftDeleteByOrganization(ctx context.Context, orgID ulid.ULID, actor ulid.ULID) (int64, error)
	SoftDeleteByDepartment(ctx context.Context, deptID ulid.ULID, actor ulid.ULID) (int64, error)
}

// VendorRepository manages vendor persistence.
type VendorRepository interface {
	LifecycleRepository[Vendor]
	ListByOrganization(ctx context.Context, orgID ulid.ULID, view View) ([]*Vendor, error)
	SoftDeleteByOrganization(ctx context.Context, orgID ulid.ULID, actor ulid.ULID) (int64, error)
}

// NotificationRepository manages notification persistence.
type NotificationRepository interface {
	LifecycleRepository[Notification]
	SoftDeleteByOrganization(ctx context.Context, orgID ulid.ULID, actor ulid.ULID) (int64, error)
	SoftDeleteByRecipient(ctx context.Context, recipientID ulid.ULID, actor ulid.ULID) (int64, error)
	SoftDeleteByTask(ctx context.Context, taskID ulid.ULID, actor ulid.ULID) (int64, error)
}

// Transactor runs a function inside one storage transaction. Repository
// operations performed with the context it passes to fn participate in that
// transaction.
type Transactor interface {
	InTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Stores is the entity registry: one typed handle per entity kind,
// constructed once at startup and passed into the engine and service instead
// of static cross-imports between entity modules.
type Stores struct {
	Organizations OrganizationRepository
	Departments   DepartmentRepository
	Users         UserRepository
	Tasks         TaskRepository
	Activities    ActivityRepository
	Comments      CommentRepository
	Attachments   AttachmentRepository
	Materials     MaterialRepository
	Vendors       VendorRepository
	Notifications NotificationRepository
}
