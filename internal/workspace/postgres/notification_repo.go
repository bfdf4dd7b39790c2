// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskHive Contributors

package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/taskhive/taskhive/internal/workspace"
)

// NotificationRepository implements workspace.NotificationRepository.
// Notifications are terminal: the cascade engine deletes them in bulk and
// the service layer refuses to restore them.
type NotificationRepository struct {
	db  DB
	tbl table[workspace.Notification]
}

// NewNotificationRepository creates a PostgreSQL notification repository.
func NewNotificationRepository(db DB) *NotificationRepository {
	return &NotificationRepository{
		db: db,
		tbl: table[workspace.Notification]{
			name:    "notifications",
			kind:    workspace.KindNotification,
			columns: "id, org_id, recipient_id, task_id, message, read, expires_at, created_at, " + lifecycleColumns,
			scanRow: scanNotification,
		},
	}
}

// Get retrieves an active notification by ID.
func (r *NotificationRepository) Get(ctx context.Context, id ulid.ULID) (*workspace.Notification, error) {
	return r.tbl.get(ctx, r.db, id, workspace.ActiveOnly)
}

// GetAny retrieves a notification by ID regardless of delete state.
func (r *NotificationRepository) GetAny(ctx context.Context, id ulid.ULID) (*workspace.Notification, error) {
	return r.tbl.get(ctx, r.db, id, workspace.WithDeleted)
}

// Create persists a new notification.
func (r *NotificationRepository) Create(ctx context.Context, n *workspace.Notification) error {
	_, err := querierFromCtx(ctx, r.db).Exec(ctx, `
		INSERT INTO notifications (id, org_id, recipient_id, task_id, message, read, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, n.ID.String(), n.OrgID.String(), n.RecipientID.String(), ulidToStringPtr(n.TaskID),
		n.Message, n.Read, n.ExpiresAt, n.CreatedAt)
	if err != nil {
		return oops.Code("NOTIFICATION_CREATE_FAILED").With("id", n.ID.String()).Wrap(err)
	}
	return nil
}

// Update modifies an existing notification.
func (r *NotificationRepository) Update(ctx context.Context, n *workspace.Notification) error {
	tag, err := querierFromCtx(ctx, r.db).Exec(ctx, `
		UPDATE notifications SET read = $2 WHERE id = $1
	`, n.ID.String(), n.Read)
	if err != nil {
		return oops.Code("NOTIFICATION_UPDATE_FAILED").With("id", n.ID.String()).Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return r.tbl.notFound(n.ID)
	}
	return nil
}

// SoftDelete marks the notification deleted.
func (r *NotificationRepository) SoftDelete(ctx context.Context, id, actor ulid.ULID) (bool, error) {
	return r.tbl.softDelete(ctx, r.db, id, actor)
}

// Restore marks the notification active again. The service layer rejects
// notification restores before reaching here; the storage-level operation
// exists to satisfy the shared lifecycle contract.
func (r *NotificationRepository) Restore(ctx context.Context, id, actor ulid.ULID) (bool, error) {
	return r.tbl.restore(ctx, r.db, id, actor)
}

// HardDelete is always rejected.
func (r *NotificationRepository) HardDelete(_ context.Context, id ulid.ULID) error {
	return r.tbl.hardDelete(id)
}

// FindDeletedByIDs returns the soft-deleted notifications among ids.
func (r *NotificationRepository) FindDeletedByIDs(ctx context.Context, ids []ulid.ULID) ([]*workspace.Notification, error) {
	return r.tbl.findDeletedByIDs(ctx, r.db, ids)
}

// CountDeleted counts soft-deleted notifications.
func (r *NotificationRepository) CountDeleted(ctx context.Context) (int64, error) {
	return r.tbl.countDeleted(ctx, r.db)
}

// SoftDeleteByOrganization marks all active notifications of the
// organization deleted.
func (r *NotificationRepository) SoftDeleteByOrganization(ctx context.Context, orgID, actor ulid.ULID) (int64, error) {
	return r.tbl.softDeleteWhere(ctx, r.db, `org_id = $3`, []any{orgID.String()}, actor)
}

// SoftDeleteByRecipient marks all active notifications addressed to the
// user deleted.
func (r *NotificationRepository) SoftDeleteByRecipient(ctx context.Context, recipientID, actor ulid.ULID) (int64, error) {
	return r.tbl.softDeleteWhere(ctx, r.db, `recipient_id = $3`, []any{recipientID.String()}, actor)
}

// SoftDeleteByTask marks all active notifications pointing at the task
// deleted.
func (r *NotificationRepository) SoftDeleteByTask(ctx context.Context, taskID, actor ulid.ULID) (int64, error) {
	return r.tbl.softDeleteWhere(ctx, r.db, `task_id = $3`, []any{taskID.String()}, actor)
}

func scanNotification(row pgx.Row) (*workspace.Notification, error) {
	var n workspace.Notification
	var idStr, orgStr, recipientStr string
	var taskStr *string
	var lc lifecycleScan

	err := row.Scan(
		&idStr, &orgStr, &recipientStr, &taskStr, &n.Message, &n.Read, &n.ExpiresAt, &n.CreatedAt,
		&n.IsDeleted, &n.DeletedAt, &lc.deletedBy, &n.RestoredAt, &lc.restoredBy,
	)
	if err != nil {
		return nil, err
	}
	if n.ID, err = parseULID(idStr, "id"); err != nil {
		return nil, err
	}
	if n.OrgID, err = parseULID(orgStr, "org_id"); err != nil {
		return nil, err
	}
	if n.RecipientID, err = parseULID(recipientStr, "recipient_id"); err != nil {
		return nil, err
	}
	if n.TaskID, err = parseOptionalULID(taskStr, "task_id"); err != nil {
		return nil, err
	}
	if err := lc.apply(&n.Lifecycle); err != nil {
		return nil, err
	}
	return &n, nil
}

// Compile-time interface check.
var _ workspace.NotificationRepository = (*NotificationRepository)(nil)
