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

// AttachmentRepository implements workspace.AttachmentRepository.
type AttachmentRepository struct {
	db  DB
	tbl table[workspace.Attachment]
}

// NewAttachmentRepository creates a PostgreSQL attachment repository.
func NewAttachmentRepository(db DB) *AttachmentRepository {
	return &AttachmentRepository{
		db: db,
		tbl: table[workspace.Attachment]{
			name:    "attachments",
			kind:    workspace.KindAttachment,
			columns: "id, org_id, dept_id, parent_kind, parent_id, file_name, content_type, size, uploaded_by, created_at, " + lifecycleColumns,
			scanRow: scanAttachment,
		},
	}
}

// Get retrieves an active attachment by ID.
func (r *AttachmentRepository) Get(ctx context.Context, id ulid.ULID) (*workspace.Attachment, error) {
	return r.tbl.get(ctx, r.db, id, workspace.ActiveOnly)
}

// GetAny retrieves an attachment by ID regardless of delete state.
func (r *AttachmentRepository) GetAny(ctx context.Context, id ulid.ULID) (*workspace.Attachment, error) {
	return r.tbl.get(ctx, r.db, id, workspace.WithDeleted)
}

// Create persists a new attachment.
func (r *AttachmentRepository) Create(ctx context.Context, a *workspace.Attachment) error {
	_, err := querierFromCtx(ctx, r.db).Exec(ctx, `
		INSERT INTO attachments (id, org_id, dept_id, parent_kind, parent_id, file_name, content_type, size, uploaded_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, a.ID.String(), a.OrgID.String(), a.DeptID.String(), string(a.Parent.Kind), a.Parent.ID.String(),
		a.FileName, a.ContentType, a.Size, a.UploadedBy.String(), a.CreatedAt)
	if err != nil {
		return oops.Code("ATTACHMENT_CREATE_FAILED").With("id", a.ID.String()).Wrap(err)
	}
	return nil
}

// Update modifies an existing attachment. The denormalized org and
// department scope is updatable so repair can re-align it after a restore.
func (r *AttachmentRepository) Update(ctx context.Context, a *workspace.Attachment) error {
	tag, err := querierFromCtx(ctx, r.db).Exec(ctx, `
		UPDATE attachments SET org_id = $2, dept_id = $3, file_name = $4, content_type = $5 WHERE id = $1
	`, a.ID.String(), a.OrgID.String(), a.DeptID.String(), a.FileName, a.ContentType)
	if err != nil {
		return oops.Code("ATTACHMENT_UPDATE_FAILED").With("id", a.ID.String()).Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return r.tbl.notFound(a.ID)
	}
	return nil
}

// SoftDelete marks the attachment deleted.
func (r *AttachmentRepository) SoftDelete(ctx context.Context, id, actor ulid.ULID) (bool, error) {
	return r.tbl.softDelete(ctx, r.db, id, actor)
}

// Restore marks the attachment active again.
func (r *AttachmentRepository) Restore(ctx context.Context, id, actor ulid.ULID) (bool, error) {
	return r.tbl.restore(ctx, r.db, id, actor)
}

// HardDelete is always rejected.
func (r *AttachmentRepository) HardDelete(_ context.Context, id ulid.ULID) error {
	return r.tbl.hardDelete(id)
}

// FindDeletedByIDs returns the soft-deleted attachments among ids.
func (r *AttachmentRepository) FindDeletedByIDs(ctx context.Context, ids []ulid.ULID) ([]*workspace.Attachment, error) {
	return r.tbl.findDeletedByIDs(ctx, r.db, ids)
}

// CountDeleted counts soft-deleted attachments.
func (r *AttachmentRepository) CountDeleted(ctx context.Context) (int64, error) {
	return r.tbl.countDeleted(ctx, r.db)
}

// ListByParent returns attachments of parent under view.
func (r *AttachmentRepository) ListByParent(ctx context.Context, parent workspace.ParentRef, view workspace.View) ([]*workspace.Attachment, error) {
	return r.tbl.list(ctx, r.db, `parent_kind = $1 AND parent_id = $2`,
		[]any{string(parent.Kind), parent.ID.String()}, view)
}

// SoftDeleteByParent marks all active attachments of parent deleted.
func (r *AttachmentRepository) SoftDeleteByParent(ctx context.Context, parent workspace.ParentRef, actor ulid.ULID) (int64, error) {
	return r.tbl.softDeleteWhere(ctx, r.db, `parent_kind = $3 AND parent_id = $4`,
		[]any{string(parent.Kind), parent.ID.String()}, actor)
}

func scanAttachment(row pgx.Row) (*workspace.Attachment, error) {
	var a workspace.Attachment
	var idStr, orgStr, deptStr, parentKind, parentIDStr, uploadedByStr string
	var lc lifecycleScan

	err := row.Scan(
		&idStr, &orgStr, &deptStr, &parentKind, &parentIDStr,
		&a.FileName, &a.ContentType, &a.Size, &uploadedByStr, &a.CreatedAt,
		&a.IsDeleted, &a.DeletedAt, &lc.deletedBy, &a.RestoredAt, &lc.restoredBy,
	)
	if err != nil {
		return nil, err
	}
	if a.ID, err = parseULID(idStr, "id"); err != nil {
		return nil, err
	}
	if a.OrgID, err = parseULID(orgStr, "org_id"); err != nil {
		return nil, err
	}
	if a.DeptID, err = parseULID(deptStr, "dept_id"); err != nil {
		return nil, err
	}
	a.Parent.Kind = workspace.ParentKind(parentKind)
	if a.Parent.ID, err = parseULID(parentIDStr, "parent_id"); err != nil {
		return nil, err
	}
	if a.UploadedBy, err = parseULID(uploadedByStr, "uploaded_by"); err != nil {
		return nil, err
	}
	if err := lc.apply(&a.Lifecycle); err != nil {
		return nil, err
	}
	return &a, nil
}

// Compile-time interface check.
var _ workspace.AttachmentRepository = (*AttachmentRepository)(nil)
