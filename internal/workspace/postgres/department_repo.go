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

// DepartmentRepository implements workspace.DepartmentRepository.
type DepartmentRepository struct {
	db  DB
	tbl table[workspace.Department]
}

// NewDepartmentRepository creates a PostgreSQL department repository.
func NewDepartmentRepository(db DB) *DepartmentRepository {
	return &DepartmentRepository{
		db: db,
		tbl: table[workspace.Department]{
			name:    "departments",
			kind:    workspace.KindDepartment,
			columns: "id, org_id, name, head_id, created_at, " + lifecycleColumns,
			scanRow: scanDepartment,
		},
	}
}

// Get retrieves an active department by ID.
func (r *DepartmentRepository) Get(ctx context.Context, id ulid.ULID) (*workspace.Department, error) {
	return r.tbl.get(ctx, r.db, id, workspace.ActiveOnly)
}

// GetAny retrieves a department by ID regardless of delete state.
func (r *DepartmentRepository) GetAny(ctx context.Context, id ulid.ULID) (*workspace.Department, error) {
	return r.tbl.get(ctx, r.db, id, workspace.WithDeleted)
}

// Create persists a new department.
func (r *DepartmentRepository) Create(ctx context.Context, d *workspace.Department) error {
	_, err := querierFromCtx(ctx, r.db).Exec(ctx, `
		INSERT INTO departments (id, org_id, name, head_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, d.ID.String(), d.OrgID.String(), d.Name, ulidToStringPtr(d.HeadID), d.CreatedAt)
	if err != nil {
		return oops.Code("DEPARTMENT_CREATE_FAILED").With("id", d.ID.String()).Wrap(err)
	}
	return nil
}

// Update modifies an existing department.
func (r *DepartmentRepository) Update(ctx context.Context, d *workspace.Department) error {
	tag, err := querierFromCtx(ctx, r.db).Exec(ctx, `
		UPDATE departments SET name = $2, head_id = $3 WHERE id = $1
	`, d.ID.String(), d.Name, ulidToStringPtr(d.HeadID))
	if err != nil {
		return oops.Code("DEPARTMENT_UPDATE_FAILED").With("id", d.ID.String()).Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return r.tbl.notFound(d.ID)
	}
	return nil
}

// SoftDelete marks the department deleted.
func (r *DepartmentRepository) SoftDelete(ctx context.Context, id, actor ulid.ULID) (bool, error) {
	return r.tbl.softDelete(ctx, r.db, id, actor)
}

// Restore marks the department active again.
func (r *DepartmentRepository) Restore(ctx context.Context, id, actor ulid.ULID) (bool, error) {
	return r.tbl.restore(ctx, r.db, id, actor)
}

// HardDelete is always rejected.
func (r *DepartmentRepository) HardDelete(_ context.Context, id ulid.ULID) error {
	return r.tbl.hardDelete(id)
}

// FindDeletedByIDs returns the soft-deleted departments among ids.
func (r *DepartmentRepository) FindDeletedByIDs(ctx context.Context, ids []ulid.ULID) ([]*workspace.Department, error) {
	return r.tbl.findDeletedByIDs(ctx, r.db, ids)
}

// CountDeleted counts soft-deleted departments.
func (r *DepartmentRepository) CountDeleted(ctx context.Context) (int64, error) {
	return r.tbl.countDeleted(ctx, r.db)
}

// ListByOrganization returns departments of an organization under view.
func (r *DepartmentRepository) ListByOrganization(ctx context.Context, orgID ulid.ULID, view workspace.View) ([]*workspace.Department, error) {
	return r.tbl.list(ctx, r.db, `org_id = $1`, []any{orgID.String()}, view)
}

func scanDepartment(row pgx.Row) (*workspace.Department, error) {
	var d workspace.Department
	var idStr, orgStr string
	var headStr *string
	var lc lifecycleScan

	err := row.Scan(
		&idStr, &orgStr, &d.Name, &headStr, &d.CreatedAt,
		&d.IsDeleted, &d.DeletedAt, &lc.deletedBy, &d.RestoredAt, &lc.restoredBy,
	)
	if err != nil {
		return nil, err
	}
	if d.ID, err = parseULID(idStr, "id"); err != nil {
		return nil, err
	}
	if d.OrgID, err = parseULID(orgStr, "org_id"); err != nil {
		return nil, err
	}
	if d.HeadID, err = parseOptionalULID(headStr, "head_id"); err != nil {
		return nil, err
	}
	if err := lc.apply(&d.Lifecycle); err != nil {
		return nil, err
	}
	return &d, nil
}

// Compile-time interface check.
var _ workspace.DepartmentRepository = (*DepartmentRepository)(nil)
