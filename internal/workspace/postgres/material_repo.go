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

// MaterialRepository implements workspace.MaterialRepository.
type MaterialRepository struct {
	db  DB
	tbl table[workspace.Material]
}

// NewMaterialRepository creates a PostgreSQL material repository.
func NewMaterialRepository(db DB) *MaterialRepository {
	return &MaterialRepository{
		db: db,
		tbl: table[workspace.Material]{
			name:    "materials",
			kind:    workspace.KindMaterial,
			columns: "id, org_id, dept_id, name, unit, created_at, " + lifecycleColumns,
			scanRow: scanMaterial,
		},
	}
}

// Get retrieves an active material by ID.
func (r *MaterialRepository) Get(ctx context.Context, id ulid.ULID) (*workspace.Material, error) {
	return r.tbl.get(ctx, r.db, id, workspace.ActiveOnly)
}

// GetAny retrieves a material by ID regardless of delete state.
func (r *MaterialRepository) GetAny(ctx context.Context, id ulid.ULID) (*workspace.Material, error) {
	return r.tbl.get(ctx, r.db, id, workspace.WithDeleted)
}

// Create persists a new material. DeptID is NULL for org-wide materials.
func (r *MaterialRepository) Create(ctx context.Context, m *workspace.Material) error {
	_, err := querierFromCtx(ctx, r.db).Exec(ctx, `
		INSERT INTO materials (id, org_id, dept_id, name, unit, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, m.ID.String(), m.OrgID.String(), ulidToStringPtr(m.DeptID), m.Name, m.Unit, m.CreatedAt)
	if err != nil {
		return oops.Code("MATERIAL_CREATE_FAILED").With("id", m.ID.String()).Wrap(err)
	}
	return nil
}

// Update modifies an existing material.
func (r *MaterialRepository) Update(ctx context.Context, m *workspace.Material) error {
	tag, err := querierFromCtx(ctx, r.db).Exec(ctx, `
		UPDATE materials SET dept_id = $2, name = $3, unit = $4 WHERE id = $1
	`, m.ID.String(), ulidToStringPtr(m.DeptID), m.Name, m.Unit)
	if err != nil {
		return oops.Code("MATERIAL_UPDATE_FAILED").With("id", m.ID.String()).Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return r.tbl.notFound(m.ID)
	}
	return nil
}

// SoftDelete marks the material deleted.
func (r *MaterialRepository) SoftDelete(ctx context.Context, id, actor ulid.ULID) (bool, error) {
	return r.tbl.softDelete(ctx, r.db, id, actor)
}

// Restore marks the material active again.
func (r *MaterialRepository) Restore(ctx context.Context, id, actor ulid.ULID) (bool, error) {
	return r.tbl.restore(ctx, r.db, id, actor)
}

// HardDelete is always rejected.
func (r *MaterialRepository) HardDelete(_ context.Context, id ulid.ULID) error {
	return r.tbl.hardDelete(id)
}

// FindDeletedByIDs returns the soft-deleted materials among ids.
func (r *MaterialRepository) FindDeletedByIDs(ctx context.Context, ids []ulid.ULID) ([]*workspace.Material, error) {
	return r.tbl.findDeletedByIDs(ctx, r.db, ids)
}

// CountDeleted counts soft-deleted materials.
func (r *MaterialRepository) CountDeleted(ctx context.Context) (int64, error) {
	return r.tbl.countDeleted(ctx, r.db)
}

// ListByOrganization returns materials of an organization under view.
func (r *MaterialRepository) ListByOrganization(ctx context.Context, orgID ulid.ULID, view workspace.View) ([]*workspace.Material, error) {
	return r.tbl.list(ctx, r.db, `org_id = $1`, []any{orgID.String()}, view)
}

// SoftDeleteByOrganization marks all active materials of the organization
// deleted.
func (r *MaterialRepository) SoftDeleteByOrganization(ctx context.Context, orgID, actor ulid.ULID) (int64, error) {
	return r.tbl.softDeleteWhere(ctx, r.db, `org_id = $3`, []any{orgID.String()}, actor)
}

// SoftDeleteByDepartment marks all active materials scoped to the
// department deleted. Org-wide materials (dept_id NULL) are untouched.
func (r *MaterialRepository) SoftDeleteByDepartment(ctx context.Context, deptID, actor ulid.ULID) (int64, error) {
	return r.tbl.softDeleteWhere(ctx, r.db, `dept_id = $3`, []any{deptID.String()}, actor)
}

func scanMaterial(row pgx.Row) (*workspace.Material, error) {
	var m workspace.Material
	var idStr, orgStr string
	var deptStr *string
	var lc lifecycleScan

	err := row.Scan(
		&idStr, &orgStr, &deptStr, &m.Name, &m.Unit, &m.CreatedAt,
		&m.IsDeleted, &m.DeletedAt, &lc.deletedBy, &m.RestoredAt, &lc.restoredBy,
	)
	if err != nil {
		return nil, err
	}
	if m.ID, err = parseULID(idStr, "id"); err != nil {
		return nil, err
	}
	if m.OrgID, err = parseULID(orgStr, "org_id"); err != nil {
		return nil, err
	}
	if m.DeptID, err = parseOptionalULID(deptStr, "dept_id"); err != nil {
		return nil, err
	}
	if err := lc.apply(&m.Lifecycle); err != nil {
		return nil, err
	}
	return &m, nil
}

// Compile-time interface check.
var _ workspace.MaterialRepository = (*MaterialRepository)(nil)
