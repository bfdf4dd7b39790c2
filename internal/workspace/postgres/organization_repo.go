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

// OrganizationRepository implements workspace.OrganizationRepository.
type OrganizationRepository struct {
	db  DB
	tbl table[workspace.Organization]
}

// NewOrganizationRepository creates a PostgreSQL organization repository.
func NewOrganizationRepository(db DB) *OrganizationRepository {
	return &OrganizationRepository{
		db: db,
		tbl: table[workspace.Organization]{
			name:    "organizations",
			kind:    workspace.KindOrganization,
			columns: "id, name, is_platform, created_at, " + lifecycleColumns,
			scanRow: scanOrganization,
		},
	}
}

// Get retrieves an active organization by ID.
func (r *OrganizationRepository) Get(ctx context.Context, id ulid.ULID) (*workspace.Organization, error) {
	return r.tbl.get(ctx, r.db, id, workspace.ActiveOnly)
}

// GetAny retrieves an organization by ID regardless of delete state.
func (r *OrganizationRepository) GetAny(ctx context.Context, id ulid.ULID) (*workspace.Organization, error) {
	return r.tbl.get(ctx, r.db, id, workspace.WithDeleted)
}

// Create persists a new organization.
// Callers must validate the organization before calling this method.
func (r *OrganizationRepository) Create(ctx context.Context, o *workspace.Organization) error {
	_, err := querierFromCtx(ctx, r.db).Exec(ctx, `
		INSERT INTO organizations (id, name, is_platform, created_at)
		VALUES ($1, $2, $3, $4)
	`, o.ID.String(), o.Name, o.IsPlatform, o.CreatedAt)
	if err != nil {
		return oops.Code("ORGANIZATION_CREATE_FAILED").With("id", o.ID.String()).Wrap(err)
	}
	return nil
}

// Update modifies an existing organization. The is_platform flag is
// immutable after creation and deliberately absent from the statement.
func (r *OrganizationRepository) Update(ctx context.Context, o *workspace.Organization) error {
	tag, err := querierFromCtx(ctx, r.db).Exec(ctx, `
		UPDATE organizations SET name = $2 WHERE id = $1
	`, o.ID.String(), o.Name)
	if err != nil {
		return oops.Code("ORGANIZATION_UPDATE_FAILED").With("id", o.ID.String()).Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return r.tbl.notFound(o.ID)
	}
	return nil
}

// SoftDelete marks the organization deleted.
func (r *OrganizationRepository) SoftDelete(ctx context.Context, id, actor ulid.ULID) (bool, error) {
	return r.tbl.softDelete(ctx, r.db, id, actor)
}

// Restore marks the organization active again.
func (r *OrganizationRepository) Restore(ctx context.Context, id, actor ulid.ULID) (bool, error) {
	return r.tbl.restore(ctx, r.db, id, actor)
}

// HardDelete is always rejected.
func (r *OrganizationRepository) HardDelete(_ context.Context, id ulid.ULID) error {
	return r.tbl.hardDelete(id)
}

// FindDeletedByIDs returns the soft-deleted organizations among ids.
func (r *OrganizationRepository) FindDeletedByIDs(ctx context.Context, ids []ulid.ULID) ([]*workspace.Organization, error) {
	return r.tbl.findDeletedByIDs(ctx, r.db, ids)
}

// CountDeleted counts soft-deleted organizations.
func (r *OrganizationRepository) CountDeleted(ctx context.Context) (int64, error) {
	return r.tbl.countDeleted(ctx, r.db)
}

func scanOrganization(row pgx.Row) (*workspace.Organization, error) {
	var o workspace.Organization
	var idStr string
	var lc lifecycleScan

	err := row.Scan(
		&idStr, &o.Name, &o.IsPlatform, &o.CreatedAt,
		&o.IsDeleted, &o.DeletedAt, &lc.deletedBy, &o.RestoredAt, &lc.restoredBy,
	)
	if err != nil {
		return nil, err
	}
	if o.ID, err = parseULID(idStr, "id"); err != nil {
		return nil, err
	}
	if err := lc.apply(&o.Lifecycle); err != nil {
		return nil, err
	}
	return &o, nil
}

// Compile-time interface check.
var _ workspace.OrganizationRepository = (*OrganizationRepository)(nil)
