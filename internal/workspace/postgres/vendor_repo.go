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

// VendorRepository implements workspace.VendorRepository.
type VendorRepository struct {
	db  DB
	tbl table[workspace.Vendor]
}

// NewVendorRepository creates a PostgreSQL vendor repository.
func NewVendorRepository(db DB) *VendorRepository {
	return &VendorRepository{
		db: db,
		tbl: table[workspace.Vendor]{
			name:    "vendors",
			kind:    workspace.KindVendor,
			columns: "id, org_id, name, contact, created_at, " + lifecycleColumns,
			scanRow: scanVendor,
		},
	}
}

// Get retrieves an active vendor by ID.
func (r *VendorRepository) Get(ctx context.Context, id ulid.ULID) (*workspace.Vendor, error) {
	return r.tbl.get(ctx, r.db, id, workspace.ActiveOnly)
}

// GetAny retrieves a vendor by ID regardless of delete state.
func (r *VendorRepository) GetAny(ctx context.Context, id ulid.ULID) (*workspace.Vendor, error) {
	return r.tbl.get(ctx, r.db, id, workspace.WithDeleted)
}

// Create persists a new vendor.
func (r *VendorRepository) Create(ctx context.Context, v *workspace.Vendor) error {
	_, err := querierFromCtx(ctx, r.db).Exec(ctx, `
		INSERT INTO vendors (id, org_id, name, contact, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, v.ID.String(), v.OrgID.String(), v.Name, v.Contact, v.CreatedAt)
	if err != nil {
		return oops.Code("VENDOR_CREATE_FAILED").With("id", v.ID.String()).Wrap(err)
	}
	return nil
}

// Update modifies an existing vendor.
func (r *VendorRepository) Update(ctx context.Context, v *workspace.Vendor) error {
	tag, err := querierFromCtx(ctx, r.db).Exec(ctx, `
		UPDATE vendors SET name = $2, contact = $3 WHERE id = $1
	`, v.ID.String(), v.Name, v.Contact)
	if err != nil {
		return oops.Code("VENDOR_UPDATE_FAILED").With("id", v.ID.String()).Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return r.tbl.notFound(v.ID)
	}
	return nil
}

// SoftDelete marks the vendor deleted.
func (r *VendorRepository) SoftDelete(ctx context.Context, id, actor ulid.ULID) (bool, error) {
	return r.tbl.softDelete(ctx, r.db, id, actor)
}

// Restore marks the vendor active again.
func (r *VendorRepository) Restore(ctx context.Context, id, actor ulid.ULID) (bool, error) {
	return r.tbl.restore(ctx, r.db, id, actor)
}

// HardDelete is always rejected.
func (r *VendorRepository) HardDelete(_ context.Context, id ulid.ULID) error {
	return r.tbl.hardDelete(id)
}

// FindDeletedByIDs returns the soft-deleted vendors among ids.
func (r *VendorRepository) FindDeletedByIDs(ctx context.Context, ids []ulid.ULID) ([]*workspace.Vendor, error) {
	return r.tbl.findDeletedByIDs(ctx, r.db, ids)
}

// CountDeleted counts soft-deleted vendors.
func (r *VendorRepository) CountDeleted(ctx context.Context) (int64, error) {
	return r.tbl.countDeleted(ctx, r.db)
}

// ListByOrganization returns vendors of an organization under view.
func (r *VendorRepository) ListByOrganization(ctx context.Context, orgID ulid.ULID, view workspace.View) ([]*workspace.Vendor, error) {
	return r.tbl.list(ctx, r.db, `org_id = $1`, []any{orgID.String()}, view)
}

// SoftDeleteByOrganization marks all active vendors of the organization
// deleted.
func (r *VendorRepository) SoftDeleteByOrganization(ctx context.Context, orgID, actor ulid.ULID) (int64, error) {
	return r.tbl.softDeleteWhere(ctx, r.db, `org_id = $3`, []any{orgID.String()}, actor)
}

func scanVendor(row pgx.Row) (*workspace.Vendor, error) {
	var v workspace.Vendor
	var idStr, orgStr string
	var lc lifecycleScan

	err := row.Scan(
		&idStr, &orgStr, &v.Name, &v.Contact, &v.CreatedAt,
		&v.IsDeleted, &v.DeletedAt, &lc.deletedBy, &v.RestoredAt, &lc.restoredBy,
	)
	if err != nil {
		return nil, err
	}
	if v.ID, err = parseULID(idStr, "id"); err != nil {
		return nil, err
	}
	if v.OrgID, err = parseULID(orgStr, "org_id"); err != nil {
		return nil, err
	}
	if err := lc.apply(&v.Lifecycle); err != nil {
		return nil, err
	}
	return &v, nil
}

// Compile-time interface check.
var _ workspace.VendorRepository = (*VendorRepository)(nil)
