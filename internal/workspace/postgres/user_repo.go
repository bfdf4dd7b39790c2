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

// UserRepository implements workspace.UserRepository.
type UserRepository struct {
	db  DB
	tbl table[workspace.User]
}

// NewUserRepository creates a PostgreSQL user repository.
func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{
		db: db,
		tbl: table[workspace.User]{
			name:    "users",
			kind:    workspace.KindUser,
			columns: "id, org_id, dept_id, name, email, is_head, created_at, " + lifecycleColumns,
			scanRow: scanUser,
		},
	}
}

// Get retrieves an active user by ID.
func (r *UserRepository) Get(ctx context.Context, id ulid.ULID) (*workspace.User, error) {
	return r.tbl.get(ctx, r.db, id, workspace.ActiveOnly)
}

// GetAny retrieves a user by ID regardless of delete state.
func (r *UserRepository) GetAny(ctx context.Context, id ulid.ULID) (*workspace.User, error) {
	return r.tbl.get(ctx, r.db, id, workspace.WithDeleted)
}

// Create persists a new user. The email must be unique among active users;
// deleted duplicates may coexist (partial unique index).
func (r *UserRepository) Create(ctx context.Context, u *workspace.User) error {
	_, err := querierFromCtx(ctx, r.db).Exec(ctx, `
		INSERT INTO users (id, org_id, dept_id, name, email, is_head, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, u.ID.String(), u.OrgID.String(), u.DeptID.String(), u.Name, u.Email, u.IsHead, u.CreatedAt)
	if err != nil {
		return oops.Code("USER_CREATE_FAILED").With("id", u.ID.String()).Wrap(err)
	}
	return nil
}

// Update modifies an existing user.
func (r *UserRepository) Update(ctx context.Context, u *workspace.User) error {
	tag, err := querierFromCtx(ctx, r.db).Exec(ctx, `
		UPDATE users SET dept_id = $2, name = $3, email = $4, is_head = $5 WHERE id = $1
	`, u.ID.String(), u.DeptID.String(), u.Name, u.Email, u.IsHead)
	if err != nil {
		return oops.Code("USER_UPDATE_FAILED").With("id", u.ID.String()).Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return r.tbl.notFound(u.ID)
	}
	return nil
}

// SoftDelete marks the user deleted.
func (r *UserRepository) SoftDelete(ctx context.Context, id, actor ulid.ULID) (bool, error) {
	return r.tbl.softDelete(ctx, r.db, id, actor)
}

// Restore marks the user active again.
func (r *UserRepository) Restore(ctx context.Context, id, actor ulid.ULID) (bool, error) {
	return r.tbl.restore(ctx, r.db, id, actor)
}

// HardDelete is always rejected.
func (r *UserRepository) HardDelete(_ context.Context, id ulid.ULID) error {
	return r.tbl.hardDelete(id)
}

// FindDeletedByIDs returns the soft-deleted users among ids.
func (r *UserRepository) FindDeletedByIDs(ctx context.Context, ids []ulid.ULID) ([]*workspace.User, error) {
	return r.tbl.findDeletedByIDs(ctx, r.db, ids)
}

// CountDeleted counts soft-deleted users.
func (r *UserRepository) CountDeleted(ctx context.Context) (int64, error) {
	return r.tbl.countDeleted(ctx, r.db)
}

// ListByOrganization returns users of an organization under view.
func (r *UserRepository) ListByOrganization(ctx context.Context, orgID ulid.ULID, view workspace.View) ([]*workspace.User, error) {
	return r.tbl.list(ctx, r.db, `org_id = $1`, []any{orgID.String()}, view)
}

// ListByDepartment returns users of a department under view.
func (r *UserRepository) ListByDepartment(ctx context.Context, deptID ulid.ULID, view workspace.View) ([]*workspace.User, error) {
	return r.tbl.list(ctx, r.db, `dept_id = $1`, []any{deptID.String()}, view)
}

func scanUser(row pgx.Row) (*workspace.User, error) {
	var u workspace.User
	var idStr, orgStr, deptStr string
	var lc lifecycleScan

	err := row.Scan(
		&idStr, &orgStr, &deptStr, &u.Name, &u.Email, &u.IsHead, &u.CreatedAt,
		&u.IsDeleted, &u.DeletedAt, &lc.deletedBy, &u.RestoredAt, &lc.restoredBy,
	)
	if err != nil {
		return nil, err
	}
	if u.ID, err = parseULID(idStr, "id"); err != nil {
		return nil, err
	}
	if u.OrgID, err = parseULID(orgStr, "org_id"); err != nil {
		return nil, err
	}
	if u.DeptID, err = parseULID(deptStr, "dept_id"); err != nil {
		return nil, err
	}
	if err := lc.apply(&u.Lifecycle); err != nil {
		return nil, err
	}
	return &u, nil
}

// Compile-time interface check.
var _ workspace.UserRepository = (*UserRepository)(nil)
