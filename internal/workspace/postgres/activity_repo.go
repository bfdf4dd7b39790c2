// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskHive Contributors

package postgres

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/taskhive/taskhive/internal/workspace"
)

// ActivityRepository implements workspace.ActivityRepository. Material
// line items are stored as a jsonb document; ULIDs marshal as text.
type ActivityRepository struct {
	db  DB
	tbl table[workspace.Activity]
}

// NewActivityRepository creates a PostgreSQL activity repository.
func NewActivityRepository(db DB) *ActivityRepository {
	return &ActivityRepository{
		db: db,
		tbl: table[workspace.Activity]{
			name:    "activities",
			kind:    workspace.KindActivity,
			columns: "id, org_id, dept_id, task_id, body, materials, created_by, created_at, " + lifecycleColumns,
			scanRow: scanActivity,
		},
	}
}

// Get retrieves an active activity by ID.
func (r *ActivityRepository) Get(ctx context.Context, id ulid.ULID) (*workspace.Activity, error) {
	return r.tbl.get(ctx, r.db, id, workspace.ActiveOnly)
}

// GetAny retrieves an activity by ID regardless of delete state.
func (r *ActivityRepository) GetAny(ctx context.Context, id ulid.ULID) (*workspace.Activity, error) {
	return r.tbl.get(ctx, r.db, id, workspace.WithDeleted)
}

// Create persists a new activity.
func (r *ActivityRepository) Create(ctx context.Context, a *workspace.Activity) error {
	materials, err := json.Marshal(a.Materials)
	if err != nil {
		return oops.Code("ACTIVITY_CREATE_FAILED").With("id", a.ID.String()).Wrap(err)
	}
	_, err = querierFromCtx(ctx, r.db).Exec(ctx, `
		INSERT INTO activities (id, org_id, dept_id, task_id, body, materials, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, a.ID.String(), a.OrgID.String(), a.DeptID.String(), a.TaskID.String(),
		a.Body, materials, a.CreatedBy.String(), a.CreatedAt)
	if err != nil {
		return oops.Code("ACTIVITY_CREATE_FAILED").With("id", a.ID.String()).Wrap(err)
	}
	return nil
}

// Update modifies an existing activity.
func (r *ActivityRepository) Update(ctx context.Context, a *workspace.Activity) error {
	materials, err := json.Marshal(a.Materials)
	if err != nil {
		return oops.Code("ACTIVITY_UPDATE_FAILED").With("id", a.ID.String()).Wrap(err)
	}
	tag, err := querierFromCtx(ctx, r.db).Exec(ctx, `
		UPDATE activities SET body = $2, materials = $3 WHERE id = $1
	`, a.ID.String(), a.Body, materials)
	if err != nil {
		return oops.Code("ACTIVITY_UPDATE_FAILED").With("id", a.ID.String()).Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return r.tbl.notFound(a.ID)
	}
	return nil
}

// SoftDelete marks the activity deleted.
func (r *ActivityRepository) SoftDelete(ctx context.Context, id, actor ulid.ULID) (bool, error) {
	return r.tbl.softDelete(ctx, r.db, id, actor)
}

// Restore marks the activity active again.
func (r *ActivityRepository) Restore(ctx context.Context, id, actor ulid.ULID) (bool, error) {
	return r.tbl.restore(ctx, r.db, id, actor)
}

// HardDelete is always rejected.
func (r *ActivityRepository) HardDelete(_ context.Context, id ulid.ULID) error {
	return r.tbl.hardDelete(id)
}

// FindDeletedByIDs returns the soft-deleted activities among ids.
func (r *ActivityRepository) FindDeletedByIDs(ctx context.Context, ids []ulid.ULID) ([]*workspace.Activity, error) {
	return r.tbl.findDeletedByIDs(ctx, r.db, ids)
}

// CountDeleted counts soft-deleted activities.
func (r *ActivityRepository) CountDeleted(ctx context.Context) (int64, error) {
	return r.tbl.countDeleted(ctx, r.db)
}

// ListByTask returns activities of a task under view.
func (r *ActivityRepository) ListByTask(ctx context.Context, taskID ulid.ULID, view workspace.View) ([]*workspace.Activity, error) {
	return r.tbl.list(ctx, r.db, `task_id = $1`, []any{taskID.String()}, view)
}

func scanActivity(row pgx.Row) (*workspace.Activity, error) {
	var a workspace.Activity
	var idStr, orgStr, deptStr, taskStr, createdByStr string
	var materials []byte
	var lc lifecycleScan

	err := row.Scan(
		&idStr, &orgStr, &deptStr, &taskStr, &a.Body, &materials, &createdByStr, &a.CreatedAt,
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
	if a.TaskID, err = parseULID(taskStr, "task_id"); err != nil {
		return nil, err
	}
	if a.CreatedBy, err = parseULID(createdByStr, "created_by"); err != nil {
		return nil, err
	}
	if len(materials) > 0 {
		if err := json.Unmarshal(materials, &a.Materials); err != nil {
			return nil, oops.Code("ACTIVITY_DECODE_FAILED").With("id", idStr).Wrap(err)
		}
	}
	if err := lc.apply(&a.Lifecycle); err != nil {
		return nil, err
	}
	return &a, nil
}

// Compile-time interface check.
var _ workspace.ActivityRepository = (*ActivityRepository)(nil)
