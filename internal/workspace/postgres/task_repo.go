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

// TaskRepository implements workspace.TaskRepository. All task subtypes
// share one table with a kind discriminator.
type TaskRepository struct {
	db  DB
	tbl table[workspace.Task]
}

// NewTaskRepository creates a PostgreSQL task repository.
func NewTaskRepository(db DB) *TaskRepository {
	return &TaskRepository{
		db: db,
		tbl: table[workspace.Task]{
			name:    "tasks",
			kind:    workspace.KindTask,
			columns: "id, org_id, dept_id, kind, title, created_by, watchers, assignees, due_at, created_at, " + lifecycleColumns,
			scanRow: scanTask,
		},
	}
}

// Get retrieves an active task by ID.
func (r *TaskRepository) Get(ctx context.Context, id ulid.ULID) (*workspace.Task, error) {
	return r.tbl.get(ctx, r.db, id, workspace.ActiveOnly)
}

// GetAny retrieves a task by ID regardless of delete state.
func (r *TaskRepository) GetAny(ctx context.Context, id ulid.ULID) (*workspace.Task, error) {
	return r.tbl.get(ctx, r.db, id, workspace.WithDeleted)
}

// Create persists a new task.
func (r *TaskRepository) Create(ctx context.Context, t *workspace.Task) error {
	_, err := querierFromCtx(ctx, r.db).Exec(ctx, `
		INSERT INTO tasks (id, org_id, dept_id, kind, title, created_by, watchers, assignees, due_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, t.ID.String(), t.OrgID.String(), t.DeptID.String(), string(t.Kind), t.Title,
		t.CreatedBy.String(), ulidsToStrings(t.Watchers), ulidsToStrings(t.Assignees), t.DueAt, t.CreatedAt)
	if err != nil {
		return oops.Code("TASK_CREATE_FAILED").With("id", t.ID.String()).Wrap(err)
	}
	return nil
}

// Update modifies an existing task.
func (r *TaskRepository) Update(ctx context.Context, t *workspace.Task) error {
	tag, err := querierFromCtx(ctx, r.db).Exec(ctx, `
		UPDATE tasks SET title = $2, watchers = $3, assignees = $4, due_at = $5 WHERE id = $1
	`, t.ID.String(), t.Title, ulidsToStrings(t.Watchers), ulidsToStrings(t.Assignees), t.DueAt)
	if err != nil {
		return oops.Code("TASK_UPDATE_FAILED").With("id", t.ID.String()).Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return r.tbl.notFound(t.ID)
	}
	return nil
}

// SoftDelete marks the task deleted.
func (r *TaskRepository) SoftDelete(ctx context.Context, id, actor ulid.ULID) (bool, error) {
	return r.tbl.softDelete(ctx, r.db, id, actor)
}

// Restore marks the task active again.
func (r *TaskRepository) Restore(ctx context.Context, id, actor ulid.ULID) (bool, error) {
	return r.tbl.restore(ctx, r.db, id, actor)
}

// HardDelete is always rejected.
func (r *TaskRepository) HardDelete(_ context.Context, id ulid.ULID) error {
	return r.tbl.hardDelete(id)
}

// FindDeletedByIDs returns the soft-deleted tasks among ids.
func (r *TaskRepository) FindDeletedByIDs(ctx context.Context, ids []ulid.ULID) ([]*workspace.Task, error) {
	return r.tbl.findDeletedByIDs(ctx, r.db, ids)
}

// CountDeleted counts soft-deleted tasks.
func (r *TaskRepository) CountDeleted(ctx context.Context) (int64, error) {
	return r.tbl.countDeleted(ctx, r.db)
}

// ListByDepartment returns tasks of a department under view.
func (r *TaskRepository) ListByDepartment(ctx context.Context, deptID ulid.ULID, view workspace.View) ([]*workspace.Task, error) {
	return r.tbl.list(ctx, r.db, `dept_id = $1`, []any{deptID.String()}, view)
}

// RemoveWatcher pulls a user out of every task's watcher list. Deleted
// tasks are swept too so a later restore does not resurrect the reference.
func (r *TaskRepository) RemoveWatcher(ctx context.Context, userID ulid.ULID) (int64, error) {
	tag, err := querierFromCtx(ctx, r.db).Exec(ctx, `
		UPDATE tasks SET watchers = array_remove(watchers, $1) WHERE $1 = ANY(watchers)
	`, userID.String())
	if err != nil {
		return 0, oops.Code("TASK_PRUNE_FAILED").With("user_id", userID.String()).Wrap(err)
	}
	return tag.RowsAffected(), nil
}

// RemoveAssignee pulls a user out of every task's assignee list.
func (r *TaskRepository) RemoveAssignee(ctx context.Context, userID ulid.ULID) (int64, error) {
	tag, err := querierFromCtx(ctx, r.db).Exec(ctx, `
		UPDATE tasks SET assignees = array_remove(assignees, $1) WHERE $1 = ANY(assignees)
	`, userID.String())
	if err != nil {
		return 0, oops.Code("TASK_PRUNE_FAILED").With("user_id", userID.String()).Wrap(err)
	}
	return tag.RowsAffected(), nil
}

func scanTask(row pgx.Row) (*workspace.Task, error) {
	var t workspace.Task
	var idStr, orgStr, deptStr, kindStr, createdByStr string
	var watchers, assignees []string
	var lc lifecycleScan

	err := row.Scan(
		&idStr, &orgStr, &deptStr, &kindStr, &t.Title, &createdByStr,
		&watchers, &assignees, &t.DueAt, &t.CreatedAt,
		&t.IsDeleted, &t.DeletedAt, &lc.deletedBy, &t.RestoredAt, &lc.restoredBy,
	)
	if err != nil {
		return nil, err
	}
	t.Kind = workspace.TaskKind(kindStr)
	if t.ID, err = parseULID(idStr, "id"); err != nil {
		return nil, err
	}
	if t.OrgID, err = parseULID(orgStr, "org_id"); err != nil {
		return nil, err
	}
	if t.DeptID, err = parseULID(deptStr, "dept_id"); err != nil {
		return nil, err
	}
	if t.CreatedBy, err = parseULID(createdByStr, "created_by"); err != nil {
		return nil, err
	}
	if t.Watchers, err = parseULIDs(watchers, "watchers"); err != nil {
		return nil, err
	}
	if t.Assignees, err = parseULIDs(assignees, "assignees"); err != nil {
		return nil, err
	}
	if err := lc.apply(&t.Lifecycle); err != nil {
		return nil, err
	}
	return &t, nil
}

// Compile-time interface check.
var _ workspace.TaskRepository = (*TaskRepository)(nil)
