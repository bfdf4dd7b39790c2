// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskHive Contributors

package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/taskhive/taskhive/internal/workspace"
)

// lifecycleColumns is appended to every entity's select list so the scan
// helpers can hydrate the shared field set uniformly.
const lifecycleColumns = "is_deleted, deleted_at, deleted_by, restored_at, restored_by"

// timeNow is a test seam for deterministic lifecycle timestamps.
var timeNow = func() time.Time { return time.Now().UTC() }

// viewClause is the visibility filter, expressed once for every repository.
// Default reads hide soft-deleted rows; WithDeleted lifts the filter for one
// query; DeletedOnly inverts it.
func viewClause(view workspace.View) string {
	switch view {
	case workspace.WithDeleted:
		return ""
	case workspace.DeletedOnly:
		return " AND is_deleted"
	default:
		return " AND NOT is_deleted"
	}
}

// table bundles the SQL metadata and scan function for one entity kind, and
// provides the generic lifecycle operations every repository delegates to.
type table[T any] struct {
	name    string
	kind    workspace.Kind
	columns string // select list, must end with lifecycleColumns
	scanRow func(row pgx.Row) (*T, error)
}

func (t *table[T]) notFound(id ulid.ULID) error {
	return oops.Code(workspace.NotFoundCode(t.kind)).With("id", id.String()).Wrap(workspace.ErrNotFound)
}

// get retrieves one row by id under the given view.
func (t *table[T]) get(ctx context.Context, db DB, id ulid.ULID, view workspace.View) (*T, error) {
	q := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1%s`, t.columns, t.name, viewClause(view))
	row := querierFromCtx(ctx, db).QueryRow(ctx, q, id.String())
	e, err := t.scanRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, t.notFound(id)
	}
	if err != nil {
		return nil, oops.Code(strings.ToUpper(string(t.kind))+"_GET_FAILED").With("id", id.String()).Wrap(err)
	}
	return e, nil
}

// list retrieves rows matching cond (placeholders continue from $1) under
// the given view, ordered by id for stable cascade traversal.
func (t *table[T]) list(ctx context.Context, db DB, cond string, args []any, view workspace.View) ([]*T, error) {
	q := fmt.Sprintf(`SELECT %s FROM %s WHERE %s%s ORDER BY id`, t.columns, t.name, cond, viewClause(view))
	rows, err := querierFromCtx(ctx, db).Query(ctx, q, args...)
	if err != nil {
		return nil, oops.Code(strings.ToUpper(string(t.kind))+"_QUERY_FAILED").Wrap(err)
	}
	defer rows.Close()

	out := make([]*T, 0)
	for rows.Next() {
		e, err := t.scanRow(rows)
		if err != nil {
			return nil, oops.Code(strings.ToUpper(string(t.kind))+"_SCAN_FAILED").Wrap(err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code(strings.ToUpper(string(t.kind))+"_ITERATE_FAILED").Wrap(err)
	}
	return out, nil
}

// softDelete transitions one row to the deleted state. Already-deleted rows
// are untouched (changed=false) so the original delete audit survives
// re-runs; a missing id is ErrNotFound.
func (t *table[T]) softDelete(ctx context.Context, db DB, id, actor ulid.ULID) (bool, error) {
	q := fmt.Sprintf(`
		UPDATE %s SET is_deleted = TRUE, deleted_at = $2, deleted_by = $3,
			restored_at = NULL, restored_by = NULL
		WHERE id = $1 AND NOT is_deleted
	`, t.name)
	tag, err := querierFromCtx(ctx, db).Exec(ctx, q, id.String(), timeNow(), actor.String())
	if err != nil {
		return false, oops.Code(strings.ToUpper(string(t.kind))+"_DELETE_FAILED").With("id", id.String()).Wrap(err)
	}
	if tag.RowsAffected() > 0 {
		return true, nil
	}
	return false, t.requireExists(ctx, db, id)
}

// restore transitions one row back to the active state. Active rows are
// untouched (changed=false); a missing id is ErrNotFound.
func (t *table[T]) restore(ctx context.Context, db DB, id, actor ulid.ULID) (bool, error) {
	q := fmt.Sprintf(`
		UPDATE %s SET is_deleted = FALSE, deleted_at = NULL, deleted_by = NULL,
			restored_at = $2, restored_by = $3
		WHERE id = $1 AND is_deleted
	`, t.name)
	tag, err := querierFromCtx(ctx, db).Exec(ctx, q, id.String(), timeNow(), actor.String())
	if err != nil {
		return false, oops.Code(strings.ToUpper(string(t.kind))+"_RESTORE_FAILED").With("id", id.String()).Wrap(err)
	}
	if tag.RowsAffected() > 0 {
		return true, nil
	}
	return false, t.requireExists(ctx, db, id)
}

// softDeleteWhere bulk soft-deletes active rows matching cond. Placeholders
// in cond start at $3 ($1 is deleted_at, $2 is deleted_by).
func (t *table[T]) softDeleteWhere(ctx context.Context, db DB, cond string, condArgs []any, actor ulid.ULID) (int64, error) {
	q := fmt.Sprintf(`
		UPDATE %s SET is_deleted = TRUE, deleted_at = $1, deleted_by = $2,
			restored_at = NULL, restored_by = NULL
		WHERE NOT is_deleted AND %s
	`, t.name, cond)
	args := append([]any{timeNow(), actor.String()}, condArgs...)
	tag, err := querierFromCtx(ctx, db).Exec(ctx, q, args...)
	if err != nil {
		return 0, oops.Code(strings.ToUpper(string(t.kind))+"_BULK_DELETE_FAILED").Wrap(err)
	}
	return tag.RowsAffected(), nil
}

// hardDelete enforces the blanket hard-delete policy: always rejected.
// Physical removal happens only through the retention reaper.
func (t *table[T]) hardDelete(id ulid.ULID) error {
	return oops.Code(workspace.CodeHardDeleteForbidden).
		With("kind", string(t.kind)).
		With("id", id.String()).
		Wrap(workspace.ErrHardDeleteForbidden)
}

func (t *table[T]) findDeletedByIDs(ctx context.Context, db DB, ids []ulid.ULID) ([]*T, error) {
	if len(ids) == 0 {
		return []*T{}, nil
	}
	return t.list(ctx, db, `id = ANY($1)`, []any{ulidsToStrings(ids)}, workspace.DeletedOnly)
}

func (t *table[T]) countDeleted(ctx context.Context, db DB) (int64, error) {
	var count int64
	q := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE is_deleted`, t.name)
	if err := querierFromCtx(ctx, db).QueryRow(ctx, q).Scan(&count); err != nil {
		return 0, oops.Code(strings.ToUpper(string(t.kind))+"_COUNT_FAILED").Wrap(err)
	}
	return count, nil
}

func (t *table[T]) requireExists(ctx context.Context, db DB, id ulid.ULID) error {
	var exists bool
	q := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE id = $1)`, t.name)
	if err := querierFromCtx(ctx, db).QueryRow(ctx, q, id.String()).Scan(&exists); err != nil {
		return oops.Code(strings.ToUpper(string(t.kind))+"_GET_FAILED").With("id", id.String()).Wrap(err)
	}
	if !exists {
		return t.notFound(id)
	}
	return nil
}

// lifecycleScan holds intermediate scan values for the shared field set.
type lifecycleScan struct {
	deletedBy  *string
	restoredBy *string
}

// apply converts scanned values into the entity's lifecycle fields.
func (f *lifecycleScan) apply(lc *workspace.Lifecycle) error {
	var err error
	lc.DeletedBy, err = parseOptionalULID(f.deletedBy, "deleted_by")
	if err != nil {
		return err
	}
	lc.RestoredBy, err = parseOptionalULID(f.restoredBy, "restored_by")
	return err
}
