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

// CommentRepository implements workspace.CommentRepository.
type CommentRepository struct {
	db  DB
	tbl table[workspace.Comment]
}

// NewCommentRepository creates a PostgreSQL comment repository.
func NewCommentRepository(db DB) *CommentRepository {
	return &CommentRepository{
		db: db,
		tbl: table[workspace.Comment]{
			name:    "comments",
			kind:    workspace.KindComment,
			columns: "id, org_id, dept_id, parent_kind, parent_id, depth, body, author_id, mentions, created_at, " + lifecycleColumns,
			scanRow: scanComment,
		},
	}
}

// Get retrieves an active comment by ID.
func (r *CommentRepository) Get(ctx context.Context, id ulid.ULID) (*workspace.Comment, error) {
	return r.tbl.get(ctx, r.db, id, workspace.ActiveOnly)
}

// GetAny retrieves a comment by ID regardless of delete state.
func (r *CommentRepository) GetAny(ctx context.Context, id ulid.ULID) (*workspace.Comment, error) {
	return r.tbl.get(ctx, r.db, id, workspace.WithDeleted)
}

// Create persists a new comment.
func (r *CommentRepository) Create(ctx context.Context, c *workspace.Comment) error {
	_, err := querierFromCtx(ctx, r.db).Exec(ctx, `
		INSERT INTO comments (id, org_id, dept_id, parent_kind, parent_id, depth, body, author_id, mentions, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, c.ID.String(), c.OrgID.String(), c.DeptID.String(), string(c.Parent.Kind), c.Parent.ID.String(),
		c.Depth, c.Body, c.AuthorID.String(), ulidsToStrings(c.Mentions), c.CreatedAt)
	if err != nil {
		return oops.Code("COMMENT_CREATE_FAILED").With("id", c.ID.String()).Wrap(err)
	}
	return nil
}

// Update modifies an existing comment.
func (r *CommentRepository) Update(ctx context.Context, c *workspace.Comment) error {
	tag, err := querierFromCtx(ctx, r.db).Exec(ctx, `
		UPDATE comments SET body = $2, mentions = $3 WHERE id = $1
	`, c.ID.String(), c.Body, ulidsToStrings(c.Mentions))
	if err != nil {
		return oops.Code("COMMENT_UPDATE_FAILED").With("id", c.ID.String()).Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return r.tbl.notFound(c.ID)
	}
	return nil
}

// SoftDelete marks the comment deleted.
func (r *CommentRepository) SoftDelete(ctx context.Context, id, actor ulid.ULID) (bool, error) {
	return r.tbl.softDelete(ctx, r.db, id, actor)
}

// Restore marks the comment active again.
func (r *CommentRepository) Restore(ctx context.Context, id, actor ulid.ULID) (bool, error) {
	return r.tbl.restore(ctx, r.db, id, actor)
}

// HardDelete is always rejected.
func (r *CommentRepository) HardDelete(_ context.Context, id ulid.ULID) error {
	return r.tbl.hardDelete(id)
}

// FindDeletedByIDs returns the soft-deleted comments among ids.
func (r *CommentRepository) FindDeletedByIDs(ctx context.Context, ids []ulid.ULID) ([]*workspace.Comment, error) {
	return r.tbl.findDeletedByIDs(ctx, r.db, ids)
}

// CountDeleted counts soft-deleted comments.
func (r *CommentRepository) CountDeleted(ctx context.Context) (int64, error) {
	return r.tbl.countDeleted(ctx, r.db)
}

// ListByParent returns comments attached to parent under view.
func (r *CommentRepository) ListByParent(ctx context.Context, parent workspace.ParentRef, view workspace.View) ([]*workspace.Comment, error) {
	return r.tbl.list(ctx, r.db, `parent_kind = $1 AND parent_id = $2`,
		[]any{string(parent.Kind), parent.ID.String()}, view)
}

// RemoveMention pulls a user out of every comment's mention list.
func (r *CommentRepository) RemoveMention(ctx context.Context, userID ulid.ULID) (int64, error) {
	tag, err := querierFromCtx(ctx, r.db).Exec(ctx, `
		UPDATE comments SET mentions = array_remove(mentions, $1) WHERE $1 = ANY(mentions)
	`, userID.String())
	if err != nil {
		return 0, oops.Code("COMMENT_PRUNE_FAILED").With("user_id", userID.String()).Wrap(err)
	}
	return tag.RowsAffected(), nil
}

func scanComment(row pgx.Row) (*workspace.Comment, error) {
	var c workspace.Comment
	var idStr, orgStr, deptStr, parentKind, parentIDStr, authorStr string
	var mentions []string
	var lc lifecycleScan

	err := row.Scan(
		&idStr, &orgStr, &deptStr, &parentKind, &parentIDStr, &c.Depth,
		&c.Body, &authorStr, &mentions, &c.CreatedAt,
		&c.IsDeleted, &c.DeletedAt, &lc.deletedBy, &c.RestoredAt, &lc.restoredBy,
	)
	if err != nil {
		return nil, err
	}
	if c.ID, err = parseULID(idStr, "id"); err != nil {
		return nil, err
	}
	if c.OrgID, err = parseULID(orgStr, "org_id"); err != nil {
		return nil, err
	}
	if c.DeptID, err = parseULID(deptStr, "dept_id"); err != nil {
		return nil, err
	}
	c.Parent.Kind = workspace.ParentKind(parentKind)
	if c.Parent.ID, err = parseULID(parentIDStr, "parent_id"); err != nil {
		return nil, err
	}
	if c.AuthorID, err = parseULID(authorStr, "author_id"); err != nil {
		return nil, err
	}
	if c.Mentions, err = parseULIDs(mentions, "mentions"); err != nil {
		return nil, err
	}
	if err := lc.apply(&c.Lifecycle); err != nil {
		return nil, err
	}
	return &c, nil
}

// Compile-time interface check.
var _ workspace.CommentRepository = (*CommentRepository)(nil)
