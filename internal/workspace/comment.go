// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskHive Contributors

package workspace

import (
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
)

// MaxCommentDepth caps reply nesting: comment, reply, reply-to-reply.
const MaxCommentDepth = 3

// Comment is attached to a task, an activity, or another comment.
// Depth is 1 for a top-level comment and grows by one per reply level; the
// chain always roots at a task or activity, never cycles.
type Comment struct {
	ID        ulid.ULID
	OrgID     ulid.ULID
	DeptID    ulid.ULID
	Parent    ParentRef
	Depth     int
	Body      string
	AuthorID  ulid.ULID
	Mentions  []ulid.ULID
	CreatedAt time.Time
	Lifecycle
}

// NewComment creates a Comment with a generated ID. Depth is computed by
// Service.CreateComment, which walks the parent chain before persisting.
func NewComment(orgID, deptID, authorID ulid.ULID, parent ParentRef, body string) (*Comment, error) {
	c := &Comment{
		ID:        ulid.Make(),
		OrgID:     orgID,
		DeptID:    deptID,
		Parent:    parent,
		Depth:     1,
		Body:      body,
		AuthorID:  authorID,
		CreatedAt: time.Now().UTC(),
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks required fields and the depth cap.
func (c *Comment) Validate() error {
	if c.ID.IsZero() {
		return &ValidationError{Field: "id", Message: "cannot be zero"}
	}
	if c.OrgID.IsZero() {
		return &ValidationError{Field: "org_id", Message: "cannot be zero"}
	}
	if c.DeptID.IsZero() {
		return &ValidationError{Field: "dept_id", Message: "cannot be zero"}
	}
	if c.AuthorID.IsZero() {
		return &ValidationError{Field: "author_id", Message: "cannot be zero"}
	}
	if err := c.Parent.Validate(); err != nil {
		return err
	}
	if c.Depth < 1 || c.Depth > MaxCommentDepth {
		return &ValidationError{
			Field:   "depth",
			Message: fmt.Sprintf("must be between 1 and %d", MaxCommentDepth),
		}
	}
	return ValidateBody(c.Body)
}
