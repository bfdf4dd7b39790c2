// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskHive Contributors

package workspace

import (
	"context"
	"errors"

	"github.com/oklog/ulid/v2"
)

// repairer prunes weak references after an entity passes its restore
// integrity check. Repairs mutate the entity in place and never block the
// restore; the service persists the repaired entity.
type repairer struct {
	stores Stores
}

// repairDepartment clears the head-of-department reference when the user it
// points at is deleted, missing, or now belongs to a different organization.
func (r *repairer) repairDepartment(ctx context.Context, d *Department) error {
	if d.HeadID == nil {
		return nil
	}
	u, err := r.stores.Users.Get(ctx, *d.HeadID)
	if errors.Is(err, ErrNotFound) {
		d.HeadID = nil
		return nil
	}
	if err != nil {
		return err
	}
	if u.OrgID != d.OrgID {
		d.HeadID = nil
	}
	return nil
}

// repairUser drops the head-of-department flag. Restoring a user does not
// reinstate HOD authority; it has to be reassigned explicitly.
func (r *repairer) repairUser(_ context.Context, u *User) error {
	u.IsHead = false
	return nil
}

// repairComment drops mentions of users that are still deleted or gone.
func (r *repairer) repairComment(ctx context.Context, c *Comment) error {
	if len(c.Mentions) == 0 {
		return nil
	}
	kept := c.Mentions[:0]
	for _, userID := range c.Mentions {
		_, err := r.stores.Users.Get(ctx, userID)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		kept = append(kept, userID)
	}
	c.Mentions = kept
	return nil
}

// repairActivity drops line items whose material was physically reaped.
// Soft-deleted materials never reach this point: the integrity check blocks
// the restore first.
func (r *repairer) repairActivity(ctx context.Context, a *Activity) error {
	if len(a.Materials) == 0 {
		return nil
	}
	kept := a.Materials[:0]
	for _, usage := range a.Materials {
		_, err := r.stores.Materials.GetAny(ctx, usage.MaterialID)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		kept = append(kept, usage)
	}
	a.Materials = kept
	return nil
}

// repairAttachment re-aligns the denormalized organization/department scope
// with the live parent's, healing drift accumulated while deleted.
func (r *repairer) repairAttachment(ctx context.Context, a *Attachment) error {
	orgID, deptID, err := r.parentScope(ctx, a.Parent)
	if err != nil {
		return err
	}
	if orgID != nil {
		a.OrgID = *orgID
	}
	if deptID != nil {
		a.DeptID = *deptID
	}
	return nil
}

func (r *repairer) parentScope(ctx context.Context, ref ParentRef) (orgID, deptID *ulid.ULID, err error) {
	switch ref.Kind {
	case ParentTask:
		t, err := r.stores.Tasks.Get(ctx, ref.ID)
		if err != nil {
			return nil, nil, err
		}
		return &t.OrgID, &t.DeptID, nil
	case ParentActivity:
		a, err := r.stores.Activities.Get(ctx, ref.ID)
		if err != nil {
			return nil, nil, err
		}
		return &a.OrgID, &a.DeptID, nil
	case ParentComment:
		c, err := r.stores.Comments.Get(ctx, ref.ID)
		if err != nil {
			return nil, nil, err
		}
		return &c.OrgID, &c.DeptID, nil
	default:
		return nil, nil, nil
	}
}
