// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskHive Contributors

package workspace

import (
	"context"
	"errors"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// MaxParentChainDepth bounds the polymorphic parent walk for comments and
// attachments. Exceeding it fails closed: the chain is treated as invalid
// rather than risking an unbounded loop on corrupted data.
const MaxParentChainDepth = 10

// restoreChecker verifies, before a restore flips state, that no required
// ancestor of the entity is missing or still deleted. The walk is read-only.
type restoreChecker struct {
	stores Stores
}

func blockedByAncestor(kind Kind, id ulid.ULID, ancestorKind Kind, ancestorID ulid.ULID) error {
	return oops.Code(CodeRestoreBlockedParentDeleted).
		With("kind", string(kind)).
		With("id", id.String()).
		With("blocking_kind", string(ancestorKind)).
		With("blocking_id", ancestorID.String()).
		Errorf("cannot restore %s %s: its %s %s is deleted or missing, restore the %s first",
			kind, id, ancestorKind, ancestorID, ancestorKind)
}

// requireActive loads the ancestor through the active-only view and turns a
// miss (absent or soft-deleted) into a restore-blocked error.
func requireActive[T any](ctx context.Context, repo LifecycleRepository[T], kind Kind, id ulid.ULID, entityKind Kind, entityID ulid.ULID) error {
	_, err := repo.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return blockedByAncestor(entityKind, entityID, kind, id)
	}
	return err
}

func (c *restoreChecker) check(ctx context.Context, kind Kind, id ulid.ULID) error {
	switch kind {
	case KindOrganization:
		// Root of the hierarchy, restorable on its own terms.
		return nil
	case KindDepartment:
		d, err := c.stores.Departments.GetAny(ctx, id)
		if err != nil {
			return err
		}
		return requireActive(ctx, c.stores.Organizations, KindOrganization, d.OrgID, kind, id)
	case KindUser:
		u, err := c.stores.Users.GetAny(ctx, id)
		if err != nil {
			return err
		}
		if err := requireActive(ctx, c.stores.Organizations, KindOrganization, u.OrgID, kind, id); err != nil {
			return err
		}
		return requireActive(ctx, c.stores.Departments, KindDepartment, u.DeptID, kind, id)
	case KindTask:
		return c.checkTask(ctx, id)
	case KindActivity:
		return c.checkActivity(ctx, id)
	case KindComment:
		cm, err := c.stores.Comments.GetAny(ctx, id)
		if err != nil {
			return err
		}
		if err := c.checkScope(ctx, kind, id, cm.OrgID, &cm.DeptID); err != nil {
			return err
		}
		return c.walkParentChain(ctx, kind, id, cm.Parent)
	case KindAttachment:
		a, err := c.stores.Attachments.GetAny(ctx, id)
		if err != nil {
			return err
		}
		if err := c.checkScope(ctx, kind, id, a.OrgID, &a.DeptID); err != nil {
			return err
		}
		return c.walkParentChain(ctx, kind, id, a.Parent)
	case KindMaterial:
		m, err := c.stores.Materials.GetAny(ctx, id)
		if err != nil {
			return err
		}
		return c.checkScope(ctx, kind, id, m.OrgID, m.DeptID)
	case KindVendor:
		v, err := c.stores.Vendors.GetAny(ctx, id)
		if err != nil {
			return err
		}
		return requireActive(ctx, c.stores.Organizations, KindOrganization, v.OrgID, kind, id)
	case KindNotification:
		// Ephemeral by definition, never restorable, regardless of how
		// healthy its organization and recipient are.
		return oops.Code(CodeNotificationNotRestorable).
			With("id", id.String()).
			Errorf("notifications are ephemeral and cannot be restored")
	default:
		return oops.Code("UNKNOWN_ENTITY_KIND").With("kind", string(kind)).Errorf("unknown entity kind %q", kind)
	}
}

func (c *restoreChecker) checkTask(ctx context.Context, id ulid.ULID) error {
	t, err := c.stores.Tasks.GetAny(ctx, id)
	if err != nil {
		return err
	}
	if err := c.checkScope(ctx, KindTask, id, t.OrgID, &t.DeptID); err != nil {
		return err
	}
	// The creator is not an owner, but a task without an active creator is
	// unactionable in the UI, so it blocks restore like an ancestor.
	return requireActive(ctx, c.stores.Users, KindUser, t.CreatedBy, KindTask, id)
}

func (c *restoreChecker) checkActivity(ctx context.Context, id ulid.ULID) error {
	a, err := c.stores.Activities.GetAny(ctx, id)
	if err != nil {
		return err
	}
	if err := c.checkScope(ctx, KindActivity, id, a.OrgID, &a.DeptID); err != nil {
		return err
	}
	if err := requireActive(ctx, c.stores.Tasks, KindTask, a.TaskID, KindActivity, id); err != nil {
		return err
	}
	// Referenced-but-not-owned integrity: line items pointing at a
	// soft-deleted material block the restore with an actionable error.
	// Physically reaped materials are handled by repair instead, since there
	// is nothing left to restore.
	for _, usage := range a.Materials {
		m, err := c.stores.Materials.GetAny(ctx, usage.MaterialID)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		if m.IsDeleted {
			return oops.Code(CodeRestoreBlockedDependencyDeleted).
				With("kind", string(KindActivity)).
				With("id", id.String()).
				With("material_id", usage.MaterialID.String()).
				Errorf("cannot restore activity %s: referenced material %s is deleted, restore the material first",
					id, usage.MaterialID)
		}
	}
	return nil
}

// checkScope verifies the entity's organization (and department, when set)
// are active.
func (c *restoreChecker) checkScope(ctx context.Context, kind Kind, id, orgID ulid.ULID, deptID *ulid.ULID) error {
	if err := requireActive(ctx, c.stores.Organizations, KindOrganization, orgID, kind, id); err != nil {
		return err
	}
	if deptID != nil {
		return requireActive(ctx, c.stores.Departments, KindDepartment, *deptID, kind, id)
	}
	return nil
}

type chainNode struct {
	kind ParentKind
	id   ulid.ULID
}

// walkParentChain follows a comment/attachment parent chain up to its task
// or activity root, re-checking each hop for deletion. A visited set guards
// against cycles and MaxParentChainDepth bounds the walk; both fail closed
// with the kind's chain-invalid code.
func (c *restoreChecker) walkParentChain(ctx context.Context, kind Kind, id ulid.ULID, start ParentRef) error {
	visited := make(map[chainNode]bool)
	ref := start

	for depth := 0; depth < MaxParentChainDepth; depth++ {
		node := chainNode{kind: ref.Kind, id: ref.ID}
		if visited[node] {
			return oops.Code(ChainInvalidCode(kind)).
				With("kind", string(kind)).
				With("id", id.String()).
				With("cycle_at", ref.String()).
				Errorf("cannot restore %s %s: parent chain contains a cycle at %s", kind, id, ref)
		}
		visited[node] = true

		switch ref.Kind {
		case ParentTask:
			return requireActive(ctx, c.stores.Tasks, KindTask, ref.ID, kind, id)
		case ParentActivity:
			a, err := c.stores.Activities.GetAny(ctx, ref.ID)
			if errors.Is(err, ErrNotFound) {
				return blockedByAncestor(kind, id, KindActivity, ref.ID)
			}
			if err != nil {
				return err
			}
			if a.IsDeleted {
				return blockedByAncestor(kind, id, KindActivity, ref.ID)
			}
			// Also confirm the activity's own task root is alive.
			return requireActive(ctx, c.stores.Tasks, KindTask, a.TaskID, kind, id)
		case ParentComment:
			cm, err := c.stores.Comments.GetAny(ctx, ref.ID)
			if errors.Is(err, ErrNotFound) {
				return blockedByAncestor(kind, id, KindComment, ref.ID)
			}
			if err != nil {
				return err
			}
			if cm.IsDeleted {
				return blockedByAncestor(kind, id, KindComment, ref.ID)
			}
			ref = cm.Parent
		default:
			return oops.Code(ChainInvalidCode(kind)).
				With("kind", string(kind)).
				With("id", id.String()).
				With("parent_kind", string(ref.Kind)).
				Errorf("cannot restore %s %s: parent chain references unknown kind %q", kind, id, ref.Kind)
		}
	}

	return oops.Code(ChainInvalidCode(kind)).
		With("kind", string(kind)).
		With("id", id.String()).
		With("max_depth", MaxParentChainDepth).
		Errorf("cannot restore %s %s: parent chain exceeds maximum depth %d", kind, id, MaxParentChainDepth)
}
