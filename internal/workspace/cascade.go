// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskHive Contributors

package workspace

import (
	"context"
	"errors"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Engine walks the ownership hierarchy on delete. Children are enumerated
// with WithDeleted so a cascade interrupted partway through can be re-run:
// an active child is soft-deleted and then recursed into; an already-deleted
// child is recursed into anyway, because the earlier run may have stopped
// before reaching its subtree. Every run converges on the fully-deleted
// state without touching audit fields twice.
//
// The engine assumes it runs inside a transaction supplied by the caller
// (Service wraps it in Transactor.InTransaction).
type Engine struct {
	stores Stores
}

// NewEngine creates a cascade engine over the given store registry.
func NewEngine(stores Stores) *Engine {
	return &Engine{stores: stores}
}

// SoftDelete marks the entity deleted and cascades into everything it owns.
// Deleting an already-deleted entity is a successful no-op at the root, but
// the cascade still runs to completion underneath it.
func (e *Engine) SoftDelete(ctx context.Context, kind Kind, id, actor ulid.ULID) error {
	switch kind {
	case KindOrganization:
		return e.deleteOrganization(ctx, id, actor)
	case KindDepartment:
		return e.deleteDepartment(ctx, id, actor)
	case KindUser:
		return e.deleteUser(ctx, id, actor)
	case KindTask:
		return e.deleteTask(ctx, id, actor)
	case KindActivity:
		return e.deleteActivity(ctx, id, actor)
	case KindComment:
		return e.deleteComment(ctx, id, actor, map[ulid.ULID]bool{})
	case KindAttachment, KindMaterial, KindVendor, KindNotification:
		return e.deleteLeaf(ctx, kind, id, actor)
	default:
		return oops.Code("UNKNOWN_ENTITY_KIND").With("kind", string(kind)).Errorf("unknown entity kind %q", kind)
	}
}

func (e *Engine) deleteOrganization(ctx context.Context, id, actor ulid.ULID) error {
	org, err := e.stores.Organizations.GetAny(ctx, id)
	if err != nil {
		return err
	}
	if org.IsPlatform {
		return oops.Code(CodePlatformOrgProtected).
			With("id", id.String()).
			Errorf("the platform organization cannot be deleted")
	}
	if _, err := e.stores.Organizations.SoftDelete(ctx, id, actor); err != nil {
		return err
	}

	depts, err := e.stores.Departments.ListByOrganization(ctx, id, WithDeleted)
	if err != nil {
		return err
	}
	for _, d := range depts {
		if err := e.cascadeInto(ctx, d.IsDeleted, d.ID, actor,
			e.stores.Departments.SoftDelete, e.cascadeDepartment); err != nil {
			return err
		}
	}

	// Users not covered by a department sweep (defensive: the department
	// cascade already handles its members, and user deletion is idempotent).
	users, err := e.stores.Users.ListByOrganization(ctx, id, WithDeleted)
	if err != nil {
		return err
	}
	for _, u := range users {
		if err := e.cascadeInto(ctx, u.IsDeleted, u.ID, actor,
			e.stores.Users.SoftDelete, e.pruneUserRefs); err != nil {
			return err
		}
	}

	if _, err := e.stores.Vendors.SoftDeleteByOrganization(ctx, id, actor); err != nil {
		return err
	}
	if _, err := e.stores.Materials.SoftDeleteByOrganization(ctx, id, actor); err != nil {
		return err
	}
	if _, err := e.stores.Notifications.SoftDeleteByOrganization(ctx, id, actor); err != nil {
		return err
	}
	return nil
}

func (e *Engine) deleteDepartment(ctx context.Context, id, actor ulid.ULID) error {
	if _, err := e.stores.Departments.SoftDelete(ctx, id, actor); err != nil {
		return err
	}
	return e.cascadeDepartment(ctx, id, actor)
}

func (e *Engine) cascadeDepartment(ctx context.Context, id, actor ulid.ULID) error {
	users, err := e.stores.Users.ListByDepartment(ctx, id, WithDeleted)
	if err != nil {
		return err
	}
	for _, u := range users {
		if err := e.cascadeInto(ctx, u.IsDeleted, u.ID, actor,
			e.stores.Users.SoftDelete, e.pruneUserRefs); err != nil {
			return err
		}
	}

	tasks, err := e.stores.Tasks.ListByDepartment(ctx, id, WithDeleted)
	if err != nil {
		return err
	}
	for _, t := range tasks {
		if err := e.cascadeInto(ctx, t.IsDeleted, t.ID, actor,
			e.stores.Tasks.SoftDelete, e.cascadeTask); err != nil {
			return err
		}
	}

	if _, err := e.stores.Materials.SoftDeleteByDepartment(ctx, id, actor); err != nil {
		return err
	}
	return nil
}

// deleteUser prunes weak references to the user and soft-deletes their
// notifications. Tasks and content the user created are owned by the
// department and are deliberately left alone.
func (e *Engine) deleteUser(ctx context.Context, id, actor ulid.ULID) error {
	if _, err := e.stores.Users.SoftDelete(ctx, id, actor); err != nil {
		return err
	}
	return e.pruneUserRefs(ctx, id, actor)
}

func (e *Engine) pruneUserRefs(ctx context.Context, id, actor ulid.ULID) error {
	if _, err := e.stores.Tasks.RemoveWatcher(ctx, id); err != nil {
		return err
	}
	if _, err := e.stores.Tasks.RemoveAssignee(ctx, id); err != nil {
		return err
	}
	if _, err := e.stores.Comments.RemoveMention(ctx, id); err != nil {
		return err
	}
	if _, err := e.stores.Notifications.SoftDeleteByRecipient(ctx, id, actor); err != nil {
		return err
	}
	return nil
}

func (e *Engine) deleteTask(ctx context.Context, id, actor ulid.ULID) error {
	if _, err := e.stores.Tasks.SoftDelete(ctx, id, actor); err != nil {
		return err
	}
	return e.cascadeTask(ctx, id, actor)
}

func (e *Engine) cascadeTask(ctx context.Context, id, actor ulid.ULID) error {
	activities, err := e.stores.Activities.ListByTask(ctx, id, WithDeleted)
	if err != nil {
		return err
	}
	for _, a := range activities {
		if err := e.cascadeInto(ctx, a.IsDeleted, a.ID, actor,
			e.stores.Activities.SoftDelete, e.cascadeActivity); err != nil {
			return err
		}
	}
	if err := e.cascadeComments(ctx, ParentRef{Kind: ParentTask, ID: id}, actor, map[ulid.ULID]bool{}); err != nil {
		return err
	}
	if _, err := e.stores.Attachments.SoftDeleteByParent(ctx, ParentRef{Kind: ParentTask, ID: id}, actor); err != nil {
		return err
	}
	if _, err := e.stores.Notifications.SoftDeleteByTask(ctx, id, actor); err != nil {
		return err
	}
	return nil
}

func (e *Engine) deleteActivity(ctx context.Context, id, actor ulid.ULID) error {
	if _, err := e.stores.Activities.SoftDelete(ctx, id, actor); err != nil {
		return err
	}
	return e.cascadeActivity(ctx, id, actor)
}

func (e *Engine) cascadeActivity(ctx context.Context, id, actor ulid.ULID) error {
	if err := e.cascadeComments(ctx, ParentRef{Kind: ParentActivity, ID: id}, actor, map[ulid.ULID]bool{}); err != nil {
		return err
	}
	_, err := e.stores.Attachments.SoftDeleteByParent(ctx, ParentRef{Kind: ParentActivity, ID: id}, actor)
	return err
}

func (e *Engine) deleteComment(ctx context.Context, id, actor ulid.ULID, seen map[ulid.ULID]bool) error {
	if _, err := e.stores.Comments.SoftDelete(ctx, id, actor); err != nil {
		return err
	}
	return e.cascadeComment(ctx, id, actor, seen)
}

func (e *Engine) cascadeComment(ctx context.Context, id, actor ulid.ULID, seen map[ulid.ULID]bool) error {
	// The depth cap makes cycles impossible for well-formed data; the seen
	// set keeps a corrupted chain from looping the cascade.
	if seen[id] {
		return nil
	}
	seen[id] = true

	if err := e.cascadeComments(ctx, ParentRef{Kind: ParentComment, ID: id}, actor, seen); err != nil {
		return err
	}
	_, err := e.stores.Attachments.SoftDeleteByParent(ctx, ParentRef{Kind: ParentComment, ID: id}, actor)
	return err
}

func (e *Engine) cascadeComments(ctx context.Context, parent ParentRef, actor ulid.ULID, seen map[ulid.ULID]bool) error {
	comments, err := e.stores.Comments.ListByParent(ctx, parent, WithDeleted)
	if err != nil {
		return err
	}
	for _, c := range comments {
		if !c.IsDeleted {
			if _, err := e.stores.Comments.SoftDelete(ctx, c.ID, actor); err != nil {
				return err
			}
		}
		if err := e.cascadeComment(ctx, c.ID, actor, seen); err != nil {
			return err
		}
	}
	return nil
}

// deleteLeaf handles kinds with no owned children.
func (e *Engine) deleteLeaf(ctx context.Context, kind Kind, id, actor ulid.ULID) error {
	var err error
	switch kind {
	case KindAttachment:
		_, err = e.stores.Attachments.SoftDelete(ctx, id, actor)
	case KindMaterial:
		_, err = e.stores.Materials.SoftDelete(ctx, id, actor)
	case KindVendor:
		_, err = e.stores.Vendors.SoftDelete(ctx, id, actor)
	case KindNotification:
		_, err = e.stores.Notifications.SoftDelete(ctx, id, actor)
	default:
		err = errors.New("not a leaf kind: " + string(kind))
	}
	return err
}

// cascadeInto soft-deletes the child if it is still active, then continues
// into its subtree either way, so interrupted cascades can be resumed.
func (e *Engine) cascadeInto(
	ctx context.Context,
	alreadyDeleted bool,
	id, actor ulid.ULID,
	softDelete func(ctx context.Context, id, actor ulid.ULID) (bool, error),
	cascade func(ctx context.Context, id, actor ulid.ULID) error,
) error {
	if !alreadyDeleted {
		if _, err := softDelete(ctx, id, actor); err != nil {
			return err
		}
	}
	return cascade(ctx, id, actor)
}
