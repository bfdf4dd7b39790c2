// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskHive Contributors

// Package workspacetest provides in-memory implementations of the workspace
// repositories for tests that exercise the cascade engine, restore checker,
// and service without a database.
package workspacetest

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/taskhive/taskhive/internal/workspace"
)

// Clock is the timestamp source used for lifecycle transitions. Tests can
// overwrite it for deterministic audit fields.
type Clock func() time.Time

// memRepo is the generic in-memory lifecycle repository backing every kind.
type memRepo[T any] struct {
	mu    sync.Mutex
	kind  workspace.Kind
	items map[ulid.ULID]*T
	id    func(*T) ulid.ULID
	lc    func(*T) *workspace.Lifecycle
	clock Clock
}

func newMemRepo[T any](kind workspace.Kind, clock Clock, id func(*T) ulid.ULID, lc func(*T) *workspace.Lifecycle) *memRepo[T] {
	return &memRepo[T]{
		kind:  kind,
		items: make(map[ulid.ULID]*T),
		id:    id,
		lc:    lc,
		clock: clock,
	}
}

func (r *memRepo[T]) notFound(id ulid.ULID) error {
	return oops.Code(workspace.NotFoundCode(r.kind)).With("id", id.String()).Wrap(workspace.ErrNotFound)
}

func (r *memRepo[T]) Get(_ context.Context, id ulid.ULID) (*T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.items[id]
	if !ok || r.lc(e).IsDeleted {
		return nil, r.notFound(id)
	}
	return e, nil
}

func (r *memRepo[T]) GetAny(_ context.Context, id ulid.ULID) (*T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.items[id]
	if !ok {
		return nil, r.notFound(id)
	}
	return e, nil
}

func (r *memRepo[T]) Create(_ context.Context, e *T) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[r.id(e)] = e
	return nil
}

func (r *memRepo[T]) Update(_ context.Context, e *T) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[r.id(e)]; !ok {
		return r.notFound(r.id(e))
	}
	r.items[r.id(e)] = e
	return nil
}

func (r *memRepo[T]) SoftDelete(_ context.Context, id, actor ulid.ULID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.items[id]
	if !ok {
		return false, r.notFound(id)
	}
	return r.lc(e).MarkDeleted(actor, r.clock()), nil
}

func (r *memRepo[T]) Restore(_ context.Context, id, actor ulid.ULID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.items[id]
	if !ok {
		return false, r.notFound(id)
	}
	return r.lc(e).MarkRestored(actor, r.clock()), nil
}

func (r *memRepo[T]) HardDelete(_ context.Context, id ulid.ULID) error {
	return oops.Code(workspace.CodeHardDeleteForbidden).
		With("kind", string(r.kind)).
		With("id", id.String()).
		Wrap(workspace.ErrHardDeleteForbidden)
}

func (r *memRepo[T]) FindDeletedByIDs(_ context.Context, ids []ulid.ULID) ([]*T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*T, 0, len(ids))
	for _, id := range ids {
		if e, ok := r.items[id]; ok && r.lc(e).IsDeleted {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memRepo[T]) CountDeleted(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, e := range r.items {
		if r.lc(e).IsDeleted {
			n++
		}
	}
	return n, nil
}

// matches reports whether e is visible under view.
func matches(lc *workspace.Lifecycle, view workspace.View) bool {
	switch view {
	case workspace.WithDeleted:
		return true
	case workspace.DeletedOnly:
		return lc.IsDeleted
	default:
		return !lc.IsDeleted
	}
}

// list returns items passing pred under view, ordered by id like the SQL
// layer, so cascade traversal order is deterministic in tests too.
func (r *memRepo[T]) list(view workspace.View, pred func(*T) bool) []*T {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*T
	for _, e := range r.items {
		if matches(r.lc(e), view) && pred(e) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return r.id(out[i]).Compare(r.id(out[j])) < 0
	})
	return out
}

// softDeleteWhere bulk-deletes active items passing pred.
func (r *memRepo[T]) softDeleteWhere(actor ulid.ULID, pred func(*T) bool) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, e := range r.items {
		lc := r.lc(e)
		if !lc.IsDeleted && pred(e) && lc.MarkDeleted(actor, r.clock()) {
			n++
		}
	}
	return n
}

// OrgRepo is the in-memory organization repository.
type OrgRepo struct {
	*memRepo[workspace.Organization]
}

// DeptRepo is the in-memory department repository.
type DeptRepo struct {
	*memRepo[workspace.Department]
}

func (r *DeptRepo) ListByOrganization(_ context.Context, orgID ulid.ULID, view workspace.View) ([]*workspace.Department, error) {
	return r.list(view, func(d *workspace.Department) bool { return d.OrgID == orgID }), nil
}

// UserRepo is the in-memory user repository.
type UserRepo struct {
	*memRepo[workspace.User]
}

func (r *UserRepo) ListByOrganization(_ context.Context, orgID ulid.ULID, view workspace.View) ([]*workspace.User, error) {
	return r.list(view, func(u *workspace.User) bool { return u.OrgID == orgID }), nil
}

func (r *UserRepo) ListByDepartment(_ context.Context, deptID ulid.ULID, view workspace.View) ([]*workspace.User, error) {
	return r.list(view, func(u *workspace.User) bool { return u.DeptID == deptID }), nil
}

// TaskRepo is the in-memory task repository.
type TaskRepo struct {
	*memRepo[workspace.Task]
}

func (r *TaskRepo) ListByDepartment(_ context.Context, deptID ulid.ULID, view workspace.View) ([]*workspace.Task, error) {
	return r.list(view, func(t *workspace.Task) bool { return t.DeptID == deptID }), nil
}

func (r *TaskRepo) RemoveWatcher(_ context.Context, userID ulid.ULID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, t := range r.items {
		if idx := slices.Index(t.Watchers, userID); idx >= 0 {
			t.Watchers = slices.Delete(t.Watchers, idx, idx+1)
			n++
		}
	}
	return n, nil
}

func (r *TaskRepo) RemoveAssignee(_ context.Context, userID ulid.ULID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, t := range r.items {
		if idx := slices.Index(t.Assignees, userID); idx >= 0 {
			t.Assignees = slices.Delete(t.Assignees, idx, idx+1)
			n++
		}
	}
	return n, nil
}

// ActivityRepo is the in-memory activity repository.
type ActivityRepo struct {
	*memRepo[workspace.Activity]
}

func (r *ActivityRepo) ListByTask(_ context.Context, taskID ulid.ULID, view workspace.View) ([]*workspace.Activity, error) {
	return r.list(view, func(a *workspace.Activity) bool { return a.TaskID == taskID }), nil
}

// CommentRepo is the in-memory comment repository.
type CommentRepo struct {
	*memRepo[workspace.Comment]
}

func (r *CommentRepo) ListByParent(_ context.Context, parent workspace.ParentRef, view workspace.View) ([]*workspace.Comment, error) {
	return r.list(view, func(c *workspace.Comment) bool { return c.Parent == parent }), nil
}

func (r *CommentRepo) RemoveMention(_ context.Context, userID ulid.ULID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, c := range r.items {
		if idx := slices.Index(c.Mentions, userID); idx >= 0 {
			c.Mentions = slices.Delete(c.Mentions, idx, idx+1)
			n++
		}
	}
	return n, nil
}

// AttachmentRepo is the in-memory attachment repository.
type AttachmentRepo struct {
	*memRepo[workspace.Attachment]
}

func (r *AttachmentRepo) ListByParent(_ context.Context, parent workspace.ParentRef, view workspace.View) ([]*workspace.Attachment, error) {
	return r.list(view, func(a *workspace.Attachment) bool { return a.Parent == parent }), nil
}

func (r *AttachmentRepo) SoftDeleteByParent(_ context.Context, parent workspace.ParentRef, actor ulid.ULID) (int64, error) {
	return r.softDeleteWhere(actor, func(a *workspace.Attachment) bool { return a.Parent == parent }), nil
}

// MaterialRepo is the in-memory material repository.
type MaterialRepo struct {
	*memRepo[workspace.Material]
}

func (r *MaterialRepo) ListByOrganization(_ context.Context, orgID ulid.ULID, view workspace.View) ([]*workspace.Material, error) {
	return r.list(view, func(m *workspace.Material) bool { return m.OrgID == orgID }), nil
}

func (r *MaterialRepo) SoftDeleteByOrganization(_ context.Context, orgID, actor ulid.ULID) (int64, error) {
	return r.softDeleteWhere(actor, func(m *workspace.Material) bool { return m.OrgID == orgID }), nil
}

func (r *MaterialRepo) SoftDeleteByDepartment(_ context.Context, deptID, actor ulid.ULID) (int64, error) {
	return r.softDeleteWhere(actor, func(m *workspace.Material) bool {
		return m.DeptID != nil && *m.DeptID == deptID
	}), nil
}

// VendorRepo is the in-memory vendor repository.
type VendorRepo struct {
	*memRepo[workspace.Vendor]
}

func (r *VendorRepo) ListByOrganization(_ context.Context, orgID ulid.ULID, view workspace.View) ([]*workspace.Vendor, error) {
	return r.list(view, func(v *workspace.Vendor) bool { return v.OrgID == orgID }), nil
}

func (r *VendorRepo) SoftDeleteByOrganization(_ context.Context, orgID, actor ulid.ULID) (int64, error) {
	return r.softDeleteWhere(actor, func(v *workspace.Vendor) bool { return v.OrgID == orgID }), nil
}

// NotificationRepo is the in-memory notification repository.
type NotificationRepo struct {
	*memRepo[workspace.Notification]
}

func (r *NotificationRepo) SoftDeleteByOrganization(_ context.Context, orgID, actor ulid.ULID) (int64, error) {
	return r.softDeleteWhere(actor, func(n *workspace.Notification) bool { return n.OrgID == orgID }), nil
}

func (r *NotificationRepo) SoftDeleteByRecipient(_ context.Context, recipientID, actor ulid.ULID) (int64, error) {
	return r.softDeleteWhere(actor, func(n *workspace.Notification) bool { return n.RecipientID == recipientID }), nil
}

func (r *NotificationRepo) SoftDeleteByTask(_ context.Context, taskID, actor ulid.ULID) (int64, error) {
	return r.softDeleteWhere(actor, func(n *workspace.Notification) bool {
		return n.TaskID != nil && *n.TaskID == taskID
	}), nil
}

// Transactor is a pass-through transactor: fn runs directly against the
// in-memory stores.
type Transactor struct{}

// InTransaction calls fn with the given context.
func (Transactor) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// NewStores builds a full in-memory store registry. clock may be nil, which
// uses the wall clock.
func NewStores(clock Clock) workspace.Stores {
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	return workspace.Stores{
		Organizations: &OrgRepo{newMemRepo(workspace.KindOrganization, clock,
			func(e *workspace.Organization) ulid.ULID { return e.ID },
			func(e *workspace.Organization) *workspace.Lifecycle { return &e.Lifecycle })},
		Departments: &DeptRepo{newMemRepo(workspace.KindDepartment, clock,
			func(e *workspace.Department) ulid.ULID { return e.ID },
			func(e *workspace.Department) *workspace.Lifecycle { return &e.Lifecycle })},
		Users: &UserRepo{newMemRepo(workspace.KindUser, clock,
			func(e *workspace.User) ulid.ULID { return e.ID },
			func(e *workspace.User) *workspace.Lifecycle { return &e.Lifecycle })},
		Tasks: &TaskRepo{newMemRepo(workspace.KindTask, clock,
			func(e *workspace.Task) ulid.ULID { return e.ID },
			func(e *workspace.Task) *workspace.Lifecycle { return &e.Lifecycle })},
		Activities: &ActivityRepo{newMemRepo(workspace.KindActivity, clock,
			func(e *workspace.Activity) ulid.ULID { return e.ID },
			func(e *workspace.Activity) *workspace.Lifecycle { return &e.Lifecycle })},
		Comments: &CommentRepo{newMemRepo(workspace.KindComment, clock,
			func(e *workspace.Comment) ulid.ULID { return e.ID },
			func(e *workspace.Comment) *workspace.Lifecycle { return &e.Lifecycle })},
		Attachments: &AttachmentRepo{newMemRepo(workspace.KindAttachment, clock,
			func(e *workspace.Attachment) ulid.ULID { return e.ID },
			func(e *workspace.Attachment) *workspace.Lifecycle { return &e.Lifecycle })},
		Materials: &MaterialRepo{newMemRepo(workspace.KindMaterial, clock,
			func(e *workspace.Material) ulid.ULID { return e.ID },
			func(e *workspace.Material) *workspace.Lifecycle { return &e.Lifecycle })},
		Vendors: &VendorRepo{newMemRepo(workspace.KindVendor, clock,
			func(e *workspace.Vendor) ulid.ULID { return e.ID },
			func(e *workspace.Vendor) *workspace.Lifecycle { return &e.Lifecycle })},
		Notifications: &NotificationRepo{newMemRepo(workspace.KindNotification, clock,
			func(e *workspace.Notification) ulid.ULID { return e.ID },
			func(e *workspace.Notification) *workspace.Lifecycle { return &e.Lifecycle })},
	}
}

// Compile-time interface checks.
var (
	_ workspace.OrganizationRepository = (*OrgRepo)(nil)
	_ workspace.DepartmentRepository   = (*DeptRepo)(nil)
	_ workspace.UserRepository         = (*UserRepo)(nil)
	_ workspace.TaskRepository         = (*TaskRepo)(nil)
	_ workspace.ActivityRepository     = (*ActivityRepo)(nil)
	_ workspace.CommentRepository      = (*CommentRepo)(nil)
	_ workspace.AttachmentRepository   = (*AttachmentRepo)(nil)
	_ workspace.MaterialRepository     = (*MaterialRepo)(nil)
	_ workspace.VendorRepository       = (*VendorRepo)(nil)
	_ workspace.NotificationRepository = (*NotificationRepo)(nil)
	_ workspace.Transactor             = Transactor{}
)
