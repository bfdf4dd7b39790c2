// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskHive Contributors

package workspace_test

import (
	"context"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhive/taskhive/internal/workspace"
	"github.com/taskhive/taskhive/pkg/errutil"
)

func TestRestore_RoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.SoftDelete(ctx, workspace.KindTask, f.task.ID, f.actor))

	restorer := ulid.Make()
	require.NoError(t, f.svc.Restore(ctx, workspace.KindTask, f.task.ID, restorer))

	lc := f.lifecycle(t, workspace.KindTask, f.task.ID)
	assert.False(t, lc.IsDeleted)
	require.NotNil(t, lc.RestoredBy)
	assert.Equal(t, restorer, *lc.RestoredBy)
	// Deletion audit survives the restore.
	require.NotNil(t, lc.DeletedBy)
	assert.Equal(t, f.actor, *lc.DeletedBy)
}

func TestRestore_ActiveEntityIsNoop(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.Restore(ctx, workspace.KindTask, f.task.ID, f.actor))

	lc := f.lifecycle(t, workspace.KindTask, f.task.ID)
	assert.False(t, lc.IsDeleted)
	assert.Nil(t, lc.RestoredAt, "no-op restore must not stamp audit fields")
	assert.Nil(t, lc.RestoredBy)
}

func TestRestore_DoesNotCascadeToChildren(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.SoftDelete(ctx, workspace.KindTask, f.task.ID, f.actor))
	require.NoError(t, f.svc.Restore(ctx, workspace.KindTask, f.task.ID, f.actor))

	// Children deleted by the cascade stay deleted until restored individually.
	f.requireActive(t, workspace.KindTask, f.task.ID)
	f.requireDeleted(t, workspace.KindActivity, f.activity.ID)
	f.requireDeleted(t, workspace.KindComment, f.comment.ID)
	f.requireDeleted(t, workspace.KindAttachment, f.attachment.ID)
}

func TestRestore_BlockedByDeletedAncestor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.SoftDelete(ctx, workspace.KindDepartment, f.dept.ID, f.actor))

	// The whole dept subtree is down; restoring a task must point at the
	// department, restoring a user at the department too.
	err := f.svc.Restore(ctx, workspace.KindTask, f.task.ID, f.actor)
	errutil.AssertErrorCode(t, err, workspace.CodeRestoreBlockedParentDeleted)
	errutil.AssertErrorContext(t, err, "blocking_kind", string(workspace.KindDepartment))
	f.requireDeleted(t, workspace.KindTask, f.task.ID)

	err = f.svc.Restore(ctx, workspace.KindUser, f.bob.ID, f.actor)
	errutil.AssertErrorCode(t, err, workspace.CodeRestoreBlockedParentDeleted)

	// Bottom-up order works: department first, then the task.
	require.NoError(t, f.svc.Restore(ctx, workspace.KindDepartment, f.dept.ID, f.actor))
	require.NoError(t, f.svc.Restore(ctx, workspace.KindUser, f.alice.ID, f.actor))
	require.NoError(t, f.svc.Restore(ctx, workspace.KindTask, f.task.ID, f.actor))
	f.requireActive(t, workspace.KindTask, f.task.ID)
}

func TestRestore_TaskBlockedByDeletedCreator(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.SoftDelete(ctx, workspace.KindTask, f.task.ID, f.actor))
	require.NoError(t, f.svc.SoftDelete(ctx, workspace.KindUser, f.alice.ID, f.actor))

	err := f.svc.Restore(ctx, workspace.KindTask, f.task.ID, f.actor)
	errutil.AssertErrorCode(t, err, workspace.CodeRestoreBlockedParentDeleted)
	errutil.AssertErrorContext(t, err, "blocking_kind", string(workspace.KindUser))
}

func TestRestore_CommentWalksParentChain(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.SoftDelete(ctx, workspace.KindTask, f.task.ID, f.actor))

	// The reply's chain is reply -> comment -> task; the deleted comment
	// blocks first.
	err := f.svc.Restore(ctx, workspace.KindComment, f.reply.ID, f.actor)
	errutil.AssertErrorCode(t, err, workspace.CodeRestoreBlockedParentDeleted)
	errutil.AssertErrorContext(t, err, "blocking_kind", string(workspace.KindComment))

	// With the chain restored top-down the reply comes back.
	require.NoError(t, f.svc.Restore(ctx, workspace.KindTask, f.task.ID, f.actor))
	require.NoError(t, f.svc.Restore(ctx, workspace.KindComment, f.comment.ID, f.actor))
	require.NoError(t, f.svc.Restore(ctx, workspace.KindComment, f.reply.ID, f.actor))
	f.requireActive(t, workspace.KindComment, f.reply.ID)
}

func TestRestore_AttachmentChainRootsAtTask(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.SoftDelete(ctx, workspace.KindAttachment, f.attachment.ID, f.actor))
	require.NoError(t, f.svc.SoftDelete(ctx, workspace.KindTask, f.task.ID, f.actor))

	err := f.svc.Restore(ctx, workspace.KindAttachment, f.attachment.ID, f.actor)
	errutil.AssertErrorCode(t, err, workspace.CodeRestoreBlockedParentDeleted)
	errutil.AssertErrorContext(t, err, "blocking_kind", string(workspace.KindTask))
}

func TestRestore_ChainCycleFailsClosed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Corrupt the live chain into a two-comment cycle above a third comment.
	f.comment.Parent = workspace.ParentRef{Kind: workspace.ParentComment, ID: f.reply.ID}
	require.NoError(t, f.stores.Comments.Update(ctx, f.comment))

	orphan, err := workspace.NewComment(f.org.ID, f.dept.ID, f.alice.ID,
		workspace.ParentRef{Kind: workspace.ParentComment, ID: f.comment.ID}, "stuck")
	require.NoError(t, err)
	orphan.Depth = 3
	require.NoError(t, f.stores.Comments.Create(ctx, orphan))

	require.NoError(t, f.svc.SoftDelete(ctx, workspace.KindComment, orphan.ID, f.actor))

	err = f.svc.Restore(ctx, workspace.KindComment, orphan.ID, f.actor)
	errutil.AssertErrorCode(t, err, workspace.ChainInvalidCode(workspace.KindComment))
	f.requireDeleted(t, workspace.KindComment, orphan.ID)
}

func TestRestore_ChainDepthExceededFailsClosed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Build a parent chain longer than the walker tolerates. Depth values are
	// deliberately corrupt; the walk must bail on its own bound.
	parent := f.comment
	var last *workspace.Comment
	for i := 0; i < workspace.MaxParentChainDepth+1; i++ {
		c, err := workspace.NewComment(f.org.ID, f.dept.ID, f.alice.ID,
			workspace.ParentRef{Kind: workspace.ParentComment, ID: parent.ID}, "deep")
		require.NoError(t, err)
		c.Depth = 2
		require.NoError(t, f.stores.Comments.Create(ctx, c))
		parent = c
		last = c
	}

	changed, err := f.stores.Comments.SoftDelete(ctx, last.ID, f.actor)
	require.NoError(t, err)
	require.True(t, changed)

	err = f.svc.Restore(ctx, workspace.KindComment, last.ID, f.actor)
	errutil.AssertErrorCode(t, err, workspace.ChainInvalidCode(workspace.KindComment))
}

func TestRestore_ActivityBlockedByDeletedMaterial(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.SoftDelete(ctx, workspace.KindActivity, f.activity.ID, f.actor))
	require.NoError(t, f.svc.SoftDelete(ctx, workspace.KindMaterial, f.material.ID, f.actor))

	err := f.svc.Restore(ctx, workspace.KindActivity, f.activity.ID, f.actor)
	errutil.AssertErrorCode(t, err, workspace.CodeRestoreBlockedDependencyDeleted)
	errutil.AssertErrorContext(t, err, "material_id", f.material.ID.String())

	// Restore the material and the activity follows, line items intact.
	require.NoError(t, f.svc.Restore(ctx, workspace.KindMaterial, f.material.ID, f.actor))
	require.NoError(t, f.svc.Restore(ctx, workspace.KindActivity, f.activity.ID, f.actor))

	a, err := f.stores.Activities.Get(ctx, f.activity.ID)
	require.NoError(t, err)
	assert.Len(t, a.Materials, 1)
}

func TestRestore_ActivityPrunesReapedMaterials(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// A line item pointing at a material that was physically reaped: nothing
	// to restore, so repair drops it instead of blocking.
	gone := ulid.Make()
	f.activity.Materials = append(f.activity.Materials, workspace.MaterialUsage{MaterialID: gone, Quantity: 3})
	require.NoError(t, f.stores.Activities.Update(ctx, f.activity))

	require.NoError(t, f.svc.SoftDelete(ctx, workspace.KindActivity, f.activity.ID, f.actor))
	require.NoError(t, f.svc.Restore(ctx, workspace.KindActivity, f.activity.ID, f.actor))

	a, err := f.stores.Activities.Get(ctx, f.activity.ID)
	require.NoError(t, err)
	require.Len(t, a.Materials, 1)
	assert.Equal(t, f.material.ID, a.Materials[0].MaterialID)
}

func TestRestore_NotificationRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.SoftDelete(ctx, workspace.KindNotification, f.notification.ID, f.actor))

	err := f.svc.Restore(ctx, workspace.KindNotification, f.notification.ID, f.actor)
	errutil.AssertErrorCode(t, err, workspace.CodeNotificationNotRestorable)
	f.requireDeleted(t, workspace.KindNotification, f.notification.ID)
}

func TestRestore_DepartmentClearsStaleHead(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.SoftDelete(ctx, workspace.KindDepartment, f.dept.ID, f.actor))
	require.NoError(t, f.svc.Restore(ctx, workspace.KindDepartment, f.dept.ID, f.actor))

	// Alice is still deleted, so the head reference is cleared on restore.
	d, err := f.stores.Departments.Get(ctx, f.dept.ID)
	require.NoError(t, err)
	assert.Nil(t, d.HeadID)
}

func TestRestore_DepartmentKeepsActiveHead(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Flip only the department row, as if an earlier cascade died right after
	// it: the head user is still active, so the reference survives restore.
	changed, err := f.stores.Departments.SoftDelete(ctx, f.dept.ID, f.actor)
	require.NoError(t, err)
	require.True(t, changed)

	require.NoError(t, f.svc.Restore(ctx, workspace.KindDepartment, f.dept.ID, f.actor))

	d, err := f.stores.Departments.Get(ctx, f.dept.ID)
	require.NoError(t, err)
	require.NotNil(t, d.HeadID)
	assert.Equal(t, f.alice.ID, *d.HeadID)
}

func TestRestore_UserDropsHeadFlag(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.SoftDelete(ctx, workspace.KindUser, f.alice.ID, f.actor))
	require.NoError(t, f.svc.Restore(ctx, workspace.KindUser, f.alice.ID, f.actor))

	u, err := f.stores.Users.Get(ctx, f.alice.ID)
	require.NoError(t, err)
	assert.False(t, u.IsHead, "restored users must not regain head-of-department authority")
}

func TestRestore_CommentPrunesDeletedMentions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Deleting bob prunes the mention; put it back to simulate a mention that
	// survived deletion (e.g. a cascade that skipped the prune).
	require.NoError(t, f.svc.SoftDelete(ctx, workspace.KindComment, f.comment.ID, f.actor))
	require.NoError(t, f.svc.SoftDelete(ctx, workspace.KindUser, f.bob.ID, f.actor))
	f.comment.Mentions = []ulid.ULID{f.alice.ID, f.bob.ID}
	require.NoError(t, f.stores.Comments.Update(ctx, f.comment))

	require.NoError(t, f.svc.Restore(ctx, workspace.KindComment, f.comment.ID, f.actor))

	c, err := f.stores.Comments.Get(ctx, f.comment.ID)
	require.NoError(t, err)
	assert.Equal(t, []ulid.ULID{f.alice.ID}, c.Mentions)
}

func TestRestore_AttachmentRealignsScope(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.SoftDelete(ctx, workspace.KindAttachment, f.attachment.ID, f.actor))

	// Drift the denormalized scope to another live department while the
	// attachment is deleted.
	other, err := workspace.NewDepartment(f.org.ID, "Procurement")
	require.NoError(t, err)
	require.NoError(t, f.stores.Departments.Create(ctx, other))
	f.attachment.DeptID = other.ID
	require.NoError(t, f.stores.Attachments.Update(ctx, f.attachment))

	require.NoError(t, f.svc.Restore(ctx, workspace.KindAttachment, f.attachment.ID, f.actor))

	a, err := f.stores.Attachments.Get(ctx, f.attachment.ID)
	require.NoError(t, err)
	assert.Equal(t, f.task.DeptID, a.DeptID, "scope must re-align with the live parent")
	assert.Equal(t, f.task.OrgID, a.OrgID)
}

func TestRestore_MissingEntity(t *testing.T) {
	f := newFixture(t)
	err := f.svc.Restore(context.Background(), workspace.KindVendor, ulid.Make(), f.actor)
	require.ErrorIs(t, err, workspace.ErrNotFound)
}
