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
)

func TestSoftDeleteMany_ReturnsOnlyChangedIDs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Pre-delete the vendor so the bulk call finds it already gone.
	require.NoError(t, f.svc.SoftDelete(ctx, workspace.KindVendor, f.vendor.ID, f.actor))

	second, err := workspace.NewVendor(f.org.ID, "Steel Co", "sales@steelco.test")
	require.NoError(t, err)
	require.NoError(t, f.stores.Vendors.Create(ctx, second))

	changed, err := f.svc.SoftDeleteMany(ctx, workspace.KindVendor,
		[]ulid.ULID{f.vendor.ID, second.ID}, f.actor)
	require.NoError(t, err)
	assert.Equal(t, []ulid.ULID{second.ID}, changed)
	f.requireDeleted(t, workspace.KindVendor, second.ID)
}

func TestSoftDeleteMany_StopsOnMissingID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	missing := ulid.Make()
	changed, err := f.svc.SoftDeleteMany(ctx, workspace.KindVendor,
		[]ulid.ULID{f.vendor.ID, missing}, f.actor)
	require.ErrorIs(t, err, workspace.ErrNotFound)
	assert.Equal(t, []ulid.ULID{f.vendor.ID}, changed, "ids deleted before the failure are reported")
}

func TestRestoreMany_ReturnsOnlyChangedIDs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	second, err := workspace.NewVendor(f.org.ID, "Steel Co", "sales@steelco.test")
	require.NoError(t, err)
	require.NoError(t, f.stores.Vendors.Create(ctx, second))

	// Only the first vendor is deleted; restoring both reports one change.
	require.NoError(t, f.svc.SoftDelete(ctx, workspace.KindVendor, f.vendor.ID, f.actor))

	changed, err := f.svc.RestoreMany(ctx, workspace.KindVendor,
		[]ulid.ULID{f.vendor.ID, second.ID}, f.actor)
	require.NoError(t, err)
	assert.Equal(t, []ulid.ULID{f.vendor.ID}, changed)
	f.requireActive(t, workspace.KindVendor, f.vendor.ID)
}

func TestCountDeleted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	n, err := f.svc.CountDeleted(ctx, workspace.KindComment)
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, f.svc.SoftDelete(ctx, workspace.KindComment, f.comment.ID, f.actor))

	n, err = f.svc.CountDeleted(ctx, workspace.KindComment)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n, "comment and its reply")
}

func TestCreateComment_AssignsDepthFromParent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	onTask, err := workspace.NewComment(f.org.ID, f.dept.ID, f.bob.ID,
		workspace.ParentRef{Kind: workspace.ParentTask, ID: f.task.ID}, "top level")
	require.NoError(t, err)
	require.NoError(t, f.svc.CreateComment(ctx, onTask))
	assert.Equal(t, 1, onTask.Depth)

	onActivity, err := workspace.NewComment(f.org.ID, f.dept.ID, f.bob.ID,
		workspace.ParentRef{Kind: workspace.ParentActivity, ID: f.activity.ID}, "on activity")
	require.NoError(t, err)
	require.NoError(t, f.svc.CreateComment(ctx, onActivity))
	assert.Equal(t, 1, onActivity.Depth)

	nested, err := workspace.NewComment(f.org.ID, f.dept.ID, f.alice.ID,
		workspace.ParentRef{Kind: workspace.ParentComment, ID: f.reply.ID}, "third level")
	require.NoError(t, err)
	require.NoError(t, f.svc.CreateComment(ctx, nested))
	assert.Equal(t, 3, nested.Depth)
}

func TestCreateComment_RejectsTooDeepNesting(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	third, err := workspace.NewComment(f.org.ID, f.dept.ID, f.alice.ID,
		workspace.ParentRef{Kind: workspace.ParentComment, ID: f.reply.ID}, "third level")
	require.NoError(t, err)
	require.NoError(t, f.svc.CreateComment(ctx, third))

	fourth, err := workspace.NewComment(f.org.ID, f.dept.ID, f.alice.ID,
		workspace.ParentRef{Kind: workspace.ParentComment, ID: third.ID}, "too deep")
	require.NoError(t, err)

	err = f.svc.CreateComment(ctx, fourth)
	var verr *workspace.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "parent", verr.Field)
}

func TestCreateComment_RejectsDeletedParent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.SoftDelete(ctx, workspace.KindTask, f.task.ID, f.actor))

	c, err := workspace.NewComment(f.org.ID, f.dept.ID, f.bob.ID,
		workspace.ParentRef{Kind: workspace.ParentTask, ID: f.task.ID}, "late comment")
	require.NoError(t, err)

	err = f.svc.CreateComment(ctx, c)
	require.ErrorIs(t, err, workspace.ErrNotFound)
}

func TestCreateComment_RejectsUnknownParentKind(t *testing.T) {
	f := newFixture(t)

	c, err := workspace.NewComment(f.org.ID, f.dept.ID, f.bob.ID,
		workspace.ParentRef{Kind: workspace.ParentKind("vendor"), ID: f.vendor.ID}, "misplaced")
	require.NoError(t, err)

	err = f.svc.CreateComment(context.Background(), c)
	var verr *workspace.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "parent_kind", verr.Field)
}

func TestGetRestoreAudit_ResolvesActorNames(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.SoftDelete(ctx, workspace.KindVendor, f.vendor.ID, f.alice.ID))
	require.NoError(t, f.svc.Restore(ctx, workspace.KindVendor, f.vendor.ID, f.bob.ID))

	audit, err := f.svc.GetRestoreAudit(ctx, workspace.KindVendor, f.vendor.ID)
	require.NoError(t, err)
	assert.False(t, audit.IsDeleted)
	assert.Equal(t, "Alice", audit.DeletedByName)
	assert.Equal(t, "Bob", audit.RestoredByName)
	require.NotNil(t, audit.DeletedAt)
	require.NotNil(t, audit.RestoredAt)
}

func TestGetRestoreAudit_DeletedActorStillResolves(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.SoftDelete(ctx, workspace.KindVendor, f.vendor.ID, f.alice.ID))
	require.NoError(t, f.svc.SoftDelete(ctx, workspace.KindUser, f.alice.ID, f.actor))

	audit, err := f.svc.GetRestoreAudit(ctx, workspace.KindVendor, f.vendor.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", audit.DeletedByName, "deleted actors resolve through the include-deleted view")
}

func TestGetRestoreAudit_UnknownActorYieldsEmptyName(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.SoftDelete(ctx, workspace.KindVendor, f.vendor.ID, ulid.Make()))

	audit, err := f.svc.GetRestoreAudit(ctx, workspace.KindVendor, f.vendor.ID)
	require.NoError(t, err)
	assert.True(t, audit.IsDeleted)
	assert.Empty(t, audit.DeletedByName)
	assert.Empty(t, audit.RestoredByName)
}

func TestGetRestoreAudit_MissingEntity(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.GetRestoreAudit(context.Background(), workspace.KindTask, ulid.Make())
	require.ErrorIs(t, err, workspace.ErrNotFound)
}
