// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskHive Contributors

package workspace_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/require"

	"github.com/taskhive/taskhive/internal/workspace"
	"github.com/taskhive/taskhive/internal/workspace/workspacetest"
)

// fixture seeds one tenant tree covering the whole ownership hierarchy:
//
//	org
//	├── dept
//	│   ├── alice (head), bob
//	│   └── task (created by alice, watched and assigned to bob)
//	│       ├── activity (uses material)
//	│       ├── comment (mentions bob) ── reply
//	│       └── attachment
//	├── material (org-wide), deptMaterial (dept-scoped)
//	├── vendor
//	└── notification (to bob, about task)
type fixture struct {
	stores workspace.Stores
	svc    *workspace.Service
	actor  ulid.ULID

	org          *workspace.Organization
	dept         *workspace.Department
	alice        *workspace.User
	bob          *workspace.User
	task         *workspace.Task
	activity     *workspace.Activity
	comment      *workspace.Comment
	reply        *workspace.Comment
	attachment   *workspace.Attachment
	material     *workspace.Material
	deptMaterial *workspace.Material
	vendor       *workspace.Vendor
	notification *workspace.Notification
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	stores := workspacetest.NewStores(nil)
	svc := workspace.NewService(workspace.ServiceConfig{
		Stores:     stores,
		Transactor: workspacetest.Transactor{},
		Logger:     slog.New(slog.DiscardHandler),
	})

	f := &fixture{stores: stores, svc: svc, actor: ulid.Make()}

	var err error
	f.org, err = workspace.NewOrganization("Acme Builders")
	require.NoError(t, err)
	require.NoError(t, stores.Organizations.Create(ctx, f.org))

	f.dept, err = workspace.NewDepartment(f.org.ID, "Site Operations")
	require.NoError(t, err)
	require.NoError(t, stores.Departments.Create(ctx, f.dept))

	f.alice, err = workspace.NewUser(f.org.ID, f.dept.ID, "Alice", "alice@acme.test")
	require.NoError(t, err)
	f.alice.IsHead = true
	require.NoError(t, stores.Users.Create(ctx, f.alice))
	f.dept.HeadID = &f.alice.ID
	require.NoError(t, stores.Departments.Update(ctx, f.dept))

	f.bob, err = workspace.NewUser(f.org.ID, f.dept.ID, "Bob", "bob@acme.test")
	require.NoError(t, err)
	require.NoError(t, stores.Users.Create(ctx, f.bob))

	f.task, err = workspace.NewTask(f.org.ID, f.dept.ID, f.alice.ID, workspace.TaskAssigned, "Pour foundation")
	require.NoError(t, err)
	f.task.Watchers = []ulid.ULID{f.bob.ID}
	f.task.Assignees = []ulid.ULID{f.bob.ID}
	require.NoError(t, stores.Tasks.Create(ctx, f.task))

	f.material, err = workspace.NewMaterial(f.org.ID, nil, "Cement", "bag")
	require.NoError(t, err)
	require.NoError(t, stores.Materials.Create(ctx, f.material))

	f.deptMaterial, err = workspace.NewMaterial(f.org.ID, &f.dept.ID, "Rebar", "ton")
	require.NoError(t, err)
	require.NoError(t, stores.Materials.Create(ctx, f.deptMaterial))

	f.activity, err = workspace.NewActivity(f.org.ID, f.dept.ID, f.task.ID, f.alice.ID, "Poured 40 bags")
	require.NoError(t, err)
	f.activity.Materials = []workspace.MaterialUsage{{MaterialID: f.material.ID, Quantity: 40}}
	require.NoError(t, stores.Activities.Create(ctx, f.activity))

	f.comment, err = workspace.NewComment(f.org.ID, f.dept.ID, f.alice.ID,
		workspace.ParentRef{Kind: workspace.ParentTask, ID: f.task.ID}, "Looking good")
	require.NoError(t, err)
	f.comment.Depth = 1
	f.comment.Mentions = []ulid.ULID{f.bob.ID}
	require.NoError(t, stores.Comments.Create(ctx, f.comment))

	f.reply, err = workspace.NewComment(f.org.ID, f.dept.ID, f.bob.ID,
		workspace.ParentRef{Kind: workspace.ParentComment, ID: f.comment.ID}, "Agreed")
	require.NoError(t, err)
	f.reply.Depth = 2
	require.NoError(t, stores.Comments.Create(ctx, f.reply))

	f.attachment, err = workspace.NewAttachment(f.org.ID, f.dept.ID, f.alice.ID,
		workspace.ParentRef{Kind: workspace.ParentTask, ID: f.task.ID}, "blueprint.pdf")
	require.NoError(t, err)
	require.NoError(t, stores.Attachments.Create(ctx, f.attachment))

	f.vendor, err = workspace.NewVendor(f.org.ID, "Cement Co", "sales@cementco.test")
	require.NoError(t, err)
	require.NoError(t, stores.Vendors.Create(ctx, f.vendor))

	f.notification, err = workspace.NewNotification(f.org.ID, f.bob.ID, &f.task.ID, "You were assigned", 24*time.Hour)
	require.NoError(t, err)
	require.NoError(t, stores.Notifications.Create(ctx, f.notification))

	return f
}

// lifecycle fetches the current lifecycle state regardless of deletion.
func (f *fixture) lifecycle(t *testing.T, kind workspace.Kind, id ulid.ULID) *workspace.Lifecycle {
	t.Helper()
	audit, err := f.svc.GetRestoreAudit(context.Background(), kind, id)
	require.NoError(t, err)
	return &workspace.Lifecycle{
		IsDeleted:  audit.IsDeleted,
		DeletedAt:  audit.DeletedAt,
		DeletedBy:  audit.DeletedBy,
		RestoredAt: audit.RestoredAt,
		RestoredBy: audit.RestoredBy,
	}
}

func (f *fixture) requireDeleted(t *testing.T, kind workspace.Kind, id ulid.ULID) {
	t.Helper()
	require.True(t, f.lifecycle(t, kind, id).IsDeleted, "%s %s should be deleted", kind, id)
}

func (f *fixture) requireActive(t *testing.T, kind workspace.Kind, id ulid.ULID) {
	t.Helper()
	require.False(t, f.lifecycle(t, kind, id).IsDeleted, "%s %s should be active", kind, id)
}
