// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskHive Contributors

//go:build integration

package workspace_test

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"github.com/taskhive/taskhive/internal/workspace"
)

var _ = Describe("Cascading soft delete", func() {
	var (
		ctx   context.Context
		tn    *tenant
		actor ulid.ULID
	)

	BeforeEach(func() {
		ctx = context.Background()
		truncateAll(ctx, env.pool)
		tn = seedTenant(ctx)
		actor = ulid.Make()
	})

	It("deletes the whole tree under an organization", func() {
		Expect(env.svc.SoftDelete(ctx, workspace.KindOrganization, tn.org.ID, actor)).To(Succeed())

		Expect(isDeleted(ctx, workspace.KindOrganization, tn.org.ID)).To(BeTrue())
		Expect(isDeleted(ctx, workspace.KindDepartment, tn.dept.ID)).To(BeTrue())
		Expect(isDeleted(ctx, workspace.KindUser, tn.worker.ID)).To(BeTrue())
		Expect(isDeleted(ctx, workspace.KindTask, tn.task.ID)).To(BeTrue())
		Expect(isDeleted(ctx, workspace.KindActivity, tn.activity.ID)).To(BeTrue())
		Expect(isDeleted(ctx, workspace.KindComment, tn.comment.ID)).To(BeTrue())
		Expect(isDeleted(ctx, workspace.KindMaterial, tn.material.ID)).To(BeTrue())
		Expect(isDeleted(ctx, workspace.KindVendor, tn.vendor.ID)).To(BeTrue())
		Expect(isDeleted(ctx, workspace.KindNotification, tn.notice.ID)).To(BeTrue())
	})

	It("leaves sibling tenants untouched", func() {
		other := seedTenant(ctx)

		Expect(env.svc.SoftDelete(ctx, workspace.KindOrganization, tn.org.ID, actor)).To(Succeed())

		Expect(isDeleted(ctx, workspace.KindOrganization, other.org.ID)).To(BeFalse())
		Expect(isDeleted(ctx, workspace.KindTask, other.task.ID)).To(BeFalse())
		Expect(isDeleted(ctx, workspace.KindUser, other.worker.ID)).To(BeFalse())
	})

	It("prunes array references when a user is deleted", func() {
		Expect(env.svc.SoftDelete(ctx, workspace.KindUser, tn.worker.ID, actor)).To(Succeed())

		task, err := env.stores.Tasks.Get(ctx, tn.task.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(task.Watchers).NotTo(ContainElement(tn.worker.ID))
		Expect(task.Assignees).NotTo(ContainElement(tn.worker.ID))

		comment, err := env.stores.Comments.Get(ctx, tn.comment.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(comment.Mentions).To(BeEmpty())

		Expect(isDeleted(ctx, workspace.KindNotification, tn.notice.ID)).To(BeTrue())
		Expect(isDeleted(ctx, workspace.KindTask, tn.task.ID)).To(BeFalse())
	})

	It("resumes an interrupted cascade", func() {
		// Flip only the department row, as if an earlier run died mid-cascade.
		changed, err := env.stores.Departments.SoftDelete(ctx, tn.dept.ID, actor)
		Expect(err).NotTo(HaveOccurred())
		Expect(changed).To(BeTrue())
		Expect(isDeleted(ctx, workspace.KindTask, tn.task.ID)).To(BeFalse())

		Expect(env.svc.SoftDelete(ctx, workspace.KindDepartment, tn.dept.ID, actor)).To(Succeed())

		Expect(isDeleted(ctx, workspace.KindTask, tn.task.ID)).To(BeTrue())
		Expect(isDeleted(ctx, workspace.KindActivity, tn.activity.ID)).To(BeTrue())
		Expect(isDeleted(ctx, workspace.KindComment, tn.comment.ID)).To(BeTrue())
	})

	It("keeps the original delete audit on repeat deletes", func() {
		Expect(env.svc.SoftDelete(ctx, workspace.KindTask, tn.task.ID, actor)).To(Succeed())
		Expect(env.svc.SoftDelete(ctx, workspace.KindTask, tn.task.ID, ulid.Make())).To(Succeed())

		audit, err := env.svc.GetRestoreAudit(ctx, workspace.KindTask, tn.task.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(*audit.DeletedBy).To(Equal(actor))
	})

	It("refuses to delete the platform organization", func() {
		platform, err := workspace.NewOrganization("TaskHive Platform")
		Expect(err).NotTo(HaveOccurred())
		platform.IsPlatform = true
		Expect(env.stores.Organizations.Create(ctx, platform)).To(Succeed())

		err = env.svc.SoftDelete(ctx, workspace.KindOrganization, platform.ID, actor)
		Expect(errCode(err)).To(Equal(workspace.CodePlatformOrgProtected))
	})
})

var _ = Describe("Restore", func() {
	var (
		ctx   context.Context
		tn    *tenant
		actor ulid.ULID
	)

	BeforeEach(func() {
		ctx = context.Background()
		truncateAll(ctx, env.pool)
		tn = seedTenant(ctx)
		actor = ulid.Make()
	})

	It("round-trips a task and keeps both audit trails", func() {
		Expect(env.svc.SoftDelete(ctx, workspace.KindTask, tn.task.ID, actor)).To(Succeed())

		restorer := ulid.Make()
		Expect(env.svc.Restore(ctx, workspace.KindTask, tn.task.ID, restorer)).To(Succeed())

		audit, err := env.svc.GetRestoreAudit(ctx, workspace.KindTask, tn.task.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(audit.IsDeleted).To(BeFalse())
		Expect(*audit.DeletedBy).To(Equal(actor))
		Expect(*audit.RestoredBy).To(Equal(restorer))
	})

	It("blocks a restore while an ancestor is deleted", func() {
		Expect(env.svc.SoftDelete(ctx, workspace.KindDepartment, tn.dept.ID, actor)).To(Succeed())

		err := env.svc.Restore(ctx, workspace.KindTask, tn.task.ID, actor)
		Expect(errCode(err)).To(Equal(workspace.CodeRestoreBlockedParentDeleted))

		// Bottom-up restore order unblocks it.
		Expect(env.svc.Restore(ctx, workspace.KindDepartment, tn.dept.ID, actor)).To(Succeed())
		Expect(env.svc.Restore(ctx, workspace.KindUser, tn.manager.ID, actor)).To(Succeed())
		Expect(env.svc.Restore(ctx, workspace.KindTask, tn.task.ID, actor)).To(Succeed())
		Expect(isDeleted(ctx, workspace.KindTask, tn.task.ID)).To(BeFalse())
	})

	It("does not resurrect children deleted by the cascade", func() {
		Expect(env.svc.SoftDelete(ctx, workspace.KindTask, tn.task.ID, actor)).To(Succeed())
		Expect(env.svc.Restore(ctx, workspace.KindTask, tn.task.ID, actor)).To(Succeed())

		Expect(isDeleted(ctx, workspace.KindActivity, tn.activity.ID)).To(BeTrue())
		Expect(isDeleted(ctx, workspace.KindComment, tn.comment.ID)).To(BeTrue())
	})

	It("blocks an activity restore on a deleted material", func() {
		Expect(env.svc.SoftDelete(ctx, workspace.KindActivity, tn.activity.ID, actor)).To(Succeed())
		Expect(env.svc.SoftDelete(ctx, workspace.KindMaterial, tn.material.ID, actor)).To(Succeed())

		err := env.svc.Restore(ctx, workspace.KindActivity, tn.activity.ID, actor)
		Expect(errCode(err)).To(Equal(workspace.CodeRestoreBlockedDependencyDeleted))

		Expect(env.svc.Restore(ctx, workspace.KindMaterial, tn.material.ID, actor)).To(Succeed())
		Expect(env.svc.Restore(ctx, workspace.KindActivity, tn.activity.ID, actor)).To(Succeed())
	})

	It("rejects notification restores", func() {
		Expect(env.svc.SoftDelete(ctx, workspace.KindNotification, tn.notice.ID, actor)).To(Succeed())

		err := env.svc.Restore(ctx, workspace.KindNotification, tn.notice.ID, actor)
		Expect(errCode(err)).To(Equal(workspace.CodeNotificationNotRestorable))
	})

	It("drops the head flag when a user comes back", func() {
		_, err := env.pool.Exec(ctx, `UPDATE users SET is_head = TRUE WHERE id = $1`,
			tn.manager.ID.String())
		Expect(err).NotTo(HaveOccurred())

		Expect(env.svc.SoftDelete(ctx, workspace.KindUser, tn.manager.ID, actor)).To(Succeed())
		Expect(env.svc.Restore(ctx, workspace.KindUser, tn.manager.ID, actor)).To(Succeed())

		u, err := env.stores.Users.Get(ctx, tn.manager.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(u.IsHead).To(BeFalse())
	})
})

var _ = Describe("Hard delete policy", func() {
	It("is rejected for every kind", func() {
		ctx := context.Background()
		truncateAll(ctx, env.pool)
		tn := seedTenant(ctx)

		err := env.stores.Tasks.HardDelete(ctx, tn.task.ID)
		Expect(err).To(MatchError(workspace.ErrHardDeleteForbidden))
		Expect(isDeleted(ctx, workspace.KindTask, tn.task.ID)).To(BeFalse())
	})
})

var _ = Describe("Retention reaper store", func() {
	var (
		ctx   context.Context
		tn    *tenant
		actor ulid.ULID
	)

	BeforeEach(func() {
		ctx = context.Background()
		truncateAll(ctx, env.pool)
		tn = seedTenant(ctx)
		actor = ulid.Make()
	})

	It("purges rows deleted before the cutoff and spares the rest", func() {
		Expect(env.svc.SoftDelete(ctx, workspace.KindComment, tn.comment.ID, actor)).To(Succeed())

		// Age the comment past the window; the task stays active.
		old := time.Now().UTC().Add(-48 * time.Hour)
		_, err := env.pool.Exec(ctx, `UPDATE comments SET deleted_at = $1 WHERE id = $2`,
			old, tn.comment.ID.String())
		Expect(err).NotTo(HaveOccurred())

		n, err := env.reap.PurgeExpired(ctx, workspace.KindComment, time.Now().UTC().Add(-24*time.Hour), 100)
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(BeEquivalentTo(1))

		_, err = env.stores.Comments.GetAny(ctx, tn.comment.ID)
		Expect(err).To(MatchError(workspace.ErrNotFound))
	})

	It("never touches active or freshly deleted rows", func() {
		Expect(env.svc.SoftDelete(ctx, workspace.KindComment, tn.comment.ID, actor)).To(Succeed())

		n, err := env.reap.PurgeExpired(ctx, workspace.KindComment, time.Now().UTC().Add(-24*time.Hour), 100)
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(BeZero())
	})

	It("purges notifications past their TTL regardless of delete state", func() {
		_, err := env.pool.Exec(ctx, `UPDATE notifications SET expires_at = $1 WHERE id = $2`,
			time.Now().UTC().Add(-time.Hour), tn.notice.ID.String())
		Expect(err).NotTo(HaveOccurred())

		n, err := env.reap.PurgeExpiredNotifications(ctx, time.Now().UTC(), 100)
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(BeEquivalentTo(1))
	})
})
