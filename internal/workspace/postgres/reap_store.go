// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskHive Contributors

package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/oops"

	"github.com/taskhive/taskhive/internal/workspace"
)

// kindTables maps entity kinds to their table names. The reaper iterates
// this instead of going through the repositories, which reject hard deletes.
var kindTables = map[workspace.Kind]string{
	workspace.KindOrganization: "organizations",
	workspace.KindDepartment:   "departments",
	workspace.KindUser:         "users",
	workspace.KindTask:         "tasks",
	workspace.KindActivity:     "activities",
	workspace.KindComment:      "comments",
	workspace.KindAttachment:   "attachments",
	workspace.KindMaterial:     "materials",
	workspace.KindVendor:       "vendors",
	workspace.KindNotification: "notifications",
}

// ReapStore is the sole physical-deletion path. Everything else in the
// storage layer refuses hard deletes; the retention reaper purges rows whose
// soft-delete timestamp has aged past the configured retention window.
type ReapStore struct {
	db DB
}

// NewReapStore creates a reap store over db.
func NewReapStore(db DB) *ReapStore {
	return &ReapStore{db: db}
}

// PurgeExpired physically removes up to batch soft-deleted rows of kind whose
// deleted_at is older than cutoff. The predicate re-checks is_deleted inside
// the delete, so a restore that commits first keeps its row. Returns the
// number of rows removed; callers loop until it reports zero.
func (s *ReapStore) PurgeExpired(ctx context.Context, kind workspace.Kind, cutoff time.Time, batch int) (int64, error) {
	table, ok := kindTables[kind]
	if !ok {
		return 0, oops.Code("REAP_UNKNOWN_KIND").With("kind", string(kind)).
			Errorf("no table for kind %q", kind)
	}
	q := fmt.Sprintf(`
		DELETE FROM %s WHERE ctid IN (
			SELECT ctid FROM %s WHERE is_deleted AND deleted_at < $1 LIMIT $2
		)
	`, table, table)
	tag, err := querierFromCtx(ctx, s.db).Exec(ctx, q, cutoff, batch)
	if err != nil {
		return 0, oops.Code("REAP_PURGE_FAILED").With("kind", string(kind)).Wrap(err)
	}
	return tag.RowsAffected(), nil
}

// PurgeExpiredNotifications physically removes up to batch notifications
// whose TTL has lapsed, regardless of delete state. Expiry is a property of
// the notification itself, not of the soft-delete retention window.
func (s *ReapStore) PurgeExpiredNotifications(ctx context.Context, now time.Time, batch int) (int64, error) {
	tag, err := querierFromCtx(ctx, s.db).Exec(ctx, `
		DELETE FROM notifications WHERE ctid IN (
			SELECT ctid FROM notifications WHERE expires_at < $1 LIMIT $2
		)
	`, now, batch)
	if err != nil {
		return 0, oops.Code("REAP_PURGE_FAILED").With("kind", "notification").Wrap(err)
	}
	return tag.RowsAffected(), nil
}
