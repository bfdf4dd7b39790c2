// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskHive Contributors

package workspace

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// ServiceConfig holds dependencies for Service.
type ServiceConfig struct {
	Stores     Stores
	Transactor Transactor
	Logger     *slog.Logger
}

// Service is the lifecycle entry point consumed by the HTTP layer: delete,
// restore, bulk variants, and the restore-audit read contract. Every delete
// or restore runs inside one transaction so a failure partway through leaves
// the store untouched.
type Service struct {
	stores Stores
	tx     Transactor
	engine *Engine
	check  *restoreChecker
	repair *repairer
	logger *slog.Logger
}

// NewService creates a Service with the given configuration.
func NewService(cfg ServiceConfig) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		stores: cfg.Stores,
		tx:     cfg.Transactor,
		engine: NewEngine(cfg.Stores),
		check:  &restoreChecker{stores: cfg.Stores},
		repair: &repairer{stores: cfg.Stores},
		logger: logger,
	}
}

// SoftDelete marks the entity deleted and cascades through everything it
// owns, atomically. Deleting an already-deleted entity is a successful no-op
// that still completes any unfinished cascade underneath it.
func (s *Service) SoftDelete(ctx context.Context, kind Kind, id, actor ulid.ULID) error {
	if !kind.Valid() {
		return oops.Code("UNKNOWN_ENTITY_KIND").With("kind", string(kind)).Errorf("unknown entity kind %q", kind)
	}
	err := s.tx.InTransaction(ctx, func(ctx context.Context) error {
		return s.engine.SoftDelete(ctx, kind, id, actor)
	})
	if err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "entity soft-deleted",
		"kind", string(kind), "id", id.String(), "actor", actor.String())
	return nil
}

// Restore flips the entity back to active after verifying its ancestors,
// then prunes weak references. Restoring an active entity is a no-op.
func (s *Service) Restore(ctx context.Context, kind Kind, id, actor ulid.ULID) error {
	if !kind.Valid() {
		return oops.Code("UNKNOWN_ENTITY_KIND").With("kind", string(kind)).Errorf("unknown entity kind %q", kind)
	}
	err := s.tx.InTransaction(ctx, func(ctx context.Context) error {
		return s.restoreInTx(ctx, kind, id, actor)
	})
	if err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "entity restored",
		"kind", string(kind), "id", id.String(), "actor", actor.String())
	return nil
}

func (s *Service) restoreInTx(ctx context.Context, kind Kind, id, actor ulid.ULID) error {
	deleted, err := s.isDeleted(ctx, kind, id)
	if err != nil {
		return err
	}
	if !deleted && kind != KindNotification {
		// Already active: idempotent no-op, audit untouched.
		return nil
	}

	if err := s.check.check(ctx, kind, id); err != nil {
		return err
	}

	switch kind {
	case KindOrganization:
		_, err = s.stores.Organizations.Restore(ctx, id, actor)
		return err
	case KindDepartment:
		if _, err = s.stores.Departments.Restore(ctx, id, actor); err != nil {
			return err
		}
		d, err := s.stores.Departments.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := s.repair.repairDepartment(ctx, d); err != nil {
			return err
		}
		return s.stores.Departments.Update(ctx, d)
	case KindUser:
		if _, err = s.stores.Users.Restore(ctx, id, actor); err != nil {
			return err
		}
		u, err := s.stores.Users.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := s.repair.repairUser(ctx, u); err != nil {
			return err
		}
		return s.stores.Users.Update(ctx, u)
	case KindTask:
		_, err = s.stores.Tasks.Restore(ctx, id, actor)
		return err
	case KindActivity:
		if _, err = s.stores.Activities.Restore(ctx, id, actor); err != nil {
			return err
		}
		a, err := s.stores.Activities.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := s.repair.repairActivity(ctx, a); err != nil {
			return err
		}
		return s.stores.Activities.Update(ctx, a)
	case KindComment:
		if _, err = s.stores.Comments.Restore(ctx, id, actor); err != nil {
			return err
		}
		c, err := s.stores.Comments.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := s.repair.repairComment(ctx, c); err != nil {
			return err
		}
		return s.stores.Comments.Update(ctx, c)
	case KindAttachment:
		if _, err = s.stores.Attachments.Restore(ctx, id, actor); err != nil {
			return err
		}
		a, err := s.stores.Attachments.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := s.repair.repairAttachment(ctx, a); err != nil {
			return err
		}
		return s.stores.Attachments.Update(ctx, a)
	case KindMaterial:
		_, err = s.stores.Materials.Restore(ctx, id, actor)
		return err
	case KindVendor:
		_, err = s.stores.Vendors.Restore(ctx, id, actor)
		return err
	case KindNotification:
		// The checker already rejected this; unreachable.
		return oops.Code(CodeNotificationNotRestorable).Errorf("notifications cannot be restored")
	default:
		return oops.Code("UNKNOWN_ENTITY_KIND").With("kind", string(kind)).Errorf("unknown entity kind %q", kind)
	}
}

// SoftDeleteMany applies SoftDelete to each id and returns the ids whose
// state actually changed (already-deleted entities are skipped silently).
func (s *Service) SoftDeleteMany(ctx context.Context, kind Kind, ids []ulid.ULID, actor ulid.ULID) ([]ulid.ULID, error) {
	changed := make([]ulid.ULID, 0, len(ids))
	for _, id := range ids {
		wasDeleted, err := s.isDeleted(ctx, kind, id)
		if err != nil {
			return changed, err
		}
		if err := s.SoftDelete(ctx, kind, id, actor); err != nil {
			return changed, err
		}
		if !wasDeleted {
			changed = append(changed, id)
		}
	}
	return changed, nil
}

// RestoreMany applies Restore to each id and returns the ids whose state
// actually changed (already-active entities are skipped silently).
func (s *Service) RestoreMany(ctx context.Context, kind Kind, ids []ulid.ULID, actor ulid.ULID) ([]ulid.ULID, error) {
	changed := make([]ulid.ULID, 0, len(ids))
	for _, id := range ids {
		wasDeleted, err := s.isDeleted(ctx, kind, id)
		if err != nil {
			return changed, err
		}
		if err := s.Restore(ctx, kind, id, actor); err != nil {
			return changed, err
		}
		if wasDeleted {
			changed = append(changed, id)
		}
	}
	return changed, nil
}

// CountDeleted counts soft-deleted entities of the given kind.
func (s *Service) CountDeleted(ctx context.Context, kind Kind) (int64, error) {
	switch kind {
	case KindOrganization:
		return s.stores.Organizations.CountDeleted(ctx)
	case KindDepartment:
		return s.stores.Departments.CountDeleted(ctx)
	case KindUser:
		return s.stores.Users.CountDeleted(ctx)
	case KindTask:
		return s.stores.Tasks.CountDeleted(ctx)
	case KindActivity:
		return s.stores.Activities.CountDeleted(ctx)
	case KindComment:
		return s.stores.Comments.CountDeleted(ctx)
	case KindAttachment:
		return s.stores.Attachments.CountDeleted(ctx)
	case KindMaterial:
		return s.stores.Materials.CountDeleted(ctx)
	case KindVendor:
		return s.stores.Vendors.CountDeleted(ctx)
	case KindNotification:
		return s.stores.Notifications.CountDeleted(ctx)
	default:
		return 0, oops.Code("UNKNOWN_ENTITY_KIND").With("kind", string(kind)).Errorf("unknown entity kind %q", kind)
	}
}

// CreateComment validates the reply chain before persisting: the parent must
// exist and be active, the chain must root at a task or activity, and a
// reply may not exceed the nesting cap.
func (s *Service) CreateComment(ctx context.Context, c *Comment) error {
	switch c.Parent.Kind {
	case ParentTask:
		if _, err := s.stores.Tasks.Get(ctx, c.Parent.ID); err != nil {
			return err
		}
		c.Depth = 1
	case ParentActivity:
		if _, err := s.stores.Activities.Get(ctx, c.Parent.ID); err != nil {
			return err
		}
		c.Depth = 1
	case ParentComment:
		parent, err := s.stores.Comments.Get(ctx, c.Parent.ID)
		if err != nil {
			return err
		}
		if parent.Depth >= MaxCommentDepth {
			return &ValidationError{
				Field:   "parent",
				Message: fmt.Sprintf("replies cannot nest more than %d levels deep", MaxCommentDepth),
			}
		}
		c.Depth = parent.Depth + 1
	default:
		return &ValidationError{Field: "parent_kind", Message: fmt.Sprintf("unknown kind %q", c.Parent.Kind)}
	}

	if err := c.Validate(); err != nil {
		return err
	}
	return s.stores.Comments.Create(ctx, c)
}

// RestoreAudit is the read contract for audit trails: the lifecycle fields
// plus resolved actor display names.
type RestoreAudit struct {
	Kind           Kind
	ID             ulid.ULID
	IsDeleted      bool
	DeletedAt      *time.Time
	DeletedBy      *ulid.ULID
	DeletedByName  string
	RestoredAt     *time.Time
	RestoredBy     *ulid.ULID
	RestoredByName string
}

// GetRestoreAudit returns who deleted/restored the entity and when. Actor
// names resolve through the include-deleted view so a deleted actor still
// shows up by name. Returns ErrNotFound for a nonexistent id.
func (s *Service) GetRestoreAudit(ctx context.Context, kind Kind, id ulid.ULID) (*RestoreAudit, error) {
	lc, err := s.lifecycleOf(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	audit := &RestoreAudit{
		Kind:       kind,
		ID:         id,
		IsDeleted:  lc.IsDeleted,
		DeletedAt:  lc.DeletedAt,
		DeletedBy:  lc.DeletedBy,
		RestoredAt: lc.RestoredAt,
		RestoredBy: lc.RestoredBy,
	}
	audit.DeletedByName = s.actorName(ctx, lc.DeletedBy)
	audit.RestoredByName = s.actorName(ctx, lc.RestoredBy)
	return audit, nil
}

func (s *Service) actorName(ctx context.Context, id *ulid.ULID) string {
	if id == nil {
		return ""
	}
	u, err := s.stores.Users.GetAny(ctx, *id)
	if err != nil {
		return ""
	}
	return u.Name
}

func (s *Service) isDeleted(ctx context.Context, kind Kind, id ulid.ULID) (bool, error) {
	lc, err := s.lifecycleOf(ctx, kind, id)
	if err != nil {
		return false, err
	}
	return lc.IsDeleted, nil
}

func (s *Service) lifecycleOf(ctx context.Context, kind Kind, id ulid.ULID) (*Lifecycle, error) {
	switch kind {
	case KindOrganization:
		e, err := s.stores.Organizations.GetAny(ctx, id)
		if err != nil {
			return nil, err
		}
		return &e.Lifecycle, nil
	case KindDepartment:
		e, err := s.stores.Departments.GetAny(ctx, id)
		if err != nil {
			return nil, err
		}
		return &e.Lifecycle, nil
	case KindUser:
		e, err := s.stores.Users.GetAny(ctx, id)
		if err != nil {
			return nil, err
		}
		return &e.Lifecycle, nil
	case KindTask:
		e, err := s.stores.Tasks.GetAny(ctx, id)
		if err != nil {
			return nil, err
		}
		return &e.Lifecycle, nil
	case KindActivity:
		e, err := s.stores.Activities.GetAny(ctx, id)
		if err != nil {
			return nil, err
		}
		return &e.Lifecycle, nil
	case KindComment:
		e, err := s.stores.Comments.GetAny(ctx, id)
		if err != nil {
			return nil, err
		}
		return &e.Lifecycle, nil
	case KindAttachment:
		e, err := s.stores.Attachments.GetAny(ctx, id)
		if err != nil {
			return nil, err
		}
		return &e.Lifecycle, nil
	case KindMaterial:
		e, err := s.stores.Materials.GetAny(ctx, id)
		if err != nil {
			return nil, err
		}
		return &e.Lifecycle, nil
	case KindVendor:
		e, err := s.stores.Vendors.GetAny(ctx, id)
		if err != nil {
			return nil, err
		}
		return &e.Lifecycle, nil
	case KindNotification:
		e, err := s.stores.Notifications.GetAny(ctx, id)
		if err != nil {
			return nil, err
		}
		return &e.Lifecycle, nil
	default:
		return nil, oops.Code("UNKNOWN_ENTITY_KIND").With("kind", string(kind)).Errorf("unknown entity kind %q", kind)
	}
}
