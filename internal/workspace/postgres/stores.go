// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskHive Contributors

package postgres

import (
	"github.com/taskhive/taskhive/internal/workspace"
)

// NewStores builds the full workspace entity registry over one database
// handle.
func NewStores(db DB) workspace.Stores {
	return workspace.Stores{
		Organizations: NewOrganizationRepository(db),
		Departments:   NewDepartmentRepository(db),
		Users:         NewUserRepository(db),
		Tasks:         NewTaskRepository(db),
		Activities:    NewActivityRepository(db),
		Comments:      NewCommentRepository(db),
		Attachments:   NewAttachmentRepository(db),
		Materials:     NewMaterialRepository(db),
		Vendors:       NewVendorRepository(db),
		Notifications: NewNotificationRepository(db),
	}
}
