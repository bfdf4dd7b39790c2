// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskHive Contributors

package workspace

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// Department groups users, tasks and materials inside an organization.
// HeadID is a weak reference to the head-of-department user; it is cleared
// on restore when the referenced user is deleted, missing, or moved to
// another organization.
type Department struct {
	ID        ulid.ULID
	OrgID     ulid.ULID
	Name      string
	HeadID    *ulid.ULID
	CreatedAt time.Time
	Lifecycle
}

// NewDepartment creates a Department with a generated ID.
func NewDepartment(orgID ulid.ULID, name string) (*Department, error) {
	d := &Department{
		ID:        ulid.Make(),
		OrgID:     orgID,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// Validate checks required fields.
func (d *Department) Validate() error {
	if d.ID.IsZero() {
		return &ValidationError{Field: "id", Message: "cannot be zero"}
	}
	if d.OrgID.IsZero() {
		return &ValidationError{Field: "org_id", Message: "cannot be zero"}
	}
	return ValidateName(d.Name)
}
