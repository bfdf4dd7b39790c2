// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskHive Contributors

package workspace

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// Material is an inventory item scoped to an organization, optionally to a
// single department (DeptID nil means org-wide).
type Material struct {
	ID        ulid.ULID
	OrgID     ulid.ULID
	DeptID    *ulid.ULID
	Name      string
	Unit      string
	CreatedAt time.Time
	Lifecycle
}

// NewMaterial creates a Material with a generated ID.
func NewMaterial(orgID ulid.ULID, deptID *ulid.ULID, name, unit string) (*Material, error) {
	m := &Material{
		ID:        ulid.Make(),
		OrgID:     orgID,
		DeptID:    deptID,
		Name:      name,
		Unit:      unit,
		CreatedAt: time.Now().UTC(),
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate checks required fields.
func (m *Material) Validate() error {
	if m.ID.IsZero() {
		return &ValidationError{Field: "id", Message: "cannot be zero"}
	}
	if m.OrgID.IsZero() {
		return &ValidationError{Field: "org_id", Message: "cannot be zero"}
	}
	if m.DeptID != nil && m.DeptID.IsZero() {
		return &ValidationError{Field: "dept_id", Message: "cannot be zero"}
	}
	return ValidateName(m.Name)
}
