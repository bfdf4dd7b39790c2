// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskHive Contributors

package workspace

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// Vendor is an organization-level supplier record, a leaf in the hierarchy.
type Vendor struct {
	ID        ulid.ULID
	OrgID     ulid.ULID
	Name      string
	Contact   string
	CreatedAt time.Time
	Lifecycle
}

// NewVendor creates a Vendor with a generated ID.
func NewVendor(orgID ulid.ULID, name, contact string) (*Vendor, error) {
	v := &Vendor{
		ID:        ulid.Make(),
		OrgID:     orgID,
		Name:      name,
		Contact:   contact,
		CreatedAt: time.Now().UTC(),
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}
	return v, nil
}

// Validate checks required fields.
func (v *Vendor) Validate() error {
	if v.ID.IsZero() {
		return &ValidationError{Field: "id", Message: "cannot be zero"}
	}
	if v.OrgID.IsZero() {
		return &ValidationError{Field: "org_id", Message: "cannot be zero"}
	}
	return ValidateName(v.Name)
}
