// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskHive Contributors

package workspace

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// Organization is a tenant, the root of the ownership hierarchy.
// IsPlatform marks the single organization owned by the platform vendor
// itself; it is immutable after creation and exempt from deletion.
type Organization struct {
	ID         ulid.ULID
	Name       string
	IsPlatform bool
	CreatedAt  time.Time
	Lifecycle
}

// NewOrganization creates an Organization with a generated ID.
func NewOrganization(name string) (*Organization, error) {
	o := &Organization{
		ID:        ulid.Make(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}
	return o, nil
}

// Validate checks required fields.
func (o *Organization) Validate() error {
	if o.ID.IsZero() {
		return &ValidationError{Field: "id", Message: "cannot be zero"}
	}
	return ValidateName(o.Name)
}
