// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskHive Contributors

package workspace

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// User is a member of a department. Users do not own task content: tasks,
// activities, comments and attachments a user creates belong to the
// department, so deleting a user only prunes weak references to them.
type User struct {
	ID        ulid.ULID
	OrgID     ulid.ULID
	DeptID    ulid.ULID
	Name      string
	Email     string
	IsHead    bool
	CreatedAt time.Time
	Lifecycle
}

// NewUser creates a User with a generated ID.
func NewUser(orgID, deptID ulid.ULID, name, email string) (*User, error) {
	u := &User{
		ID:        ulid.Make(),
		OrgID:     orgID,
		DeptID:    deptID,
		Name:      name,
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	return u, nil
}

// Validate checks required fields.
func (u *User) Validate() error {
	if u.ID.IsZero() {
		return &ValidationError{Field: "id", Message: "cannot be zero"}
	}
	if u.OrgID.IsZero() {
		return &ValidationError{Field: "org_id", Message: "cannot be zero"}
	}
	if u.DeptID.IsZero() {
		return &ValidationError{Field: "dept_id", Message: "cannot be zero"}
	}
	if err := ValidateName(u.Name); err != nil {
		return err
	}
	return ValidateEmail(u.Email)
}
