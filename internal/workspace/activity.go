// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskHive Contributors

package workspace

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// MaterialUsage is a line item on an activity referencing a material.
// The material is referenced, not owned: deleting the material does not
// cascade into the activity, but a restore of the activity is blocked while
// any referenced material is still soft-deleted.
type MaterialUsage struct {
	MaterialID ulid.ULID `json:"material_id"`
	Quantity   float64   `json:"quantity"`
}

// Activity is a progress entry on a task, owned by the task.
type Activity struct {
	ID        ulid.ULID
	OrgID     ulid.ULID
	DeptID    ulid.ULID
	TaskID    ulid.ULID
	Body      string
	Materials []MaterialUsage
	CreatedBy ulid.ULID
	CreatedAt time.Time
	Lifecycle
}

// NewActivity creates an Activity with a generated ID.
func NewActivity(orgID, deptID, taskID, createdBy ulid.ULID, body string) (*Activity, error) {
	a := &Activity{
		ID:        ulid.Make(),
		OrgID:     orgID,
		DeptID:    deptID,
		TaskID:    taskID,
		Body:      body,
		CreatedBy: createdBy,
		CreatedAt: time.Now().UTC(),
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// Validate checks required fields.
func (a *Activity) Validate() error {
	if a.ID.IsZero() {
		return &ValidationError{Field: "id", Message: "cannot be zero"}
	}
	if a.OrgID.IsZero() {
		return &ValidationError{Field: "org_id", Message: "cannot be zero"}
	}
	if a.DeptID.IsZero() {
		return &ValidationError{Field: "dept_id", Message: "cannot be zero"}
	}
	if a.TaskID.IsZero() {
		return &ValidationError{Field: "task_id", Message: "cannot be zero"}
	}
	if err := ValidateBody(a.Body); err != nil {
		return err
	}
	for _, m := range a.Materials {
		if m.MaterialID.IsZero() {
			return &ValidationError{Field: "materials", Message: "material id cannot be zero"}
		}
		if m.Quantity <= 0 {
			return &ValidationError{Field: "materials", Message: "quantity must be positive"}
		}
	}
	return nil
}
