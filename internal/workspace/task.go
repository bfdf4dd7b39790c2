// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskHive Contributors

package workspace

import (
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
)

// TaskKind discriminates the task subtypes sharing one table.
type TaskKind string

const (
	TaskProject  TaskKind = "project"
	TaskRoutine  TaskKind = "routine"
	TaskAssigned TaskKind = "assigned"
)

// Valid reports whether k is a known task kind.
func (k TaskKind) Valid() bool {
	switch k {
	case TaskProject, TaskRoutine, TaskAssigned:
		return true
	}
	return false
}

// Task is a unit of work owned by a department. CreatedBy, Watchers and
// Assignees are weak references to users: deleting a user removes them from
// these lists instead of cascading into the task.
type Task struct {
	ID        ulid.ULID
	OrgID     ulid.ULID
	DeptID    ulid.ULID
	Kind      TaskKind
	Title     string
	CreatedBy ulid.ULID
	Watchers  []ulid.ULID
	Assignees []ulid.ULID // meaningful for assigned tasks
	DueAt     *time.Time
	CreatedAt time.Time
	Lifecycle
}

// NewTask creates a Task with a generated ID.
func NewTask(orgID, deptID, createdBy ulid.ULID, kind TaskKind, title string) (*Task, error) {
	t := &Task{
		ID:        ulid.Make(),
		OrgID:     orgID,
		DeptID:    deptID,
		Kind:      kind,
		Title:     title,
		CreatedBy: createdBy,
		CreatedAt: time.Now().UTC(),
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate checks required fields.
func (t *Task) Validate() error {
	if t.ID.IsZero() {
		return &ValidationError{Field: "id", Message: "cannot be zero"}
	}
	if t.OrgID.IsZero() {
		return &ValidationError{Field: "org_id", Message: "cannot be zero"}
	}
	if t.DeptID.IsZero() {
		return &ValidationError{Field: "dept_id", Message: "cannot be zero"}
	}
	if t.CreatedBy.IsZero() {
		return &ValidationError{Field: "created_by", Message: "cannot be zero"}
	}
	if !t.Kind.Valid() {
		return &ValidationError{Field: "kind", Message: fmt.Sprintf("unknown task kind %q", t.Kind)}
	}
	if len(t.Assignees) > 0 && t.Kind != TaskAssigned {
		return &ValidationError{Field: "assignees", Message: "only assigned tasks carry assignees"}
	}
	return ValidateName(t.Title)
}
