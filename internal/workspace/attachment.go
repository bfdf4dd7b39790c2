// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskHive Contributors

package workspace

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// Attachment is a file attached to a task, activity, or comment.
// OrgID and DeptID are denormalized from the parent for query efficiency;
// restore re-aligns them when the live parent's scope has drifted.
type Attachment struct {
	ID          ulid.ULID
	OrgID       ulid.ULID
	DeptID      ulid.ULID
	Parent      ParentRef
	FileName    string
	ContentType string
	Size        int64
	UploadedBy  ulid.ULID
	CreatedAt   time.Time
	Lifecycle
}

// NewAttachment creates an Attachment with a generated ID.
func NewAttachment(orgID, deptID, uploadedBy ulid.ULID, parent ParentRef, fileName string) (*Attachment, error) {
	a := &Attachment{
		ID:         ulid.Make(),
		OrgID:      orgID,
		DeptID:     deptID,
		Parent:     parent,
		FileName:   fileName,
		UploadedBy: uploadedBy,
		CreatedAt:  time.Now().UTC(),
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// Validate checks required fields.
func (a *Attachment) Validate() error {
	if a.ID.IsZero() {
		return &ValidationError{Field: "id", Message: "cannot be zero"}
	}
	if a.OrgID.IsZero() {
		return &ValidationError{Field: "org_id", Message: "cannot be zero"}
	}
	if a.DeptID.IsZero() {
		return &ValidationError{Field: "dept_id", Message: "cannot be zero"}
	}
	if err := a.Parent.Validate(); err != nil {
		return err
	}
	return ValidateName(a.FileName)
}
