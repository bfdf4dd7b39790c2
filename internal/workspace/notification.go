// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskHive Contributors

package workspace

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// Notification is an ephemeral per-user message. It expires on an absolute
// ExpiresAt computed at creation, independent of its soft-delete state, and
// is the one kind whose restore is rejected by policy.
type Notification struct {
	ID          ulid.ULID
	OrgID       ulid.ULID
	RecipientID ulid.ULID
	TaskID      *ulid.ULID
	Message     string
	Read        bool
	ExpiresAt   time.Time
	CreatedAt   time.Time
	Lifecycle
}

// NewNotification creates a Notification with a generated ID.
// ttl determines ExpiresAt relative to creation time.
func NewNotification(orgID, recipientID ulid.ULID, taskID *ulid.ULID, message string, ttl time.Duration) (*Notification, error) {
	now := time.Now().UTC()
	n := &Notification{
		ID:          ulid.Make(),
		OrgID:       orgID,
		RecipientID: recipientID,
		TaskID:      taskID,
		Message:     message,
		ExpiresAt:   now.Add(ttl),
		CreatedAt:   now,
	}
	if err := n.Validate(); err != nil {
		return nil, err
	}
	return n, nil
}

// Validate checks required fields.
func (n *Notification) Validate() error {
	if n.ID.IsZero() {
		return &ValidationError{Field: "id", Message: "cannot be zero"}
	}
	if n.OrgID.IsZero() {
		return &ValidationError{Field: "org_id", Message: "cannot be zero"}
	}
	if n.RecipientID.IsZero() {
		return &ValidationError{Field: "recipient_id", Message: "cannot be zero"}
	}
	if n.ExpiresAt.IsZero() {
		return &ValidationError{Field: "expires_at", Message: "cannot be zero"}
	}
	return ValidateBody(n.Message)
}
