package domain

import "time"

// NotificationRecord is a pending attendance notification written by another
// system. It is never mutated by this service.
type NotificationRecord struct {
	ID          string     `json:"id" dynamodbav:"notification_id"`
	RecipientID string     `json:"user_id" dynamodbav:"user_id" validate:"required"`
	SubjectID   string     `json:"subject_id" dynamodbav:"subject_id" validate:"required"`
	Status      string     `json:"status" dynamodbav:"status" validate:"required"`
	OccurredAt  *time.Time `json:"timestamp,omitempty" dynamodbav:"timestamp,omitempty"`
}

// ChangeKind classifies an entry of the notification change feed.
type ChangeKind string

const (
	ChangeAdded    ChangeKind = "added"
	ChangeModified ChangeKind = "modified"
	ChangeRemoved  ChangeKind = "removed"
)

// Change is one entry of a change batch. Record holds whatever could be
// decoded from the new image; it is zero for removals.
type Change struct {
	Kind   ChangeKind
	Key    string
	Record NotificationRecord
}
