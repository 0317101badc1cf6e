package models

import "time"

// Notification types and follow-request statuses. A follow targeting a
// private account creates a pending row; a public follow creates an
// accepted row as a record of the event.
const (
	NotificationTypeFollow = "follow"

	FollowStatusPending  = "pending"
	FollowStatusAccepted = "accepted"
)

// Notification is the follow-request ledger, stored in PostgreSQL. The
// recipient and sender ids are MongoDB ObjectID hex strings. At most one
// live row per (recipient, sender, type) is intended; this is enforced by
// lookup-before-insert in the follow service, not by a unique constraint,
// so the index below only serves the lookup path.
type Notification struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	RecipientID string    `json:"recipient_id" gorm:"size:24;index:idx_recipient_sender_type"`
	SenderID    string    `json:"sender_id" gorm:"size:24;index:idx_recipient_sender_type"`
	Type        string    `json:"type" gorm:"size:30;index:idx_recipient_sender_type"`
	Status      string    `json:"status" gorm:"size:20"`
	CreatedAt   time.Time `json:"created_at" gorm:"index"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NotificationView is a ledger row decorated with the sender's profile for
// the receiver-facing activity feed.
type NotificationView struct {
	Notification
	Sender UserSummary `json:"sender"`
}
