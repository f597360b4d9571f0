package model

import (
	"time"
)

// Notification type constants
const (
	NotificationJob     = "JOB"
	NotificationMessage = "MESSAGE"
	NotificationKYC     = "KYC"
	NotificationPayment = "PAYMENT"
	NotificationReview  = "REVIEW"
)

// Notification is created server-side on domain events. The gateway mutates
// only the read flag or deletes on explicit user action.
type Notification struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	Title  string `json:"title"`
	Body   string `json:"body,omitempty"`
	IsRead bool   `json:"is_read"`

	// Related-entity references used for deep-link routing.
	RelatedJobID          string `json:"related_job_id,omitempty"`
	RelatedConversationID string `json:"related_conversation_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// NotificationList is the backend response shape for the notifications feed.
type NotificationList struct {
	Notifications []Notification `json:"notifications"`
	UnreadCount   int            `json:"unread_count"`
}
