package model

import (
	"time"
)

// Conversation links two participants around a job. History is append-only
// from this side; the gateway never reorders or deletes messages beyond an
// optimistic send awaiting reconciliation.
type Conversation struct {
	ID           string    `json:"id"`
	JobID        string    `json:"job_id,omitempty"`
	Participants []string  `json:"participants"`
	UnreadCount  int       `json:"unread_count"`
	LastMessage  string    `json:"last_message,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Message is one entry in a conversation. Pending marks an optimistic send
// not yet confirmed by the backend.
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	SenderID       string    `json:"sender_id"`
	Body           string    `json:"body"`
	Pending        bool      `json:"pending,omitempty"`
	SentAt         time.Time `json:"sent_at"`
}

// MessagePage is the backend response for a conversation's message history.
type MessagePage struct {
	Messages []Message `json:"messages"`
}
