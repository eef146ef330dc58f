package models

import "time"

// Conversation is a derived, per-counterpart summary of a message history.
// It is never persisted; the client recomputes it from the message set.
type Conversation struct {
	ContactID       string    `json:"contact_id"`
	LastMessage     string    `json:"last_message"`
	LastMessageTime time.Time `json:"last_message_time"`
}
