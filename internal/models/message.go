package models

import "time"

// Message represents a direct message between two accounts.
// Messages are immutable once created; there is no edit or delete.
type Message struct {
	ID          string    `json:"id"` // ULID
	Text        string    `json:"text"`
	SenderID    string    `json:"sender_id"`    // Account UUID
	RecipientID string    `json:"recipient_id"` // Account UUID
	CreatedAt   time.Time `json:"created_at"`   // Server-assigned
}

// Counterpart returns the other participant of the message relative to
// the given account, or "" when the account is not a participant.
func (m Message) Counterpart(accountID string) string {
	switch accountID {
	case m.SenderID:
		return m.RecipientID
	case m.RecipientID:
		return m.SenderID
	}
	return ""
}

// Between reports whether the message belongs to the direct conversation
// between a and b, in either direction.
func (m Message) Between(a, b string) bool {
	return (m.SenderID == a && m.RecipientID == b) ||
		(m.SenderID == b && m.RecipientID == a)
}
