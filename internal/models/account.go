package models

import (
	"time"

	"github.com/google/uuid"
)

// Account represents a registered user account.
// The password hash never leaves the server; it is excluded from JSON.
type Account struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
