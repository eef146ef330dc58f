package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/bonssss/chat-app/internal/models"
)

// DataStore defines the interface for persistent storage of accounts,
// messages and profiles. Both PostgresStore and SQLiteStore implement it.
//
// Lookup methods return (nil, nil) when the row does not exist; absence is
// a valid state, not an error.
type DataStore interface {
	// Connection management
	Close()
	Ping(ctx context.Context) error

	// Account operations
	CreateAccount(ctx context.Context, email, passwordHash string) (*models.Account, error)
	GetAccountByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*models.Account, error)
	CountAccounts(ctx context.Context) (int64, error)

	// Message operations. Messages are append-only; fetches are always in
	// descending created_at order, which the conversation aggregation on
	// the client side depends on.
	InsertMessage(ctx context.Context, text, senderID, recipientID string) (*models.Message, error)
	MessagesBetween(ctx context.Context, a, b string, limit int) ([]models.Message, error)
	MessagesInvolving(ctx context.Context, accountID string) ([]models.Message, error)
	CountMessages(ctx context.Context) (int64, error)

	// Profile operations
	GetProfile(ctx context.Context, id string) (*models.Profile, error)
	UpsertProfile(ctx context.Context, p *models.Profile) error
}
