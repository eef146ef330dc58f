// Package backend defines the client-side contract of the chat backend:
// authentication, typed table access for messages and profiles, object
// storage, and the realtime insert feed. View-models depend only on these
// interfaces; the rest subpackage implements them over HTTP and the
// backendtest subpackage implements them in memory for tests.
package backend

import (
	"context"
	"errors"

	"github.com/bonssss/chat-app/internal/models"
)

// ErrUnauthenticated is returned by operations that require a session when
// none is held.
var ErrUnauthenticated = errors.New("not authenticated")

// Session holds the authenticated account's identity and access token. It
// is passed explicitly to view-models rather than kept as ambient state.
type Session struct {
	UserID      string
	Email       string
	AccessToken string
}

// Auth is the authentication surface of the backend.
type Auth interface {
	SignUp(ctx context.Context, email, password string) (*Session, error)
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context) error
	// User re-validates the current session against the backend.
	User(ctx context.Context) (*Session, error)
	// Session returns the locally held session, nil when signed out.
	Session() *Session
}

// Messages is the typed view over the message table. Fetches return rows
// in descending creation-time order; the conversation aggregation depends
// on that ordering.
type Messages interface {
	Between(ctx context.Context, self, contact string, limit int) ([]models.Message, error)
	Involving(ctx context.Context, self string) ([]models.Message, error)
	Send(ctx context.Context, text, senderID, recipientID string) (*models.Message, error)
}

// Profiles is the typed view over the profile table. Get returns
// (nil, nil) when no row exists.
type Profiles interface {
	Get(ctx context.Context, id string) (*models.Profile, error)
	Upsert(ctx context.Context, p *models.Profile) (*models.Profile, error)
}

// Storage is the binary object store. Upload returns the stored object's
// public URL.
type Storage interface {
	Upload(ctx context.Context, bucket, name string, data []byte) (string, error)
	PublicURL(bucket, name string) string
}

// Subscription is a live feed of message inserts. Events is closed when
// the subscription ends; Unsubscribe is idempotent and safe to call on a
// subscription that never delivered.
type Subscription interface {
	Events() <-chan models.Message
	Unsubscribe()
}

// Realtime produces subscriptions to the table-level message insert feed.
// Filtering events down to a conversation is the subscriber's job.
type Realtime interface {
	SubscribeMessages(ctx context.Context) (Subscription, error)
}

// Client aggregates every backend surface the screens consume.
type Client interface {
	Auth() Auth
	Messages() Messages
	Profiles() Profiles
	Storage() Storage
	Realtime() Realtime
}
