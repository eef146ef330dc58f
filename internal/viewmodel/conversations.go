// Package viewmodel implements the screen view-models: the conversation
// list aggregator, the two-party message stream, the profile editor, and
// credential validation. Each view-model holds an explicit session and a
// backend client; none reaches for ambient global state.
package viewmodel

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/bonssss/chat-app/internal/backend"
	"github.com/bonssss/chat-app/internal/models"
)

// AggregateConversations derives one conversation summary per distinct
// counterpart from a flat message history.
//
// Precondition: msgs must be in descending creation-time order. The first
// message seen for a counterpart is kept, so descending input is what
// makes each summary carry that counterpart's most recent message.
func AggregateConversations(accountID string, msgs []models.Message) []models.Conversation {
	seen := make(map[string]bool, len(msgs))
	var out []models.Conversation
	for _, msg := range msgs {
		contactID := msg.Counterpart(accountID)
		if contactID == "" || seen[contactID] {
			continue
		}
		seen[contactID] = true
		out = append(out, models.Conversation{
			ContactID:       contactID,
			LastMessage:     msg.Text,
			LastMessageTime: msg.CreatedAt,
		})
	}
	return out
}

// Conversations is the view-model behind the conversation list screen: a
// per-counterpart summary of the account's message history, kept current
// by the realtime feed.
type Conversations struct {
	client  backend.Client
	session backend.Session
	logger  zerolog.Logger

	mu     sync.Mutex
	list   []models.Conversation
	sub    backend.Subscription
	closed bool
}

// NewConversations creates the conversation list view-model for the
// session's account.
func NewConversations(client backend.Client, session backend.Session, logger zerolog.Logger) *Conversations {
	return &Conversations{
		client:  client,
		session: session,
		logger:  logger,
	}
}

// Load fetches the account's full message history and rebuilds the
// summary list. An empty history is a valid empty list.
func (c *Conversations) Load(ctx context.Context) error {
	msgs, err := c.client.Messages().Involving(ctx, c.session.UserID)
	if err != nil {
		c.logger.Error().Err(err).Msg("failed to load conversations")
		return err
	}

	list := AggregateConversations(c.session.UserID, msgs)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		// Screen went away while the fetch was in flight; drop the result.
		return nil
	}
	c.list = list
	return nil
}

// Start subscribes to the realtime feed and applies matching inserts to
// the list until Close is called.
func (c *Conversations) Start(ctx context.Context) error {
	sub, err := c.client.Realtime().SubscribeMessages(ctx)
	if err != nil {
		c.logger.Error().Err(err).Msg("failed to subscribe to realtime feed")
		return err
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		sub.Unsubscribe()
		return nil
	}
	c.sub = sub
	c.mu.Unlock()

	go func() {
		for msg := range sub.Events() {
			c.apply(msg)
		}
	}()
	return nil
}

// apply folds a single insert event into the list: events not involving
// the account are ignored; otherwise the counterpart's summary is removed
// and a fresh one is put at the front, keeping most-recently-active-first
// order without a refetch.
func (c *Conversations) apply(msg models.Message) {
	contactID := msg.Counterpart(c.session.UserID)
	if contactID == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	kept := c.list[:0]
	for _, conv := range c.list {
		if conv.ContactID != contactID {
			kept = append(kept, conv)
		}
	}
	fresh := models.Conversation{
		ContactID:       contactID,
		LastMessage:     msg.Text,
		LastMessageTime: msg.CreatedAt,
	}
	c.list = append([]models.Conversation{fresh}, kept...)
}

// List returns a snapshot of the current summaries, most recently active
// first.
func (c *Conversations) List() []models.Conversation {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Conversation, len(c.list))
	copy(out, c.list)
	return out
}

// Close tears down the subscription. Safe to call repeatedly or without
// Start having been called.
func (c *Conversations) Close() {
	c.mu.Lock()
	c.closed = true
	sub := c.sub
	c.sub = nil
	c.mu.Unlock()

	if sub != nil {
		sub.Unsubscribe()
	}
}
