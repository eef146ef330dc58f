package viewmodel

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/bonssss/chat-app/internal/backend"
	"github.com/bonssss/chat-app/internal/crypto"
	"github.com/bonssss/chat-app/internal/models"
)

// messageHistoryLimit is the fixed most-recent-N window; there is no
// further pagination.
const messageHistoryLimit = 50

var (
	// ErrInvalidContact means the counterpart ID is not a canonical UUID.
	// The screen aborts setup and navigates back; no remote call is made.
	ErrInvalidContact = errors.New("invalid chat contact")

	// ErrEmptyMessage means the draft is empty after trimming.
	ErrEmptyMessage = errors.New("cannot send an empty message")
)

// Chat is the view-model behind the direct-message screen: the most
// recent messages between the account and one counterpart, a live insert
// feed filtered to that pair, and a send operation.
type Chat struct {
	client  backend.Client
	session backend.Session
	logger  zerolog.Logger

	mu        sync.Mutex
	contactID string
	messages  []models.Message
	contact   *models.Profile
	draft     string
	sub       backend.Subscription
	closed    bool
}

// NewChat creates a chat view-model for the given counterpart. The
// counterpart ID is validated before anything else; a malformed ID fails
// fast with ErrInvalidContact.
func NewChat(client backend.Client, session backend.Session, contactID string, logger zerolog.Logger) (*Chat, error) {
	if !crypto.IsUUID(contactID) {
		return nil, ErrInvalidContact
	}
	return &Chat{
		client:    client,
		session:   session,
		contactID: contactID,
		logger:    logger,
	}, nil
}

// Load fetches the counterpart's profile (best-effort) and the most
// recent messages of the conversation, newest first.
func (c *Chat) Load(ctx context.Context) error {
	contactID := c.ContactID()

	// Profile resolution never blocks the chat: a missing row or a lookup
	// failure degrades to a placeholder.
	profile, err := c.client.Profiles().Get(ctx, contactID)
	if err != nil {
		c.logger.Warn().Err(err).Str("contact", contactID).Msg("failed to fetch contact profile")
		profile = models.PlaceholderProfile(contactID)
	} else if profile == nil {
		profile = models.PlaceholderProfile(contactID)
	}

	msgs, err := c.client.Messages().Between(ctx, c.session.UserID, contactID, messageHistoryLimit)
	if err != nil {
		c.logger.Error().Err(err).Str("contact", contactID).Msg("failed to fetch messages")
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.contactID != contactID {
		// The screen was dismissed or retargeted while the fetch was in
		// flight; the stale result is discarded.
		return nil
	}
	c.contact = profile
	c.messages = msgs
	return nil
}

// Start subscribes to the realtime feed. Inserts whose unordered sender/
// recipient pair equals {self, contact} are prepended; everything else is
// ignored by this instance.
func (c *Chat) Start(ctx context.Context) error {
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
	if c.sub != nil {
		old := c.sub
		c.sub = nil
		c.mu.Unlock()
		old.Unsubscribe()
		c.mu.Lock()
	}
	c.sub = sub
	// The filter captures the pair as of subscription time; SetContact
	// re-subscribes so events are never matched against a stale pair.
	self, contact := c.session.UserID, c.contactID
	c.mu.Unlock()

	go func() {
		for msg := range sub.Events() {
			if !msg.Between(self, contact) {
				continue
			}
			c.mu.Lock()
			if !c.closed && c.sub == sub {
				c.messages = append([]models.Message{msg}, c.messages...)
			}
			c.mu.Unlock()
		}
	}()
	return nil
}

// SetContact switches the view-model to a different counterpart: the new
// ID is validated, history is reloaded, and the live subscription is
// re-established against the new pair.
func (c *Chat) SetContact(ctx context.Context, contactID string) error {
	if !crypto.IsUUID(contactID) {
		return ErrInvalidContact
	}

	c.mu.Lock()
	if c.contactID == contactID {
		c.mu.Unlock()
		return nil
	}
	c.contactID = contactID
	c.messages = nil
	c.contact = nil
	old := c.sub
	c.sub = nil
	hadSub := old != nil
	c.mu.Unlock()

	// The old subscription's filter still carries the previous pair, so
	// it comes down before the reload. If the reload fails the chat is
	// left without a feed rather than fed by the wrong pair.
	if old != nil {
		old.Unsubscribe()
	}

	if err := c.Load(ctx); err != nil {
		return err
	}
	if hadSub {
		return c.Start(ctx)
	}
	return nil
}

// SetDraft replaces the message input's content.
func (c *Chat) SetDraft(text string) {
	c.mu.Lock()
	c.draft = text
	c.mu.Unlock()
}

// Draft returns the message input's current content.
func (c *Chat) Draft() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// Send inserts the trimmed draft as a single message. A whitespace-only
// draft is rejected without a remote call. On failure the draft is left
// untouched; on success it is cleared. The stored message is not echoed
// locally: it arrives back through the realtime feed.
func (c *Chat) Send(ctx context.Context) error {
	c.mu.Lock()
	text := strings.TrimSpace(c.draft)
	contactID := c.contactID
	c.mu.Unlock()

	if text == "" {
		return ErrEmptyMessage
	}

	if _, err := c.client.Messages().Send(ctx, text, c.session.UserID, contactID); err != nil {
		c.logger.Error().Err(err).Str("contact", contactID).Msg("failed to send message")
		return err
	}

	c.mu.Lock()
	c.draft = ""
	c.mu.Unlock()
	return nil
}

// Messages returns a snapshot of the loaded messages, newest first.
func (c *Chat) Messages() []models.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Contact returns the resolved counterpart profile, or the placeholder
// when resolution failed. Nil until Load completes.
func (c *Chat) Contact() *models.Profile {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.contact
}

// ContactID returns the current counterpart ID.
func (c *Chat) ContactID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.contactID
}

// Close tears down the subscription. Safe to call repeatedly or without
// Start having been called.
func (c *Chat) Close() {
	c.mu.Lock()
	c.closed = true
	sub := c.sub
	c.sub = nil
	c.mu.Unlock()

	if sub != nil {
		sub.Unsubscribe()
	}
}
