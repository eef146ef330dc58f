// Package backendtest provides an in-memory backend.Client for testing
// view-models without a network: messages and profiles live in maps,
// subscriptions are fed by Emit, and every remote call is counted so
// tests can assert that an operation issued no remote calls at all.
package backendtest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/bonssss/chat-app/internal/backend"
	"github.com/bonssss/chat-app/internal/models"
)

// Fake is an in-memory backend.Client.
type Fake struct {
	mu sync.Mutex

	CurrentSession *backend.Session

	MessageRows []models.Message
	ProfileRows map[string]models.Profile
	Objects     map[string][]byte // bucket/name -> data

	// Forced errors, returned by the matching operation when non-nil.
	SendErr       error
	FetchErr      error
	ProfileGetErr error
	UpsertErr     error
	UploadErr     error

	// Call counters.
	SendCalls    int
	FetchCalls   int
	ProfileCalls int
	UpsertCalls  int
	UploadCalls  int

	subs   []*fakeSubscription
	nextID int
	now    time.Time
}

// New creates an empty fake with a signed-in session for the given user.
func New(userID, email string) *Fake {
	return &Fake{
		CurrentSession: &backend.Session{UserID: userID, Email: email, AccessToken: "test-token"},
		ProfileRows:    map[string]models.Profile{},
		Objects:        map[string][]byte{},
		now:            time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (f *Fake) Auth() backend.Auth         { return f }
func (f *Fake) Messages() backend.Messages { return f }
func (f *Fake) Profiles() backend.Profiles { return f }
func (f *Fake) Storage() backend.Storage   { return f }
func (f *Fake) Realtime() backend.Realtime { return f }

// --- Auth ---

func (f *Fake) SignUp(ctx context.Context, email, password string) (*backend.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CurrentSession = &backend.Session{UserID: "new-user", Email: email, AccessToken: "test-token"}
	return f.CurrentSession, nil
}

func (f *Fake) SignIn(ctx context.Context, email, password string) (*backend.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CurrentSession == nil {
		return nil, fmt.Errorf("invalid email or password")
	}
	return f.CurrentSession, nil
}

func (f *Fake) SignOut(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CurrentSession = nil
	return nil
}

func (f *Fake) User(ctx context.Context) (*backend.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CurrentSession == nil {
		return nil, backend.ErrUnauthenticated
	}
	return f.CurrentSession, nil
}

func (f *Fake) Session() *backend.Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.CurrentSession
}

// --- Messages ---

// AddMessage seeds a stored message, assigning an ID and a timestamp one
// second after the previous one.
func (f *Fake) AddMessage(text, senderID, recipientID string) models.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.addLocked(text, senderID, recipientID)
}

func (f *Fake) addLocked(text, senderID, recipientID string) models.Message {
	f.nextID++
	f.now = f.now.Add(time.Second)
	msg := models.Message{
		ID:          fmt.Sprintf("msg-%04d", f.nextID),
		Text:        text,
		SenderID:    senderID,
		RecipientID: recipientID,
		CreatedAt:   f.now,
	}
	f.MessageRows = append(f.MessageRows, msg)
	return msg
}

func (f *Fake) Between(ctx context.Context, self, contact string, limit int) ([]models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.FetchCalls++
	if f.FetchErr != nil {
		return nil, f.FetchErr
	}

	var out []models.Message
	for _, m := range f.MessageRows {
		if m.Between(self, contact) {
			out = append(out, m)
		}
	}
	sortDescending(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *Fake) Involving(ctx context.Context, self string) ([]models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.FetchCalls++
	if f.FetchErr != nil {
		return nil, f.FetchErr
	}

	var out []models.Message
	for _, m := range f.MessageRows {
		if m.SenderID == self || m.RecipientID == self {
			out = append(out, m)
		}
	}
	sortDescending(out)
	return out, nil
}

func (f *Fake) Send(ctx context.Context, text, senderID, recipientID string) (*models.Message, error) {
	f.mu.Lock()
	f.SendCalls++
	if f.SendErr != nil {
		f.mu.Unlock()
		return nil, f.SendErr
	}
	msg := f.addLocked(text, senderID, recipientID)
	f.mu.Unlock()

	// Stored messages arrive back through the realtime feed, like the
	// real backend.
	f.Emit(msg)
	return &msg, nil
}

func sortDescending(msgs []models.Message) {
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].CreatedAt.After(msgs[j].CreatedAt)
	})
}

// --- Profiles ---

func (f *Fake) Get(ctx context.Context, id string) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ProfileCalls++
	if f.ProfileGetErr != nil {
		return nil, f.ProfileGetErr
	}
	p, ok := f.ProfileRows[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (f *Fake) Upsert(ctx context.Context, p *models.Profile) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.UpsertCalls++
	if f.UpsertErr != nil {
		return nil, f.UpsertErr
	}
	f.now = f.now.Add(time.Second)
	saved := *p
	ts := f.now
	saved.UpdatedAt = &ts
	f.ProfileRows[p.ID] = saved
	return &saved, nil
}

// --- Storage ---

func (f *Fake) Upload(ctx context.Context, bucket, name string, data []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.UploadCalls++
	if f.UploadErr != nil {
		return "", f.UploadErr
	}
	f.Objects[bucket+"/"+name] = data
	return f.publicURL(bucket, name), nil
}

func (f *Fake) PublicURL(bucket, name string) string {
	return f.publicURL(bucket, name)
}

func (f *Fake) publicURL(bucket, name string) string {
	return fmt.Sprintf("https://storage.test/%s/%s", bucket, name)
}

// --- Realtime ---

type fakeSubscription struct {
	mu     sync.Mutex
	events chan models.Message
	closed bool
	fake   *Fake
}

func (s *fakeSubscription) Events() <-chan models.Message { return s.events }

func (s *fakeSubscription) Unsubscribe() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.events)
	s.mu.Unlock()
	s.fake.removeSub(s)
}

// deliver drops the event when the subscription is already torn down, so
// an Emit racing an Unsubscribe never sends on a closed channel.
func (s *fakeSubscription) deliver(msg models.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.events <- msg
}

func (f *Fake) SubscribeMessages(ctx context.Context) (backend.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CurrentSession == nil {
		return nil, backend.ErrUnauthenticated
	}
	sub := &fakeSubscription{events: make(chan models.Message, 64), fake: f}
	f.subs = append(f.subs, sub)
	return sub, nil
}

// Emit delivers a synthetic insert event to every open subscription.
func (f *Fake) Emit(msg models.Message) {
	f.mu.Lock()
	subs := make([]*fakeSubscription, len(f.subs))
	copy(subs, f.subs)
	f.mu.Unlock()

	for _, sub := range subs {
		sub.deliver(msg)
	}
}

// OpenSubscriptions reports how many subscriptions are currently active.
func (f *Fake) OpenSubscriptions() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

func (f *Fake) removeSub(target *fakeSubscription) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, sub := range f.subs {
		if sub == target {
			f.subs = append(f.subs[:i], f.subs[i+1:]...)
			return
		}
	}
}
