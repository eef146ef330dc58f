package viewmodel

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bonssss/chat-app/internal/backend/backendtest"
	"github.com/bonssss/chat-app/internal/models"
)

const (
	selfID  = "11111111-1111-1111-1111-111111111111"
	aliceID = "22222222-2222-2222-2222-222222222222"
	bobID   = "33333333-3333-3333-3333-333333333333"
	carolID = "44444444-4444-4444-4444-444444444444"
)

func testMessage(id, text, sender, recipient string, t time.Time) models.Message {
	return models.Message{ID: id, Text: text, SenderID: sender, RecipientID: recipient, CreatedAt: t}
}

func TestAggregateConversations(t *testing.T) {
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	at := func(sec int) time.Time { return base.Add(time.Duration(sec) * time.Second) }

	t.Run("empty history", func(t *testing.T) {
		assert.Empty(t, AggregateConversations(selfID, nil))
	})

	t.Run("one entry per counterpart", func(t *testing.T) {
		msgs := []models.Message{
			testMessage("m4", "latest from bob", bobID, selfID, at(4)),
			testMessage("m3", "latest to alice", selfID, aliceID, at(3)),
			testMessage("m2", "older from alice", aliceID, selfID, at(2)),
			testMessage("m1", "oldest to bob", selfID, bobID, at(1)),
		}

		list := AggregateConversations(selfID, msgs)
		require.Len(t, list, 2)
		assert.Equal(t, bobID, list[0].ContactID)
		assert.Equal(t, "latest from bob", list[0].LastMessage)
		assert.Equal(t, at(4), list[0].LastMessageTime)
		assert.Equal(t, aliceID, list[1].ContactID)
		assert.Equal(t, "latest to alice", list[1].LastMessage)
	})

	t.Run("first seen wins for a counterpart", func(t *testing.T) {
		msgs := []models.Message{
			testMessage("m5", "newest", aliceID, selfID, at(5)),
			testMessage("m3", "middle", selfID, aliceID, at(3)),
			testMessage("m1", "oldest", selfID, aliceID, at(1)),
		}

		list := AggregateConversations(selfID, msgs)
		require.Len(t, list, 1)
		assert.Equal(t, "newest", list[0].LastMessage)
		assert.Equal(t, at(5), list[0].LastMessageTime)
	})

	t.Run("direction does not matter", func(t *testing.T) {
		sent := AggregateConversations(selfID, []models.Message{
			testMessage("m1", "hi", selfID, aliceID, at(1)),
		})
		received := AggregateConversations(selfID, []models.Message{
			testMessage("m1", "hi", aliceID, selfID, at(1)),
		})
		require.Len(t, sent, 1)
		require.Len(t, received, 1)
		assert.Equal(t, aliceID, sent[0].ContactID)
		assert.Equal(t, aliceID, received[0].ContactID)
	})

	t.Run("messages not involving the account are skipped", func(t *testing.T) {
		msgs := []models.Message{
			testMessage("m2", "not ours", bobID, carolID, at(2)),
			testMessage("m1", "ours", selfID, aliceID, at(1)),
		}

		list := AggregateConversations(selfID, msgs)
		require.Len(t, list, 1)
		assert.Equal(t, aliceID, list[0].ContactID)
	})
}

func TestConversationsLoad(t *testing.T) {
	fake := backendtest.New(selfID, "self@example.com")
	fake.AddMessage("hello alice", selfID, aliceID)
	fake.AddMessage("hello bob", selfID, bobID)
	fake.AddMessage("reply from alice", aliceID, selfID)

	vm := NewConversations(fake, *fake.Session(), zerolog.Nop())
	defer vm.Close()

	require.NoError(t, vm.Load(context.Background()))

	list := vm.List()
	require.Len(t, list, 2)
	assert.Equal(t, aliceID, list[0].ContactID)
	assert.Equal(t, "reply from alice", list[0].LastMessage)
	assert.Equal(t, bobID, list[1].ContactID)
	assert.Equal(t, "hello bob", list[1].LastMessage)
}

func TestConversationsLoadEmpty(t *testing.T) {
	fake := backendtest.New(selfID, "self@example.com")

	vm := NewConversations(fake, *fake.Session(), zerolog.Nop())
	defer vm.Close()

	require.NoError(t, vm.Load(context.Background()))
	assert.Empty(t, vm.List())
}

func TestConversationsLiveReorder(t *testing.T) {
	fake := backendtest.New(selfID, "self@example.com")
	fake.AddMessage("to alice", selfID, aliceID)
	fake.AddMessage("to bob", selfID, bobID)

	vm := NewConversations(fake, *fake.Session(), zerolog.Nop())
	defer vm.Close()

	ctx := context.Background()
	require.NoError(t, vm.Load(ctx))
	require.NoError(t, vm.Start(ctx))
	require.Equal(t, bobID, vm.List()[0].ContactID)

	// A fresh message from alice moves her conversation to the front.
	fake.Emit(testMessage("m9", "knock knock", aliceID, selfID,
		time.Date(2024, 6, 1, 13, 0, 0, 0, time.UTC)))

	require.Eventually(t, func() bool {
		list := vm.List()
		return len(list) == 2 && list[0].ContactID == aliceID
	}, time.Second, 5*time.Millisecond)

	list := vm.List()
	assert.Equal(t, "knock knock", list[0].LastMessage)
	assert.Equal(t, bobID, list[1].ContactID)
}

func TestConversationsLiveNewCounterpart(t *testing.T) {
	fake := backendtest.New(selfID, "self@example.com")

	vm := NewConversations(fake, *fake.Session(), zerolog.Nop())
	defer vm.Close()

	ctx := context.Background()
	require.NoError(t, vm.Load(ctx))
	require.NoError(t, vm.Start(ctx))

	fake.Emit(testMessage("m1", "first contact", carolID, selfID,
		time.Date(2024, 6, 1, 13, 0, 0, 0, time.UTC)))

	require.Eventually(t, func() bool {
		return len(vm.List()) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, carolID, vm.List()[0].ContactID)
}

func TestConversationsIgnoresUnrelatedEvents(t *testing.T) {
	fake := backendtest.New(selfID, "self@example.com")
	fake.AddMessage("to alice", selfID, aliceID)

	vm := NewConversations(fake, *fake.Session(), zerolog.Nop())
	defer vm.Close()

	ctx := context.Background()
	require.NoError(t, vm.Load(ctx))
	require.NoError(t, vm.Start(ctx))

	fake.Emit(testMessage("m1", "someone else's chat", bobID, carolID,
		time.Date(2024, 6, 1, 13, 0, 0, 0, time.UTC)))
	// A related event after it proves the unrelated one was processed.
	fake.Emit(testMessage("m2", "ping", aliceID, selfID,
		time.Date(2024, 6, 1, 13, 0, 1, 0, time.UTC)))

	require.Eventually(t, func() bool {
		list := vm.List()
		return len(list) == 1 && list[0].LastMessage == "ping"
	}, time.Second, 5*time.Millisecond)
}

func TestConversationsClose(t *testing.T) {
	fake := backendtest.New(selfID, "self@example.com")

	vm := NewConversations(fake, *fake.Session(), zerolog.Nop())
	require.NoError(t, vm.Start(context.Background()))
	require.Equal(t, 1, fake.OpenSubscriptions())

	vm.Close()
	assert.Equal(t, 0, fake.OpenSubscriptions())

	// Repeated close is a no-op.
	vm.Close()
}

func TestConversationsCloseBeforeStart(t *testing.T) {
	fake := backendtest.New(selfID, "self@example.com")

	vm := NewConversations(fake, *fake.Session(), zerolog.Nop())
	vm.Close()

	// A start after close tears its subscription down immediately.
	require.NoError(t, vm.Start(context.Background()))
	assert.Equal(t, 0, fake.OpenSubscriptions())
}
