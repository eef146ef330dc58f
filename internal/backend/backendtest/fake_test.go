package backendtest

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bonssss/chat-app/internal/models"
)

func TestEmitRacesUnsubscribe(t *testing.T) {
	f := New("user-1", "user@example.com")
	msg := models.Message{ID: "m-1", Text: "hi", SenderID: "a", RecipientID: "b"}

	for i := 0; i < 200; i++ {
		sub, err := f.SubscribeMessages(context.Background())
		require.NoError(t, err)

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.Emit(msg)
		}()
		sub.Unsubscribe()
		wg.Wait()
	}

	assert.Equal(t, 0, f.OpenSubscriptions())
}

func TestEmitAfterUnsubscribeIsDropped(t *testing.T) {
	f := New("user-1", "user@example.com")

	sub, err := f.SubscribeMessages(context.Background())
	require.NoError(t, err)
	sub.Unsubscribe()
	sub.Unsubscribe()

	f.Emit(models.Message{ID: "m-1", Text: "late"})

	_, open := <-sub.Events()
	assert.False(t, open)
}
