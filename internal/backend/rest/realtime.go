package rest

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/bonssss/chat-app/internal/backend"
	"github.com/bonssss/chat-app/internal/models"
)

// subscription is a live SSE connection to the message insert feed.
type subscription struct {
	events chan models.Message
	cancel context.CancelFunc
	once   sync.Once
}

func (s *subscription) Events() <-chan models.Message { return s.events }

// Unsubscribe tears down the connection. Safe to call more than once, or
// on a subscription that never received an event.
func (s *subscription) Unsubscribe() {
	s.once.Do(s.cancel)
}

// SubscribeMessages opens the server-sent-events stream of message
// inserts. The feed is table-level: callers filter events down to the
// conversation they care about.
func (c *Client) SubscribeMessages(ctx context.Context) (backend.Subscription, error) {
	if c.Session() == nil {
		return nil, backend.ErrUnauthenticated
	}

	streamCtx, cancel := context.WithCancel(ctx)

	req, err := http.NewRequestWithContext(streamCtx, "GET", c.BaseURL+"/realtime/messages", nil)
	if err != nil {
		cancel()
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Authorization", "Bearer "+c.Session().AccessToken)

	// The streaming connection must not inherit the client's request
	// timeout; it stays open for the subscription's lifetime.
	streamClient := &http.Client{Transport: c.HTTPClient.Transport}

	resp, err := streamClient.Do(req)
	if err != nil {
		cancel()
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		cancel()
		return nil, fmt.Errorf("realtime subscribe failed: status %d", resp.StatusCode)
	}

	sub := &subscription{
		events: make(chan models.Message, 16),
		cancel: cancel,
	}

	go func() {
		defer close(sub.events)
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := scanner.Text()
			if !strings.HasPrefix(line, "data: ") {
				continue
			}
			var msg models.Message
			if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &msg); err != nil {
				continue
			}
			select {
			case sub.events <- msg:
			case <-streamCtx.Done():
				return
			}
		}
	}()

	return sub, nil
}
