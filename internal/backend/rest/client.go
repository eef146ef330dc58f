// Package rest implements the backend contract over the chat-app HTTP API.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/bonssss/chat-app/internal/backend"
)

// Client is a chat-app API client. It implements backend.Client; the
// surface accessors all return the client itself.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	mu      sync.RWMutex
	session *backend.Session
}

// NewClient creates a new API client.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) Auth() backend.Auth         { return c }
func (c *Client) Messages() backend.Messages { return c }
func (c *Client) Profiles() backend.Profiles { return c }
func (c *Client) Storage() backend.Storage   { return c }
func (c *Client) Realtime() backend.Realtime { return c }

// Session returns the locally held session, nil when signed out.
func (c *Client) Session() *backend.Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

// Resume adopts a previously saved session, e.g. one persisted to disk
// by a CLI between invocations.
func (c *Client) Resume(s *backend.Session) {
	c.setSession(s)
}

func (c *Client) setSession(s *backend.Session) {
	c.mu.Lock()
	c.session = s
	c.mu.Unlock()
}

// apiError is the backend's JSON error envelope.
type apiError struct {
	Status  int
	Message string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("chat-app error %d: %s", e.Status, e.Message)
}

// IsNotFound reports whether err is a backend 404.
func IsNotFound(err error) bool {
	apiErr, ok := err.(*apiError)
	return ok && apiErr.Status == http.StatusNotFound
}

// doRequest performs an HTTP request, attaching the bearer token when a
// session is held.
func (c *Client) doRequest(ctx context.Context, method, path string, body []byte, contentType string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if s := c.Session(); s != nil {
		req.Header.Set("Authorization", "Bearer "+s.AccessToken)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		json.Unmarshal(respBody, &errResp)
		return nil, &apiError{Status: resp.StatusCode, Message: errResp.Error}
	}

	return respBody, nil
}

// doJSON performs a JSON request and decodes the JSON response into out.
func (c *Client) doJSON(ctx context.Context, method, path string, reqBody, out interface{}) error {
	var body []byte
	contentType := ""
	if reqBody != nil {
		var err error
		body, err = json.Marshal(reqBody)
		if err != nil {
			return err
		}
		contentType = "application/json"
	}

	respBody, err := c.doRequest(ctx, method, path, body, contentType)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(respBody, out)
}
