package rest

import (
	"context"
	"fmt"
	"net/url"

	"github.com/bonssss/chat-app/internal/models"
)

type messagesResponse struct {
	Messages []models.Message `json:"messages"`
}

type sendMessageRequest struct {
	Text        string `json:"text"`
	RecipientID string `json:"recipient_id"`
}

// Between fetches the most recent messages exchanged with a contact,
// newest first.
func (c *Client) Between(ctx context.Context, self, contact string, limit int) ([]models.Message, error) {
	path := fmt.Sprintf("/messages?with=%s&limit=%d", url.QueryEscape(contact), limit)

	var resp messagesResponse
	if err := c.doJSON(ctx, "GET", path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Messages, nil
}

// Involving fetches every message the account has sent or received,
// newest first.
func (c *Client) Involving(ctx context.Context, self string) ([]models.Message, error) {
	var resp messagesResponse
	if err := c.doJSON(ctx, "GET", "/conversations", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Messages, nil
}

// Send inserts a single message. The stored row, with its server-assigned
// ID and timestamp, is returned; it also arrives through the realtime feed.
func (c *Client) Send(ctx context.Context, text, senderID, recipientID string) (*models.Message, error) {
	var msg models.Message
	err := c.doJSON(ctx, "POST", "/messages", sendMessageRequest{Text: text, RecipientID: recipientID}, &msg)
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// Get fetches a profile by ID. Absence is (nil, nil), not an error.
func (c *Client) Get(ctx context.Context, id string) (*models.Profile, error) {
	var profile models.Profile
	err := c.doJSON(ctx, "GET", "/profiles/"+url.PathEscape(id), nil, &profile)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

// Upsert creates or replaces the account's profile row.
func (c *Client) Upsert(ctx context.Context, p *models.Profile) (*models.Profile, error) {
	var saved models.Profile
	if err := c.doJSON(ctx, "POST", "/profiles", p, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}
