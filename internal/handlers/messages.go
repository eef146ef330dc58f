package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/bonssss/chat-app/internal/api/middleware"
	"github.com/bonssss/chat-app/internal/crypto"
	"github.com/bonssss/chat-app/internal/metrics"
	"github.com/bonssss/chat-app/internal/models"
)

// defaultMessageLimit caps a single fetch of a conversation's history.
const defaultMessageLimit = 50

// SendMessageRequest is the request body for inserting a message.
type SendMessageRequest struct {
	Text        string `json:"text"`
	RecipientID string `json:"recipient_id"`
}

// MessagesResponse wraps a list of messages.
type MessagesResponse struct {
	Messages []models.Message `json:"messages"`
}

// GetMessages returns the most recent messages between the authenticated
// account and the contact given in the "with" query parameter, newest first.
func (h *Handler) GetMessages(w http.ResponseWriter, r *http.Request) {
	account := middleware.GetAccountFromContext(r.Context())
	if account == nil {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	contactID := r.URL.Query().Get("with")
	if !crypto.IsUUID(contactID) {
		h.Error(w, http.StatusBadRequest, "invalid contact ID format")
		return
	}

	limit := defaultMessageLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			h.Error(w, http.StatusBadRequest, "invalid limit")
			return
		}
		if n < limit {
			limit = n
		}
	}

	messages, err := h.db.MessagesBetween(r.Context(), account.ID.String(), contactID, limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to fetch messages")
		h.Error(w, http.StatusInternalServerError, "failed to fetch messages")
		return
	}
	if messages == nil {
		messages = []models.Message{}
	}

	h.JSON(w, http.StatusOK, MessagesResponse{Messages: messages})
}

// GetConversationFeed returns every message the authenticated account has
// sent or received, newest first. Clients derive the per-contact
// conversation list from this feed.
func (h *Handler) GetConversationFeed(w http.ResponseWriter, r *http.Request) {
	account := middleware.GetAccountFromContext(r.Context())
	if account == nil {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	messages, err := h.db.MessagesInvolving(r.Context(), account.ID.String())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to fetch conversation feed")
		h.Error(w, http.StatusInternalServerError, "failed to fetch messages")
		return
	}
	if messages == nil {
		messages = []models.Message{}
	}

	h.JSON(w, http.StatusOK, MessagesResponse{Messages: messages})
}

// SendMessage inserts a message from the authenticated account and publishes
// it to the realtime feed.
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	account := middleware.GetAccountFromContext(r.Context())
	if account == nil {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	req.Text = strings.TrimSpace(req.Text)
	if req.Text == "" {
		h.Error(w, http.StatusBadRequest, "text is required")
		return
	}
	if len(req.Text) > 4096 {
		h.Error(w, http.StatusUnprocessableEntity, "text too long (max 4096 bytes)")
		return
	}
	if !crypto.IsUUID(req.RecipientID) {
		h.Error(w, http.StatusBadRequest, "invalid recipient ID format")
		return
	}

	msg, err := h.db.InsertMessage(r.Context(), req.Text, account.ID.String(), req.RecipientID)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to insert message")
		h.Error(w, http.StatusInternalServerError, "failed to store message")
		return
	}

	// Senders see their own message arrive through the feed too; delivery
	// is best-effort and an insert is never rolled back over it.
	if h.redis != nil {
		if err := h.redis.PublishMessage(r.Context(), msg); err != nil {
			h.logger.Error().Err(err).Str("message_id", msg.ID).Msg("failed to publish realtime event")
		}
	}

	metrics.MessagesSent.Inc()
	h.JSON(w, http.StatusCreated, msg)
}
