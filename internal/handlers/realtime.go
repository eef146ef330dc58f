package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/bonssss/chat-app/internal/api/middleware"
	"github.com/bonssss/chat-app/internal/metrics"
)

// StreamMessages delivers message insert events as server-sent events.
// The feed is table-level: every insert is delivered and pair filtering is
// the subscriber's job, matching how clients filter against their open
// conversation.
func (h *Handler) StreamMessages(w http.ResponseWriter, r *http.Request) {
	account := middleware.GetAccountFromContext(r.Context())
	if account == nil {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	if h.redis == nil {
		h.Error(w, http.StatusServiceUnavailable, "realtime feed not configured")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		h.Error(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	events, cancel := h.redis.SubscribeMessages(r.Context(), h.logger)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	metrics.RealtimeSubscribers.Inc()
	defer metrics.RealtimeSubscribers.Dec()

	h.logger.Debug().Str("account", account.ID.String()).Msg("realtime subscriber connected")

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(msg)
			if err != nil {
				h.logger.Error().Err(err).Msg("failed to encode realtime event")
				continue
			}
			if _, err := fmt.Fprintf(w, "event: insert\ndata: %s\n\n", data); err != nil {
				return
			}
			flusher.Flush()
			metrics.RealtimeEventsDelivered.Inc()
		}
	}
}
