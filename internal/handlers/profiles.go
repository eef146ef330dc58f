package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/bonssss/chat-app/internal/api/middleware"
	"github.com/bonssss/chat-app/internal/crypto"
	"github.com/bonssss/chat-app/internal/metrics"
	"github.com/bonssss/chat-app/internal/models"
)

// UpsertProfileRequest is the request body for profile upserts.
type UpsertProfileRequest struct {
	ID        string  `json:"id"`
	Username  string  `json:"username"`
	FullName  *string `json:"full_name"`
	AvatarURL *string `json:"avatar_url"`
	Bio       *string `json:"bio"`
}

// GetProfile returns a profile by ID. A missing row is 404; callers treat
// that as "no profile yet", not a failure.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !crypto.IsUUID(id) {
		h.Error(w, http.StatusBadRequest, "invalid profile ID format")
		return
	}

	profile, err := h.db.GetProfile(r.Context(), id)
	if err != nil {
		h.logger.Error().Err(err).Str("profile_id", id).Msg("failed to fetch profile")
		h.Error(w, http.StatusInternalServerError, "failed to fetch profile")
		return
	}
	if profile == nil {
		h.Error(w, http.StatusNotFound, "profile not found")
		return
	}

	h.JSON(w, http.StatusOK, profile)
}

// UpsertProfile creates or updates the authenticated account's profile.
// Writing any other account's profile is rejected.
func (h *Handler) UpsertProfile(w http.ResponseWriter, r *http.Request) {
	account := middleware.GetAccountFromContext(r.Context())
	if account == nil {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req UpsertProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if req.ID == "" {
		req.ID = account.ID.String()
	}
	if req.ID != account.ID.String() {
		h.Error(w, http.StatusForbidden, "cannot modify another account's profile")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" {
		h.Error(w, http.StatusBadRequest, "username is required")
		return
	}
	if len(req.Username) > 100 {
		h.Error(w, http.StatusUnprocessableEntity, "username too long (max 100 bytes)")
		return
	}

	profile := &models.Profile{
		ID:        req.ID,
		Username:  req.Username,
		FullName:  req.FullName,
		AvatarURL: req.AvatarURL,
		Bio:       req.Bio,
	}

	if err := h.db.UpsertProfile(r.Context(), profile); err != nil {
		h.logger.Error().Err(err).Str("profile_id", req.ID).Msg("failed to upsert profile")
		h.Error(w, http.StatusInternalServerError, "failed to save profile")
		return
	}

	metrics.ProfileUpserts.Inc()
	h.JSON(w, http.StatusOK, profile)
}
