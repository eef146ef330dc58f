package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/bonssss/chat-app/internal/api/middleware"
	"github.com/bonssss/chat-app/internal/crypto"
	"github.com/bonssss/chat-app/internal/metrics"
)

// CredentialsRequest is the request body for signup and signin.
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionResponse is the response for successful signup and signin.
type SessionResponse struct {
	AccessToken string `json:"access_token"`
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
}

// UserResponse describes the authenticated account.
type UserResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// SignUp handles account creation.
func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if !isValidEmail(req.Email) {
		h.Error(w, http.StatusBadRequest, "invalid email format")
		return
	}
	if len(req.Password) < 8 {
		h.Error(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	existing, err := h.db.GetAccountByEmail(r.Context(), req.Email)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}
	if existing != nil {
		h.Error(w, http.StatusConflict, "email already registered")
		return
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	account, err := h.db.CreateAccount(r.Context(), req.Email, hash)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to create account")
		return
	}

	token, err := crypto.IssueAccessToken(h.secret, account.ID.String())
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	metrics.AccountsRegistered.Inc()
	h.JSON(w, http.StatusCreated, SessionResponse{
		AccessToken: token,
		UserID:      account.ID.String(),
		Email:       account.Email,
	})
}

// SignIn handles email/password authentication.
func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	account, err := h.db.GetAccountByEmail(r.Context(), req.Email)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}
	if account == nil || !crypto.CheckPassword(account.PasswordHash, req.Password) {
		metrics.SignIns.WithLabelValues("rejected").Inc()
		h.Error(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	token, err := crypto.IssueAccessToken(h.secret, account.ID.String())
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	metrics.SignIns.WithLabelValues("ok").Inc()
	h.JSON(w, http.StatusOK, SessionResponse{
		AccessToken: token,
		UserID:      account.ID.String(),
		Email:       account.Email,
	})
}

// SignOut acknowledges a sign-out. Tokens are stateless; discarding the
// token client-side is what ends the session.
func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	h.JSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// CurrentUser returns the authenticated account.
func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	account := middleware.GetAccountFromContext(r.Context())
	if account == nil {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}
	h.JSON(w, http.StatusOK, UserResponse{
		ID:    account.ID.String(),
		Email: account.Email,
	})
}
