package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/bonssss/chat-app/internal/crypto"
	"github.com/bonssss/chat-app/internal/models"
	"github.com/bonssss/chat-app/internal/store"
)

type contextKey string

const AccountContextKey contextKey = "account"

// AuthMiddleware validates bearer access tokens on authenticated endpoints.
type AuthMiddleware struct {
	db     store.DataStore
	secret []byte
}

// NewAuthMiddleware creates a new auth middleware.
func NewAuthMiddleware(db store.DataStore, secret []byte) *AuthMiddleware {
	return &AuthMiddleware{db: db, secret: secret}
}

// RequireAuth verifies the Authorization header and loads the account into
// the request context.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			jsonError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		accountID, err := crypto.VerifyAccessToken(m.secret, token)
		if err != nil {
			jsonError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		id, err := uuid.Parse(accountID)
		if err != nil {
			jsonError(w, http.StatusUnauthorized, "invalid token subject")
			return
		}

		account, err := m.db.GetAccountByID(r.Context(), id)
		if err != nil {
			jsonError(w, http.StatusInternalServerError, "database error")
			return
		}
		if account == nil {
			jsonError(w, http.StatusUnauthorized, "account not found")
			return
		}

		ctx := context.WithValue(r.Context(), AccountContextKey, account)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return ""
	}
	return strings.TrimSpace(auth[len(prefix):])
}

func jsonError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// GetAccountFromContext retrieves the authenticated account from the
// request context.
func GetAccountFromContext(ctx context.Context) *models.Account {
	account, ok := ctx.Value(AccountContextKey).(*models.Account)
	if !ok {
		return nil
	}
	return account
}
