package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bonssss/chat-app/internal/api"
	"github.com/bonssss/chat-app/internal/handlers"
	"github.com/bonssss/chat-app/internal/models"
	"github.com/bonssss/chat-app/internal/store"
)

var testSecret = []byte("test-secret-test-secret-test-secret!")

func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	db, err := store.NewSQLiteStore(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(db.Close)

	objects := newTestObjectStore(t)
	return api.NewRouter(zerolog.Nop(), db, nil, objects, testSecret)
}

func doJSON(t *testing.T, h http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out), "body: %s", rec.Body.String())
}

func signUp(t *testing.T, h http.Handler, email string) handlers.SessionResponse {
	t.Helper()
	rec := doJSON(t, h, "POST", "/auth/signup", "", handlers.CredentialsRequest{
		Email:    email,
		Password: "Str0ngpass!",
	})
	require.Equal(t, http.StatusCreated, rec.Code, "body: %s", rec.Body.String())

	var session handlers.SessionResponse
	decode(t, rec, &session)
	return session
}

func TestSignUp(t *testing.T) {
	h := newTestServer(t)

	session := signUp(t, h, "Alice@Example.COM")
	assert.NotEmpty(t, session.AccessToken)
	assert.NotEmpty(t, session.UserID)
	assert.Equal(t, "alice@example.com", session.Email)

	// The issued token authenticates.
	rec := doJSON(t, h, "GET", "/auth/user", session.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var user handlers.UserResponse
	decode(t, rec, &user)
	assert.Equal(t, session.UserID, user.ID)
	assert.Equal(t, "alice@example.com", user.Email)
}

func TestSignUpRejections(t *testing.T) {
	h := newTestServer(t)
	signUp(t, h, "taken@example.com")

	tests := []struct {
		name     string
		email    string
		password string
		want     int
	}{
		{"duplicate email", "taken@example.com", "Str0ngpass!", http.StatusConflict},
		{"duplicate email different case", "TAKEN@example.com", "Str0ngpass!", http.StatusConflict},
		{"invalid email", "not-an-email", "Str0ngpass!", http.StatusBadRequest},
		{"short password", "new@example.com", "short", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, h, "POST", "/auth/signup", "", handlers.CredentialsRequest{
				Email:    tt.email,
				Password: tt.password,
			})
			assert.Equal(t, tt.want, rec.Code, "body: %s", rec.Body.String())
		})
	}
}

func TestSignIn(t *testing.T) {
	h := newTestServer(t)
	created := signUp(t, h, "alice@example.com")

	rec := doJSON(t, h, "POST", "/auth/signin", "", handlers.CredentialsRequest{
		Email:    "alice@example.com",
		Password: "Str0ngpass!",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var session handlers.SessionResponse
	decode(t, rec, &session)
	assert.Equal(t, created.UserID, session.UserID)
	assert.NotEmpty(t, session.AccessToken)
}

func TestSignInRejected(t *testing.T) {
	h := newTestServer(t)
	signUp(t, h, "alice@example.com")

	t.Run("wrong password", func(t *testing.T) {
		rec := doJSON(t, h, "POST", "/auth/signin", "", handlers.CredentialsRequest{
			Email:    "alice@example.com",
			Password: "WrongPass1!",
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("unknown account", func(t *testing.T) {
		rec := doJSON(t, h, "POST", "/auth/signin", "", handlers.CredentialsRequest{
			Email:    "nobody@example.com",
			Password: "Str0ngpass!",
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestAuthRequired(t *testing.T) {
	h := newTestServer(t)

	for _, path := range []string{"/auth/user", "/messages?with=x", "/conversations"} {
		rec := doJSON(t, h, "GET", path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "path %s", path)
	}

	rec := doJSON(t, h, "GET", "/auth/user", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func sendMessage(t *testing.T, h http.Handler, token, text, recipientID string) models.Message {
	t.Helper()
	rec := doJSON(t, h, "POST", "/messages", token, handlers.SendMessageRequest{
		Text:        text,
		RecipientID: recipientID,
	})
	require.Equal(t, http.StatusCreated, rec.Code, "body: %s", rec.Body.String())

	var msg models.Message
	decode(t, rec, &msg)
	return msg
}

func TestSendMessage(t *testing.T) {
	h := newTestServer(t)
	alice := signUp(t, h, "alice@example.com")
	bob := signUp(t, h, "bob@example.com")

	msg := sendMessage(t, h, alice.AccessToken, "  hello bob  ", bob.UserID)
	assert.NotEmpty(t, msg.ID)
	assert.Equal(t, "hello bob", msg.Text)
	assert.Equal(t, alice.UserID, msg.SenderID)
	assert.Equal(t, bob.UserID, msg.RecipientID)
	assert.False(t, msg.CreatedAt.IsZero())
}

func TestSendMessageRejections(t *testing.T) {
	h := newTestServer(t)
	alice := signUp(t, h, "alice@example.com")
	bob := signUp(t, h, "bob@example.com")

	tests := []struct {
		name      string
		text      string
		recipient string
		want      int
	}{
		{"empty text", "", bob.UserID, http.StatusBadRequest},
		{"whitespace only", "   \n ", bob.UserID, http.StatusBadRequest},
		{"text too long", strings.Repeat("a", 4097), bob.UserID, http.StatusUnprocessableEntity},
		{"invalid recipient", "hi", "not-a-uuid", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, h, "POST", "/messages", alice.AccessToken, handlers.SendMessageRequest{
				Text:        tt.text,
				RecipientID: tt.recipient,
			})
			assert.Equal(t, tt.want, rec.Code, "body: %s", rec.Body.String())
		})
	}
}

func TestGetMessages(t *testing.T) {
	h := newTestServer(t)
	alice := signUp(t, h, "alice@example.com")
	bob := signUp(t, h, "bob@example.com")
	carol := signUp(t, h, "carol@example.com")

	sendMessage(t, h, alice.AccessToken, "first", bob.UserID)
	sendMessage(t, h, bob.AccessToken, "second", alice.UserID)
	sendMessage(t, h, alice.AccessToken, "other chat", carol.UserID)

	rec := doJSON(t, h, "GET", "/messages?with="+bob.UserID, alice.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp handlers.MessagesResponse
	decode(t, rec, &resp)
	require.Len(t, resp.Messages, 2)
	assert.Equal(t, "second", resp.Messages[0].Text)
	assert.Equal(t, "first", resp.Messages[1].Text)
}

func TestGetMessagesLimit(t *testing.T) {
	h := newTestServer(t)
	alice := signUp(t, h, "alice@example.com")
	bob := signUp(t, h, "bob@example.com")

	for i := 0; i < 3; i++ {
		sendMessage(t, h, alice.AccessToken, fmt.Sprintf("msg %d", i), bob.UserID)
	}

	rec := doJSON(t, h, "GET", "/messages?with="+bob.UserID+"&limit=1", alice.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp handlers.MessagesResponse
	decode(t, rec, &resp)
	require.Len(t, resp.Messages, 1)
	assert.Equal(t, "msg 2", resp.Messages[0].Text)

	// A limit above the cap is accepted and clamped, not rejected.
	rec = doJSON(t, h, "GET", "/messages?with="+bob.UserID+"&limit=500", alice.AccessToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, "GET", "/messages?with="+bob.UserID+"&limit=0", alice.AccessToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetMessagesInvalidContact(t *testing.T) {
	h := newTestServer(t)
	alice := signUp(t, h, "alice@example.com")

	for _, with := range []string{"", "not-a-uuid", "11111111-1111-1111-1111"} {
		rec := doJSON(t, h, "GET", "/messages?with="+with, alice.AccessToken, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "with %q", with)
	}
}

func TestConversationFeed(t *testing.T) {
	h := newTestServer(t)
	alice := signUp(t, h, "alice@example.com")
	bob := signUp(t, h, "bob@example.com")
	carol := signUp(t, h, "carol@example.com")

	sendMessage(t, h, alice.AccessToken, "to bob", bob.UserID)
	sendMessage(t, h, carol.AccessToken, "to alice", alice.UserID)
	sendMessage(t, h, bob.AccessToken, "to carol", carol.UserID)

	rec := doJSON(t, h, "GET", "/conversations", alice.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp handlers.MessagesResponse
	decode(t, rec, &resp)
	require.Len(t, resp.Messages, 2)
	assert.Equal(t, "to alice", resp.Messages[0].Text)
	assert.Equal(t, "to bob", resp.Messages[1].Text)
}

func TestConversationFeedEmpty(t *testing.T) {
	h := newTestServer(t)
	alice := signUp(t, h, "alice@example.com")

	rec := doJSON(t, h, "GET", "/conversations", alice.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp handlers.MessagesResponse
	decode(t, rec, &resp)
	assert.NotNil(t, resp.Messages)
	assert.Empty(t, resp.Messages)
}

func TestProfileLifecycle(t *testing.T) {
	h := newTestServer(t)
	alice := signUp(t, h, "alice@example.com")

	// No row yet.
	rec := doJSON(t, h, "GET", "/profiles/"+alice.UserID, alice.AccessToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	fullName := "Alice Person"
	rec = doJSON(t, h, "POST", "/profiles", alice.AccessToken, handlers.UpsertProfileRequest{
		Username: "alice",
		FullName: &fullName,
	})
	require.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())
	var saved models.Profile
	decode(t, rec, &saved)
	require.NotNil(t, saved.UpdatedAt, "upsert responses carry the stored timestamp")

	rec = doJSON(t, h, "GET", "/profiles/"+alice.UserID, alice.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var profile models.Profile
	decode(t, rec, &profile)
	assert.Equal(t, alice.UserID, profile.ID)
	assert.Equal(t, "alice", profile.Username)
	require.NotNil(t, profile.FullName)
	assert.Equal(t, "Alice Person", *profile.FullName)
	assert.Nil(t, profile.Bio)

	// Upserting again replaces the row.
	rec = doJSON(t, h, "POST", "/profiles", alice.AccessToken, handlers.UpsertProfileRequest{
		Username: "alice2",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, "GET", "/profiles/"+alice.UserID, alice.AccessToken, nil)
	decode(t, rec, &profile)
	assert.Equal(t, "alice2", profile.Username)
	assert.Nil(t, profile.FullName)
}

func TestProfileRejections(t *testing.T) {
	h := newTestServer(t)
	alice := signUp(t, h, "alice@example.com")
	bob := signUp(t, h, "bob@example.com")

	t.Run("other account's profile", func(t *testing.T) {
		rec := doJSON(t, h, "POST", "/profiles", alice.AccessToken, handlers.UpsertProfileRequest{
			ID:       bob.UserID,
			Username: "impostor",
		})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("empty username", func(t *testing.T) {
		rec := doJSON(t, h, "POST", "/profiles", alice.AccessToken, handlers.UpsertProfileRequest{
			Username: "   ",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("username too long", func(t *testing.T) {
		rec := doJSON(t, h, "POST", "/profiles", alice.AccessToken, handlers.UpsertProfileRequest{
			Username: strings.Repeat("a", 101),
		})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("malformed profile id", func(t *testing.T) {
		rec := doJSON(t, h, "GET", "/profiles/not-a-uuid", alice.AccessToken, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHealth(t *testing.T) {
	h := newTestServer(t)

	rec := doJSON(t, h, "GET", "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp handlers.HealthResponse
	decode(t, rec, &resp)
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "pass", resp.Checks["database"].Status)
	// No realtime feed configured in this harness.
	assert.Equal(t, "fail", resp.Checks["redis"].Status)
}

func TestRoot(t *testing.T) {
	h := newTestServer(t)

	rec := doJSON(t, h, "GET", "/", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp handlers.RootResponse
	decode(t, rec, &resp)
	assert.Equal(t, "chat-app", resp.Name)
}

func TestSecurityHeaders(t *testing.T) {
	h := newTestServer(t)

	rec := doJSON(t, h, "GET", "/health", "", nil)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}
