package handlers_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bonssss/chat-app/internal/handlers"
	"github.com/bonssss/chat-app/internal/storage"
)

func newTestObjectStore(t *testing.T) *storage.DiskStore {
	t.Helper()
	objects, err := storage.NewDiskStore(t.TempDir(), "http://localhost:8080")
	require.NoError(t, err)
	return objects
}

func upload(t *testing.T, h http.Handler, token, bucket, name string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", "/storage/"+bucket+"/"+name, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/octet-stream")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestUploadAndGetObject(t *testing.T) {
	h := newTestServer(t)
	alice := signUp(t, h, "alice@example.com")

	rec := upload(t, h, alice.AccessToken, "profile-images", "avatar.png", []byte("png bytes"))
	require.Equal(t, http.StatusCreated, rec.Code, "body: %s", rec.Body.String())

	var resp handlers.UploadResponse
	decode(t, rec, &resp)
	assert.Equal(t, "profile-images", resp.Bucket)
	assert.Equal(t, "avatar.png", resp.Name)
	assert.Equal(t, "http://localhost:8080/storage/profile-images/avatar.png", resp.PublicURL)

	// Reads are public.
	req := httptest.NewRequest("GET", "/storage/profile-images/avatar.png", nil)
	get := httptest.NewRecorder()
	h.ServeHTTP(get, req)
	require.Equal(t, http.StatusOK, get.Code)
	assert.Equal(t, "png bytes", get.Body.String())
	assert.Equal(t, "image/png", get.Header().Get("Content-Type"))
	assert.Contains(t, get.Header().Get("Cache-Control"), "max-age")
}

func TestUploadReplacesObject(t *testing.T) {
	h := newTestServer(t)
	alice := signUp(t, h, "alice@example.com")

	require.Equal(t, http.StatusCreated, upload(t, h, alice.AccessToken, "profile-images", "a.jpg", []byte("one")).Code)
	require.Equal(t, http.StatusCreated, upload(t, h, alice.AccessToken, "profile-images", "a.jpg", []byte("two")).Code)

	req := httptest.NewRequest("GET", "/storage/profile-images/a.jpg", nil)
	get := httptest.NewRecorder()
	h.ServeHTTP(get, req)
	assert.Equal(t, "two", get.Body.String())
	assert.Equal(t, "image/jpeg", get.Header().Get("Content-Type"))
}

func TestUploadRequiresAuth(t *testing.T) {
	h := newTestServer(t)

	rec := upload(t, h, "", "profile-images", "avatar.png", []byte("x"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUploadRejections(t *testing.T) {
	h := newTestServer(t)
	alice := signUp(t, h, "alice@example.com")

	t.Run("empty body", func(t *testing.T) {
		rec := upload(t, h, alice.AccessToken, "profile-images", "avatar.png", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid object name", func(t *testing.T) {
		rec := upload(t, h, alice.AccessToken, "profile-images", ".hidden", []byte("x"))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGetObjectMissing(t *testing.T) {
	h := newTestServer(t)

	req := httptest.NewRequest("GET", "/storage/profile-images/nope.png", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
