package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/bonssss/chat-app/internal/api/middleware"
	"github.com/bonssss/chat-app/internal/metrics"
	"github.com/bonssss/chat-app/internal/storage"
)

// maxUploadBytes caps a single object upload (avatar images).
const maxUploadBytes = 5 << 20

// UploadResponse is the response for a stored object.
type UploadResponse struct {
	Bucket    string `json:"bucket"`
	Name      string `json:"name"`
	PublicURL string `json:"public_url"`
}

// UploadObject stores an object under /storage/{bucket}/{name}. Repeated
// uploads to the same name replace the object (upsert semantics).
func (h *Handler) UploadObject(w http.ResponseWriter, r *http.Request) {
	account := middleware.GetAccountFromContext(r.Context())
	if account == nil {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	bucket := chi.URLParam(r, "bucket")
	name := chi.URLParam(r, "name")

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxUploadBytes))
	if err != nil {
		h.Error(w, http.StatusRequestEntityTooLarge, "upload too large")
		return
	}
	if len(data) == 0 {
		h.Error(w, http.StatusBadRequest, "empty upload")
		return
	}

	if err := h.objects.Put(bucket, name, data); err != nil {
		if errors.Is(err, storage.ErrInvalidName) {
			h.Error(w, http.StatusBadRequest, "invalid bucket or object name")
			return
		}
		h.logger.Error().Err(err).Str("bucket", bucket).Str("name", name).Msg("failed to store object")
		h.Error(w, http.StatusInternalServerError, "failed to store object")
		return
	}

	metrics.ObjectUploads.Inc()
	h.JSON(w, http.StatusCreated, UploadResponse{
		Bucket:    bucket,
		Name:      name,
		PublicURL: h.objects.PublicURL(bucket, name),
	})
}

// GetObject serves an object publicly. Avatars must be readable without
// auth since their URLs are embedded in profiles.
func (h *Handler) GetObject(w http.ResponseWriter, r *http.Request) {
	bucket := chi.URLParam(r, "bucket")
	name := chi.URLParam(r, "name")

	data, err := h.objects.Get(bucket, name)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrInvalidName) {
			h.Error(w, http.StatusNotFound, "object not found")
			return
		}
		h.logger.Error().Err(err).Str("bucket", bucket).Str("name", name).Msg("failed to read object")
		h.Error(w, http.StatusInternalServerError, "failed to read object")
		return
	}

	w.Header().Set("Content-Type", contentTypeFor(name))
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func contentTypeFor(name string) string {
	switch {
	case strings.HasSuffix(name, ".png"):
		return "image/png"
	case strings.HasSuffix(name, ".jpg"), strings.HasSuffix(name, ".jpeg"):
		return "image/jpeg"
	case strings.HasSuffix(name, ".gif"):
		return "image/gif"
	case strings.HasSuffix(name, ".webp"):
		return "image/webp"
	}
	return "application/octet-stream"
}
