package viewmodel

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/bonssss/chat-app/internal/backend"
	"github.com/bonssss/chat-app/internal/models"
)

// avatarBucket is the object storage bucket holding profile images.
const avatarBucket = "profile-images"

// ErrUsernameRequired means a save was attempted with an empty handle.
var ErrUsernameRequired = errors.New("username is required")

// ProfileEditor is the view-model behind the profile screen: it loads the
// account's own profile, holds the edit form's state, and persists via
// upsert.
type ProfileEditor struct {
	client  backend.Client
	session backend.Session
	logger  zerolog.Logger

	mu      sync.Mutex
	profile *models.Profile
	editing bool

	// Form state, valid while editing.
	Username  string
	FullName  string
	Bio       string
	AvatarURL string
}

// NewProfileEditor creates the profile view-model for the session's
// account.
func NewProfileEditor(client backend.Client, session backend.Session, logger zerolog.Logger) *ProfileEditor {
	return &ProfileEditor{
		client:  client,
		session: session,
		logger:  logger,
	}
}

// Load fetches the account's profile. When no row exists yet, an unsaved
// default seeded from the account email is synthesized; it is only
// persisted by an explicit Save.
func (p *ProfileEditor) Load(ctx context.Context) error {
	profile, err := p.client.Profiles().Get(ctx, p.session.UserID)
	if err != nil {
		p.logger.Error().Err(err).Msg("failed to load profile")
		return err
	}
	if profile == nil {
		profile = &models.Profile{
			ID:       p.session.UserID,
			Username: p.session.Email,
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.profile = profile
	p.Username = profile.Username
	p.FullName = deref(profile.FullName)
	p.Bio = deref(profile.Bio)
	p.AvatarURL = deref(profile.AvatarURL)
	return nil
}

// Profile returns the last loaded or saved profile.
func (p *ProfileEditor) Profile() *models.Profile {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.profile
}

// Editing reports whether the form is in edit mode.
func (p *ProfileEditor) Editing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.editing
}

// BeginEdit enters edit mode, seeding the form from the current profile.
func (p *ProfileEditor) BeginEdit() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.editing = true
	if p.profile != nil {
		p.Username = p.profile.Username
		p.FullName = deref(p.profile.FullName)
		p.Bio = deref(p.profile.Bio)
		p.AvatarURL = deref(p.profile.AvatarURL)
	}
}

// CancelEdit leaves edit mode, discarding unsaved form state.
func (p *ProfileEditor) CancelEdit() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.editing = false
}

// UpdateAvatar uploads a newly picked image and adopts its public URL.
// The object name carries the profile ID and the current time so repeated
// uploads never collide, and the adopted URL gets a timestamp query
// parameter so the fresh image is not served from a stale cache.
func (p *ProfileEditor) UpdateAvatar(ctx context.Context, data []byte, ext string) error {
	ext = strings.TrimPrefix(ext, ".")
	if ext == "" {
		ext = "jpg"
	}

	now := time.Now().UnixMilli()
	name := fmt.Sprintf("%s-%d.%s", p.session.UserID, now, ext)

	publicURL, err := p.client.Storage().Upload(ctx, avatarBucket, name, data)
	if err != nil {
		p.logger.Error().Err(err).Msg("failed to upload avatar")
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.AvatarURL = fmt.Sprintf("%s?t=%d", publicURL, now)
	return nil
}

// Save validates and upserts the profile. An empty handle is rejected
// without a remote call. On success the in-memory profile is replaced and
// edit mode ends; on failure the form state is preserved and edit mode
// continues.
func (p *ProfileEditor) Save(ctx context.Context) error {
	p.mu.Lock()
	username := strings.TrimSpace(p.Username)
	fullName := strings.TrimSpace(p.FullName)
	bio := strings.TrimSpace(p.Bio)
	avatarURL := p.AvatarURL
	p.mu.Unlock()

	if username == "" {
		return ErrUsernameRequired
	}

	record := &models.Profile{
		ID:        p.session.UserID,
		Username:  username,
		FullName:  optional(fullName),
		AvatarURL: optional(avatarURL),
		Bio:       optional(bio),
	}

	saved, err := p.client.Profiles().Upsert(ctx, record)
	if err != nil {
		p.logger.Error().Err(err).Msg("failed to save profile")
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.profile = saved
	p.editing = false
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
