package models

import "time"

// Profile represents a user's public profile. The ID always equals the
// owning account's ID; a profile row may not exist yet for a valid account.
type Profile struct {
	ID        string     `json:"id"` // Account UUID
	Username  string     `json:"username"`
	FullName  *string    `json:"full_name"`
	AvatarURL *string    `json:"avatar_url"`
	Bio       *string    `json:"bio"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// DisplayName returns the best available human-readable name.
func (p Profile) DisplayName() string {
	if p.FullName != nil && *p.FullName != "" {
		return *p.FullName
	}
	if p.Username != "" {
		return p.Username
	}
	return p.ID
}

// PlaceholderProfile returns the degraded profile used when a counterpart
// cannot be resolved: the raw ID with an "Unknown" handle and no avatar.
func PlaceholderProfile(id string) *Profile {
	return &Profile{ID: id, Username: "Unknown"}
}
