package crypto

import (
	"regexp"

	"github.com/google/uuid"
)

// uuidRegex matches the canonical 8-4-4-4-12 hex form.
var uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// NewUUIDv7 generates a time-ordered UUID v7.
func NewUUIDv7() uuid.UUID {
	return uuid.Must(uuid.NewV7())
}

// IsUUID reports whether s is a canonically formatted UUID string.
func IsUUID(s string) bool {
	return uuidRegex.MatchString(s)
}
