package viewmodel

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bonssss/chat-app/internal/backend/backendtest"
	"github.com/bonssss/chat-app/internal/models"
)

func strPtr(s string) *string { return &s }

func TestProfileEditorLoad(t *testing.T) {
	fake := backendtest.New(selfID, "self@example.com")
	fake.ProfileRows[selfID] = models.Profile{
		ID:       selfID,
		Username: "self",
		FullName: strPtr("Self Person"),
		Bio:      strPtr("hello"),
	}

	vm := NewProfileEditor(fake, *fake.Session(), zerolog.Nop())
	require.NoError(t, vm.Load(context.Background()))

	assert.Equal(t, "self", vm.Username)
	assert.Equal(t, "Self Person", vm.FullName)
	assert.Equal(t, "hello", vm.Bio)
	assert.Empty(t, vm.AvatarURL)
}

func TestProfileEditorLoadAbsentRow(t *testing.T) {
	fake := backendtest.New(selfID, "self@example.com")

	vm := NewProfileEditor(fake, *fake.Session(), zerolog.Nop())
	require.NoError(t, vm.Load(context.Background()))

	// A default is synthesized from the account but nothing is persisted
	// until an explicit save.
	require.NotNil(t, vm.Profile())
	assert.Equal(t, selfID, vm.Profile().ID)
	assert.Equal(t, "self@example.com", vm.Profile().Username)
	assert.Equal(t, 0, fake.UpsertCalls)
}

func TestProfileEditorSave(t *testing.T) {
	fake := backendtest.New(selfID, "self@example.com")

	vm := NewProfileEditor(fake, *fake.Session(), zerolog.Nop())
	ctx := context.Background()
	require.NoError(t, vm.Load(ctx))

	vm.BeginEdit()
	require.True(t, vm.Editing())
	vm.Username = "  newhandle  "
	vm.FullName = " New Name "
	vm.Bio = ""
	require.NoError(t, vm.Save(ctx))

	require.Equal(t, 1, fake.UpsertCalls)
	saved := fake.ProfileRows[selfID]
	assert.Equal(t, "newhandle", saved.Username)
	require.NotNil(t, saved.FullName)
	assert.Equal(t, "New Name", *saved.FullName)
	assert.Nil(t, saved.Bio)
	assert.Nil(t, saved.AvatarURL)

	assert.False(t, vm.Editing())
	assert.Equal(t, "newhandle", vm.Profile().Username)
}

func TestProfileEditorSaveEmptyUsername(t *testing.T) {
	fake := backendtest.New(selfID, "self@example.com")

	vm := NewProfileEditor(fake, *fake.Session(), zerolog.Nop())
	require.NoError(t, vm.Load(context.Background()))

	vm.BeginEdit()
	vm.Username = "   "
	assert.ErrorIs(t, vm.Save(context.Background()), ErrUsernameRequired)
	assert.Equal(t, 0, fake.UpsertCalls)
	assert.True(t, vm.Editing())
}

func TestProfileEditorSaveFailureKeepsForm(t *testing.T) {
	fake := backendtest.New(selfID, "self@example.com")
	fake.UpsertErr = errors.New("boom")

	vm := NewProfileEditor(fake, *fake.Session(), zerolog.Nop())
	require.NoError(t, vm.Load(context.Background()))

	vm.BeginEdit()
	vm.Username = "wanted"
	require.Error(t, vm.Save(context.Background()))
	assert.True(t, vm.Editing())
	assert.Equal(t, "wanted", vm.Username)
}

func TestProfileEditorCancelEdit(t *testing.T) {
	fake := backendtest.New(selfID, "self@example.com")
	fake.ProfileRows[selfID] = models.Profile{ID: selfID, Username: "self"}

	vm := NewProfileEditor(fake, *fake.Session(), zerolog.Nop())
	require.NoError(t, vm.Load(context.Background()))

	vm.BeginEdit()
	vm.Username = "discarded"
	vm.CancelEdit()
	assert.False(t, vm.Editing())

	// Re-entering edit mode reseeds the form from the saved profile.
	vm.BeginEdit()
	assert.Equal(t, "self", vm.Username)
}

func TestProfileEditorUpdateAvatar(t *testing.T) {
	fake := backendtest.New(selfID, "self@example.com")

	vm := NewProfileEditor(fake, *fake.Session(), zerolog.Nop())
	ctx := context.Background()
	require.NoError(t, vm.Load(ctx))

	vm.BeginEdit()
	require.NoError(t, vm.UpdateAvatar(ctx, []byte("png bytes"), ".png"))
	require.Equal(t, 1, fake.UploadCalls)

	// One object, named <account>-<millis>.png in the avatar bucket.
	require.Len(t, fake.Objects, 1)
	nameRe := regexp.MustCompile(fmt.Sprintf(`^profile-images/%s-\d+\.png$`, selfID))
	for key, data := range fake.Objects {
		assert.Regexp(t, nameRe, key)
		assert.Equal(t, []byte("png bytes"), data)
	}

	// The adopted URL carries a cache-busting timestamp.
	urlRe := regexp.MustCompile(fmt.Sprintf(`^https://storage\.test/profile-images/%s-\d+\.png\?t=\d+$`, selfID))
	assert.Regexp(t, urlRe, vm.AvatarURL)
}

func TestProfileEditorUpdateAvatarDefaultExtension(t *testing.T) {
	fake := backendtest.New(selfID, "self@example.com")

	vm := NewProfileEditor(fake, *fake.Session(), zerolog.Nop())
	ctx := context.Background()
	require.NoError(t, vm.Load(ctx))

	require.NoError(t, vm.UpdateAvatar(ctx, []byte("x"), ""))
	for key := range fake.Objects {
		assert.Regexp(t, `\.jpg$`, key)
	}
}

func TestProfileEditorUpdateAvatarUploadError(t *testing.T) {
	fake := backendtest.New(selfID, "self@example.com")
	fake.UploadErr = errors.New("storage down")

	vm := NewProfileEditor(fake, *fake.Session(), zerolog.Nop())
	ctx := context.Background()
	require.NoError(t, vm.Load(ctx))

	require.Error(t, vm.UpdateAvatar(ctx, []byte("x"), "png"))
	assert.Empty(t, vm.AvatarURL)
}

func TestProfileEditorSavePersistsAvatar(t *testing.T) {
	fake := backendtest.New(selfID, "self@example.com")

	vm := NewProfileEditor(fake, *fake.Session(), zerolog.Nop())
	ctx := context.Background()
	require.NoError(t, vm.Load(ctx))

	vm.BeginEdit()
	vm.Username = "self"
	require.NoError(t, vm.UpdateAvatar(ctx, []byte("x"), "png"))
	require.NoError(t, vm.Save(ctx))

	saved := fake.ProfileRows[selfID]
	require.NotNil(t, saved.AvatarURL)
	assert.Contains(t, *saved.AvatarURL, "?t=")
}
