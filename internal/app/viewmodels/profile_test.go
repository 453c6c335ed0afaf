package viewmodels

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walkandtalk/walktalk/internal/app/models"
	"github.com/walkandtalk/walktalk/internal/pkg/filestorage"
)

func newProfileFixture(t *testing.T) (*ProfileViewModel, *fakeUserRepo, string) {
	t.Helper()
	users := newFakeUserRepo()
	user, err := users.Create(context.Background(), models.User{
		Email:       "walker@example.com",
		Name:        "Walker",
		Mode:        models.UserModeWalker,
		InterestIDs: []string{"i-1"},
	}, "hash")
	require.NoError(t, err)

	storage, err := filestorage.NewLocalStorage(t.TempDir(), "/uploads")
	require.NoError(t, err)

	lookups := &fakeLookupRepo{interests: []models.Interest{
		{ID: "i-1", Name: "Hiking"},
		{ID: "i-2", Name: "Photography"},
	}}

	vm := NewProfileViewModel(users, lookups, storage, user.ID, zerolog.Nop())
	t.Cleanup(vm.Close)
	return vm, users, user.ID
}

func TestProfileLoadsOnCreate(t *testing.T) {
	vm, _, userID := newProfileFixture(t)

	state := waitFor(t, vm.State, func(s ProfileState) bool { return s.User != nil })
	assert.Equal(t, userID, state.User.ID)
	assert.Len(t, state.Interests, 2)
	assert.False(t, state.IsLoading)
}

func TestNameEditAppliesSynchronously(t *testing.T) {
	vm, _, _ := newProfileFixture(t)
	waitFor(t, vm.State, func(s ProfileState) bool { return s.User != nil })

	vm.SetName("Walker Renamed")
	assert.Equal(t, "Walker Renamed", vm.State().User.Name)
}

func TestToggleInterestKeepsSelectionDuplicateFree(t *testing.T) {
	vm, _, _ := newProfileFixture(t)
	waitFor(t, vm.State, func(s ProfileState) bool { return s.User != nil })

	vm.ToggleInterest("i-2")
	assert.Equal(t, []string{"i-1", "i-2"}, vm.State().User.InterestIDs)

	// Toggling again removes, never duplicates
	vm.ToggleInterest("i-2")
	assert.Equal(t, []string{"i-1"}, vm.State().User.InterestIDs)
}

func TestSavePersistsEdits(t *testing.T) {
	vm, users, userID := newProfileFixture(t)
	waitFor(t, vm.State, func(s ProfileState) bool { return s.User != nil })

	effects := vm.SideEffects(context.Background())
	vm.SetName("Walker Renamed")
	vm.Save()

	waitFor(t, vm.State, func(s ProfileState) bool { return !s.IsSaving && s.User.UpdatedAt.After(s.User.CreatedAt) })

	stored, err := users.FindByID(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, "Walker Renamed", stored.Name)

	effect := <-effects
	_, ok := effect.(ProfileSaved)
	assert.True(t, ok)
}

func TestSaveFailureKeepsEditsAndSetsError(t *testing.T) {
	vm, users, _ := newProfileFixture(t)
	waitFor(t, vm.State, func(s ProfileState) bool { return s.User != nil })

	users.mu.Lock()
	users.updateErr = errors.New("connection refused")
	users.mu.Unlock()

	vm.SetName("Walker Renamed")
	vm.Save()

	state := waitFor(t, vm.State, func(s ProfileState) bool { return s.Error != "" })
	assert.False(t, state.IsSaving)
	assert.Equal(t, "Walker Renamed", state.User.Name)
}

func TestUploadAvatarStoresFileAndUpdatesProfile(t *testing.T) {
	vm, users, userID := newProfileFixture(t)
	waitFor(t, vm.State, func(s ProfileState) bool { return s.User != nil })

	effects := vm.SideEffects(context.Background())
	vm.UploadAvatar([]byte("png-bytes"), "me.png")

	state := waitFor(t, vm.State, func(s ProfileState) bool {
		return !s.IsSaving && s.User.AvatarURL != nil
	})
	assert.Contains(t, *state.User.AvatarURL, "/uploads/avatars/")

	stored, err := users.FindByID(context.Background(), userID)
	require.NoError(t, err)
	require.NotNil(t, stored.AvatarURL)
	assert.Equal(t, *state.User.AvatarURL, *stored.AvatarURL)

	effect := <-effects
	uploaded, ok := effect.(AvatarUploaded)
	require.True(t, ok)
	assert.Equal(t, *stored.AvatarURL, uploaded.URL)
}
