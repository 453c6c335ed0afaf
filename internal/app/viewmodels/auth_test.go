package viewmodels

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walkandtalk/walktalk/internal/app/models"
	"github.com/walkandtalk/walktalk/internal/pkg/auth"
	"github.com/walkandtalk/walktalk/internal/pkg/prefs"
)

func testJWTService() *auth.JWTService {
	return auth.NewJWTService(auth.JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  time.Hour,
		RefreshTokenExp: 24 * time.Hour,
		TokenIssuer:     "walktalk-test",
	})
}

func testPrefs(t *testing.T) *prefs.Store {
	t.Helper()
	store, err := prefs.NewStore(filepath.Join(t.TempDir(), "prefs.json"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func newAuthFixture(t *testing.T) (*AuthViewModel, *fakeUserRepo, *prefs.Store) {
	t.Helper()
	users := newFakeUserRepo()
	store := testPrefs(t)
	provider := &fakeIdentityProvider{
		token: "valid-provider-token",
		identity: auth.ProviderIdentity{
			ProviderID: "google-oauth2|12345",
			Email:      "walker@example.com",
			Name:       "Walker",
		},
	}
	vm := NewAuthViewModel(users, testJWTService(), provider, store, zerolog.Nop())
	t.Cleanup(vm.Close)
	return vm, users, store
}

func TestFieldEditsApplySynchronously(t *testing.T) {
	vm, _, _ := newAuthFixture(t)

	vm.SetEmail("walker@example.com")
	vm.SetPassword("hunter22")
	vm.SetName("Walker")
	vm.SetMode(models.UserModeOrganizer)

	state := vm.State()
	assert.Equal(t, "walker@example.com", state.Email)
	assert.Equal(t, "hunter22", state.Password)
	assert.Equal(t, "Walker", state.Name)
	assert.Equal(t, models.UserModeOrganizer, state.Mode)
}

func TestRegisterSignsInAndPersistsToken(t *testing.T) {
	vm, users, store := newAuthFixture(t)
	effects := vm.SideEffects(context.Background())

	vm.SetEmail("walker@example.com")
	vm.SetPassword("hunter22")
	vm.SetName("Walker")
	vm.Register()

	var signedIn SignedIn
	select {
	case effect := <-effects:
		var ok bool
		signedIn, ok = effect.(SignedIn)
		require.True(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("expected SignedIn effect")
	}

	assert.NotEmpty(t, signedIn.AccessToken)
	assert.True(t, signedIn.NeedsOnboarding)

	user, err := users.FindByEmail(context.Background(), "walker@example.com")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, user.ID, signedIn.UserID)
	assert.NotNil(t, user.LastLoginAt)

	token, ok := store.Get(prefs.KeyAccessToken)
	assert.True(t, ok)
	assert.Equal(t, signedIn.AccessToken, token)

	// Password never survives a successful auth
	state := vm.State()
	assert.Empty(t, state.Password)
	assert.False(t, state.IsLoading)
}

func TestSignInRejectsWrongPassword(t *testing.T) {
	vm, users, _ := newAuthFixture(t)

	hash, err := auth.HashPassword("correct-horse")
	require.NoError(t, err)
	_, err = users.Create(context.Background(), models.User{
		Email: "walker@example.com",
		Name:  "Walker",
		Mode:  models.UserModeWalker,
	}, hash)
	require.NoError(t, err)

	vm.SetEmail("walker@example.com")
	vm.SetPassword("wrong")
	vm.SignIn()

	state := waitFor(t, vm.State, func(s AuthState) bool { return s.Error != "" })
	assert.False(t, state.IsLoading)
	assert.Contains(t, state.Error, "invalid credentials")
}

func TestProviderSignInCreatesAccountOnFirstUse(t *testing.T) {
	vm, users, _ := newAuthFixture(t)
	effects := vm.SideEffects(context.Background())

	vm.SignInWithProvider("valid-provider-token")

	select {
	case effect := <-effects:
		signedIn, ok := effect.(SignedIn)
		require.True(t, ok)

		user, err := users.FindByProviderID(context.Background(), "google-oauth2|12345")
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, user.ID, signedIn.UserID)
		assert.Equal(t, "walker@example.com", user.Email)
	case <-time.After(2 * time.Second):
		t.Fatal("expected SignedIn effect")
	}
}

func TestProviderSignInRejectsBadToken(t *testing.T) {
	vm, _, _ := newAuthFixture(t)

	vm.SignInWithProvider("forged")

	state := waitFor(t, vm.State, func(s AuthState) bool { return s.Error != "" })
	assert.Contains(t, state.Error, "identity provider rejected token")
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	vm, users, _ := newAuthFixture(t)

	_, err := users.Create(context.Background(), models.User{
		Email: "walker@example.com",
		Name:  "First",
		Mode:  models.UserModeWalker,
	}, "hash")
	require.NoError(t, err)

	vm.SetEmail("walker@example.com")
	vm.SetPassword("hunter22")
	vm.Register()

	state := waitFor(t, vm.State, func(s AuthState) bool { return s.Error != "" })
	assert.Contains(t, state.Error, "email already exists")
}
