// Package viewmodels hosts the per-screen state containers. Each screen has a
// State struct, a sealed set of one-shot Effect variants and intent methods on
// a view-model wrapping an mvi.Container. Loading, error and content are
// mutually exclusive in every State.
package viewmodels

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/walkandtalk/walktalk/internal/app/models"
	"github.com/walkandtalk/walktalk/internal/app/repositories"
	"github.com/walkandtalk/walktalk/internal/mvi"
	"github.com/walkandtalk/walktalk/internal/pkg/apperrors"
	"github.com/walkandtalk/walktalk/internal/pkg/auth"
	"github.com/walkandtalk/walktalk/internal/pkg/prefs"
)

// AuthState is the sign-in / registration screen state
type AuthState struct {
	Email     string
	Password  string
	Name      string
	Mode      models.UserMode
	IsLoading bool
	Error     string
}

// AuthEffect is the sealed effect set of the auth screen
type AuthEffect interface{ isAuthEffect() }

// SignedIn navigates past the auth screen. NeedsOnboarding tells the client
// whether to route into onboarding first.
type SignedIn struct {
	UserID          string
	AccessToken     string
	NeedsOnboarding bool
}

// AuthToast surfaces a transient message
type AuthToast struct {
	Message string
}

func (SignedIn) isAuthEffect()  {}
func (AuthToast) isAuthEffect() {}

// AuthViewModel drives sign-in, registration and provider sign-in
type AuthViewModel struct {
	*mvi.Container[AuthState, AuthEffect]

	users    repositories.UserRepository
	tokens   *auth.JWTService
	provider auth.IdentityProvider
	prefs    *prefs.Store
}

// NewAuthViewModel creates the auth screen container
func NewAuthViewModel(
	users repositories.UserRepository,
	tokens *auth.JWTService,
	provider auth.IdentityProvider,
	store *prefs.Store,
	log zerolog.Logger,
) *AuthViewModel {
	vm := &AuthViewModel{
		users:    users,
		tokens:   tokens,
		provider: provider,
		prefs:    store,
	}
	vm.Container = mvi.New(
		AuthState{Mode: models.UserModeWalker},
		mvi.WithLogger[AuthState, AuthEffect](log),
	)
	return vm
}

// Field edits are immediate: the keystroke must be visible to the next read
// even while a queued sign-in is running.

func (vm *AuthViewModel) SetEmail(email string) {
	vm.IntentNow(func(scope *mvi.Scope[AuthState, AuthEffect]) {
		scope.Reduce(func(s AuthState) AuthState {
			s.Email = email
			return s
		})
	})
}

func (vm *AuthViewModel) SetPassword(password string) {
	vm.IntentNow(func(scope *mvi.Scope[AuthState, AuthEffect]) {
		scope.Reduce(func(s AuthState) AuthState {
			s.Password = password
			return s
		})
	})
}

func (vm *AuthViewModel) SetName(name string) {
	vm.IntentNow(func(scope *mvi.Scope[AuthState, AuthEffect]) {
		scope.Reduce(func(s AuthState) AuthState {
			s.Name = name
			return s
		})
	})
}

func (vm *AuthViewModel) SetMode(mode models.UserMode) {
	vm.IntentNow(func(scope *mvi.Scope[AuthState, AuthEffect]) {
		scope.Reduce(func(s AuthState) AuthState {
			s.Mode = mode
			return s
		})
	})
}

// SignIn authenticates with email and password
func (vm *AuthViewModel) SignIn() {
	vm.Intent(func(ctx context.Context, scope *mvi.Scope[AuthState, AuthEffect]) error {
		state := scope.State()
		scope.Reduce(func(s AuthState) AuthState {
			s.IsLoading = true
			s.Error = ""
			return s
		})

		hash, err := vm.users.PasswordHashByEmail(ctx, state.Email)
		if err != nil {
			return vm.fail(scope, err)
		}
		if hash == "" || !auth.CheckPassword(hash, state.Password) {
			return vm.fail(scope, apperrors.ErrInvalidCredentials)
		}

		user, err := vm.users.FindByEmail(ctx, state.Email)
		if err != nil {
			return vm.fail(scope, err)
		}
		if user == nil {
			return vm.fail(scope, apperrors.ErrUserNotFound)
		}

		return vm.finishSignIn(ctx, scope, user)
	})
}

// Register creates an account then signs it in
func (vm *AuthViewModel) Register() {
	vm.Intent(func(ctx context.Context, scope *mvi.Scope[AuthState, AuthEffect]) error {
		state := scope.State()
		scope.Reduce(func(s AuthState) AuthState {
			s.IsLoading = true
			s.Error = ""
			return s
		})

		existing, err := vm.users.FindByEmail(ctx, state.Email)
		if err != nil {
			return vm.fail(scope, err)
		}
		if existing != nil {
			return vm.fail(scope, apperrors.ErrEmailAlreadyExists)
		}

		hash, err := auth.HashPassword(state.Password)
		if err != nil {
			return vm.fail(scope, err)
		}

		user, err := vm.users.Create(ctx, models.User{
			Email: state.Email,
			Name:  state.Name,
			Mode:  state.Mode,
		}, hash)
		if err != nil {
			return vm.fail(scope, err)
		}

		return vm.finishSignIn(ctx, scope, user)
	})
}

// SignInWithProvider authenticates through the external identity provider,
// creating the account on first sign-in.
func (vm *AuthViewModel) SignInWithProvider(providerToken string) {
	vm.Intent(func(ctx context.Context, scope *mvi.Scope[AuthState, AuthEffect]) error {
		scope.Reduce(func(s AuthState) AuthState {
			s.IsLoading = true
			s.Error = ""
			return s
		})

		identity, err := vm.provider.Verify(ctx, providerToken)
		if err != nil {
			return vm.fail(scope, fmt.Errorf("%w: %v", apperrors.ErrProviderRejected, err))
		}

		user, err := vm.users.FindByProviderID(ctx, identity.ProviderID)
		if err != nil {
			return vm.fail(scope, err)
		}
		if user == nil {
			created := models.User{
				Email:      identity.Email,
				Name:       identity.Name,
				ProviderID: &identity.ProviderID,
				Mode:       scope.State().Mode,
			}
			if identity.AvatarURL != "" {
				created.AvatarURL = &identity.AvatarURL
			}
			user, err = vm.users.Create(ctx, created, "")
			if err != nil {
				return vm.fail(scope, err)
			}
		}

		return vm.finishSignIn(ctx, scope, user)
	})
}

func (vm *AuthViewModel) finishSignIn(ctx context.Context, scope *mvi.Scope[AuthState, AuthEffect], user *models.User) error {
	accessToken, _, _, _, err := vm.tokens.GenerateTokenPair(user)
	if err != nil {
		return vm.fail(scope, err)
	}
	if err := vm.users.TouchLastLogin(ctx, user.ID); err != nil {
		return vm.fail(scope, err)
	}

	vm.prefs.Set(prefs.KeyAccessToken, accessToken)
	vm.prefs.Set(prefs.KeyUserMode, string(user.Mode))

	scope.Reduce(func(s AuthState) AuthState {
		s.IsLoading = false
		s.Password = ""
		return s
	})
	scope.PostSideEffect(SignedIn{
		UserID:          user.ID,
		AccessToken:     accessToken,
		NeedsOnboarding: !vm.prefs.GetBool(prefs.KeyHasCompletedOnboarding),
	})
	return nil
}

// fail records the failure in state; the intent itself completes normally so
// the container does not double-log it.
func (vm *AuthViewModel) fail(scope *mvi.Scope[AuthState, AuthEffect], err error) error {
	scope.Reduce(func(s AuthState) AuthState {
		s.IsLoading = false
		s.Error = err.Error()
		return s
	})
	return nil
}
