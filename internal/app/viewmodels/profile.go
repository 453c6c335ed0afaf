package viewmodels

import (
	"bytes"
	"context"

	"github.com/rs/zerolog"

	"github.com/walkandtalk/walktalk/internal/app/models"
	"github.com/walkandtalk/walktalk/internal/app/repositories"
	"github.com/walkandtalk/walktalk/internal/mvi"
	"github.com/walkandtalk/walktalk/internal/pkg/apperrors"
	"github.com/walkandtalk/walktalk/internal/pkg/filestorage"
)

// ProfileState is the profile screen state. User is nil while loading or when
// the load failed.
type ProfileState struct {
	User      *models.User
	Interests []models.Interest
	IsLoading bool
	IsSaving  bool
	Error     string
}

// ProfileEffect is the sealed effect set of the profile screen
type ProfileEffect interface{ isProfileEffect() }

// ProfileSaved confirms a successful update
type ProfileSaved struct{}

// AvatarUploaded carries the new avatar URL
type AvatarUploaded struct {
	URL string
}

func (ProfileSaved) isProfileEffect()   {}
func (AvatarUploaded) isProfileEffect() {}

// ProfileViewModel drives viewing and editing the signed-in user's profile
type ProfileViewModel struct {
	*mvi.Container[ProfileState, ProfileEffect]

	users    repositories.UserRepository
	lookups  repositories.LookupRepository
	storage  filestorage.FileStorage
	viewerID string
}

// NewProfileViewModel creates the profile container; the profile and the
// interest catalog load once on creation.
func NewProfileViewModel(
	users repositories.UserRepository,
	lookups repositories.LookupRepository,
	storage filestorage.FileStorage,
	viewerID string,
	log zerolog.Logger,
) *ProfileViewModel {
	vm := &ProfileViewModel{
		users:    users,
		lookups:  lookups,
		storage:  storage,
		viewerID: viewerID,
	}
	vm.Container = mvi.New(
		ProfileState{IsLoading: true},
		mvi.WithLogger[ProfileState, ProfileEffect](log),
		mvi.WithOnCreate(func(ctx context.Context, scope *mvi.Scope[ProfileState, ProfileEffect]) error {
			return vm.load(ctx, scope)
		}),
	)
	return vm
}

func (vm *ProfileViewModel) load(ctx context.Context, scope *mvi.Scope[ProfileState, ProfileEffect]) error {
	user, err := vm.users.FindByID(ctx, vm.viewerID)
	if err != nil {
		return vm.fail(scope, err)
	}
	if user == nil {
		return vm.fail(scope, apperrors.ErrUserNotFound)
	}
	interests, err := vm.lookups.Interests(ctx)
	if err != nil {
		return vm.fail(scope, err)
	}

	scope.Reduce(func(s ProfileState) ProfileState {
		s.IsLoading = false
		s.User = user
		s.Interests = interests
		return s
	})
	return nil
}

// SetName edits the display name immediately, before any save round-trip
func (vm *ProfileViewModel) SetName(name string) {
	vm.IntentNow(func(scope *mvi.Scope[ProfileState, ProfileEffect]) {
		scope.Reduce(func(s ProfileState) ProfileState {
			if s.User == nil {
				return s
			}
			edited := *s.User
			edited.Name = name
			s.User = &edited
			return s
		})
	})
}

// SetBio edits the bio immediately
func (vm *ProfileViewModel) SetBio(bio string) {
	vm.IntentNow(func(scope *mvi.Scope[ProfileState, ProfileEffect]) {
		scope.Reduce(func(s ProfileState) ProfileState {
			if s.User == nil {
				return s
			}
			edited := *s.User
			edited.Bio = &bio
			s.User = &edited
			return s
		})
	})
}

// ToggleInterest adds or removes one interest immediately; the selection is
// kept duplicate-free.
func (vm *ProfileViewModel) ToggleInterest(interestID string) {
	vm.IntentNow(func(scope *mvi.Scope[ProfileState, ProfileEffect]) {
		scope.Reduce(func(s ProfileState) ProfileState {
			if s.User == nil {
				return s
			}
			edited := *s.User
			var ids []string
			removed := false
			for _, id := range edited.InterestIDs {
				if id == interestID {
					removed = true
					continue
				}
				ids = append(ids, id)
			}
			if !removed {
				ids = append(ids, interestID)
			}
			edited.InterestIDs = ids
			s.User = &edited
			return s
		})
	})
}

// Save persists the edited profile through the repository
func (vm *ProfileViewModel) Save() {
	vm.Intent(func(ctx context.Context, scope *mvi.Scope[ProfileState, ProfileEffect]) error {
		state := scope.State()
		if state.User == nil {
			return nil
		}
		scope.Reduce(func(s ProfileState) ProfileState {
			s.IsSaving = true
			s.Error = ""
			return s
		})

		updated, err := vm.users.Update(ctx, *state.User)
		if err != nil {
			scope.Reduce(func(s ProfileState) ProfileState {
				s.IsSaving = false
				s.Error = err.Error()
				return s
			})
			return nil
		}

		scope.Reduce(func(s ProfileState) ProfileState {
			s.IsSaving = false
			s.User = updated
			return s
		})
		scope.PostSideEffect(ProfileSaved{})
		return nil
	})
}

// UploadAvatar stores the image and persists the new URL on the profile
func (vm *ProfileViewModel) UploadAvatar(data []byte, filename string) {
	vm.Intent(func(ctx context.Context, scope *mvi.Scope[ProfileState, ProfileEffect]) error {
		state := scope.State()
		if state.User == nil {
			return nil
		}
		scope.Reduce(func(s ProfileState) ProfileState {
			s.IsSaving = true
			s.Error = ""
			return s
		})

		url, err := vm.storage.Save(bytes.NewReader(data), filename, filestorage.AvatarDir)
		if err != nil {
			scope.Reduce(func(s ProfileState) ProfileState {
				s.IsSaving = false
				s.Error = err.Error()
				return s
			})
			return nil
		}

		edited := *state.User
		edited.AvatarURL = &url
		updated, err := vm.users.Update(ctx, edited)
		if err != nil {
			scope.Reduce(func(s ProfileState) ProfileState {
				s.IsSaving = false
				s.Error = err.Error()
				return s
			})
			return nil
		}

		scope.Reduce(func(s ProfileState) ProfileState {
			s.IsSaving = false
			s.User = updated
			return s
		})
		scope.PostSideEffect(AvatarUploaded{URL: url})
		return nil
	})
}

func (vm *ProfileViewModel) fail(scope *mvi.Scope[ProfileState, ProfileEffect], err error) error {
	scope.Reduce(func(s ProfileState) ProfileState {
		s.IsLoading = false
		s.Error = err.Error()
		return s
	})
	return nil
}
