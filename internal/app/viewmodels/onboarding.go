package viewmodels

import (
	"github.com/rs/zerolog"

	"github.com/walkandtalk/walktalk/internal/mvi"
	"github.com/walkandtalk/walktalk/internal/pkg/prefs"
)

// OnboardingTotalSteps is the number of intro screens
const OnboardingTotalSteps = 3

// OnboardingState tracks progress through the intro flow
type OnboardingState struct {
	Step      int
	Completed bool
}

// OnboardingEffect is the sealed effect set of the onboarding screen
type OnboardingEffect interface{ isOnboardingEffect() }

// OnboardingFinished routes the client to the main screen
type OnboardingFinished struct{}

func (OnboardingFinished) isOnboardingEffect() {}

// OnboardingViewModel drives the intro flow. Step changes are immediate;
// completion persists the flag so the flow never shows again.
type OnboardingViewModel struct {
	*mvi.Container[OnboardingState, OnboardingEffect]

	prefs *prefs.Store
}

// NewOnboardingViewModel creates the onboarding screen container
func NewOnboardingViewModel(store *prefs.Store, log zerolog.Logger) *OnboardingViewModel {
	vm := &OnboardingViewModel{prefs: store}
	vm.Container = mvi.New(
		OnboardingState{Completed: store.GetBool(prefs.KeyHasCompletedOnboarding)},
		mvi.WithLogger[OnboardingState, OnboardingEffect](log),
	)
	return vm
}

// Next advances one step, completing the flow past the last one
func (vm *OnboardingViewModel) Next() {
	vm.IntentNow(func(scope *mvi.Scope[OnboardingState, OnboardingEffect]) {
		state := scope.State()
		if state.Step >= OnboardingTotalSteps-1 {
			vm.complete(scope)
			return
		}
		scope.Reduce(func(s OnboardingState) OnboardingState {
			s.Step++
			return s
		})
	})
}

// Back steps backwards, stopping at the first screen
func (vm *OnboardingViewModel) Back() {
	vm.IntentNow(func(scope *mvi.Scope[OnboardingState, OnboardingEffect]) {
		scope.Reduce(func(s OnboardingState) OnboardingState {
			if s.Step > 0 {
				s.Step--
			}
			return s
		})
	})
}

// Skip completes the flow from any step
func (vm *OnboardingViewModel) Skip() {
	vm.IntentNow(func(scope *mvi.Scope[OnboardingState, OnboardingEffect]) {
		vm.complete(scope)
	})
}

func (vm *OnboardingViewModel) complete(scope *mvi.Scope[OnboardingState, OnboardingEffect]) {
	vm.prefs.SetBool(prefs.KeyHasCompletedOnboarding, true)
	scope.Reduce(func(s OnboardingState) OnboardingState {
		s.Completed = true
		return s
	})
	scope.PostSideEffect(OnboardingFinished{})
}
