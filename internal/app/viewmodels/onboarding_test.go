package viewmodels

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walkandtalk/walktalk/internal/pkg/prefs"
)

func TestOnboardingStepsAndCompletion(t *testing.T) {
	store := testPrefs(t)
	vm := NewOnboardingViewModel(store, zerolog.Nop())
	defer vm.Close()

	effects := vm.SideEffects(context.Background())

	vm.Next()
	assert.Equal(t, 1, vm.State().Step)
	vm.Back()
	assert.Equal(t, 0, vm.State().Step)
	vm.Back()
	assert.Equal(t, 0, vm.State().Step)

	vm.Next()
	vm.Next()
	vm.Next() // past the last step
	state := vm.State()
	assert.True(t, state.Completed)
	assert.True(t, store.GetBool(prefs.KeyHasCompletedOnboarding))

	select {
	case effect := <-effects:
		_, ok := effect.(OnboardingFinished)
		require.True(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("expected OnboardingFinished effect")
	}
}

func TestOnboardingSkipCompletesImmediately(t *testing.T) {
	store := testPrefs(t)
	vm := NewOnboardingViewModel(store, zerolog.Nop())
	defer vm.Close()

	vm.Skip()
	assert.True(t, vm.State().Completed)
	assert.True(t, store.GetBool(prefs.KeyHasCompletedOnboarding))
}

func TestOnboardingStateSeededFromPrefs(t *testing.T) {
	store := testPrefs(t)
	store.SetBool(prefs.KeyHasCompletedOnboarding, true)

	vm := NewOnboardingViewModel(store, zerolog.Nop())
	defer vm.Close()
	assert.True(t, vm.State().Completed)
}
