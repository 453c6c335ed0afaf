package prefs

import (
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")

	s, err := NewStore(path, zerolog.Nop())
	require.NoError(t, err)

	s.Set(KeyAccessToken, "tok-123")
	s.SetBool(KeyHasCompletedOnboarding, true)
	require.NoError(t, s.Close())

	reopened, err := NewStore(path, zerolog.Nop())
	require.NoError(t, err)
	defer reopened.Close()

	v, ok := reopened.Get(KeyAccessToken)
	assert.True(t, ok)
	assert.Equal(t, "tok-123", v)
	assert.True(t, reopened.GetBool(KeyHasCompletedOnboarding))
}

func TestStoreDeleteAndMissingKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")

	s, err := NewStore(path, zerolog.Nop())
	require.NoError(t, err)
	defer s.Close()

	_, ok := s.Get(KeyUserMode)
	assert.False(t, ok)
	assert.False(t, s.GetBool(KeyHasCompletedOnboarding))

	s.Set(KeyUserMode, "ORGANIZER")
	s.Delete(KeyUserMode)
	_, ok = s.Get(KeyUserMode)
	assert.False(t, ok)
}

func TestStoreSetAfterCloseIsIgnored(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")

	s, err := NewStore(path, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s.Set(KeyAccessToken, "late")
	_, ok := s.Get(KeyAccessToken)
	assert.False(t, ok)
}

func TestStoreConcurrentSetAndCloseDoesNotPanic(t *testing.T) {
	for i := 0; i < 100; i++ {
		path := filepath.Join(t.TempDir(), fmt.Sprintf("prefs-%d.json", i))
		s, err := NewStore(path, zerolog.Nop())
		require.NoError(t, err)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				s.Set(KeyUserMode, "WALKER")
			}
		}()
		go func() {
			defer wg.Done()
			_ = s.Close()
		}()
		wg.Wait()
	}
}
