package viewmodels

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/walkandtalk/walktalk/internal/app/models"
)

func TestQueryEditsApplySynchronously(t *testing.T) {
	vm := NewSearchViewModel(newFakeFeedRepo(), newFakeUserRepo(), zerolog.Nop())
	defer vm.Close()

	vm.SetQuery("sun")
	assert.Equal(t, "sun", vm.State().Query)
	vm.SetQuery("sunset")
	assert.Equal(t, "sunset", vm.State().Query)
}

func TestSearchNowReturnsResults(t *testing.T) {
	feed := newFakeFeedRepo()
	feed.searchEvents = []models.Event{
		{ID: "e-1", Title: "Sunset walk", Status: "ACTIVE", CreatedAt: time.Now()},
	}
	vm := NewSearchViewModel(feed, newFakeUserRepo(), zerolog.Nop())
	defer vm.Close()

	vm.SetQuery("sunset")
	vm.SearchNow()

	state := waitFor(t, vm.State, func(s SearchState) bool { return len(s.Events) == 1 })
	assert.False(t, state.IsLoading)
	assert.False(t, state.IsEmpty)
	assert.Equal(t, "Sunset walk", state.Events[0].Title)
}

func TestSearchSetsEmptyOnZeroResults(t *testing.T) {
	vm := NewSearchViewModel(newFakeFeedRepo(), newFakeUserRepo(), zerolog.Nop())
	defer vm.Close()

	vm.SetQuery("nothing matches this")
	vm.SearchNow()

	state := waitFor(t, vm.State, func(s SearchState) bool { return s.IsEmpty })
	assert.False(t, state.IsLoading)
	assert.Empty(t, state.Events)
	assert.Empty(t, state.Users)
}

func TestDebouncedSearchRunsAfterTypingStops(t *testing.T) {
	feed := newFakeFeedRepo()
	feed.searchEvents = []models.Event{
		{ID: "e-1", Title: "Sunset walk", Status: "ACTIVE", CreatedAt: time.Now()},
	}
	vm := NewSearchViewModel(feed, newFakeUserRepo(), zerolog.Nop())
	vm.debounce = 10 * time.Millisecond
	defer vm.Close()

	vm.SetQuery("s")
	vm.SetQuery("su")
	vm.SetQuery("sunset")

	state := waitFor(t, vm.State, func(s SearchState) bool { return len(s.Events) == 1 })
	assert.Equal(t, "sunset", state.Query)
}

func TestClearingQueryResetsResults(t *testing.T) {
	feed := newFakeFeedRepo()
	feed.searchEvents = []models.Event{
		{ID: "e-1", Title: "Sunset walk", Status: "ACTIVE", CreatedAt: time.Now()},
	}
	vm := NewSearchViewModel(feed, newFakeUserRepo(), zerolog.Nop())
	defer vm.Close()

	vm.SetQuery("sunset")
	vm.SearchNow()
	waitFor(t, vm.State, func(s SearchState) bool { return len(s.Events) == 1 })

	vm.SetQuery("")
	state := vm.State()
	assert.Empty(t, state.Events)
	assert.False(t, state.IsEmpty)
	assert.False(t, state.IsLoading)
}
