package viewmodels

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/walkandtalk/walktalk/internal/app/models"
	"github.com/walkandtalk/walktalk/internal/app/repositories"
	"github.com/walkandtalk/walktalk/internal/mvi"
)

const (
	searchDebounce = 300 * time.Millisecond
	searchPageSize = 20
)

// SearchState is the search screen state. IsEmpty is set only when a
// completed search matched nothing.
type SearchState struct {
	Query     string
	Events    []models.Event
	Users     []models.User
	IsLoading bool
	IsEmpty   bool
	Error     string
}

// SearchEffect is the sealed effect set of the search screen
type SearchEffect interface{ isSearchEffect() }

// OpenEvent routes the client to an event's detail view
type OpenEvent struct {
	EventID string
}

func (OpenEvent) isSearchEffect() {}

// SearchViewModel drives combined event and user search. Query edits apply
// immediately; the actual lookup is debounced and stale results from
// superseded queries are discarded.
type SearchViewModel struct {
	*mvi.Container[SearchState, SearchEffect]

	feed     repositories.FeedRepository
	users    repositories.UserRepository
	debounce time.Duration

	generation atomic.Int64
}

// NewSearchViewModel creates the search screen container
func NewSearchViewModel(
	feed repositories.FeedRepository,
	users repositories.UserRepository,
	log zerolog.Logger,
) *SearchViewModel {
	vm := &SearchViewModel{
		feed:     feed,
		users:    users,
		debounce: searchDebounce,
	}
	vm.Container = mvi.New(
		SearchState{},
		mvi.WithLogger[SearchState, SearchEffect](log),
	)
	return vm
}

// SetQuery records the keystroke immediately and schedules a debounced
// search. Older scheduled searches become no-ops.
func (vm *SearchViewModel) SetQuery(query string) {
	gen := vm.generation.Add(1)

	vm.IntentNow(func(scope *mvi.Scope[SearchState, SearchEffect]) {
		scope.Reduce(func(s SearchState) SearchState {
			s.Query = query
			return s
		})
	})

	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		vm.IntentNow(func(scope *mvi.Scope[SearchState, SearchEffect]) {
			scope.Reduce(func(s SearchState) SearchState {
				s.Events = nil
				s.Users = nil
				s.IsLoading = false
				s.IsEmpty = false
				return s
			})
		})
		return
	}

	time.AfterFunc(vm.debounce, func() {
		if vm.generation.Load() != gen {
			return
		}
		vm.search(trimmed, gen)
	})
}

// SearchNow skips the debounce, e.g. for an explicit submit
func (vm *SearchViewModel) SearchNow() {
	query := strings.TrimSpace(vm.State().Query)
	if query == "" {
		return
	}
	vm.search(query, vm.generation.Add(1))
}

// SelectEvent emits the navigation effect for one result
func (vm *SearchViewModel) SelectEvent(eventID string) {
	vm.IntentNow(func(scope *mvi.Scope[SearchState, SearchEffect]) {
		scope.PostSideEffect(OpenEvent{EventID: eventID})
	})
}

func (vm *SearchViewModel) search(query string, gen int64) {
	vm.Intent(func(ctx context.Context, scope *mvi.Scope[SearchState, SearchEffect]) error {
		if vm.generation.Load() != gen {
			return nil
		}
		scope.Reduce(func(s SearchState) SearchState {
			s.IsLoading = true
			s.IsEmpty = false
			s.Error = ""
			return s
		})

		events, err := vm.feed.SearchEvents(ctx, query, searchPageSize)
		if err != nil {
			return vm.fail(scope, err)
		}
		users, err := vm.users.Search(ctx, query, searchPageSize)
		if err != nil {
			return vm.fail(scope, err)
		}

		if vm.generation.Load() != gen {
			// A newer query took over while we were fetching
			return nil
		}
		scope.Reduce(func(s SearchState) SearchState {
			s.IsLoading = false
			s.Events = events
			s.Users = users
			s.IsEmpty = len(events) == 0 && len(users) == 0
			return s
		})
		return nil
	})
}

func (vm *SearchViewModel) fail(scope *mvi.Scope[SearchState, SearchEffect], err error) error {
	scope.Reduce(func(s SearchState) SearchState {
		s.IsLoading = false
		s.Error = err.Error()
		return s
	})
	return nil
}
