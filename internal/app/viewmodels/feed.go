package viewmodels

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/walkandtalk/walktalk/internal/app/models"
	"github.com/walkandtalk/walktalk/internal/app/repositories"
	"github.com/walkandtalk/walktalk/internal/mvi"
)

const feedPageSize = 50

// FeedState is the home feed screen state. Items holds events and
// announcements merged newest-first.
type FeedState struct {
	Items          []models.FeedItem
	JoinedEventIDs map[string]bool
	IsLoading      bool
	Error          string
}

// FeedEffect is the sealed effect set of the feed screen
type FeedEffect interface{ isFeedEffect() }

// EventCreated confirms a successful event creation
type EventCreated struct {
	EventID string
}

// FeedToast surfaces a transient message
type FeedToast struct {
	Message string
}

func (EventCreated) isFeedEffect() {}
func (FeedToast) isFeedEffect()    {}

// FeedViewModel drives the merged home feed
type FeedViewModel struct {
	*mvi.Container[FeedState, FeedEffect]

	feed     repositories.FeedRepository
	reports  repositories.ReportRepository
	viewerID string
}

// NewFeedViewModel creates the feed screen container; the feed loads once on
// creation.
func NewFeedViewModel(
	feed repositories.FeedRepository,
	reports repositories.ReportRepository,
	viewerID string,
	log zerolog.Logger,
) *FeedViewModel {
	vm := &FeedViewModel{
		feed:     feed,
		reports:  reports,
		viewerID: viewerID,
	}
	vm.Container = mvi.New(
		FeedState{IsLoading: true, JoinedEventIDs: map[string]bool{}},
		mvi.WithLogger[FeedState, FeedEffect](log),
		mvi.WithOnCreate(func(ctx context.Context, scope *mvi.Scope[FeedState, FeedEffect]) error {
			return vm.load(ctx, scope)
		}),
	)
	return vm
}

// Refresh reloads the feed
func (vm *FeedViewModel) Refresh() {
	vm.Intent(vm.load)
}

func (vm *FeedViewModel) load(ctx context.Context, scope *mvi.Scope[FeedState, FeedEffect]) error {
	scope.Reduce(func(s FeedState) FeedState {
		s.IsLoading = true
		s.Error = ""
		return s
	})

	items, err := vm.feed.Feed(ctx, feedPageSize)
	if err != nil {
		scope.Reduce(func(s FeedState) FeedState {
			s.IsLoading = false
			s.Error = err.Error()
			return s
		})
		return nil
	}

	scope.Reduce(func(s FeedState) FeedState {
		s.IsLoading = false
		s.Items = items
		return s
	})
	return nil
}

// CreateEvent publishes a new event. On failure the list stays exactly as it
// was; only the error field changes.
func (vm *FeedViewModel) CreateEvent(event models.Event) {
	vm.Intent(func(ctx context.Context, scope *mvi.Scope[FeedState, FeedEffect]) error {
		scope.Reduce(func(s FeedState) FeedState {
			s.IsLoading = true
			s.Error = ""
			return s
		})

		event.CreatorID = vm.viewerID
		created, err := vm.feed.CreateEvent(ctx, event)
		if err != nil {
			scope.Reduce(func(s FeedState) FeedState {
				s.IsLoading = false
				s.Error = err.Error()
				return s
			})
			return nil
		}

		scope.Reduce(func(s FeedState) FeedState {
			s.IsLoading = false
			s.Items = append([]models.FeedItem{*created}, s.Items...)
			return s
		})
		scope.PostSideEffect(EventCreated{EventID: created.ID})
		return nil
	})
}

// CreateAnnouncement publishes a new announcement
func (vm *FeedViewModel) CreateAnnouncement(a models.Announcement) {
	vm.Intent(func(ctx context.Context, scope *mvi.Scope[FeedState, FeedEffect]) error {
		scope.Reduce(func(s FeedState) FeedState {
			s.IsLoading = true
			s.Error = ""
			return s
		})

		a.CreatorID = vm.viewerID
		created, err := vm.feed.CreateAnnouncement(ctx, a)
		if err != nil {
			scope.Reduce(func(s FeedState) FeedState {
				s.IsLoading = false
				s.Error = err.Error()
				return s
			})
			return nil
		}

		scope.Reduce(func(s FeedState) FeedState {
			s.IsLoading = false
			s.Items = append([]models.FeedItem{*created}, s.Items...)
			return s
		})
		return nil
	})
}

// JoinEvent adds the viewer to an event's participants
func (vm *FeedViewModel) JoinEvent(eventID string) {
	vm.Intent(func(ctx context.Context, scope *mvi.Scope[FeedState, FeedEffect]) error {
		if err := vm.feed.JoinEvent(ctx, eventID, vm.viewerID); err != nil {
			scope.Reduce(func(s FeedState) FeedState {
				s.Error = err.Error()
				return s
			})
			return nil
		}
		scope.Reduce(func(s FeedState) FeedState {
			s.JoinedEventIDs = cloneSet(s.JoinedEventIDs)
			s.JoinedEventIDs[eventID] = true
			return s
		})
		scope.PostSideEffect(FeedToast{Message: "Joined event"})
		return nil
	})
}

// LeaveEvent removes the viewer from an event's participants
func (vm *FeedViewModel) LeaveEvent(eventID string) {
	vm.Intent(func(ctx context.Context, scope *mvi.Scope[FeedState, FeedEffect]) error {
		if err := vm.feed.LeaveEvent(ctx, eventID, vm.viewerID); err != nil {
			scope.Reduce(func(s FeedState) FeedState {
				s.Error = err.Error()
				return s
			})
			return nil
		}
		scope.Reduce(func(s FeedState) FeedState {
			s.JoinedEventIDs = cloneSet(s.JoinedEventIDs)
			delete(s.JoinedEventIDs, eventID)
			return s
		})
		return nil
	})
}

// Report files an abuse report against a feed item or user
func (vm *FeedViewModel) Report(contentType models.ReportedContentType, contentID, reason string) {
	vm.Intent(func(ctx context.Context, scope *mvi.Scope[FeedState, FeedEffect]) error {
		_, err := vm.reports.Create(ctx, models.Report{
			ReporterID:  vm.viewerID,
			ContentType: contentType,
			ContentID:   contentID,
			Reason:      reason,
		})
		if err != nil {
			scope.Reduce(func(s FeedState) FeedState {
				s.Error = err.Error()
				return s
			})
			return nil
		}
		scope.PostSideEffect(FeedToast{Message: "Report submitted"})
		return nil
	})
}

// cloneSet copies before mutation so committed states stay immutable
func cloneSet(in map[string]bool) map[string]bool {
	out := make(map[string]bool, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
