package viewmodels

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/walkandtalk/walktalk/internal/app/models"
	"github.com/walkandtalk/walktalk/internal/app/repositories"
	"github.com/walkandtalk/walktalk/internal/mvi"
)

const notificationsPageSize = 50

// NotificationsState is the notifications screen state
type NotificationsState struct {
	Notifications []models.Notification
	UnreadCount   int
	IsLoading     bool
	IsEmpty       bool
	Error         string
}

// NotificationsEffect is the sealed effect set of the notifications screen
type NotificationsEffect interface{ isNotificationsEffect() }

// NotificationArrived signals a live notification, e.g. for a badge update
type NotificationArrived struct {
	Notification models.Notification
}

func (NotificationArrived) isNotificationsEffect() {}

// NotificationsViewModel drives the notification list with live delivery
type NotificationsViewModel struct {
	*mvi.Container[NotificationsState, NotificationsEffect]

	notifications repositories.NotificationRepository
	viewerID      string

	unsubscribe func()
}

// NewNotificationsViewModel creates the notifications container, loads the
// backlog and subscribes to live notifications for the viewer.
func NewNotificationsViewModel(
	notifications repositories.NotificationRepository,
	viewerID string,
	log zerolog.Logger,
) *NotificationsViewModel {
	vm := &NotificationsViewModel{
		notifications: notifications,
		viewerID:      viewerID,
	}
	vm.Container = mvi.New(
		NotificationsState{IsLoading: true},
		mvi.WithLogger[NotificationsState, NotificationsEffect](log),
		mvi.WithOnCreate(func(ctx context.Context, scope *mvi.Scope[NotificationsState, NotificationsEffect]) error {
			return vm.load(ctx, scope)
		}),
	)

	vm.unsubscribe = notifications.Subscribe(viewerID, func(n models.Notification) {
		vm.Intent(func(ctx context.Context, scope *mvi.Scope[NotificationsState, NotificationsEffect]) error {
			scope.Reduce(func(s NotificationsState) NotificationsState {
				s.Notifications = append([]models.Notification{n}, s.Notifications...)
				s.UnreadCount++
				s.IsEmpty = false
				return s
			})
			scope.PostSideEffect(NotificationArrived{Notification: n})
			return nil
		})
	})
	return vm
}

// Close detaches the live subscription before shutting the container down
func (vm *NotificationsViewModel) Close() {
	vm.unsubscribe()
	vm.Container.Close()
}

// Refresh reloads the notification backlog
func (vm *NotificationsViewModel) Refresh() {
	vm.Intent(vm.load)
}

func (vm *NotificationsViewModel) load(ctx context.Context, scope *mvi.Scope[NotificationsState, NotificationsEffect]) error {
	scope.Reduce(func(s NotificationsState) NotificationsState {
		s.IsLoading = true
		s.IsEmpty = false
		s.Error = ""
		return s
	})

	list, err := vm.notifications.ForUser(ctx, vm.viewerID, notificationsPageSize)
	if err != nil {
		scope.Reduce(func(s NotificationsState) NotificationsState {
			s.IsLoading = false
			s.Error = err.Error()
			return s
		})
		return nil
	}

	unread := 0
	for _, n := range list {
		if !n.IsRead {
			unread++
		}
	}
	scope.Reduce(func(s NotificationsState) NotificationsState {
		s.IsLoading = false
		s.Notifications = list
		s.UnreadCount = unread
		s.IsEmpty = len(list) == 0
		return s
	})
	return nil
}

// MarkRead marks one notification read
func (vm *NotificationsViewModel) MarkRead(notificationID string) {
	vm.Intent(func(ctx context.Context, scope *mvi.Scope[NotificationsState, NotificationsEffect]) error {
		if err := vm.notifications.MarkRead(ctx, notificationID, vm.viewerID); err != nil {
			scope.Reduce(func(s NotificationsState) NotificationsState {
				s.Error = err.Error()
				return s
			})
			return nil
		}
		scope.Reduce(func(s NotificationsState) NotificationsState {
			out := make([]models.Notification, len(s.Notifications))
			copy(out, s.Notifications)
			for i, n := range out {
				if n.ID == notificationID && !n.IsRead {
					out[i].IsRead = true
					s.UnreadCount--
				}
			}
			s.Notifications = out
			return s
		})
		return nil
	})
}

// MarkAllRead marks every notification read
func (vm *NotificationsViewModel) MarkAllRead() {
	vm.Intent(func(ctx context.Context, scope *mvi.Scope[NotificationsState, NotificationsEffect]) error {
		if err := vm.notifications.MarkAllRead(ctx, vm.viewerID); err != nil {
			scope.Reduce(func(s NotificationsState) NotificationsState {
				s.Error = err.Error()
				return s
			})
			return nil
		}
		scope.Reduce(func(s NotificationsState) NotificationsState {
			out := make([]models.Notification, len(s.Notifications))
			copy(out, s.Notifications)
			for i := range out {
				out[i].IsRead = true
			}
			s.Notifications = out
			s.UnreadCount = 0
			return s
		})
		return nil
	})
}
