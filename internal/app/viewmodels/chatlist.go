package viewmodels

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/walkandtalk/walktalk/internal/app/models"
	"github.com/walkandtalk/walktalk/internal/app/repositories"
	"github.com/walkandtalk/walktalk/internal/mvi"
)

// ChatListState is the conversations screen state. IsEmpty is set only after
// a successful load returned nothing, never while loading or errored.
type ChatListState struct {
	Chats     []models.Chat
	IsLoading bool
	IsEmpty   bool
	Error     string
}

// ChatListEffect is the sealed effect set of the chat list screen
type ChatListEffect interface{ isChatListEffect() }

// OpenChat routes the client into a conversation
type OpenChat struct {
	ChatID string
}

func (OpenChat) isChatListEffect() {}

// ChatListViewModel drives the conversations overview with last-message
// previews and per-viewer unread counts.
type ChatListViewModel struct {
	*mvi.Container[ChatListState, ChatListEffect]

	chats    repositories.ChatRepository
	viewerID string
}

// NewChatListViewModel creates the chat list container; chats load once on
// creation.
func NewChatListViewModel(chats repositories.ChatRepository, viewerID string, log zerolog.Logger) *ChatListViewModel {
	vm := &ChatListViewModel{
		chats:    chats,
		viewerID: viewerID,
	}
	vm.Container = mvi.New(
		ChatListState{IsLoading: true},
		mvi.WithLogger[ChatListState, ChatListEffect](log),
		mvi.WithOnCreate(func(ctx context.Context, scope *mvi.Scope[ChatListState, ChatListEffect]) error {
			return vm.load(ctx, scope)
		}),
	)
	return vm
}

// Refresh reloads the chat list
func (vm *ChatListViewModel) Refresh() {
	vm.Intent(vm.load)
}

// SelectChat emits the navigation effect for one conversation
func (vm *ChatListViewModel) SelectChat(chatID string) {
	vm.IntentNow(func(scope *mvi.Scope[ChatListState, ChatListEffect]) {
		scope.PostSideEffect(OpenChat{ChatID: chatID})
	})
}

func (vm *ChatListViewModel) load(ctx context.Context, scope *mvi.Scope[ChatListState, ChatListEffect]) error {
	scope.Reduce(func(s ChatListState) ChatListState {
		s.IsLoading = true
		s.IsEmpty = false
		s.Error = ""
		return s
	})

	chats, err := vm.chats.ChatsForUser(ctx, vm.viewerID)
	if err != nil {
		scope.Reduce(func(s ChatListState) ChatListState {
			s.IsLoading = false
			s.Error = err.Error()
			return s
		})
		return nil
	}

	scope.Reduce(func(s ChatListState) ChatListState {
		s.IsLoading = false
		s.Chats = chats
		s.IsEmpty = len(chats) == 0
		return s
	})
	return nil
}
