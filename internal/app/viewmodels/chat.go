package viewmodels

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/walkandtalk/walktalk/internal/app/models"
	"github.com/walkandtalk/walktalk/internal/app/repositories"
	"github.com/walkandtalk/walktalk/internal/mvi"
	"github.com/walkandtalk/walktalk/internal/pkg/apperrors"
	"github.com/walkandtalk/walktalk/internal/realtime"
)

const chatPageSize = 50

// ChatState is one open conversation. Messages are already filtered to what
// the viewer may see; a message the viewer deleted never appears here.
type ChatState struct {
	ChatID    string
	Messages  []models.Message
	IsMuted   bool
	IsLoading bool
	Error     string
}

// ChatEffect is the sealed effect set of the conversation screen
type ChatEffect interface{ isChatEffect() }

// MessageAcked reports that an optimistic send was persisted; TempID links it
// back to the client's local copy.
type MessageAcked struct {
	TempID    string
	MessageID string
}

// MessageFailed reports that an optimistic send did not persist
type MessageFailed struct {
	TempID string
	Reason string
}

func (MessageAcked) isChatEffect()  {}
func (MessageFailed) isChatEffect() {}

// ChatViewModel drives one conversation: history, optimistic sends,
// per-viewer deletes, mute and read state, and live incoming messages.
type ChatViewModel struct {
	*mvi.Container[ChatState, ChatEffect]

	chats    repositories.ChatRepository
	messages repositories.MessageRepository
	hub      *realtime.Hub
	viewerID string
	chatID   string

	unsubscribe func()
}

// NewChatViewModel opens a conversation. It verifies membership, loads
// history and subscribes to live messages for the chat.
func NewChatViewModel(
	chats repositories.ChatRepository,
	messages repositories.MessageRepository,
	hub *realtime.Hub,
	chatID, viewerID string,
	log zerolog.Logger,
) *ChatViewModel {
	vm := &ChatViewModel{
		chats:    chats,
		messages: messages,
		hub:      hub,
		viewerID: viewerID,
		chatID:   chatID,
	}
	vm.Container = mvi.New(
		ChatState{ChatID: chatID, IsLoading: true},
		mvi.WithLogger[ChatState, ChatEffect](log),
		mvi.WithOnCreate(func(ctx context.Context, scope *mvi.Scope[ChatState, ChatEffect]) error {
			return vm.load(ctx, scope)
		}),
	)

	vm.unsubscribe = hub.Subscribe(realtime.ChatTopic(chatID), func(payload interface{}) {
		message, ok := payload.(models.Message)
		if !ok || message.SenderID == viewerID {
			return
		}
		vm.Intent(func(ctx context.Context, scope *mvi.Scope[ChatState, ChatEffect]) error {
			if message.DeletedFor(vm.viewerID) {
				return nil
			}
			scope.Reduce(func(s ChatState) ChatState {
				s.Messages = append(append([]models.Message{}, s.Messages...), message)
				return s
			})
			return nil
		})
	})
	return vm
}

// Close detaches the live subscription before shutting the container down
func (vm *ChatViewModel) Close() {
	vm.unsubscribe()
	vm.Container.Close()
}

func (vm *ChatViewModel) load(ctx context.Context, scope *mvi.Scope[ChatState, ChatEffect]) error {
	participant, err := vm.chats.Participant(ctx, vm.chatID, vm.viewerID)
	if err != nil {
		return vm.fail(scope, err)
	}
	if participant == nil {
		return vm.fail(scope, apperrors.ErrNotChatParticipant)
	}

	history, err := vm.messages.MessagesForViewer(ctx, vm.chatID, vm.viewerID, chatPageSize)
	if err != nil {
		return vm.fail(scope, err)
	}

	scope.Reduce(func(s ChatState) ChatState {
		s.IsLoading = false
		s.Messages = history
		s.IsMuted = participant.IsMuted
		return s
	})
	return nil
}

// Send appends the message locally right away, then persists it. The
// placeholder carries the client temp id and is swapped for the stored record
// when the insert acks.
func (vm *ChatViewModel) Send(content, tempID string) {
	optimistic := models.Message{
		TempID:    &tempID,
		ChatID:    vm.chatID,
		SenderID:  vm.viewerID,
		Content:   content,
		CreatedAt: time.Now(),
	}
	vm.IntentNow(func(scope *mvi.Scope[ChatState, ChatEffect]) {
		scope.Reduce(func(s ChatState) ChatState {
			s.Messages = append(append([]models.Message{}, s.Messages...), optimistic)
			return s
		})
	})

	vm.Intent(func(ctx context.Context, scope *mvi.Scope[ChatState, ChatEffect]) error {
		stored, err := vm.messages.Send(ctx, optimistic)
		if err != nil {
			scope.Reduce(func(s ChatState) ChatState {
				s.Messages = removeByTempID(s.Messages, tempID)
				s.Error = err.Error()
				return s
			})
			scope.PostSideEffect(MessageFailed{TempID: tempID, Reason: err.Error()})
			return nil
		}

		scope.Reduce(func(s ChatState) ChatState {
			s.Messages = replaceByTempID(s.Messages, tempID, *stored)
			return s
		})
		scope.PostSideEffect(MessageAcked{TempID: tempID, MessageID: stored.ID})
		vm.hub.Publish(realtime.ChatTopic(vm.chatID), *stored)
		return nil
	})
}

// DeleteForMe hides a message from this viewer only
func (vm *ChatViewModel) DeleteForMe(messageID string) {
	vm.Intent(func(ctx context.Context, scope *mvi.Scope[ChatState, ChatEffect]) error {
		if err := vm.messages.DeleteForUser(ctx, messageID, vm.viewerID); err != nil {
			scope.Reduce(func(s ChatState) ChatState {
				s.Error = err.Error()
				return s
			})
			return nil
		}
		scope.Reduce(func(s ChatState) ChatState {
			kept := make([]models.Message, 0, len(s.Messages))
			for _, m := range s.Messages {
				if m.ID != messageID {
					kept = append(kept, m)
				}
			}
			s.Messages = kept
			return s
		})
		return nil
	})
}

// SetMuted flips notification muting for this viewer
func (vm *ChatViewModel) SetMuted(muted bool) {
	vm.Intent(func(ctx context.Context, scope *mvi.Scope[ChatState, ChatEffect]) error {
		if err := vm.chats.SetMuted(ctx, vm.chatID, vm.viewerID, muted); err != nil {
			scope.Reduce(func(s ChatState) ChatState {
				s.Error = err.Error()
				return s
			})
			return nil
		}
		scope.Reduce(func(s ChatState) ChatState {
			s.IsMuted = muted
			return s
		})
		return nil
	})
}

// MarkRead advances the viewer's read watermark to now
func (vm *ChatViewModel) MarkRead() {
	vm.Intent(func(ctx context.Context, scope *mvi.Scope[ChatState, ChatEffect]) error {
		return vm.chats.MarkRead(ctx, vm.chatID, vm.viewerID, time.Now())
	})
}

func (vm *ChatViewModel) fail(scope *mvi.Scope[ChatState, ChatEffect], err error) error {
	scope.Reduce(func(s ChatState) ChatState {
		s.IsLoading = false
		s.Error = err.Error()
		return s
	})
	return nil
}

func removeByTempID(messages []models.Message, tempID string) []models.Message {
	kept := make([]models.Message, 0, len(messages))
	for _, m := range messages {
		if m.TempID != nil && *m.TempID == tempID {
			continue
		}
		kept = append(kept, m)
	}
	return kept
}

func replaceByTempID(messages []models.Message, tempID string, stored models.Message) []models.Message {
	out := make([]models.Message, len(messages))
	copy(out, messages)
	for i, m := range out {
		if m.TempID != nil && *m.TempID == tempID {
			out[i] = stored
			return out
		}
	}
	// Placeholder already gone (e.g. reloaded mid-flight); append instead
	return append(out, stored)
}
