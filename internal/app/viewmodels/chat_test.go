package viewmodels

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walkandtalk/walktalk/internal/app/models"
	"github.com/walkandtalk/walktalk/internal/realtime"
)

func chatFixture(t *testing.T) (*fakeChatRepo, *fakeMessageRepo, *realtime.Hub, string) {
	t.Helper()
	chats := newFakeChatRepo()
	messages := newFakeMessageRepo()
	hub := realtime.NewHub(zerolog.Nop())
	chat, err := chats.CreatePrivateChat(context.Background(), "u-1", "u-2")
	require.NoError(t, err)
	return chats, messages, hub, chat.ID
}

func TestChatLoadFiltersViewerTombstones(t *testing.T) {
	chats, messages, hub, chatID := chatFixture(t)
	messages.messages = []models.Message{
		{ID: "m-1", ChatID: chatID, SenderID: "u-2", Content: "hello", CreatedAt: time.Now()},
		{ID: "m-2", ChatID: chatID, SenderID: "u-2", Content: "hidden for u-1", DeletedBy: []string{"u-1"}, CreatedAt: time.Now()},
	}

	vm := NewChatViewModel(chats, messages, hub, chatID, "u-1", zerolog.Nop())
	defer vm.Close()

	state := waitFor(t, vm.State, func(s ChatState) bool { return !s.IsLoading })
	require.Len(t, state.Messages, 1)
	assert.Equal(t, "m-1", state.Messages[0].ID)

	// The other participant still sees both
	other := NewChatViewModel(chats, messages, hub, chatID, "u-2", zerolog.Nop())
	defer other.Close()
	otherState := waitFor(t, other.State, func(s ChatState) bool { return !s.IsLoading })
	assert.Len(t, otherState.Messages, 2)
}

func TestChatRejectsNonParticipant(t *testing.T) {
	chats, messages, hub, chatID := chatFixture(t)

	vm := NewChatViewModel(chats, messages, hub, chatID, "intruder", zerolog.Nop())
	defer vm.Close()

	state := waitFor(t, vm.State, func(s ChatState) bool { return s.Error != "" })
	assert.False(t, state.IsLoading)
	assert.Empty(t, state.Messages)
}

func TestOptimisticSendReconcilesTempID(t *testing.T) {
	chats, messages, hub, chatID := chatFixture(t)

	vm := NewChatViewModel(chats, messages, hub, chatID, "u-1", zerolog.Nop())
	defer vm.Close()
	waitFor(t, vm.State, func(s ChatState) bool { return !s.IsLoading })

	effects := vm.SideEffects(context.Background())
	vm.Send("on my way", "temp-1")

	// The optimistic copy is visible synchronously, before the ack
	immediate := vm.State()
	require.NotEmpty(t, immediate.Messages)
	last := immediate.Messages[len(immediate.Messages)-1]
	require.NotNil(t, last.TempID)
	assert.Equal(t, "temp-1", *last.TempID)

	state := waitFor(t, vm.State, func(s ChatState) bool {
		return len(s.Messages) == 1 && s.Messages[0].ID != ""
	})
	require.NotNil(t, state.Messages[0].TempID)
	assert.Equal(t, "temp-1", *state.Messages[0].TempID)

	select {
	case effect := <-effects:
		acked, ok := effect.(MessageAcked)
		require.True(t, ok)
		assert.Equal(t, "temp-1", acked.TempID)
		assert.Equal(t, state.Messages[0].ID, acked.MessageID)
	case <-time.After(2 * time.Second):
		t.Fatal("expected MessageAcked effect")
	}
}

func TestFailedSendRemovesPlaceholder(t *testing.T) {
	chats, messages, hub, chatID := chatFixture(t)
	messages.sendErr = errors.New("connection reset")

	vm := NewChatViewModel(chats, messages, hub, chatID, "u-1", zerolog.Nop())
	defer vm.Close()
	waitFor(t, vm.State, func(s ChatState) bool { return !s.IsLoading })

	effects := vm.SideEffects(context.Background())
	vm.Send("lost", "temp-9")

	state := waitFor(t, vm.State, func(s ChatState) bool { return s.Error != "" })
	assert.Empty(t, state.Messages)

	select {
	case effect := <-effects:
		failed, ok := effect.(MessageFailed)
		require.True(t, ok)
		assert.Equal(t, "temp-9", failed.TempID)
	case <-time.After(2 * time.Second):
		t.Fatal("expected MessageFailed effect")
	}
}

func TestIncomingMessagesAppendViaHub(t *testing.T) {
	chats, messages, hub, chatID := chatFixture(t)

	receiver := NewChatViewModel(chats, messages, hub, chatID, "u-1", zerolog.Nop())
	defer receiver.Close()
	sender := NewChatViewModel(chats, messages, hub, chatID, "u-2", zerolog.Nop())
	defer sender.Close()
	waitFor(t, receiver.State, func(s ChatState) bool { return !s.IsLoading })
	waitFor(t, sender.State, func(s ChatState) bool { return !s.IsLoading })

	sender.Send("see you there", "temp-2")

	state := waitFor(t, receiver.State, func(s ChatState) bool { return len(s.Messages) == 1 })
	assert.Equal(t, "see you there", state.Messages[0].Content)
	assert.Equal(t, "u-2", state.Messages[0].SenderID)
}

func TestDeleteForMeHidesLocallyAndPersists(t *testing.T) {
	chats, messages, hub, chatID := chatFixture(t)
	messages.messages = []models.Message{
		{ID: "m-1", ChatID: chatID, SenderID: "u-2", Content: "hello", CreatedAt: time.Now()},
	}

	vm := NewChatViewModel(chats, messages, hub, chatID, "u-1", zerolog.Nop())
	defer vm.Close()
	waitFor(t, vm.State, func(s ChatState) bool { return len(s.Messages) == 1 })

	vm.DeleteForMe("m-1")
	waitFor(t, vm.State, func(s ChatState) bool { return len(s.Messages) == 0 })

	stored, err := messages.MessageByID(context.Background(), "m-1")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.True(t, stored.DeletedFor("u-1"))
	assert.False(t, stored.DeletedFor("u-2"))
}

func TestCloseDetachesRealtimeSubscription(t *testing.T) {
	chats, messages, hub, chatID := chatFixture(t)

	vm := NewChatViewModel(chats, messages, hub, chatID, "u-1", zerolog.Nop())
	waitFor(t, vm.State, func(s ChatState) bool { return !s.IsLoading })
	assert.Equal(t, 1, hub.SubscriberCount(realtime.ChatTopic(chatID)))

	vm.Close()
	assert.Equal(t, 0, hub.SubscriberCount(realtime.ChatTopic(chatID)))
	// Closing twice must not panic
	assert.NotPanics(t, func() { vm.unsubscribe() })
}

func TestSetMutedRoundTrips(t *testing.T) {
	chats, messages, hub, chatID := chatFixture(t)

	vm := NewChatViewModel(chats, messages, hub, chatID, "u-1", zerolog.Nop())
	defer vm.Close()
	waitFor(t, vm.State, func(s ChatState) bool { return !s.IsLoading })

	vm.SetMuted(true)
	waitFor(t, vm.State, func(s ChatState) bool { return s.IsMuted })

	participant, err := chats.Participant(context.Background(), chatID, "u-1")
	require.NoError(t, err)
	require.NotNil(t, participant)
	assert.True(t, participant.IsMuted)
}
