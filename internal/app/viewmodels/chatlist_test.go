package viewmodels

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatListLoadsViewersChatsOnly(t *testing.T) {
	chats := newFakeChatRepo()
	_, err := chats.CreatePrivateChat(context.Background(), "u-1", "u-2")
	require.NoError(t, err)
	_, err = chats.CreatePrivateChat(context.Background(), "u-3", "u-4")
	require.NoError(t, err)

	vm := NewChatListViewModel(chats, "u-1", zerolog.Nop())
	defer vm.Close()

	state := waitFor(t, vm.State, func(s ChatListState) bool { return !s.IsLoading })
	require.Len(t, state.Chats, 1)
	assert.Contains(t, state.Chats[0].ParticipantIDs, "u-1")
	assert.False(t, state.IsEmpty)
}

func TestChatListShowsLoadingBeforeFirstLoadCompletes(t *testing.T) {
	chats := newFakeChatRepo()
	_, err := chats.CreatePrivateChat(context.Background(), "u-1", "u-2")
	require.NoError(t, err)
	gate := make(chan struct{})
	chats.listGate = gate

	vm := NewChatListViewModel(chats, "u-1", zerolog.Nop())
	defer vm.Close()

	// While the load is in flight the list must report loading, never a
	// premature empty state.
	state := vm.State()
	assert.True(t, state.IsLoading)
	assert.False(t, state.IsEmpty)
	assert.Empty(t, state.Chats)

	close(gate)
	state = waitFor(t, vm.State, func(s ChatListState) bool { return !s.IsLoading })
	require.Len(t, state.Chats, 1)
	assert.False(t, state.IsEmpty)
}

func TestChatListEmptyStateAfterSuccessfulLoad(t *testing.T) {
	vm := NewChatListViewModel(newFakeChatRepo(), "u-1", zerolog.Nop())
	defer vm.Close()

	state := waitFor(t, vm.State, func(s ChatListState) bool { return !s.IsLoading })
	assert.True(t, state.IsEmpty)
	assert.Empty(t, state.Error)
}

func TestSelectChatEmitsNavigationEffect(t *testing.T) {
	chats := newFakeChatRepo()
	chat, err := chats.CreatePrivateChat(context.Background(), "u-1", "u-2")
	require.NoError(t, err)

	vm := NewChatListViewModel(chats, "u-1", zerolog.Nop())
	defer vm.Close()
	effects := vm.SideEffects(context.Background())

	vm.SelectChat(chat.ID)

	select {
	case effect := <-effects:
		open, ok := effect.(OpenChat)
		require.True(t, ok)
		assert.Equal(t, chat.ID, open.ChatID)
	case <-time.After(2 * time.Second):
		t.Fatal("expected OpenChat effect")
	}
}
