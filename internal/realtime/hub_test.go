package realtime_test

import (
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/walkandtalk/walktalk/internal/realtime"
)

func TestPublishReachesOnlyTopicSubscribers(t *testing.T) {
	hub := realtime.NewHub(zerolog.Nop())

	var mu sync.Mutex
	var got []string
	done := make(chan struct{}, 1)

	unsub := hub.Subscribe(realtime.ChatTopic("c-1"), func(v interface{}) {
		mu.Lock()
		got = append(got, v.(string))
		mu.Unlock()
		done <- struct{}{}
	})
	defer unsub()

	hub.Publish(realtime.ChatTopic("c-2"), "other chat")
	hub.Publish(realtime.ChatTopic("c-1"), "hello")

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("subscriber never invoked")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"hello"}, got)
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	hub := realtime.NewHub(zerolog.Nop())

	unsub := hub.Subscribe(realtime.UserTopic("u-1"), func(interface{}) {})
	assert.Equal(t, 1, hub.SubscriberCount(realtime.UserTopic("u-1")))

	unsub()
	unsub()
	assert.Equal(t, 0, hub.SubscriberCount(realtime.UserTopic("u-1")))

	// Publishing to a topic with no subscribers must not panic.
	hub.Publish(realtime.UserTopic("u-1"), "late")
}
