// Package realtime provides the in-process publish/subscribe hub behind the
// repositories' subscription operations: new chat messages and notifications
// fan out through it to live screen sessions.
package realtime

import (
	"sync"

	"github.com/rs/zerolog"
)

// Topic identifies a fan-out channel, e.g. "chat:<id>" or "user:<id>".
type Topic string

// ChatTopic returns the topic carrying new messages for a chat.
func ChatTopic(chatID string) Topic { return Topic("chat:" + chatID) }

// UserTopic returns the topic carrying notifications for a user.
func UserTopic(userID string) Topic { return Topic("user:" + userID) }

// Hub fans published values out to topic subscribers. Subscribers receive on
// buffered channels; a subscriber that cannot keep up misses values at the
// hub level rather than stalling publishers — ordered buffering is the state
// container's job, not the hub's.
type Hub struct {
	mu     sync.RWMutex
	topics map[Topic]map[uint64]chan interface{}
	nextID uint64
	logger zerolog.Logger
}

// NewHub creates an empty hub.
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		topics: make(map[Topic]map[uint64]chan interface{}),
		logger: logger,
	}
}

// Subscribe registers fn for every value published to topic and returns an
// unsubscribe function. Unsubscribing is idempotent; fn is invoked from a
// dedicated goroutine, never from the publisher.
func (h *Hub) Subscribe(topic Topic, fn func(interface{})) func() {
	ch := make(chan interface{}, 16)

	h.mu.Lock()
	id := h.nextID
	h.nextID++
	subs, ok := h.topics[topic]
	if !ok {
		subs = make(map[uint64]chan interface{})
		h.topics[topic] = subs
	}
	subs[id] = ch
	h.mu.Unlock()

	go func() {
		for v := range ch {
			fn(v)
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			if subs, ok := h.topics[topic]; ok {
				if cur, ok := subs[id]; ok {
					delete(subs, id)
					close(cur)
					if len(subs) == 0 {
						delete(h.topics, topic)
					}
				}
			}
			h.mu.Unlock()
		})
	}
}

// Publish delivers v to every subscriber of topic without blocking.
func (h *Hub) Publish(topic Topic, v interface{}) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.topics[topic] {
		select {
		case ch <- v:
		default:
			h.logger.Warn().Str("topic", string(topic)).Msg("Dropped value for slow subscriber")
		}
	}
}

// SubscriberCount returns the number of active subscribers on topic.
func (h *Hub) SubscriberCount(topic Topic) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}
