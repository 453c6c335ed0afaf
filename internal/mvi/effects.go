package mvi

import (
	"context"
	"sync"
)

// effectQueue is a FIFO buffer with a single active consumer. Posted effects
// are buffered until a consumer attaches and are handed over exactly once, in
// post order. Attaching a new consumer detaches the previous one; whatever it
// had not yet received stays buffered for the next consumer.
type effectQueue[E any] struct {
	mu     sync.Mutex
	buffer []E
	signal chan struct{}
	stop   chan struct{}
	done   chan struct{}
	closed bool
}

func newEffectQueue[E any]() *effectQueue[E] {
	return &effectQueue[E]{signal: make(chan struct{}, 1)}
}

func (q *effectQueue[E]) post(effect E) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.buffer = append(q.buffer, effect)
	q.mu.Unlock()
	select {
	case q.signal <- struct{}{}:
	default:
	}
}

// attach registers ctx's consumer as the active one and returns its channel.
// The previous consumer, if any, is detached and fully drained of in-flight
// work before the new one starts, so the handover cannot reorder or
// duplicate effects. An effect leaves the buffer only at the moment the
// consumer receives it; one taken off the buffer but not yet received is put
// back at the front when the consumer goes away.
func (q *effectQueue[E]) attach(ctx context.Context) <-chan E {
	q.mu.Lock()
	prevStop, prevDone := q.stop, q.done
	q.stop, q.done = nil, nil
	q.mu.Unlock()
	if prevStop != nil {
		close(prevStop)
		<-prevDone
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		out := make(chan E)
		close(out)
		close(done)
		return out
	}
	q.stop = stop
	q.done = done
	q.mu.Unlock()

	out := make(chan E)
	go func() {
		defer close(out)
		defer close(done)
		for {
			q.mu.Lock()
			if q.closed {
				q.mu.Unlock()
				return
			}
			if len(q.buffer) == 0 {
				q.mu.Unlock()
				select {
				case <-ctx.Done():
					return
				case <-stop:
					return
				case <-q.signal:
				}
				continue
			}
			head := q.buffer[0]
			q.buffer = q.buffer[1:]
			q.mu.Unlock()

			select {
			case out <- head:
			case <-ctx.Done():
				q.requeueFront(head)
				return
			case <-stop:
				q.requeueFront(head)
				return
			}
		}
	}()
	return out
}

func (q *effectQueue[E]) requeueFront(effect E) {
	q.mu.Lock()
	q.buffer = append([]E{effect}, q.buffer...)
	q.mu.Unlock()
	select {
	case q.signal <- struct{}{}:
	default:
	}
}

func (q *effectQueue[E]) close() {
	q.mu.Lock()
	q.closed = true
	stop := q.stop
	q.stop = nil
	q.mu.Unlock()
	if stop != nil {
		close(stop)
	}
}
