// Package mvi provides the unidirectional state-container runtime that every
// screen view-model is built on: an immutable state cell, a serial intent
// queue, a reducer contract and a one-shot side-effect channel.
package mvi

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// IntentFunc is a unit of state work submitted to a container. It may read
// the current state through the scope, perform blocking work (repository
// calls) and call Reduce/PostSideEffect any number of times. A returned error
// terminates this intent only; the container keeps running.
type IntentFunc[S, E any] func(ctx context.Context, scope *Scope[S, E]) error

// Option configures a container at construction time.
type Option[S, E any] func(*Container[S, E])

// WithOnCreate registers a hook that runs exactly once, before any externally
// submitted intent is processed. The hook may reduce state, post side effects
// and submit follow-up intents.
func WithOnCreate[S, E any](fn IntentFunc[S, E]) Option[S, E] {
	return func(c *Container[S, E]) {
		c.onCreate = fn
	}
}

// WithLogger sets the logger used to report failed intents.
func WithLogger[S, E any](logger zerolog.Logger) Option[S, E] {
	return func(c *Container[S, E]) {
		c.logger = logger
	}
}

// Container owns a single state cell of type S and a side-effect stream of
// type E. Queued intents execute strictly one at a time in submission order
// on a dedicated worker goroutine; immediate intents apply synchronously on
// the caller. State is always observed fully reduced, never torn.
type Container[S, E any] struct {
	mu        sync.RWMutex
	state     S
	observers map[uint64]chan S
	nextObsID uint64

	effects *effectQueue[E]

	queueMu   sync.Mutex
	queue     []IntentFunc[S, E]
	queueCond chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	onCreate IntentFunc[S, E]
	logger   zerolog.Logger
}

// New creates a container holding initial as the first committed state and
// starts its intent worker.
func New[S, E any](initial S, opts ...Option[S, E]) *Container[S, E] {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Container[S, E]{
		state:     initial,
		observers: make(map[uint64]chan S),
		effects:   newEffectQueue[E](),
		queueCond: make(chan struct{}, 1),
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	go c.run()
	return c
}

// State returns the latest committed state.
func (c *Container[S, E]) State() S {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Intent submits fn to the serial queue. Queued intents never overtake or
// interleave with the observable state transitions of earlier queued intents
// on the same container. Submission after Close is a no-op.
func (c *Container[S, E]) Intent(fn IntentFunc[S, E]) {
	select {
	case <-c.ctx.Done():
		return
	default:
	}
	c.queueMu.Lock()
	c.queue = append(c.queue, fn)
	c.queueMu.Unlock()
	select {
	case c.queueCond <- struct{}{}:
	default:
	}
}

// IntentNow runs fn synchronously on the caller, bypassing the queue. It is
// reserved for pure synchronous state updates (text field echo and the like):
// the state change is committed before IntentNow returns, even while a queued
// intent is in flight. fn must not block.
func (c *Container[S, E]) IntentNow(fn func(scope *Scope[S, E])) {
	select {
	case <-c.ctx.Done():
		return
	default:
	}
	scope := &Scope[S, E]{container: c}
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error().Interface("panic", r).Msg("immediate intent panicked")
		}
	}()
	fn(scope)
}

// Observe returns a hot stream of state snapshots. The first value delivered
// to a new subscriber is the current state at subscribe time; afterwards the
// subscriber only ever sees fresher states, although intermediate snapshots
// may be conflated if it lags. The channel is closed when ctx is done or the
// container is closed.
func (c *Container[S, E]) Observe(ctx context.Context) <-chan S {
	ch := make(chan S, 1)
	c.mu.Lock()
	id := c.nextObsID
	c.nextObsID++
	c.observers[id] = ch
	ch <- c.state
	c.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
		case <-c.ctx.Done():
		}
		c.mu.Lock()
		if cur, ok := c.observers[id]; ok {
			delete(c.observers, id)
			close(cur)
		}
		c.mu.Unlock()
	}()
	return ch
}

// SideEffects attaches the single active side-effect consumer. Effects posted
// while no consumer was attached are flushed first, in post order; each
// effect is delivered at most once. Attaching a new consumer detaches the
// previous one.
func (c *Container[S, E]) SideEffects(ctx context.Context) <-chan E {
	return c.effects.attach(ctx)
}

// Close cancels the in-flight intent cooperatively, abandons pending queued
// intents and closes all observer streams. A reduce that already committed is
// never rolled back; the remaining work of the interrupted intent simply does
// not run.
func (c *Container[S, E]) Close() {
	c.cancel()
	<-c.done
	c.mu.Lock()
	for id, ch := range c.observers {
		delete(c.observers, id)
		close(ch)
	}
	c.mu.Unlock()
	c.effects.close()
}

func (c *Container[S, E]) run() {
	defer close(c.done)
	if c.onCreate != nil {
		c.execute(c.onCreate)
	}
	for {
		fn, ok := c.next()
		if !ok {
			return
		}
		c.execute(fn)
	}
}

func (c *Container[S, E]) next() (IntentFunc[S, E], bool) {
	for {
		select {
		case <-c.ctx.Done():
			return nil, false
		default:
		}
		c.queueMu.Lock()
		if len(c.queue) > 0 {
			fn := c.queue[0]
			c.queue = c.queue[1:]
			c.queueMu.Unlock()
			return fn, true
		}
		c.queueMu.Unlock()
		select {
		case <-c.ctx.Done():
			return nil, false
		case <-c.queueCond:
		}
	}
}

func (c *Container[S, E]) execute(fn IntentFunc[S, E]) {
	scope := &Scope[S, E]{container: c}
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error().Interface("panic", r).Msg("intent panicked")
		}
	}()
	if err := fn(c.ctx, scope); err != nil && c.ctx.Err() == nil {
		c.logger.Error().Err(err).Msg("intent failed")
	}
}

func (c *Container[S, E]) commit(transform func(S) S) {
	c.mu.Lock()
	c.state = transform(c.state)
	next := c.state
	for _, ch := range c.observers {
		// Conflate when the subscriber lags: replace the undelivered
		// snapshot with the fresher one so delivery stays monotonic.
		select {
		case ch <- next:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- next:
			default:
			}
		}
	}
	c.mu.Unlock()
}

// Scope is the view an intent body has of its container.
type Scope[S, E any] struct {
	container *Container[S, E]
}

// State returns the latest committed state, including reduces applied earlier
// within the same intent.
func (s *Scope[S, E]) State() S {
	return s.container.State()
}

// Reduce applies a pure transform to the current state and atomically commits
// the result as the new state, publishing it to all observers. Reduce never
// blocks and may be called multiple times within one intent; each call sees
// the result of the previous one.
func (s *Scope[S, E]) Reduce(transform func(S) S) {
	s.container.commit(transform)
}

// PostSideEffect appends a one-shot effect for the UI consumer. Effects are
// delivered in post order, at most once each, and are buffered while no
// consumer is attached.
func (s *Scope[S, E]) PostSideEffect(effect E) {
	s.container.effects.post(effect)
}

// Intent submits a follow-up queued intent from within an intent body or an
// onCreate hook.
func (s *Scope[S, E]) Intent(fn IntentFunc[S, E]) {
	s.container.Intent(fn)
}
