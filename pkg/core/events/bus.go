package events

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Handler processes an incoming event.
type Handler func(context.Context, Event)

// Bus routes events to subscribers while preserving publish order and
// isolating subscriber failures. A single dispatch loop keeps ordering
// deterministic; per-subscriber buffers prevent one slow consumer from
// blocking the step, at the cost of dropping events for that consumer.
type Bus struct {
	queue   chan Event
	subsMu  sync.RWMutex
	subs    map[EventType]map[int64]*subscription
	closed  atomic.Bool
	nextID  atomic.Int64
	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	bufSize int
}

type subscription struct {
	id      int64
	handler Handler
	ch      chan Event
	done    chan struct{}
}

const (
	defaultQueueDepth    = 64
	defaultSubscriberBuf = 16
)

// BusOption configures a Bus.
type BusOption func(*Bus)

// WithBufferSize adjusts the per-subscriber fan-out buffer. Minimum 1.
func WithBufferSize(size int) BusOption {
	return func(b *Bus) {
		if size < 1 {
			size = 1
		}
		b.bufSize = size
	}
}

// NewBus constructs an event bus and starts its dispatch loop immediately.
func NewBus(opts ...BusOption) *Bus {
	ctx, cancel := context.WithCancel(context.Background())
	b := &Bus{
		queue:   make(chan Event, defaultQueueDepth),
		subs:    make(map[EventType]map[int64]*subscription),
		baseCtx: ctx,
		cancel:  cancel,
		bufSize: defaultSubscriberBuf,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.wg.Add(1)
	go b.dispatch()
	return b
}

// Subscribe registers a handler for the given event type and returns an
// unsubscribe function.
func (b *Bus) Subscribe(t EventType, h Handler) func() {
	if b == nil || h == nil || b.closed.Load() {
		return func() {}
	}
	sub := &subscription{
		id:      b.nextID.Add(1),
		handler: h,
		ch:      make(chan Event, b.bufSize),
		done:    make(chan struct{}),
	}

	b.subsMu.Lock()
	byID := b.subs[t]
	if byID == nil {
		byID = make(map[int64]*subscription)
		b.subs[t] = byID
	}
	byID[sub.id] = sub
	b.subsMu.Unlock()

	b.wg.Add(1)
	go sub.run(b.baseCtx, &b.wg)

	return func() {
		b.subsMu.Lock()
		if byID, ok := b.subs[t]; ok {
			if _, ok := byID[sub.id]; ok {
				delete(byID, sub.id)
				close(sub.done)
			}
		}
		b.subsMu.Unlock()
	}
}

// Publish enqueues an event for delivery. Missing ids and timestamps are
// filled in. Returns false when the bus is closed or the central queue is
// saturated; events are never delivered out of order.
func (b *Bus) Publish(e Event) bool {
	if b == nil || b.closed.Load() {
		return false
	}
	if err := e.Validate(); err != nil {
		log.Printf("events: dropping invalid event: %v", err)
		return false
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	// The queue channel is never closed; shutdown is signaled through
	// baseCtx so a publish racing Close cannot send on a closed channel.
	select {
	case <-b.baseCtx.Done():
		return false
	case b.queue <- e:
		return true
	default:
		log.Printf("events: queue saturated, dropping %s event %s", e.Type, e.ID)
		return false
	}
}

// Close stops dispatching and waits for in-flight handlers to drain. Events
// already queued before Close are still delivered.
func (b *Bus) Close() {
	if b == nil || !b.closed.CompareAndSwap(false, true) {
		return
	}
	b.cancel()
	b.wg.Wait()
}

func (b *Bus) dispatch() {
	defer b.wg.Done()
	for {
		select {
		case <-b.baseCtx.Done():
			// Drain what was already queued before shutdown.
			for {
				select {
				case e := <-b.queue:
					b.fanOut(e)
				default:
					b.stopSubscriptions()
					return
				}
			}
		case e := <-b.queue:
			b.fanOut(e)
		}
	}
}

func (b *Bus) fanOut(e Event) {
	b.subsMu.RLock()
	targets := make([]*subscription, 0, len(b.subs[e.Type]))
	for _, sub := range b.subs[e.Type] {
		targets = append(targets, sub)
	}
	b.subsMu.RUnlock()

	for _, sub := range targets {
		select {
		case sub.ch <- e:
		default:
			log.Printf("events: subscriber %d lagging, dropping %s event %s", sub.id, e.Type, e.ID)
		}
	}
}

func (b *Bus) stopSubscriptions() {
	b.subsMu.Lock()
	for _, byID := range b.subs {
		for id, sub := range byID {
			delete(byID, id)
			close(sub.done)
		}
	}
	b.subsMu.Unlock()
}

func (s *subscription) run(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()
	for {
		select {
		case <-s.done:
			// Drain what was already fanned out before shutdown.
			for {
				select {
				case e := <-s.ch:
					s.deliver(ctx, e)
				default:
					return
				}
			}
		case e := <-s.ch:
			s.deliver(ctx, e)
		}
	}
}

func (s *subscription) deliver(ctx context.Context, e Event) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("events: subscriber %d panicked on %s: %v", s.id, e.Type, r)
		}
	}()
	s.handler(ctx, e)
}
