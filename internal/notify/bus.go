// Package notify is the process-wide notification channel that tells decoupled
// consumers (CLI output, session manager) that the credential changed or that
// the player has to sign in again.
package notify

import (
	"log/slog"
	"sync"

	"github.com/mcoot/jeopardyze-client/internal/dependencies/clock"
	"github.com/mcoot/jeopardyze-client/internal/model"
)

// Publisher is the producer side of the bus
type Publisher interface {
	Publish(event model.Event)
}

type subscriber struct {
	id int
	fn func(model.Event)
	ch chan model.Event
}

// Bus fans events out to every subscriber. There is no acknowledgement and no
// back-pressure: channel subscribers whose buffer is full miss the event.
type Bus struct {
	clock  clock.Clock
	logger *slog.Logger

	mu     sync.RWMutex
	nextID int
	subs   []*subscriber
	closed bool
}

// New creates a new Bus
func New(clk clock.Clock, logger *slog.Logger) *Bus {
	return &Bus{
		clock:  clk,
		logger: logger.With(slog.String("component", "notify-bus")),
	}
}

// Ensure Bus implements Publisher
var _ Publisher = (*Bus)(nil)

// Subscribe registers fn to be called synchronously, in subscription order, on
// the publisher's goroutine. fn must not block.
func (b *Bus) Subscribe(fn func(model.Event)) (unsubscribe func()) {
	return b.add(&subscriber{fn: fn})
}

// SubscribeChan registers a buffered channel subscriber. The channel is closed
// on unsubscribe or when the bus is closed.
func (b *Bus) SubscribeChan(buffer int) (<-chan model.Event, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan model.Event, buffer)
	unsubscribe := b.add(&subscriber{ch: ch})
	return ch, unsubscribe
}

func (b *Bus) add(sub *subscriber) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		if sub.ch != nil {
			close(sub.ch)
		}
		return func() {}
	}

	b.nextID++
	sub.id = b.nextID
	b.subs = append(b.subs, sub)

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(sub.id) })
	}
}

func (b *Bus) remove(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, sub := range b.subs {
		if sub.id == id {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			if sub.ch != nil {
				close(sub.ch)
			}
			return
		}
	}
}

// Publish delivers event to all current subscribers
func (b *Bus) Publish(event model.Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = b.clock.Now()
	}

	// Snapshot so callbacks may subscribe or unsubscribe without deadlocking
	b.mu.RLock()
	subs := make([]*subscriber, len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	b.logger.Debug("publishing event",
		slog.String("type", string(event.Type)),
		slog.Int("subscribers", len(subs)))

	for _, sub := range subs {
		if sub.fn != nil {
			sub.fn(event)
			continue
		}
		b.sendChan(sub, event)
	}
}

func (b *Bus) sendChan(sub *subscriber, event model.Event) {
	// Hold the read lock so the channel cannot be closed mid-send
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.subscribed(sub.id) {
		return
	}
	select {
	case sub.ch <- event:
	default:
		b.logger.Warn("event dropped - subscriber buffer full",
			slog.String("type", string(event.Type)))
	}
}

func (b *Bus) subscribed(id int) bool {
	for _, sub := range b.subs {
		if sub.id == id {
			return true
		}
	}
	return false
}

// Close removes every subscriber and closes channel subscriptions
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for _, sub := range b.subs {
		if sub.ch != nil {
			close(sub.ch)
		}
	}
	b.subs = nil
}

// Subscribers returns the number of current subscribers
func (b *Bus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
