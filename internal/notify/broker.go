// Package notify implements the in-process event broker that fans out
// profile reload notifications to registered listeners.
package notify

import (
	"sync/atomic"

	"github.com/starford/mannaz/internal/models"
)

// TypeProfilesReloaded is the event published after every successful
// reload, carrying the new summary list.
const TypeProfilesReloaded = "profiles-reloaded"

// Event is one notification delivered to subscribers.
type Event struct {
	Type     string                  `json:"type"`
	Profiles []models.ProfileSummary `json:"profiles"`
}

// subscriberBuffer is the per-listener channel capacity. Publishing never
// blocks: events beyond a full buffer are dropped for that listener.
const subscriberBuffer = 16

// Broker manages listener registrations and broadcasts events.
//
// Concurrency model: a single internal event loop (goroutine) owns the
// subscriber set. Public methods communicate with this loop through
// channels, so no mutexes are required.
type Broker struct {
	subscribeCh   chan chan Event
	unsubscribeCh chan chan Event
	publishCh     chan Event
	countReqCh    chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker creates a broker and starts its event loop.
func NewBroker() *Broker {
	b := &Broker{
		subscribeCh:   make(chan chan Event),
		unsubscribeCh: make(chan chan Event),
		publishCh:     make(chan Event, 64),
		countReqCh:    make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}
	go b.run()
	return b
}

func (b *Broker) run() {
	defer close(b.stopped)

	listeners := make(map[chan Event]struct{})

	broadcast := func(event Event) {
		for ch := range listeners {
			select {
			case ch <- event:
			default:
				// Listener buffer full; skip so a slow consumer can
				// never stall a reload.
			}
		}
	}

	for {
		select {
		case <-b.stopCh:
			for ch := range listeners {
				close(ch)
			}
			return

		case ch := <-b.subscribeCh:
			listeners[ch] = struct{}{}

		case ch := <-b.unsubscribeCh:
			if _, ok := listeners[ch]; ok {
				delete(listeners, ch)
				close(ch)
			}

		case event := <-b.publishCh:
			broadcast(event)

		case resp := <-b.countReqCh:
			resp <- len(listeners)
		}
	}
}

// Close stops the event loop and closes all listener channels.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe registers a new listener and returns its channel. The channel
// is closed on Unsubscribe or Close.
func (b *Broker) Subscribe() chan Event {
	ch := make(chan Event, subscriberBuffer)
	if b.closed.Load() {
		close(ch)
		return ch
	}

	select {
	case b.subscribeCh <- ch:
	case <-b.stopped:
		close(ch)
	}
	return ch
}

// Unsubscribe removes a listener and closes its channel.
func (b *Broker) Unsubscribe(ch chan Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- ch:
	case <-b.stopped:
	}
}

// ListenerCount returns the number of registered listeners.
func (b *Broker) ListenerCount() int {
	if b.closed.Load() {
		return 0
	}

	resp := make(chan int, 1)
	select {
	case b.countReqCh <- resp:
	case <-b.stopped:
		return 0
	}

	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// Publish broadcasts an event to all listeners without blocking the caller.
func (b *Broker) Publish(event Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.publishCh <- event:
	case <-b.stopped:
	}
}
