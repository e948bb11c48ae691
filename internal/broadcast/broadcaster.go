package broadcast

import (
	"log"
	"sync"

	"github.com/yavens/rig-chat-client/internal/events"
	"github.com/yavens/rig-chat-client/internal/observability"
)

// Broadcaster owns the single outbound delivery channel to the currently
// connected subscriber. It is a one-slot mailbox, not a fan-out bus: attaching
// a new channel silently supersedes the previous one, and the superseded
// subscriber simply stops receiving events.
type Broadcaster struct {
	mu      sync.Mutex
	ch      chan events.Envelope
	metrics *observability.Metrics
}

func New(metrics *observability.Metrics) *Broadcaster {
	return &Broadcaster{metrics: metrics}
}

// Attach stores ch as the live delivery channel, replacing any previous one.
// The previous channel is not closed; its reader drains whatever was already
// queued and then goes quiet.
func (b *Broadcaster) Attach(ch chan events.Envelope) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ch = ch
	if b.metrics != nil {
		b.metrics.SubscriberAttached.Inc()
	}
}

// Detach clears the slot, but only if ch is still the live channel. A stale
// connection tearing down must not detach its successor.
func (b *Broadcaster) Detach(ch chan events.Envelope) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ch == ch {
		b.ch = nil
	}
}

// Publish delivers env to the live subscriber. With no subscriber attached it
// is a no-op. Delivery never blocks: if the subscriber's queue is full the
// event is dropped and counted, and the client recovers by re-requesting the
// full chat history.
func (b *Broadcaster) Publish(env events.Envelope) {
	b.mu.Lock()
	ch := b.ch
	b.mu.Unlock()

	if ch == nil {
		return
	}

	select {
	case ch <- env:
		if b.metrics != nil {
			b.metrics.EventsPublished.WithLabelValues(metricLabel(env.Event)).Inc()
		}
	default:
		log.Printf("broadcast: dropped %s event, subscriber queue full", env.Event)
		if b.metrics != nil {
			b.metrics.EventsDropped.WithLabelValues(metricLabel(env.Event)).Inc()
		}
	}
}

// metricLabel collapses the per-index update_message#N names into one label so
// the event counters stay low-cardinality.
func metricLabel(name events.Name) string {
	const updatePrefix = "update_message#"
	s := string(name)
	if len(s) > len(updatePrefix) && s[:len(updatePrefix)] == updatePrefix {
		return "update_message"
	}
	return s
}
