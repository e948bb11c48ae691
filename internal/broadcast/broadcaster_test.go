package broadcast

import (
	"testing"

	"github.com/yavens/rig-chat-client/internal/events"
)

func TestPublishWithoutSubscriberIsNoop(t *testing.T) {
	b := New(nil)
	// Must neither block nor panic.
	b.Publish(events.Envelope{Event: events.NameNewMessage, Data: "x"})
}

func TestPublishDeliversToAttachedChannel(t *testing.T) {
	b := New(nil)
	ch := make(chan events.Envelope, 4)
	b.Attach(ch)

	want := events.Envelope{Event: events.NameChatHistory, Data: "history"}
	b.Publish(want)

	select {
	case got := <-ch:
		if got != want {
			t.Fatalf("received %+v, want %+v", got, want)
		}
	default:
		t.Fatalf("event was not delivered")
	}
}

func TestAttachSupersedesPreviousChannel(t *testing.T) {
	b := New(nil)
	old := make(chan events.Envelope, 4)
	replacement := make(chan events.Envelope, 4)

	b.Attach(old)
	b.Attach(replacement)

	b.Publish(events.Envelope{Event: events.NameQueueAudio, Data: "1"})

	if len(old) != 0 {
		t.Fatalf("superseded channel received an event")
	}
	if len(replacement) != 1 {
		t.Fatalf("live channel did not receive the event")
	}
}

func TestDetachOnlyClearsOwnChannel(t *testing.T) {
	b := New(nil)
	old := make(chan events.Envelope, 1)
	replacement := make(chan events.Envelope, 1)

	b.Attach(old)
	b.Attach(replacement)
	// The stale connection tears down after being superseded.
	b.Detach(old)

	b.Publish(events.Envelope{Event: events.NameQueueAudio, Data: "1"})
	if len(replacement) != 1 {
		t.Fatalf("detach of a stale channel must not silence the live one")
	}
}

func TestPublishDropsWhenQueueFull(t *testing.T) {
	b := New(nil)
	ch := make(chan events.Envelope, 1)
	b.Attach(ch)

	b.Publish(events.Envelope{Event: events.NameNewMessage, Data: "first"})
	// Queue is now full; this publish must drop instead of blocking.
	b.Publish(events.Envelope{Event: events.NameNewMessage, Data: "second"})

	got := <-ch
	if got.Data != "first" {
		t.Fatalf("kept event = %q, want the first one", got.Data)
	}
	if len(ch) != 0 {
		t.Fatalf("overflow event should have been dropped")
	}
}

func TestMetricLabelCollapsesUpdateNames(t *testing.T) {
	if got := metricLabel(events.UpdateMessage(17)); got != "update_message" {
		t.Fatalf("metricLabel() = %q, want update_message", got)
	}
	if got := metricLabel(events.NamePlayAudio); got != "play_audio" {
		t.Fatalf("metricLabel() = %q, want play_audio", got)
	}
}
