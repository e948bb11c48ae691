package stream

import (
	"log"

	"github.com/yavens/rig-chat-client/internal/broadcast"
	"github.com/yavens/rig-chat-client/internal/conversation"
	"github.com/yavens/rig-chat-client/internal/events"
)

// publisher couples transcript mutations with their corresponding push
// events. Every mutation path in this package goes through it so the ordering
// a subscriber observes matches the order mutations were committed.
type publisher struct {
	store       *conversation.Store
	broadcaster *broadcast.Broadcaster
	renderer    Renderer
}

// appendMessage appends msg to the transcript and publishes a new_message
// event carrying the rendered entry.
func (p *publisher) appendMessage(msg conversation.Message) (int, error) {
	index, err := p.store.Append(msg)
	if err != nil {
		return 0, err
	}
	rendered, err := p.renderer.Message(index, msg)
	if err != nil {
		log.Printf("stream: render message %d: %v", index, err)
		rendered = ""
	}
	p.broadcaster.Publish(events.Envelope{Event: events.NameNewMessage, Data: rendered})
	return index, nil
}

// appendChunk grows the message at index by chunk and publishes an
// update_message event carrying only the new span.
func (p *publisher) appendChunk(index int, chunk string) error {
	if _, err := p.store.AppendContent(index, chunk); err != nil {
		return err
	}
	p.broadcaster.Publish(events.Envelope{
		Event: events.UpdateMessage(index),
		Data:  p.renderer.TextSpan(chunk),
	})
	return nil
}

// patchMessage replaces the content of the message at index and publishes the
// already-rendered fragment as its update span. Used to resolve tool
// placeholders.
func (p *publisher) patchMessage(index int, content, fragment string) error {
	if err := p.store.ReplaceContent(index, content); err != nil {
		return err
	}
	p.broadcaster.Publish(events.Envelope{
		Event: events.UpdateMessage(index),
		Data:  p.renderer.HTMLSpan(fragment),
	})
	return nil
}

// publishHistory pushes the authoritative full-transcript replacement.
func (p *publisher) publishHistory() {
	rendered, err := p.renderer.History(p.store.Snapshot())
	if err != nil {
		log.Printf("stream: render chat history: %v", err)
		return
	}
	p.broadcaster.Publish(events.Envelope{Event: events.NameChatHistory, Data: rendered})
}
