package stream

import (
	"context"
	"encoding/json"

	"github.com/yavens/rig-chat-client/internal/conversation"
)

// ToolCall is a tool invocation request surfaced mid-stream by the completion
// backend.
type ToolCall struct {
	Name      string
	Arguments json.RawMessage
}

// Chunk is one unit yielded by the completion backend: either a text fragment
// or a tool call, never both.
type Chunk struct {
	Text     string
	ToolCall *ToolCall
}

// ChunkStream is a pull-based token stream. Next blocks until a chunk is
// available and reports false at end of stream or on error; Err distinguishes
// the two afterwards.
type ChunkStream interface {
	Next() bool
	Current() Chunk
	Err() error
	Close() error
}

// Completer opens a completion stream for a prompt against the prior
// transcript.
type Completer interface {
	StreamChat(ctx context.Context, prompt string, history []conversation.Message) (ChunkStream, error)
}

// Synthesizer converts a text span into encoded speech audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Definition describes a tool to the completion backend so the model can
// select it by name. Parameters is a JSON-schema object.
type Definition struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// Tool is one named side-effecting capability the model may invoke. Invoke
// returns an opaque result string; RenderResult turns it into the HTML
// fragment patched into the placeholder message.
type Tool interface {
	Name() string
	Definition() Definition
	Invoke(ctx context.Context, arguments json.RawMessage) (string, error)
	RenderResult(result string) string
}

// Renderer produces the HTML payloads carried by message events.
type Renderer interface {
	Message(index int, msg conversation.Message) (string, error)
	History(messages []conversation.Message) (string, error)
	TextSpan(chunk string) string
	HTMLSpan(fragment string) string
}
