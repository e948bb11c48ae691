package backend

import (
	"context"
	"encoding/json"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/packages/ssestream"

	"github.com/yavens/rig-chat-client/internal/conversation"
	"github.com/yavens/rig-chat-client/internal/stream"
)

const (
	finishReasonToolCalls    = "tool_calls"
	finishReasonFunctionCall = "function_call"
)

// StreamChat opens a streaming chat completion carrying the prior transcript
// and the new prompt, with the registered tools advertised.
func (c *Client) StreamChat(ctx context.Context, prompt string, history []conversation.Message) (stream.ChunkStream, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+1)
	for _, m := range history {
		switch m.Role {
		case conversation.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(m.Content))
		default:
			messages = append(messages, openai.UserMessage(m.Content))
		}
	}
	messages = append(messages, openai.UserMessage(prompt))

	sse := c.api.Chat.Completions.NewStreaming(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(c.cfg.CompletionModel),
		Messages: messages,
		Tools:    c.toolParams,
	})
	return &chunkStream{sse: sse}, nil
}

// chunkStream adapts the SSE completion stream to the coordinator's chunk
// model. Tool-call deltas arrive fragmented across SSE events and are
// reassembled here; a tool call is only surfaced once its arguments are
// complete.
type chunkStream struct {
	sse     *ssestream.Stream[openai.ChatCompletionChunk]
	queue   []stream.Chunk
	current stream.Chunk
	running *openai.ChatCompletionChunkChoiceDeltaToolCall
	done    bool
	err     error
}

func (s *chunkStream) Next() bool {
	for {
		if len(s.queue) > 0 {
			s.current = s.queue[0]
			s.queue = s.queue[1:]
			return true
		}
		if s.done {
			return false
		}
		if !s.sse.Next() {
			s.done = true
			s.err = s.sse.Err()
			s.commitRunningTool()
			continue
		}

		chunk := s.sse.Current()
		if len(chunk.Choices) == 0 {
			continue
		}
		choice := chunk.Choices[0]

		for _, t := range choice.Delta.ToolCalls {
			s.accumulateToolDelta(t)
		}
		if text := choice.Delta.Content; text != "" {
			s.queue = append(s.queue, stream.Chunk{Text: text})
		}
		switch choice.FinishReason {
		case finishReasonToolCalls, finishReasonFunctionCall:
			s.commitRunningTool()
		}
	}
}

func (s *chunkStream) accumulateToolDelta(t openai.ChatCompletionChunkChoiceDeltaToolCall) {
	if s.running == nil {
		if t.ID != "" || t.Function.Name != "" {
			copied := t
			s.running = &copied
		}
		return
	}
	if t.ID == "" || t.ID == s.running.ID {
		s.running.Function.Name += t.Function.Name
		s.running.Function.Arguments += t.Function.Arguments
		return
	}
	// A new ID starts the next call; flush the finished one first.
	s.commitRunningTool()
	copied := t
	s.running = &copied
}

func (s *chunkStream) commitRunningTool() {
	if s.running == nil || s.running.Function.Name == "" {
		s.running = nil
		return
	}
	s.queue = append(s.queue, stream.Chunk{ToolCall: &stream.ToolCall{
		Name:      s.running.Function.Name,
		Arguments: json.RawMessage(s.running.Function.Arguments),
	}})
	s.running = nil
}

func (s *chunkStream) Current() stream.Chunk { return s.current }

func (s *chunkStream) Err() error { return s.err }

func (s *chunkStream) Close() error { return s.sse.Close() }
