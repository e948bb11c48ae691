package stream

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/yavens/rig-chat-client/internal/conversation"
)

// MockCompleter is a local fallback backend used when no API key is
// configured. It streams a canned reply token by token and requests the
// generate_image tool when the prompt mentions an image, so the whole
// pipeline can be exercised offline.
type MockCompleter struct {
	// TokenDelay spaces out chunks to imitate model latency. Zero disables
	// the delay.
	TokenDelay time.Duration
}

func NewMockCompleter() *MockCompleter {
	return &MockCompleter{TokenDelay: 20 * time.Millisecond}
}

func (m *MockCompleter) StreamChat(ctx context.Context, prompt string, _ []conversation.Message) (ChunkStream, error) {
	var chunks []Chunk

	if strings.Contains(strings.ToLower(prompt), "image") {
		args, _ := json.Marshal(map[string]string{"prompt": prompt})
		chunks = append(chunks, Chunk{ToolCall: &ToolCall{Name: "generate_image", Arguments: args}})
	}

	reply := fmt.Sprintf("You said %q.", strings.TrimSpace(prompt)) +
		" This reply comes from the mock backend. Set OPENAI_API_KEY to talk to a real model."
	for _, word := range strings.SplitAfter(reply, " ") {
		chunks = append(chunks, Chunk{Text: word})
	}

	return &scriptedStream{ctx: ctx, chunks: chunks, delay: m.TokenDelay}, nil
}

// scriptedStream replays a fixed chunk sequence.
type scriptedStream struct {
	ctx    context.Context
	chunks []Chunk
	pos    int
	delay  time.Duration
	err    error
}

func (s *scriptedStream) Next() bool {
	if s.pos >= len(s.chunks) {
		return false
	}
	if s.delay > 0 {
		select {
		case <-s.ctx.Done():
			s.err = s.ctx.Err()
			return false
		case <-time.After(s.delay):
		}
	}
	s.pos++
	return true
}

func (s *scriptedStream) Current() Chunk { return s.chunks[s.pos-1] }
func (s *scriptedStream) Err() error     { return s.err }
func (s *scriptedStream) Close() error   { return nil }

// MockSynthesizer stands in for a speech backend by returning the span's own
// bytes, mirroring how the mock keeps payload shapes intact without audio
// hardware or credentials.
type MockSynthesizer struct{}

func NewMockSynthesizer() *MockSynthesizer { return &MockSynthesizer{} }

func (s *MockSynthesizer) Synthesize(_ context.Context, text string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("empty synthesis span")
	}
	return []byte(text), nil
}

// MockTranscriber answers recording uploads with a fixed phrase so the
// recording round trip works offline.
type MockTranscriber struct{}

func NewMockTranscriber() *MockTranscriber { return &MockTranscriber{} }

func (t *MockTranscriber) Transcribe(_ context.Context, audio []byte) (string, error) {
	if len(audio) == 0 {
		return "", fmt.Errorf("empty recording")
	}
	return "simulated voice input", nil
}

// mockImagePixel is a 1x1 transparent PNG.
var mockImagePixel = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0a, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

// MockImageTool answers generate_image calls with an inline placeholder pixel
// instead of hitting an image model.
type MockImageTool struct{}

func NewMockImageTool() *MockImageTool { return &MockImageTool{} }

func (t *MockImageTool) Name() string { return "generate_image" }

func (t *MockImageTool) Definition() Definition {
	return Definition{
		Name:        "generate_image",
		Description: "Generate an image for the user",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"prompt": map[string]any{
					"type":        "string",
					"description": "The description of the image you want to generate",
				},
			},
		},
	}
}

func (t *MockImageTool) Invoke(_ context.Context, arguments json.RawMessage) (string, error) {
	var args struct {
		Prompt string `json:"prompt"`
	}
	if err := json.Unmarshal(arguments, &args); err != nil {
		return "", fmt.Errorf("decode generate_image arguments: %w", err)
	}
	if strings.TrimSpace(args.Prompt) == "" {
		return "", fmt.Errorf("generate_image requires a prompt")
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(mockImagePixel), nil
}

func (t *MockImageTool) RenderResult(result string) string {
	return fmt.Sprintf(`<img src="%s"/>`, result)
}
