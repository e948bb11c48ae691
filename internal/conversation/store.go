package conversation

import (
	"errors"
	"fmt"
	"sync"
)

// Role identifies who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ErrInvalidIndex is returned when an operation references a transcript index
// that was never assigned.
var ErrInvalidIndex = errors.New("invalid message index")

// Message is one transcript entry. Content is always plain text; this system
// has no structured message parts.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// NewUserMessage builds a user message after validating the role invariants
// callers rely on.
func NewUserMessage(text string) Message {
	return Message{Role: RoleUser, Content: text}
}

// NewAssistantMessage builds an assistant message, typically an empty
// placeholder that is grown or patched later.
func NewAssistantMessage(text string) Message {
	return Message{Role: RoleAssistant, Content: text}
}

// ValidRole reports whether r is a role this transcript accepts.
func ValidRole(r Role) bool {
	return r == RoleUser || r == RoleAssistant
}

// Store owns the ordered transcript for the lifetime of the process.
// Indices are dense, contiguous, assigned once and never reused. All methods
// are safe for concurrent use; the lock is only ever held across the mutation
// itself, never across an external call.
type Store struct {
	mu       sync.Mutex
	messages []Message
}

func NewStore() *Store {
	return &Store{}
}

// Append adds msg at the end of the transcript and returns its index.
// Messages with an unknown role are rejected at this boundary.
func (s *Store) Append(msg Message) (int, error) {
	if !ValidRole(msg.Role) {
		return 0, fmt.Errorf("unsupported message role %q", msg.Role)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	index := len(s.messages)
	s.messages = append(s.messages, msg)
	return index, nil
}

// ReplaceContent overwrites the text of the message at index, preserving its
// role. Concurrent replacements of the same index serialize on the store
// lock; the last writer wins.
func (s *Store) ReplaceContent(index int, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.messages) {
		return fmt.Errorf("replace content at %d: %w", index, ErrInvalidIndex)
	}
	s.messages[index].Content = text
	return nil
}

// AppendContent atomically appends chunk to the message at index and returns
// the resulting content. This is the token-flush path: read-concat-replace as
// one critical section so interleaved flushers cannot drop each other's text.
func (s *Store) AppendContent(index int, chunk string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.messages) {
		return "", fmt.Errorf("append content at %d: %w", index, ErrInvalidIndex)
	}
	s.messages[index].Content += chunk
	return s.messages[index].Content, nil
}

// Get returns a copy of the message at index.
func (s *Store) Get(index int) (Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.messages) {
		return Message{}, fmt.Errorf("get message at %d: %w", index, ErrInvalidIndex)
	}
	return s.messages[index], nil
}

// Len returns the number of transcript entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

// Snapshot returns a consistent point-in-time copy of the transcript.
func (s *Store) Snapshot() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}
