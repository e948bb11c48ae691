package stream

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yavens/rig-chat-client/internal/broadcast"
	"github.com/yavens/rig-chat-client/internal/conversation"
	"github.com/yavens/rig-chat-client/internal/observability"
)

// State is the coordinator's position in the turn lifecycle.
type State string

const (
	StateIdle               State = "idle"
	StateAwaitingFirstToken State = "awaiting_first_token"
	StateStreaming          State = "streaming"
	StateDraining           State = "draining"
	StateClosed             State = "closed"
)

var ErrEmptyPrompt = errors.New("prompt must not be empty")

// Params wires the coordinator's collaborators.
type Params struct {
	Store       *conversation.Store
	Broadcaster *broadcast.Broadcaster
	Renderer    Renderer
	Completer   Completer
	Synthesizer Synthesizer
	Tools       []Tool
	Metrics     *observability.Metrics

	// FlushInterval bounds token-flush frequency; zero means the default.
	FlushInterval time.Duration
}

// Coordinator owns one conversation. It drives the completion stream for each
// submitted prompt, routes chunks to the token flusher, sentence accumulator
// and tool dispatcher, and publishes every resulting mutation in order.
type Coordinator struct {
	store         *conversation.Store
	pub           *publisher
	completer     Completer
	audio         *audioPipeline
	tools         *toolDispatcher
	metrics       *observability.Metrics
	flushInterval time.Duration

	mu    sync.Mutex
	state State
}

func NewCoordinator(p Params) *Coordinator {
	pub := &publisher{store: p.Store, broadcaster: p.Broadcaster, renderer: p.Renderer}
	return &Coordinator{
		store:         p.Store,
		pub:           pub,
		completer:     p.Completer,
		audio:         newAudioPipeline(p.Broadcaster, p.Synthesizer, p.Metrics),
		tools:         newToolDispatcher(pub, p.Metrics, p.Tools),
		metrics:       p.Metrics,
		flushInterval: p.FlushInterval,
		state:         StateIdle,
	}
}

// State returns the coordinator's current lifecycle position.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Coordinator) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// SubmitPrompt starts a new turn for prompt and returns immediately; the
// reply streams to the subscriber in the background. A second prompt
// submitted while one is streaming is a caller-level concern; the coordinator
// imposes no queueing.
//
// The turn runs on a background context rather than the caller's: the
// submitting request finishes long before the reply does. In-flight sub-tasks
// have no cancellation path when a new prompt supersedes them.
func (c *Coordinator) SubmitPrompt(prompt string) error {
	if strings.TrimSpace(prompt) == "" {
		return ErrEmptyPrompt
	}
	go c.runTurn(context.Background(), prompt)
	return nil
}

func (c *Coordinator) runTurn(ctx context.Context, prompt string) {
	turnID := uuid.NewString()
	start := time.Now()
	log.Printf("turn %s: responding to %q", turnID, prompt)

	c.setState(StateAwaitingFirstToken)

	// The history handed to the model excludes the prompt itself; the backend
	// appends the prompt as the final user message.
	history := c.store.Snapshot()

	if _, err := c.pub.appendMessage(conversation.NewUserMessage(prompt)); err != nil {
		log.Printf("turn %s: append prompt: %v", turnID, err)
		c.finishTurn(turnID, start, "failed")
		return
	}

	chunks, err := c.completer.StreamChat(ctx, prompt, history)
	if err != nil {
		log.Printf("turn %s: open completion stream: %v", turnID, err)
		c.drain(nil, nil)
		c.finishTurn(turnID, start, "failed")
		return
	}
	defer chunks.Close()

	flusher := newTokenFlusher(c.pub, c.metrics, c.flushInterval)

	firstAudio := false
	sentences := newSentenceAccumulator(func(span string) {
		c.audio.dispatch(ctx, span)
		if !firstAudio {
			firstAudio = true
			if c.metrics != nil {
				c.metrics.ObserveFirstAudioLatency(time.Since(start))
			}
		}
	})

	// Index of the single text-bearing assistant message for this turn, or -1
	// until the first text chunk arrives. Tool-result placeholders are
	// separate transcript entries and never reuse it.
	assistantIndex := -1

	for chunks.Next() {
		chunk := chunks.Current()
		c.setState(StateStreaming)

		if chunk.ToolCall != nil {
			c.tools.dispatch(ctx, *chunk.ToolCall)
			continue
		}
		if chunk.Text == "" {
			continue
		}

		if assistantIndex < 0 {
			index, err := c.pub.appendMessage(conversation.NewAssistantMessage(""))
			if err != nil {
				log.Printf("turn %s: append assistant placeholder: %v", turnID, err)
				break
			}
			assistantIndex = index
			flusher.bind(index, time.Now())
		}

		flusher.push(chunk.Text)
		sentences.onFragment(chunk.Text)

		flusher.maybeFlush(time.Now())
		sentences.maybeDispatch()
	}

	result := "completed"
	if err := chunks.Err(); err != nil {
		// Terminate the turn early, but still flush whatever was buffered so
		// the transcript keeps the partial reply.
		log.Printf("turn %s: completion stream failed: %v", turnID, err)
		result = "failed"
	}

	c.drain(flusher, sentences)
	c.finishTurn(turnID, start, result)
}

// drain commits buffered remainders and publishes the authoritative
// transcript replacement.
func (c *Coordinator) drain(flusher *tokenFlusher, sentences *sentenceAccumulator) {
	c.setState(StateDraining)
	if flusher != nil {
		flusher.forceFlush(time.Now())
	}
	if sentences != nil {
		sentences.flushRemainder()
	}
	c.pub.publishHistory()
}

func (c *Coordinator) finishTurn(turnID string, start time.Time, result string) {
	c.setState(StateClosed)
	if c.metrics != nil {
		c.metrics.Turns.WithLabelValues(result).Inc()
		c.metrics.TurnDuration.Observe(time.Since(start).Seconds())
	}
	log.Printf("turn %s: %s in %s", turnID, result, time.Since(start).Round(time.Millisecond))
}

// Snapshot exposes the transcript for page rendering.
func (c *Coordinator) Snapshot() []conversation.Message {
	return c.store.Snapshot()
}
