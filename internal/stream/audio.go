package stream

import (
	"context"
	"encoding/base64"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/yavens/rig-chat-client/internal/broadcast"
	"github.com/yavens/rig-chat-client/internal/events"
	"github.com/yavens/rig-chat-client/internal/observability"
)

// generationClock issues the strictly increasing unix-millis timestamps that
// correlate a queue_audio placeholder with its eventual play_audio payload.
// Two dispatches in the same millisecond still get distinct, ordered values.
type generationClock struct {
	mu   sync.Mutex
	last int64
}

func (c *generationClock) next() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now().UnixMilli()
	if now <= c.last {
		now = c.last + 1
	}
	c.last = now
	return now
}

// audioPipeline synthesizes speech for completed sentence spans out-of-band.
// Jobs run as detached goroutines; the token stream never waits for them.
type audioPipeline struct {
	broadcaster *broadcast.Broadcaster
	synth       Synthesizer
	metrics     *observability.Metrics
	clock       generationClock
}

func newAudioPipeline(broadcaster *broadcast.Broadcaster, synth Synthesizer, metrics *observability.Metrics) *audioPipeline {
	return &audioPipeline{broadcaster: broadcaster, synth: synth, metrics: metrics}
}

// dispatch captures the generation timestamp, publishes the queue_audio
// placeholder, and spawns the synthesis job. The timestamp capture and
// placeholder publish happen synchronously in the caller's goroutine so
// queue_audio events always appear in dispatch order; only the synthesis
// itself is detached. Returns the generation timestamp.
func (p *audioPipeline) dispatch(ctx context.Context, span string) int64 {
	generationTime := p.clock.next()

	p.broadcaster.Publish(events.Envelope{
		Event: events.NameQueueAudio,
		Data:  strconv.FormatInt(generationTime, 10),
	})
	if p.metrics != nil {
		p.metrics.AudioJobs.WithLabelValues("dispatched").Inc()
	}

	go p.run(ctx, span, generationTime)

	return generationTime
}

func (p *audioPipeline) run(ctx context.Context, span string, generationTime int64) {
	audio, err := p.synth.Synthesize(ctx, span)
	if err != nil {
		// The queued placeholder stays unresolved; the client tolerates it.
		log.Printf("audio: synthesis for generation %d failed: %v", generationTime, err)
		if p.metrics != nil {
			p.metrics.AudioJobs.WithLabelValues("failed").Inc()
		}
		return
	}

	dataURI := "data:audio/mp3;base64," + base64.StdEncoding.EncodeToString(audio)
	env, err := events.PlayAudio(dataURI, generationTime)
	if err != nil {
		log.Printf("audio: %v", err)
		if p.metrics != nil {
			p.metrics.AudioJobs.WithLabelValues("failed").Inc()
		}
		return
	}

	p.broadcaster.Publish(env)
	if p.metrics != nil {
		p.metrics.AudioJobs.WithLabelValues("completed").Inc()
	}
}
