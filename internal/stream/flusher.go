package stream

import (
	"log"
	"strings"
	"time"

	"github.com/yavens/rig-chat-client/internal/observability"
)

// defaultFlushInterval bounds how often buffered tokens are committed and
// pushed. Flushing every token floods the push channel on fast models;
// batching on a short timer bounds both latency and event volume.
const defaultFlushInterval = 5 * time.Millisecond

// tokenFlusher accumulates streamed fragments for the active assistant
// message and releases them as batched update events. It is driven from the
// coordinator's single stream loop and is not safe for concurrent use.
type tokenFlusher struct {
	pub      *publisher
	metrics  *observability.Metrics
	interval time.Duration

	index     int
	buf       strings.Builder
	lastFlush time.Time
}

func newTokenFlusher(pub *publisher, metrics *observability.Metrics, interval time.Duration) *tokenFlusher {
	if interval <= 0 {
		interval = defaultFlushInterval
	}
	return &tokenFlusher{pub: pub, metrics: metrics, interval: interval}
}

// bind targets the flusher at a freshly created assistant message and starts
// the flush clock.
func (f *tokenFlusher) bind(index int, now time.Time) {
	f.index = index
	f.buf.Reset()
	f.lastFlush = now
}

// push appends fragment to the pending buffer.
func (f *tokenFlusher) push(fragment string) {
	f.buf.WriteString(fragment)
}

// maybeFlush commits the buffer if the minimum interval has elapsed since the
// last flush.
func (f *tokenFlusher) maybeFlush(now time.Time) {
	if f.buf.Len() == 0 {
		return
	}
	if now.Sub(f.lastFlush) <= f.interval {
		return
	}
	f.flush(now)
}

// forceFlush unconditionally commits whatever is buffered. Called at stream
// end so a final partial buffer is never lost.
func (f *tokenFlusher) forceFlush(now time.Time) {
	if f.buf.Len() == 0 {
		return
	}
	f.flush(now)
}

func (f *tokenFlusher) flush(now time.Time) {
	chunk := f.buf.String()
	f.buf.Reset()
	f.lastFlush = now

	if err := f.pub.appendChunk(f.index, chunk); err != nil {
		log.Printf("stream: flush to message %d failed: %v", f.index, err)
		return
	}
	if f.metrics != nil {
		f.metrics.TokenFlushes.Inc()
	}
}
