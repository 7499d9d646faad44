package bridge

import (
	"sync"

	"github.com/google/uuid"
	"github.com/voxcal/voxcal-core/core/audio"
	"github.com/voxcal/voxcal-core/core/events"
)

// playbackQueue renders inbound decoded audio in strict arrival order and
// supports abrupt interruption (barge-in).
//
// It is an explicit idle/playing state machine: Enqueue appends, playNext
// starts the head when idle, and the output device's mark callback drives
// the transition back to idle, which chains the next buffer. Sequencing
// comes purely from completion callbacks, never from timers.
type playbackQueue struct {
	mu sync.Mutex

	// output is the playback device client. When unconfigured, buffers
	// complete immediately so queue sequencing still progresses.
	output AudioOutput

	pending [][]int16
	playing bool

	emit eventEmitter
}

func newPlaybackQueue(output AudioOutput, emit eventEmitter) *playbackQueue {
	if emit == nil {
		emit = noopEventEmitter
	}

	return &playbackQueue{output: output, emit: emit}
}

func (q *playbackQueue) setOutput(output AudioOutput) {
	if q == nil {
		return
	}

	q.mu.Lock()
	q.output = output
	q.mu.Unlock()
}

// Enqueue appends a decoded buffer to the tail. If nothing is currently
// playing, playback of the head starts immediately.
func (q *playbackQueue) Enqueue(buffer []int16) {
	if q == nil || len(buffer) == 0 {
		return
	}

	q.mu.Lock()
	q.pending = append(q.pending, buffer)
	q.mu.Unlock()

	q.playNext()
}

// playNext pops the head and begins device playback. It is an idempotent
// guard against re-entrant triggers: while a buffer is mid-flight, or when
// the queue is empty, it does nothing.
func (q *playbackQueue) playNext() {
	q.mu.Lock()
	if q.playing || len(q.pending) == 0 {
		q.mu.Unlock()
		return
	}

	q.playing = true
	buffer := q.pending[0]
	q.pending = q.pending[1:]
	output := q.output
	q.mu.Unlock()

	q.emit(events.NewPlaybackStarted(len(buffer)))

	if output == nil {
		q.finishCurrent()
		return
	}

	if err := output.SendAudio(audio.PCM16Bytes(buffer)); err != nil {
		logger.Warn("dropping playback buffer", "error", err)
		q.finishCurrent()
		return
	}

	if err := output.Mark(uuid.NewString(), func(string) { q.finishCurrent() }); err != nil {
		q.finishCurrent()
	}
}

// finishCurrent transitions playing back to idle and chains the next
// buffer. A completion that arrives after an interrupt is a no-op; the
// interrupt already reset the playing flag.
func (q *playbackQueue) finishCurrent() {
	q.mu.Lock()
	if !q.playing {
		q.mu.Unlock()
		return
	}
	q.playing = false
	q.mu.Unlock()

	q.emit(events.NewPlaybackEnded())
	q.playNext()
}

// Interrupt discards all pending buffers and cuts off any buffer mid-flight
// by flushing the device buffer. The next Enqueue starts a fresh playback
// cycle.
func (q *playbackQueue) Interrupt() {
	if q == nil {
		return
	}

	q.mu.Lock()
	discarded := len(q.pending)
	q.pending = nil
	q.playing = false
	output := q.output
	q.mu.Unlock()

	if output != nil {
		output.ClearBuffer()
	}

	q.emit(events.NewPlaybackInterrupted(discarded))
}

func (q *playbackQueue) isPlaying() bool {
	if q == nil {
		return false
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	return q.playing
}

func (q *playbackQueue) pendingCount() int {
	if q == nil {
		return 0
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
