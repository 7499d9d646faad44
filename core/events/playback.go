package events

const (
	// KindPlaybackStarted identifies the start of a response buffer.
	KindPlaybackStarted Kind = "playback.started"
	// KindPlaybackEnded identifies the end of a response buffer.
	KindPlaybackEnded Kind = "playback.ended"
	// KindPlaybackInterrupted identifies a barge-in flush.
	KindPlaybackInterrupted Kind = "playback.interrupted"
)

// PlaybackStarted marks the start of playback for one queued buffer.
type PlaybackStarted struct {
	Base
	// Samples is the buffer length in PCM16 samples.
	Samples int
}

// NewPlaybackStarted creates a playback started event.
func NewPlaybackStarted(samples int) PlaybackStarted {
	return PlaybackStarted{Base: NewBase(KindPlaybackStarted), Samples: samples}
}

// PlaybackEnded marks the completion of one queued buffer.
type PlaybackEnded struct {
	Base
}

// NewPlaybackEnded creates a playback ended event.
func NewPlaybackEnded() PlaybackEnded {
	return PlaybackEnded{Base: NewBase(KindPlaybackEnded)}
}

// PlaybackInterrupted marks a barge-in: all pending buffers were discarded
// and the in-flight buffer was cut off.
type PlaybackInterrupted struct {
	Base
	// Discarded is the number of pending buffers dropped by the flush.
	Discarded int
}

// NewPlaybackInterrupted creates a playback interrupted event.
func NewPlaybackInterrupted(discarded int) PlaybackInterrupted {
	return PlaybackInterrupted{Base: NewBase(KindPlaybackInterrupted), Discarded: discarded}
}
