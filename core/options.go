package bridge

import (
	"context"

	"github.com/voxcal/voxcal-core/core/audio"
	"github.com/voxcal/voxcal-core/core/calendar"
	"github.com/voxcal/voxcal-core/core/events"
	"github.com/voxcal/voxcal-core/core/live"
	"github.com/voxcal/voxcal-core/core/tools"
)

type ControllerOption func(*Controller)

// LiveClient dials one bidirectional voice stream, transmitting the
// one-time setup during the handshake.
type LiveClient interface {
	Connect(ctx context.Context, setup live.Setup) (live.Stream, error)
}

func WithLiveClient(client LiveClient) ControllerOption {
	return func(c *Controller) { c.dialer = client }
}

// AudioInput is a capture device client. StartCapture begins periodic
// delivery of fixed-size sample blocks and returns once capture is running;
// errors wrap the audio package's device taxonomy.
type AudioInput interface {
	EncodingInfo() audio.EncodingInfo
	StartCapture(ctx context.Context, onBlock func(samples []float32)) error
	StopCapture() error
	Close()
}

func WithAudioInput(client AudioInput) ControllerOption {
	return func(c *Controller) { c.capture.setClient(client) }
}

// AudioOutput is a playback device client. Mark registers a callback that
// fires once all audio buffered before the mark has been rendered.
type AudioOutput interface {
	EncodingInfo() audio.EncodingInfo
	SendAudio(pcm []byte) error
	Mark(name string, callback func(string)) error
	ClearBuffer()
}

func WithAudioOutput(client AudioOutput) ControllerOption {
	return func(c *Controller) { c.playback.setOutput(client) }
}

// CalendarStore is the subset of the calendar client the registered tools
// consume.
type CalendarStore interface {
	ListEvents(ctx context.Context) ([]calendar.Event, error)
	CreateEvent(ctx context.Context, params calendar.CreateEventParams) (int64, error)
}

// WithCalendarStore registers the calendar tool set backed by the given
// store.
func WithCalendarStore(store CalendarStore) ControllerOption {
	return func(c *Controller) { c.store = store }
}

// WithTools registers additional tools beyond the calendar set.
func WithTools(extra ...tools.Tool) ControllerOption {
	return func(c *Controller) { c.extraTools = append(c.extraTools, extra...) }
}

// WithEventCallback registers a callback for every event the bridge emits.
// The callback runs inline on the emitting path and should not block.
func WithEventCallback(callback func(events.Event)) ControllerOption {
	return func(c *Controller) { c.onEvent = callback }
}

// WithSystemInstruction overrides the default system instruction sent at
// stream setup. The default embeds the current wall-clock time.
func WithSystemInstruction(instruction string) ControllerOption {
	return func(c *Controller) { c.instruction = instruction }
}
