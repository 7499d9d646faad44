package bridge

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/voxcal/voxcal-core/core/audio"
	"github.com/voxcal/voxcal-core/core/events"
	"github.com/voxcal/voxcal-core/core/live"
	"github.com/voxcal/voxcal-core/core/tools"
)

const (
	errMsgMicrophoneDenied  = "Microphone access denied."
	errMsgDeviceUnavailable = "Audio device unavailable."
	errMsgConnection        = "Connection error. Please try again."
	errMsgInitialization    = "Failed to initialize AI session."
)

// Controller is the public façade over one live voice session. It exposes
// connected/recording state and a nullable user-facing error string, and
// owns the session's lifecycle from Connect to Close. At most one session
// is live per controller; Connect after Close requires a new session and
// is allowed.
type Controller struct {
	dialer      LiveClient
	store       CalendarStore
	extraTools  []tools.Tool
	onEvent     func(events.Event)
	instruction string

	playback *playbackQueue
	capture  *captureChannel

	mu      sync.Mutex
	session *session
	errText *string
}

// NewController assembles the bridge from the given options. A live client
// is required before Connect; audio input/output and the calendar store are
// optional, degrading to a silent bridge with no registered calendar tools.
func NewController(opts ...ControllerOption) *Controller {
	c := &Controller{}
	c.playback = newPlaybackQueue(nil, c.emitEvent)
	c.capture = newCaptureChannel(c.sendAudio, c.emitEvent)

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Connect dials the live stream, registering the calendar tools and any
// extras during setup. Handshake failures surface on Err; the returned
// error carries the underlying cause for callers that want it.
func (c *Controller) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.session != nil && c.session.State() != StateClosed {
		c.mu.Unlock()
		return nil
	}

	registered := c.extraTools
	if c.store != nil {
		registered = append(calendarTools(c.store, c.emitEvent), registered...)
	}

	sess := newSession(c.dialer, c.playback, newDispatcher(c.emitEvent, registered...), c.capture, c.emitEvent)
	c.session = sess
	c.errText = nil
	c.mu.Unlock()

	instruction := c.instruction
	if instruction == "" {
		instruction = defaultSystemInstruction(time.Now())
	}

	setup := live.Setup{
		SystemInstruction: instruction,
		Tools:             sess.dispatcher.declarations(),
	}

	if err := sess.connect(ctx, setup); err != nil {
		c.setError(errMsgInitialization)
		return err
	}

	return nil
}

// Close shuts the live session down and releases the capture device. Safe
// to call multiple times and without a prior Connect.
func (c *Controller) Close() {
	c.mu.Lock()
	sess := c.session
	c.mu.Unlock()

	if sess != nil {
		sess.close()
		sess.awaitRouting()
	}

	c.capture.Close()
}

// StartRecording begins microphone capture. It requires an open session;
// device and permission failures are surfaced on Err as user-facing
// messages rather than returned, matching the observable-state contract.
func (c *Controller) StartRecording(ctx context.Context) error {
	c.mu.Lock()
	sess := c.session
	c.mu.Unlock()

	if sess == nil || sess.State() != StateOpen {
		return fmt.Errorf("%w: cannot record", ErrSessionNotOpen)
	}

	if err := c.capture.Start(ctx); err != nil {
		switch {
		case errors.Is(err, audio.ErrPermissionDenied):
			c.setError(errMsgMicrophoneDenied)
		default:
			c.setError(errMsgDeviceUnavailable)
		}
		return err
	}

	return nil
}

// StopRecording stops microphone capture. Always safe, even when nothing
// is recording.
func (c *Controller) StopRecording() {
	c.capture.Stop()
}

// IsConnected reports whether the session is open.
func (c *Controller) IsConnected() bool {
	c.mu.Lock()
	sess := c.session
	c.mu.Unlock()

	return sess != nil && sess.State() == StateOpen
}

// IsRecording reports whether microphone capture is active.
func (c *Controller) IsRecording() bool {
	return c.capture.isCapturing()
}

// Err returns the current user-facing error message, or nil when none is
// set. It resets on the next successful Connect.
func (c *Controller) Err() *string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errText
}

func (c *Controller) setError(message string) {
	c.mu.Lock()
	c.errText = &message
	c.mu.Unlock()
}

// emitEvent observes lifecycle events to maintain the controller's error
// state, then forwards every event to the configured callback. It runs
// inline on emitting paths, so the callback must not block.
func (c *Controller) emitEvent(event events.Event) {
	if closed, ok := event.(events.SessionClosed); ok && closed.Error != "" {
		c.setError(errMsgConnection)
	}

	c.mu.Lock()
	callback := c.onEvent
	c.mu.Unlock()

	if callback != nil {
		callback(event)
	}
}

// sendAudio forwards one encoded capture frame to the current session.
func (c *Controller) sendAudio(encoded string) {
	c.mu.Lock()
	sess := c.session
	c.mu.Unlock()

	if sess != nil {
		sess.sendAudio(encoded)
	}
}

// defaultSystemInstruction is the setup prompt sent when no override is
// configured. It embeds the wall-clock time so the assistant can resolve
// relative dates.
func defaultSystemInstruction(now time.Time) string {
	return fmt.Sprintf(`You are a helpful calendar assistant.
The current time is %s.
You can help users schedule events and check their existing schedule.
When a user wants to schedule something, use the add_calendar_event tool.
When a user asks what's on their calendar or asks about their schedule, use the list_calendar_events tool.
Always confirm the details before scheduling.`, now.Format("Monday, January 2, 2006 3:04 PM"))
}
