package bridge

import (
	"context"
	"encoding/base64"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/voxcal/voxcal-core/core/audio"
	"github.com/voxcal/voxcal-core/core/events"
	"github.com/voxcal/voxcal-core/core/live"
)

type fakeStream struct {
	mu        sync.Mutex
	messages  chan live.Message
	sentAudio []string
	responses []live.FunctionResponse
	sendErr   error
	closed    bool
	closeOnce sync.Once
}

func newFakeStream() *fakeStream {
	return &fakeStream{messages: make(chan live.Message, 16)}
}

func (f *fakeStream) Messages() <-chan live.Message { return f.messages }

func (f *fakeStream) SendAudio(data string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sentAudio = append(f.sentAudio, data)
	return nil
}

func (f *fakeStream) SendToolResponse(responses ...live.FunctionResponse) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.responses = append(f.responses, responses...)
	return nil
}

func (f *fakeStream) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	f.finish()
	return nil
}

func (f *fakeStream) push(msg live.Message) { f.messages <- msg }

func (f *fakeStream) finish() {
	f.closeOnce.Do(func() { close(f.messages) })
}

func (f *fakeStream) responseCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.responses)
}

func (f *fakeStream) audioCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sentAudio)
}

type fakeDialer struct {
	stream  live.Stream
	dialErr error

	mu    sync.Mutex
	setup live.Setup
	dials int
}

func (f *fakeDialer) Connect(ctx context.Context, setup live.Setup) (live.Stream, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setup = setup
	f.dials++
	if f.dialErr != nil {
		return nil, f.dialErr
	}
	return f.stream, nil
}

func waitFor(t *testing.T, description string, condition func() bool) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", description)
}

func newTestSession(stream *fakeStream, output *fakeAudioOutput, recorder *eventRecorder) (*session, *fakeDialer) {
	emit := noopEventEmitter
	if recorder != nil {
		emit = recorder.record
	}

	var device AudioOutput
	if output != nil {
		device = output
	}

	dialer := &fakeDialer{stream: stream}
	sess := newSession(dialer,
		newPlaybackQueue(device, emit),
		newDispatcher(emit, echoTool("echo")),
		newCaptureChannel(nil, emit),
		emit,
	)
	return sess, dialer
}

func TestSessionOpensOnBackendAcknowledgement(t *testing.T) {
	stream := newFakeStream()
	recorder := &eventRecorder{}
	sess, _ := newTestSession(stream, nil, recorder)

	if got := sess.State(); got != StateDisconnected {
		t.Fatalf("expected initial state disconnected, got %v", got)
	}

	if err := sess.connect(context.Background(), live.Setup{}); err != nil {
		t.Fatalf("expected connect to succeed, got error: %v", err)
	}

	stream.push(live.Message{Kind: live.KindOpened})
	waitFor(t, "session to open", func() bool { return sess.State() == StateOpen })

	stream.finish()
	sess.awaitRouting()

	assertKinds(t, recorder.kinds(), []events.Kind{
		events.KindSessionOpened,
		events.KindSessionClosed,
	})
}

func TestSessionDialFailureNeverReachesOpen(t *testing.T) {
	recorder := &eventRecorder{}
	sess, dialer := newTestSession(nil, nil, recorder)
	dialer.dialErr = errors.New("transport down")

	err := sess.connect(context.Background(), live.Setup{})
	if err == nil {
		t.Fatalf("expected connect to fail")
	}
	if !errors.Is(err, ErrConnectionFailed) {
		t.Fatalf("expected connection failure, got %v", err)
	}
	if got := sess.State(); got != StateClosed {
		t.Fatalf("expected closed state after dial failure, got %v", got)
	}
	if sess.Err() == nil {
		t.Fatalf("expected last error recorded after dial failure")
	}

	assertKinds(t, recorder.kinds(), []events.Kind{events.KindSessionClosed})
}

func TestSessionRoutesAudioToPlayback(t *testing.T) {
	stream := newFakeStream()
	output := &fakeAudioOutput{}
	sess, _ := newTestSession(stream, output, nil)

	if err := sess.connect(context.Background(), live.Setup{}); err != nil {
		t.Fatalf("expected connect to succeed, got error: %v", err)
	}

	samples := []int16{100, -100, 32000}
	encoded := base64.StdEncoding.EncodeToString(audio.PCM16Bytes(samples))
	stream.push(live.Message{Kind: live.KindOpened})
	stream.push(live.Message{Kind: live.KindAudio, Audio: encoded})

	waitFor(t, "playback send", func() bool { return output.sentCount() == 1 })

	if got, want := string(output.sent[0]), string(audio.PCM16Bytes(samples)); got != want {
		t.Fatalf("expected decoded samples forwarded to the device unchanged")
	}

	stream.finish()
	sess.awaitRouting()
}

func TestSessionDropsUndecodableAudio(t *testing.T) {
	stream := newFakeStream()
	output := &fakeAudioOutput{}
	sess, _ := newTestSession(stream, output, nil)

	if err := sess.connect(context.Background(), live.Setup{}); err != nil {
		t.Fatalf("expected connect to succeed, got error: %v", err)
	}

	stream.push(live.Message{Kind: live.KindOpened})
	stream.push(live.Message{Kind: live.KindAudio, Audio: "not base64!"})
	stream.push(live.Message{Kind: live.KindAudio, Audio: audio.EncodeBase64PCM16([]float32{0.1})})

	waitFor(t, "playback send", func() bool { return output.sentCount() == 1 })

	stream.finish()
	sess.awaitRouting()

	if got := output.sentCount(); got != 1 {
		t.Fatalf("expected the malformed chunk dropped, got %d sends", got)
	}
}

func TestSessionDispatchesToolCallBatches(t *testing.T) {
	stream := newFakeStream()
	sess, _ := newTestSession(stream, nil, nil)

	if err := sess.connect(context.Background(), live.Setup{}); err != nil {
		t.Fatalf("expected connect to succeed, got error: %v", err)
	}

	stream.push(live.Message{Kind: live.KindOpened})
	stream.push(live.Message{Kind: live.KindToolCall, Calls: []live.FunctionCall{
		{ID: "call-1", Name: "echo", Args: map[string]any{"value": 1}},
		{ID: "call-2", Name: "unknown"},
	}})

	waitFor(t, "tool responses", func() bool { return stream.responseCount() == 2 })

	stream.finish()
	sess.awaitRouting()

	if stream.responses[0].ID != "call-1" || stream.responses[1].ID != "call-2" {
		t.Fatalf("expected responses correlated by call id, got %+v", stream.responses)
	}
	if success, ok := stream.responses[1].Response["success"].(bool); !ok || success {
		t.Fatalf("expected unknown tool to produce a failure response, got %v", stream.responses[1].Response)
	}
}

func TestSessionInterruptFlushesPlayback(t *testing.T) {
	stream := newFakeStream()
	output := &fakeAudioOutput{}
	sess, _ := newTestSession(stream, output, nil)

	if err := sess.connect(context.Background(), live.Setup{}); err != nil {
		t.Fatalf("expected connect to succeed, got error: %v", err)
	}

	stream.push(live.Message{Kind: live.KindOpened})
	stream.push(live.Message{Kind: live.KindAudio, Audio: audio.EncodeBase64PCM16([]float32{0.1})})
	stream.push(live.Message{Kind: live.KindInterrupted})

	waitFor(t, "device flush", func() bool { return output.clearCount() == 1 })

	stream.finish()
	sess.awaitRouting()

	if sess.playback.isPlaying() {
		t.Fatalf("expected playback idle after interrupt")
	}
}

func TestSessionTerminalErrorSurfacesAndStopsCapture(t *testing.T) {
	stream := newFakeStream()
	recorder := &eventRecorder{}
	sess, _ := newTestSession(stream, nil, recorder)

	input := &fakeAudioInput{}
	sess.capture.setClient(input)

	if err := sess.connect(context.Background(), live.Setup{}); err != nil {
		t.Fatalf("expected connect to succeed, got error: %v", err)
	}

	stream.push(live.Message{Kind: live.KindOpened})
	waitFor(t, "session to open", func() bool { return sess.State() == StateOpen })

	if err := sess.capture.Start(context.Background()); err != nil {
		t.Fatalf("expected capture to start, got error: %v", err)
	}

	stream.push(live.Message{Kind: live.KindClosed, Err: errors.New("backend went away")})
	stream.finish()
	sess.awaitRouting()

	if got := sess.State(); got != StateClosed {
		t.Fatalf("expected closed state after terminal error, got %v", got)
	}
	if sess.Err() == nil {
		t.Fatalf("expected terminal error recorded")
	}
	if sess.capture.isCapturing() {
		t.Fatalf("expected capture stopped on session close")
	}

	var closedEvent *events.SessionClosed
	for _, event := range recorder.events {
		if closed, ok := event.(events.SessionClosed); ok {
			closedEvent = &closed
		}
	}
	if closedEvent == nil || closedEvent.Error == "" {
		t.Fatalf("expected a session closed event carrying the error")
	}
}

func TestSessionCloseIsSafeFromAnyStateAndRepeatable(t *testing.T) {
	stream := newFakeStream()
	sess, _ := newTestSession(stream, nil, nil)

	if err := sess.connect(context.Background(), live.Setup{}); err != nil {
		t.Fatalf("expected connect to succeed, got error: %v", err)
	}

	sess.close()
	sess.close()
	sess.awaitRouting()

	if got := sess.State(); got != StateClosed {
		t.Fatalf("expected closed state, got %v", got)
	}

	stream.mu.Lock()
	closed := stream.closed
	stream.mu.Unlock()
	if !closed {
		t.Fatalf("expected the underlying stream closed")
	}
}

func TestSessionDropsOutboundAudioUnlessOpen(t *testing.T) {
	stream := newFakeStream()
	sess, _ := newTestSession(stream, nil, nil)

	sess.sendAudio("before-connect")

	if err := sess.connect(context.Background(), live.Setup{}); err != nil {
		t.Fatalf("expected connect to succeed, got error: %v", err)
	}

	sess.sendAudio("while-connecting")

	stream.push(live.Message{Kind: live.KindOpened})
	waitFor(t, "session to open", func() bool { return sess.State() == StateOpen })

	sess.sendAudio("while-open")

	if got := stream.audioCount(); got != 1 {
		t.Fatalf("expected only the open-state frame sent, got %d", got)
	}
	if stream.sentAudio[0] != "while-open" {
		t.Fatalf("expected frame %q sent, got %q", "while-open", stream.sentAudio[0])
	}

	stream.finish()
	sess.awaitRouting()
}

func TestSessionTransmitsSetupOnConnect(t *testing.T) {
	stream := newFakeStream()
	sess, dialer := newTestSession(stream, nil, nil)

	setup := live.Setup{SystemInstruction: "You are a calendar assistant."}
	if err := sess.connect(context.Background(), setup); err != nil {
		t.Fatalf("expected connect to succeed, got error: %v", err)
	}

	dialer.mu.Lock()
	got := dialer.setup
	dialer.mu.Unlock()
	if got.SystemInstruction != setup.SystemInstruction {
		t.Fatalf("expected setup instruction transmitted, got %q", got.SystemInstruction)
	}

	stream.finish()
	sess.awaitRouting()
}
