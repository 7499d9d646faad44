package bridge

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/voxcal/voxcal-core/core/audio"
	"github.com/voxcal/voxcal-core/core/events"
	"github.com/voxcal/voxcal-core/core/live"
	"go.opentelemetry.io/otel/codes"
)

// SessionState is the connection lifecycle of one live session.
type SessionState int32

const (
	StateDisconnected SessionState = iota
	StateConnecting
	StateOpen
	StateClosed
)

func (s SessionState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// session owns the sole stream handle and routes traffic between it, the
// playback queue, and the tool call dispatcher. All inbound messages are
// consumed by one routing goroutine, so playback mutation and state
// transitions are serialized without further coordination.
type session struct {
	dialer LiveClient

	state atomic.Int32

	mu      sync.Mutex
	stream  live.Stream
	lastErr error

	playback   *playbackQueue
	dispatcher *dispatcher
	capture    *captureChannel

	emit eventEmitter

	closeOnce  sync.Once
	closedFlag atomic.Bool
	routing    sync.WaitGroup
}

func newSession(dialer LiveClient, playback *playbackQueue, dispatcher *dispatcher, capture *captureChannel, emit eventEmitter) *session {
	if emit == nil {
		emit = noopEventEmitter
	}

	return &session{
		dialer:     dialer,
		playback:   playback,
		dispatcher: dispatcher,
		capture:    capture,
		emit:       emit,
	}
}

func (s *session) State() SessionState {
	return SessionState(s.state.Load())
}

func (s *session) setState(state SessionState) {
	s.state.Store(int32(state))
}

func (s *session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *session) setErr(err error) {
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
}

// connect dials the stream, transmitting the one-time setup, and starts the
// routing loop. A handshake failure transitions straight to Closed with the
// error recorded; the session never reaches Open.
func (s *session) connect(ctx context.Context, setup live.Setup) error {
	ctx, span := tracer.Start(ctx, "connect session")
	defer span.End()

	if state := s.State(); state == StateClosed {
		return fmt.Errorf("%w: connect a new session", ErrSessionClosed)
	} else if state != StateDisconnected {
		return fmt.Errorf("%w: session already connecting", ErrConnectionFailed)
	}
	if s.dialer == nil {
		s.setState(StateClosed)
		return fmt.Errorf("%w: no live client configured", ErrConnectionFailed)
	}

	s.setState(StateConnecting)

	stream, err := s.dialer.Connect(ctx, setup)
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrConnectionFailed, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.markClosed(err)
		return err
	}

	s.mu.Lock()
	s.stream = stream
	s.mu.Unlock()

	// The routing loop outlives the dial context; tool dispatches must not
	// be cancelled by a connect timeout firing later.
	s.routing.Add(1)
	go s.processIncomingMessages(context.WithoutCancel(ctx), stream)

	return nil
}

// processIncomingMessages is the single routing loop: every inbound message
// is pattern-matched on kind and forwarded to the playback queue, the
// dispatcher, or the lifecycle handlers. The loop exits when the stream's
// channel closes.
func (s *session) processIncomingMessages(ctx context.Context, stream live.Stream) {
	defer s.routing.Done()

	for msg := range stream.Messages() {
		s.route(ctx, stream, msg)
	}

	// A stream that stops delivering without a terminal message still
	// leaves the session closed.
	s.markClosed(nil)
}

func (s *session) route(ctx context.Context, stream live.Stream, msg live.Message) {
	switch msg.Kind {
	case live.KindOpened:
		s.setState(StateOpen)
		s.emit(events.NewSessionOpened())

	case live.KindAudio:
		samples, err := audio.DecodeBase64PCM16(msg.Audio)
		if err != nil {
			logger.Warn("dropping undecodable audio chunk", "error", err)
			return
		}
		s.playback.Enqueue(samples)

	case live.KindToolCall:
		for _, call := range msg.Calls {
			response := s.dispatcher.Dispatch(ctx, call)
			// Best effort: a response against a closing stream is
			// discarded, matching the remote protocol's expectations.
			if err := stream.SendToolResponse(response); err != nil {
				logger.Warn("failed to send tool response", "call_id", call.ID, "error", err)
			}
		}

	case live.KindInterrupted:
		s.playback.Interrupt()

	case live.KindTurnComplete:

	case live.KindClosed:
		s.markClosed(msg.Err)
	}
}

// sendAudio forwards one encoded capture frame to the wire. Frames sent
// while the session is not open are dropped; there is no backpressure or
// buffering on the outbound path.
func (s *session) sendAudio(encoded string) {
	if s.State() != StateOpen {
		return
	}

	s.mu.Lock()
	stream := s.stream
	s.mu.Unlock()
	if stream == nil {
		return
	}

	if err := stream.SendAudio(encoded); err != nil {
		logger.Warn("dropping outbound audio frame", "error", err)
	}
}

// close gracefully shuts the stream down and always stops audio capture,
// regardless of current state. Safe to call multiple times and from any
// state.
func (s *session) close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		stream := s.stream
		s.mu.Unlock()

		if stream != nil {
			if err := stream.Close(); err != nil {
				logger.Warn("failed to close live stream", "error", err)
			}
		}

		s.markClosed(nil)
	})
}

// markClosed performs the one-time transition to Closed: record the
// terminal error, stop capture, and emit the closed event. Later calls are
// no-ops, so a close() racing the stream's own terminal message stays
// single-shot.
func (s *session) markClosed(err error) {
	if !s.closedFlag.CompareAndSwap(false, true) {
		return
	}

	s.setState(StateClosed)
	if err != nil {
		s.setErr(err)
	}

	if s.capture != nil {
		s.capture.Stop()
	}

	message := ""
	if err != nil {
		message = err.Error()
	}
	s.emit(events.NewSessionClosed(message))
}

// awaitRouting blocks until the routing loop has exited. Used by tests and
// teardown to guarantee no callbacks fire afterwards.
func (s *session) awaitRouting() {
	s.routing.Wait()
}
