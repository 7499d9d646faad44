package bridge

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/voxcal/voxcal-core/core/audio"
	"github.com/voxcal/voxcal-core/core/events"
)

// captureChannel bridges the microphone device to the session's outbound
// path. Each delivered sample block is clamped and encoded via the codec,
// then forwarded for immediate transmission. There is no buffering: if the
// session cannot accept a frame it is dropped and the failure is surfaced
// asynchronously by the session, never here.
type captureChannel struct {
	// client is the configured capture device, nil when unconfigured.
	client AudioInput

	// capturing reports whether block delivery is currently active.
	capturing atomic.Bool

	// send forwards one encoded frame to the session's outbound path.
	send func(encoded string)

	emit eventEmitter
}

func newCaptureChannel(send func(encoded string), emit eventEmitter) *captureChannel {
	if send == nil {
		send = func(string) {}
	}
	if emit == nil {
		emit = noopEventEmitter
	}

	return &captureChannel{send: send, emit: emit}
}

func (c *captureChannel) setClient(client AudioInput) {
	if c == nil {
		return
	}

	c.client = client
}

func (c *captureChannel) isConfigured() bool { return c != nil && c.client != nil }
func (c *captureChannel) isCapturing() bool  { return c != nil && c.capturing.Load() }

// Start acquires the capture device and begins periodic block delivery.
// Device failures keep the channel stopped and are returned wrapping the
// audio package's taxonomy so callers can classify them.
func (c *captureChannel) Start(ctx context.Context) error {
	if c == nil {
		return nil
	}

	if c.client == nil {
		return fmt.Errorf("%w: no capture client configured", audio.ErrDeviceUnavailable)
	}

	if !c.capturing.CompareAndSwap(false, true) {
		return nil
	}

	if err := c.client.StartCapture(ctx, c.onBlock); err != nil {
		c.capturing.Store(false)
		if errors.Is(err, audio.ErrPermissionDenied) || errors.Is(err, audio.ErrDeviceUnavailable) {
			return err
		}
		return fmt.Errorf("%w: %v", audio.ErrDeviceUnavailable, err)
	}

	c.emit(events.NewCaptureStarted())
	return nil
}

// Stop releases the device and halts delivery. Calling Stop when not
// started is a no-op, so it is safe from any failure path.
func (c *captureChannel) Stop() {
	if c == nil {
		return
	}

	if !c.capturing.CompareAndSwap(true, false) {
		return
	}

	if c.client != nil {
		if err := c.client.StopCapture(); err != nil {
			logger.Warn("failed to stop capture device", "error", err)
		}
	}

	c.emit(events.NewCaptureStopped())
}

func (c *captureChannel) Close() {
	c.Stop()
	if c != nil && c.client != nil {
		c.client.Close()
	}
}

func (c *captureChannel) onBlock(samples []float32) {
	if !c.capturing.Load() {
		return
	}

	c.send(audio.EncodeBase64PCM16(samples))
}
