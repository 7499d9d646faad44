//go:build cgo

package miniaudio

import (
	"fmt"

	"github.com/gen2brain/malgo"
)

// Client owns the shared miniaudio context and the capture and playback
// devices built on it. Capture and playback run at different sample rates,
// so they are exposed as separate sub-clients rather than one combined
// device.
type Client struct {
	// audioContext is only saved to be able to uninitialize it, it is an
	// ownership thing
	audioContext *malgo.AllocatedContext

	capture  captureClient
	playback playbackClient
}

func NewClient() (*Client, error) {
	audioCtx, err := malgo.InitContext(
		nil,
		malgo.ContextConfig{},
		func(message string) {},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize audio context: %w", err)
	}

	client := Client{
		audioContext: audioCtx,
	}

	if err := client.playback.Init(audioCtx); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to initialize playback client: %w", err)
	}

	if err := client.playback.Start(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to start playback device: %w", err)
	}

	if err := client.capture.Init(audioCtx); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to initialize capture client: %w", err)
	}

	return &client, nil
}

// Capture returns the microphone sub-client.
func (c *Client) Capture() *captureClient { return &c.capture }

// Playback returns the speaker sub-client.
func (c *Client) Playback() *playbackClient { return &c.playback }

func (c *Client) Close() {
	_ = c.capture.Uninit()
	_ = c.playback.Uninit()
	_ = c.audioContext.Uninit()
	c.audioContext.Free()
}
