//go:build cgo

package miniaudio

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	"github.com/gen2brain/malgo"
	"github.com/voxcal/voxcal-core/core/audio"
)

// captureClient pulls microphone samples at the capture rate and delivers
// them in fixed-size blocks. The device callback hands over arbitrary
// frame counts, so samples are accumulated until a full block is ready.
type captureClient struct {
	audioContext *malgo.AllocatedContext
	device       *malgo.Device
	config       malgo.DeviceConfig

	onBlock func(samples []float32)
	pending []float32

	mu sync.Mutex
}

func (c *captureClient) Init(audioContext *malgo.AllocatedContext) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	channels := audio.Channels
	format := malgo.FormatF32
	bytesPerFrame := malgo.SampleSizeInBytes(format) * channels

	c.config = malgo.DefaultDeviceConfig(malgo.Capture)
	c.config.SampleRate = uint32(audio.CaptureSampleRate)
	c.config.Capture.Format = format
	c.config.Capture.Channels = uint32(channels)
	c.config.Alsa.NoMMap = 1
	c.config.PerformanceProfile = malgo.LowLatency
	c.config.PeriodSizeInFrames = 480
	c.config.Periods = 3

	c.audioContext = audioContext

	var err error
	c.device, err = malgo.InitDevice(c.audioContext.Context, c.config, malgo.DeviceCallbacks{
		Data: func(_, pInput []byte, frameCount uint32) {
			n := int(frameCount) * bytesPerFrame
			if len(pInput) < n || n == 0 {
				return
			}
			c.accumulate(decodeFloat32(pInput[:n]))
		},
	})
	if err != nil {
		return fmt.Errorf("%w: failed to initialize capture device: %v", audio.ErrDeviceUnavailable, err)
	}

	return nil
}

func (c *captureClient) StartCapture(_ context.Context, onBlock func(samples []float32)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.device == nil {
		return fmt.Errorf("%w: device not initialized", audio.ErrDeviceUnavailable)
	} else if c.device.IsStarted() {
		return nil
	}

	if err := c.device.Start(); err != nil {
		return fmt.Errorf("%w: failed to start capture device: %v", audio.ErrDeviceUnavailable, err)
	}

	c.pending = nil
	c.onBlock = onBlock
	return nil
}

func (c *captureClient) StopCapture() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.device == nil {
		return fmt.Errorf("device not initialized")
	} else if !c.device.IsStarted() {
		return nil
	}

	if err := c.device.Stop(); err != nil {
		return fmt.Errorf("failed to stop device: %w", err)
	}

	c.onBlock = nil
	c.pending = nil
	return nil
}

func (c *captureClient) Close() {
	_ = c.Uninit()
}

func (c *captureClient) Uninit() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.device != nil {
		c.device.Uninit()
		c.device = nil
	}

	c.onBlock = nil
	c.pending = nil
	return nil
}

func (c *captureClient) EncodingInfo() audio.EncodingInfo {
	return audio.CaptureEncoding()
}

// accumulate appends newly captured samples and delivers every full block
// in order. Partial tails wait for the next device callback.
func (c *captureClient) accumulate(samples []float32) {
	c.mu.Lock()
	onBlock := c.onBlock
	if onBlock == nil {
		c.mu.Unlock()
		return
	}

	c.pending = append(c.pending, samples...)

	var blocks [][]float32
	for len(c.pending) >= audio.CaptureBlockSize {
		block := make([]float32, audio.CaptureBlockSize)
		copy(block, c.pending[:audio.CaptureBlockSize])
		c.pending = c.pending[audio.CaptureBlockSize:]
		blocks = append(blocks, block)
	}
	c.mu.Unlock()

	for _, block := range blocks {
		onBlock(block)
	}
}

func decodeFloat32(data []byte) []float32 {
	samples := make([]float32, len(data)/4)
	for i := range samples {
		samples[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return samples
}
