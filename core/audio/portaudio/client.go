//go:build cgo

package portaudio

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
	"github.com/voxcal/voxcal-core/core/audio"
)

// Client is a portaudio-backed alternative to the miniaudio devices.
// Capture and playback run on separate streams because the two paths use
// different sample rates.
type Client struct {
	playbackChunk int

	captureStream  *portaudio.Stream
	playbackStream *portaudio.Stream

	in  []int16
	out []int16

	leftoverAudio []byte
	writeMu       sync.Mutex

	stopCapture context.CancelFunc
	captureDone chan struct{}
}

// NewClient initializes portaudio and opens both default streams. The
// playback chunk is the write granularity in samples; ~100ms works well.
func NewClient(playbackChunk int) (*Client, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("%w: failed to initialize portaudio: %v", audio.ErrDeviceUnavailable, err)
	}

	in := make([]int16, audio.CaptureBlockSize)
	captureStream, err := portaudio.OpenDefaultStream(audio.Channels, 0, audio.CaptureSampleRate, audio.CaptureBlockSize, in)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("%w: failed to open capture stream: %v", audio.ErrDeviceUnavailable, err)
	}

	out := make([]int16, playbackChunk)
	playbackStream, err := portaudio.OpenDefaultStream(0, audio.Channels, audio.PlaybackSampleRate, playbackChunk, out)
	if err != nil {
		captureStream.Close()
		portaudio.Terminate()
		return nil, fmt.Errorf("%w: failed to open playback stream: %v", audio.ErrDeviceUnavailable, err)
	}

	if err := playbackStream.Start(); err != nil {
		captureStream.Close()
		playbackStream.Close()
		portaudio.Terminate()
		return nil, fmt.Errorf("%w: failed to start playback stream: %v", audio.ErrDeviceUnavailable, err)
	}

	return &Client{
		playbackChunk:  playbackChunk,
		captureStream:  captureStream,
		playbackStream: playbackStream,
		in:             in,
		out:            out,
	}, nil
}

func (c *Client) StartCapture(ctx context.Context, onBlock func(samples []float32)) error {
	if c.captureDone != nil {
		return nil
	}

	if err := c.captureStream.Start(); err != nil {
		return fmt.Errorf("%w: failed to start capture stream: %v", audio.ErrDeviceUnavailable, err)
	}

	ctx, c.stopCapture = context.WithCancel(ctx)
	c.captureDone = make(chan struct{})

	go func() {
		defer close(c.captureDone)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				if err := c.captureStream.Read(); err != nil {
					continue
				}
				block := make([]int16, len(c.in))
				copy(block, c.in)
				onBlock(audio.PCM16ToFloat(block))
			}
		}
	}()

	return nil
}

func (c *Client) StopCapture() error {
	if c.captureDone == nil {
		return nil
	}

	c.stopCapture()
	<-c.captureDone
	c.captureDone = nil
	c.stopCapture = nil

	if err := c.captureStream.Stop(); err != nil {
		return fmt.Errorf("failed to stop capture stream: %w", err)
	}
	return nil
}

func (c *Client) Close() {
	_ = c.StopCapture()
	c.captureStream.Close()
	c.playbackStream.Close()
	portaudio.Terminate()
}

// SendAudio writes full chunks synchronously and keeps the partial tail
// for the next call or a flushing mark.
func (c *Client) SendAudio(pcm []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.leftoverAudio = append(c.leftoverAudio, pcm...)
	return c.writeChunks(false)
}

// Mark flushes any buffered tail and fires the callback once everything
// queued before it has been handed to the device. Portaudio writes are
// synchronous, so by the time the flush returns the audio is committed.
func (c *Client) Mark(name string, callback func(string)) error {
	c.writeMu.Lock()
	err := c.writeChunks(true)
	c.writeMu.Unlock()

	go callback(name)
	return err
}

func (c *Client) ClearBuffer() {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.leftoverAudio = make([]byte, 0)
	_ = c.playbackStream.Abort()
	_ = c.playbackStream.Start()
}

func (c *Client) EncodingInfo() audio.EncodingInfo {
	return audio.PlaybackEncoding()
}

// CaptureEncodingInfo reports the microphone path encoding; EncodingInfo
// covers the playback path since this client is primarily wired as an
// output.
func (c *Client) CaptureEncodingInfo() audio.EncodingInfo {
	return audio.CaptureEncoding()
}

// writeChunks drains the buffered audio in chunk-sized writes. When flush
// is set the tail is zero-padded to a full chunk so nothing stays behind.
func (c *Client) writeChunks(flush bool) error {
	chunkBytes := c.playbackChunk * 2

	for len(c.leftoverAudio) >= chunkBytes {
		if err := binary.Read(bytes.NewBuffer(c.leftoverAudio[:chunkBytes]), binary.LittleEndian, c.out); err != nil {
			return fmt.Errorf("failed to frame playback chunk: %w", err)
		}
		c.leftoverAudio = c.leftoverAudio[chunkBytes:]
		if err := c.playbackStream.Write(); err != nil {
			return fmt.Errorf("failed to write playback chunk: %w", err)
		}
	}

	if flush && len(c.leftoverAudio) > 0 {
		padded := make([]byte, chunkBytes)
		copy(padded, c.leftoverAudio)
		c.leftoverAudio = nil
		if err := binary.Read(bytes.NewBuffer(padded), binary.LittleEndian, c.out); err != nil {
			return fmt.Errorf("failed to frame playback chunk: %w", err)
		}
		if err := c.playbackStream.Write(); err != nil {
			return fmt.Errorf("failed to write playback chunk: %w", err)
		}
	}

	return nil
}
