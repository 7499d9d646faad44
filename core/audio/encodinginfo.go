package audio

import "fmt"

// Protocol constants for the live session bridge. Both rates are fixed by
// the remote backend; no resampling happens anywhere in this module.
const (
	// CaptureSampleRate is the sample rate of outbound microphone audio.
	CaptureSampleRate = 16000
	// PlaybackSampleRate is the sample rate of inbound response audio.
	PlaybackSampleRate = 24000
	// CaptureBlockSize is the number of samples delivered per capture block.
	CaptureBlockSize = 4096
	// Channels is the channel count on both paths.
	Channels = 1
)

const DefaultFormat = "linear16"

type EncodingInfo struct {
	SampleRate int
	Format     encodingFormat
}

// CaptureEncoding returns the outbound (microphone) encoding.
func CaptureEncoding() EncodingInfo {
	return EncodingInfo{SampleRate: CaptureSampleRate, Format: EncodingLinear16}
}

// PlaybackEncoding returns the inbound (speaker) encoding.
func PlaybackEncoding() EncodingInfo {
	return EncodingInfo{SampleRate: PlaybackSampleRate, Format: EncodingLinear16}
}

func (e EncodingInfo) IsZero() bool {
	return e.SampleRate == 0 || e.Format.Name() == ""
}

// BytesPerSecond reports the byte rate of the encoding, used to translate
// buffered byte counts into playback durations.
func (e EncodingInfo) BytesPerSecond() int {
	return e.SampleRate * e.Format.ByteSize() * Channels
}

// MimeType returns the transport mime declaration for the encoding,
// e.g. "audio/pcm;rate=16000".
func (e EncodingInfo) MimeType() string {
	return fmt.Sprintf("audio/pcm;rate=%d", e.SampleRate)
}

type encodingFormat string

func (e encodingFormat) Name() string {
	return string(e)
}

func (e encodingFormat) ByteSize() int {
	switch e {
	case EncodingLinear16:
		return 2
	}
	return -1
}

const (
	EncodingLinear16 encodingFormat = "linear16"
)
