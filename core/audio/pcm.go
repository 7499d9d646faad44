package audio

import (
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrMalformedPayload marks inbound audio that cannot be decoded. Callers
// are expected to drop the offending chunk and keep playing.
var ErrMalformedPayload = errors.New("malformed audio payload")

// FloatToPCM16 quantizes samples in [-1, 1] to 16-bit signed integers.
// Out-of-range samples are clamped before scaling.
func FloatToPCM16(samples []float32) []int16 {
	pcm := make([]int16, len(samples))
	for i, sample := range samples {
		if sample > 1 {
			sample = 1
		} else if sample < -1 {
			sample = -1
		}
		pcm[i] = int16(sample * 0x7FFF)
	}
	return pcm
}

// PCM16ToFloat converts integer samples back to the float range a playback
// device consumes. The scale constant matches the quantization divisor used
// by the wire protocol, so FloatToPCM16 and PCM16ToFloat do not compound
// quantization error across a round trip.
func PCM16ToFloat(samples []int16) []float32 {
	floats := make([]float32, len(samples))
	for i, sample := range samples {
		floats[i] = float32(sample) / 32768.0
	}
	return floats
}

// PCM16Bytes serializes integer samples as little-endian byte pairs.
func PCM16Bytes(samples []int16) []byte {
	data := make([]byte, len(samples)*2)
	for i, sample := range samples {
		binary.LittleEndian.PutUint16(data[i*2:], uint16(sample))
	}
	return data
}

// BytesToPCM16 deserializes little-endian byte pairs into integer samples.
func BytesToPCM16(data []byte) ([]int16, error) {
	if len(data)%2 != 0 {
		return nil, fmt.Errorf("%w: odd byte count %d", ErrMalformedPayload, len(data))
	}

	samples := make([]int16, len(data)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
	}
	return samples, nil
}

// EncodeBase64PCM16 converts float samples into the transport text form the
// backend accepts for realtime input: clamp, quantize, little-endian bytes,
// then base64.
func EncodeBase64PCM16(samples []float32) string {
	return base64.StdEncoding.EncodeToString(PCM16Bytes(FloatToPCM16(samples)))
}

// DecodeBase64PCM16 is the inverse of EncodeBase64PCM16 up through the
// integer sample sequence. Malformed input returns an error wrapping
// [ErrMalformedPayload]; it never panics.
func DecodeBase64PCM16(data string) ([]int16, error) {
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	return BytesToPCM16(raw)
}
