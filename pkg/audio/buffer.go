// Package audio provides the canonical PCM buffer type used throughout
// Libretto, the WAV container codec with raw-PCM fallback, format conversion
// helpers, and the splice engine that performs physical cut/replace edits.
//
// All operations in this package are pure transforms: the input buffer is
// never mutated and a new buffer is returned. This rules out aliasing bugs
// when an edit fails halfway and the caller keeps using the original.
package audio

import (
	"errors"
	"fmt"
)

// Default PCM profile applied when a payload carries no (or a broken)
// container header. This matches the native output of the speech generation
// services Libretto talks to, which emit headerless 24 kHz mono streams
// non-deterministically.
const (
	DefaultSampleRate  = 24000
	DefaultChannels    = 1
	DefaultSampleWidth = 2
)

// MinPayloadBytes is the minimum byte length accepted as audio. Anything
// smaller is a truncated or error response masquerading as audio.
const MinPayloadBytes = 100

var (
	// ErrTooSmall is returned when a payload is too short to plausibly be audio.
	ErrTooSmall = errors.New("audio: payload empty or too small")

	// ErrInvalidRange is returned when a time range is inverted or collapses
	// to nothing after clamping.
	ErrInvalidRange = errors.New("audio: invalid time range")

	// ErrInvalidInput is returned when an operation receives data that is not
	// in a recognised container form or is below the minimum size.
	ErrInvalidInput = errors.New("audio: invalid input data")
)

// Buffer holds canonical PCM sample data together with its format parameters.
//
// Invariants (checked by [Buffer.Validate]): SampleRate > 0, Channels is 1 or
// 2, SampleWidth is 1, 2 or 4 bytes. Data length is a whole number of frames.
type Buffer struct {
	// Data is the interleaved PCM payload, little-endian for multi-byte widths.
	Data []byte

	// Channels is the channel count: 1 (mono) or 2 (stereo).
	Channels int

	// SampleWidth is the bytes per sample: 1, 2 or 4.
	SampleWidth int

	// SampleRate in Hz (e.g. 24000 for generated speech).
	SampleRate int
}

// Validate reports whether the buffer's format parameters satisfy the
// package invariants.
func (b *Buffer) Validate() error {
	if b.SampleRate <= 0 {
		return fmt.Errorf("audio: sample rate %d must be positive", b.SampleRate)
	}
	if b.Channels != 1 && b.Channels != 2 {
		return fmt.Errorf("audio: channel count %d must be 1 or 2", b.Channels)
	}
	switch b.SampleWidth {
	case 1, 2, 4:
	default:
		return fmt.Errorf("audio: sample width %d must be 1, 2 or 4 bytes", b.SampleWidth)
	}
	if len(b.Data)%b.FrameSize() != 0 {
		return fmt.Errorf("audio: %d data bytes is not a whole number of %d-byte frames", len(b.Data), b.FrameSize())
	}
	return nil
}

// FrameSize returns the byte length of one interleaved frame.
func (b *Buffer) FrameSize() int {
	return b.Channels * b.SampleWidth
}

// Frames returns the number of complete frames in the buffer.
func (b *Buffer) Frames() int {
	fs := b.FrameSize()
	if fs == 0 {
		return 0
	}
	return len(b.Data) / fs
}

// Duration returns the playback length in seconds.
func (b *Buffer) Duration() float64 {
	if b.SampleRate <= 0 {
		return 0
	}
	return float64(b.Frames()) / float64(b.SampleRate)
}

// Clone returns a deep copy of the buffer. Edits to the clone never alias
// the original's payload.
func (b *Buffer) Clone() *Buffer {
	data := make([]byte, len(b.Data))
	copy(data, b.Data)
	return &Buffer{
		Data:        data,
		Channels:    b.Channels,
		SampleWidth: b.SampleWidth,
		SampleRate:  b.SampleRate,
	}
}

// Slice returns a new buffer covering [startSec, endSec). Both bounds are
// clamped into the buffer and aligned to frame boundaries. The returned
// buffer owns its own payload copy.
func (b *Buffer) Slice(startSec, endSec float64) *Buffer {
	start := b.frameOffset(startSec)
	end := b.frameOffset(endSec)
	if end < start {
		end = start
	}
	data := make([]byte, end-start)
	copy(data, b.Data[start:end])
	return &Buffer{
		Data:        data,
		Channels:    b.Channels,
		SampleWidth: b.SampleWidth,
		SampleRate:  b.SampleRate,
	}
}

// frameOffset converts a time in seconds to a frame-aligned byte offset,
// clamped to [0, len(Data)].
func (b *Buffer) frameOffset(sec float64) int {
	if sec < 0 {
		sec = 0
	}
	frame := int(sec * float64(b.SampleRate))
	off := frame * b.FrameSize()
	if off > len(b.Data) {
		off = len(b.Data)
	}
	return off
}

// Silence returns a buffer of silent frames with the given profile.
// For 8-bit PCM silence is the unsigned midpoint 0x80; wider widths use zero.
func Silence(channels, sampleWidth, sampleRate int, durationSec float64) *Buffer {
	frames := int(float64(sampleRate) * durationSec)
	if frames < 0 {
		frames = 0
	}
	data := make([]byte, frames*channels*sampleWidth)
	if sampleWidth == 1 {
		for i := range data {
			data[i] = 0x80
		}
	}
	return &Buffer{
		Data:        data,
		Channels:    channels,
		SampleWidth: sampleWidth,
		SampleRate:  sampleRate,
	}
}

// SilenceLike returns silence of the given duration using b's own
// sample rate, width and channel profile.
func SilenceLike(b *Buffer, durationSec float64) *Buffer {
	return Silence(b.Channels, b.SampleWidth, b.SampleRate, durationSec)
}

// Concat joins buffers sharing the same profile into a single new buffer.
// It returns an error when the profiles differ; callers should convert
// first (see [Convert]).
func Concat(bufs ...*Buffer) (*Buffer, error) {
	if len(bufs) == 0 {
		return nil, fmt.Errorf("audio: concat of zero buffers")
	}
	first := bufs[0]
	total := 0
	for _, b := range bufs {
		if b.Channels != first.Channels || b.SampleWidth != first.SampleWidth || b.SampleRate != first.SampleRate {
			return nil, fmt.Errorf("audio: concat profile mismatch: %dch/%dB/%dHz vs %dch/%dB/%dHz",
				first.Channels, first.SampleWidth, first.SampleRate,
				b.Channels, b.SampleWidth, b.SampleRate)
		}
		total += len(b.Data)
	}
	data := make([]byte, 0, total)
	for _, b := range bufs {
		data = append(data, b.Data...)
	}
	return &Buffer{
		Data:        data,
		Channels:    first.Channels,
		SampleWidth: first.SampleWidth,
		SampleRate:  first.SampleRate,
	}, nil
}
