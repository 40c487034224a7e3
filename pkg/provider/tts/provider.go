// Package tts defines the Provider interface for text-to-speech backends.
//
// A TTS provider turns one chapter script segment into a complete audio
// payload. Synthesis is batch rather than streaming: audiobook narration is
// generated segment by segment, verified against the script, and only then
// committed to the library, so there is no latency pressure that would
// justify a streaming interface.
//
// Implementations must be safe for concurrent use.
package tts

import (
	"context"
	"errors"
	"fmt"
)

// ErrEmptyAudio is returned when a backend produced no usable audio for a
// request. Backends must never return a nil payload with a nil error.
var ErrEmptyAudio = errors.New("tts: backend returned no audio")

// Request describes one synthesis call.
type Request struct {
	// Text is the script segment to narrate. Must be non-empty.
	Text string

	// StyleInstruction is a free-form acting direction prepended to the
	// narration guidelines ("calm elderly storyteller", "urgent newsreader").
	// Empty uses the plain narrator baseline.
	StyleInstruction string

	// Voice selects the backend voice.
	Voice VoiceProfile

	// Temperature controls synthesis variability for backends that expose
	// it. Zero means the backend default.
	Temperature float64

	// SpeedFactor is a multiplier on the base narration rate. Zero means
	// 1.0.
	SpeedFactor float64

	// VolumeDelta is a post-synthesis gain in dB. Zero leaves the audio
	// untouched.
	VolumeDelta float64
}

// Validate reports whether the request can be synthesised at all.
func (r *Request) Validate() error {
	if r.Text == "" {
		return fmt.Errorf("tts: request text must not be empty")
	}
	if r.Voice.ID == "" {
		return fmt.Errorf("tts: request voice ID must not be empty")
	}
	if r.SpeedFactor < 0 {
		return fmt.Errorf("tts: speed factor %f must not be negative", r.SpeedFactor)
	}
	return nil
}

// Provider is the abstraction over any TTS backend.
//
// Synthesize returns the narrated audio as WAV container bytes. The request
// is validated first; backends apply the fields they support and ignore the
// rest. An empty result is an error, never a silent nil.
type Provider interface {
	Synthesize(ctx context.Context, req Request) ([]byte, error)

	// ListVoices returns the backend's current voice catalogue.
	ListVoices(ctx context.Context) ([]VoiceProfile, error)
}
