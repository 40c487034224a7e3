// Package stt defines the Transcriber interface for speech-to-text backends.
//
// A Transcriber takes a complete audio payload (a WAV container or a raw PCM
// stream) and returns the recognised text as a sequence of timestamped
// Fragments. Libretto uses these fragments in two ways: the timeline index
// is built by merging them into sentence-level segments, and the verifier
// compares their concatenated text against the chapter script.
//
// Implementations must be safe for concurrent use; Libretto transcribes
// several chapters in parallel during a library scan.
package stt

import (
	"context"
	"errors"
)

// ErrUnparsable is returned when a backend's response cannot be reduced to
// a fragment list, even after the tolerant recovery in [ParseFragments].
var ErrUnparsable = errors.New("stt: response not parsable as timed fragments")

// Transcriber is the abstraction over any speech-to-text backend.
//
// Transcribe recognises the full audio payload and returns fragments ordered
// by start time. The hint is advisory; backends ignore fields they cannot
// honour. An empty fragment list with a nil error means the audio contained
// no recognisable speech.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, hint Hint) ([]Fragment, error)
}
