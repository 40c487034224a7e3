// Package mock provides test doubles for the stt package interfaces.
//
// Use Transcriber to feed controlled Fragment values to code under test and
// inspect which audio payloads were delivered.
//
// Example:
//
//	tr := &mock.Transcriber{
//	    Fragments: []stt.Fragment{{Start: 0, End: 2, Text: "Hello."}},
//	}
//	frags, _ := tr.Transcribe(ctx, audio, stt.Hint{})
package mock

import (
	"context"
	"sync"

	"github.com/librettoapp/libretto/pkg/provider/stt"
)

// TranscribeCall records a single invocation of Transcriber.Transcribe.
type TranscribeCall struct {
	// Audio is a copy of the payload passed to Transcribe.
	Audio []byte
	// Hint is the recognition hint passed to Transcribe.
	Hint stt.Hint
}

// Transcriber is a mock implementation of stt.Transcriber.
type Transcriber struct {
	mu sync.Mutex

	// Fragments is returned by every Transcribe call when TranscribeFunc
	// is nil.
	Fragments []stt.Fragment

	// Err, if non-nil, is returned as the error from Transcribe.
	Err error

	// TranscribeFunc, if non-nil, overrides the canned Fragments/Err pair
	// for per-call behaviour.
	TranscribeFunc func(ctx context.Context, audio []byte, hint stt.Hint) ([]stt.Fragment, error)

	// TranscribeCalls records every call to Transcribe in order.
	TranscribeCalls []TranscribeCall
}

// Transcribe records the call and returns the configured result.
func (t *Transcriber) Transcribe(ctx context.Context, audio []byte, hint stt.Hint) ([]stt.Fragment, error) {
	t.mu.Lock()
	cp := make([]byte, len(audio))
	copy(cp, audio)
	t.TranscribeCalls = append(t.TranscribeCalls, TranscribeCall{Audio: cp, Hint: hint})
	fn := t.TranscribeFunc
	frags := t.Fragments
	err := t.Err
	t.mu.Unlock()

	if fn != nil {
		return fn(ctx, audio, hint)
	}
	if err != nil {
		return nil, err
	}
	out := make([]stt.Fragment, len(frags))
	copy(out, frags)
	return out, nil
}

// CallCount returns the number of Transcribe calls. Thread-safe.
func (t *Transcriber) CallCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.TranscribeCalls)
}

// Reset clears all recorded calls. Thread-safe.
func (t *Transcriber) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.TranscribeCalls = nil
}

// Ensure Transcriber implements stt.Transcriber at compile time.
var _ stt.Transcriber = (*Transcriber)(nil)
