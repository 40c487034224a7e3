// Package mock provides test doubles for the tts package interfaces.
//
// Use Provider to hand controlled audio payloads to code under test and
// inspect the synthesis requests it issued.
package mock

import (
	"context"
	"sync"

	"github.com/librettoapp/libretto/pkg/provider/tts"
)

// Provider is a mock implementation of tts.Provider.
type Provider struct {
	mu sync.Mutex

	// Audio is returned by every Synthesize call when SynthesizeFunc is
	// nil.
	Audio []byte

	// Err, if non-nil, is returned as the error from Synthesize.
	Err error

	// SynthesizeFunc, if non-nil, overrides the canned Audio/Err pair for
	// per-call behaviour.
	SynthesizeFunc func(ctx context.Context, req tts.Request) ([]byte, error)

	// Voices is returned by ListVoices.
	Voices []tts.VoiceProfile

	// SynthesizeCalls records every request passed to Synthesize in order.
	SynthesizeCalls []tts.Request
}

// Synthesize records the call and returns the configured result.
func (p *Provider) Synthesize(ctx context.Context, req tts.Request) ([]byte, error) {
	p.mu.Lock()
	p.SynthesizeCalls = append(p.SynthesizeCalls, req)
	fn := p.SynthesizeFunc
	out := p.Audio
	err := p.Err
	p.mu.Unlock()

	if fn != nil {
		return fn(ctx, req)
	}
	if err != nil {
		return nil, err
	}
	cp := make([]byte, len(out))
	copy(cp, out)
	return cp, nil
}

// ListVoices returns the configured voice list.
func (p *Provider) ListVoices(_ context.Context) ([]tts.VoiceProfile, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Voices, nil
}

// CallCount returns the number of Synthesize calls. Thread-safe.
func (p *Provider) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.SynthesizeCalls)
}

// Reset clears all recorded calls. Thread-safe.
func (p *Provider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.SynthesizeCalls = nil
}

// Ensure Provider implements tts.Provider at compile time.
var _ tts.Provider = (*Provider)(nil)
