package audio

import (
	"fmt"
	"math"
)

// Default edit smoothing windows. The seam crossfade hides the discontinuity
// left by a deletion; the patch fade blends a replacement clip into its
// surroundings.
const (
	DefaultSeamCrossfadeSec = 0.020
	DefaultPatchFadeSec     = 0.050
)

// SplicerOption is a functional option for configuring a [Splicer].
type SplicerOption func(*Splicer)

// WithSeamCrossfade sets the crossfade window applied at a deletion seam.
// Zero disables seam smoothing entirely.
func WithSeamCrossfade(sec float64) SplicerOption {
	return func(s *Splicer) {
		s.seamFadeSec = sec
	}
}

// WithPatchFade sets the fade window applied around a replacement clip.
func WithPatchFade(sec float64) SplicerOption {
	return func(s *Splicer) {
		s.patchFadeSec = sec
	}
}

// Splicer performs physical cut and replace edits on normalized audio.
// All operations are stateless and re-entrant: nothing outside the call's
// own arguments is read or written, and inputs are never mutated.
type Splicer struct {
	seamFadeSec  float64
	patchFadeSec float64
}

// NewSplicer returns a Splicer with the supplied options applied over the
// default smoothing windows.
func NewSplicer(opts ...SplicerOption) *Splicer {
	s := &Splicer{
		seamFadeSec:  DefaultSeamCrossfadeSec,
		patchFadeSec: DefaultPatchFadeSec,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// DeleteRange removes [startSec, endSec) from buf and joins the remaining
// halves with a short crossfade so the seam is not audible. Bounds are
// clamped into the buffer first; [ErrInvalidRange] is returned when the
// clamped range is empty or inverted.
func (s *Splicer) DeleteRange(buf *Buffer, startSec, endSec float64) (*Buffer, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}

	dur := buf.Duration()
	startSec = math.Max(0, startSec)
	endSec = math.Min(dur, endSec)
	if startSec >= endSec {
		return nil, fmt.Errorf("%w: delete [%.3f, %.3f) over %.3fs of audio", ErrInvalidRange, startSec, endSec, dur)
	}

	front := buf.Slice(0, startSec)
	back := buf.Slice(endSec, dur)
	return crossfade(front, back, s.seamFadeSec)
}

// PatchSegment replaces [startSec, endSec) of the original container bytes
// with the replacement clip and returns new container bytes.
//
// Both inputs must be at least [MinPayloadBytes] long and carry a container
// signature. A patch is the one operation where a headerless payload hints
// at an upstream failure rather than a raw stream, so no fallback applies.
// The replacement is converted to the original's profile when they differ.
//
// When the replacement is shorter than twice the patch fade window it is
// concatenated directly; fading would span the whole clip and distort it.
// Otherwise the pre-segment tail fades out, the replacement fades in and
// out, and the post-segment head fades in.
func (s *Splicer) PatchSegment(original, replacement []byte, startSec, endSec float64) ([]byte, error) {
	if Classify(original) != KindWAV {
		return nil, fmt.Errorf("%w: original is not a recognised container (%d bytes)", ErrInvalidInput, len(original))
	}
	if Classify(replacement) != KindWAV {
		return nil, fmt.Errorf("%w: replacement is not a recognised container (%d bytes)", ErrInvalidInput, len(replacement))
	}

	orig, err := Normalize(original)
	if err != nil {
		return nil, err
	}
	repl, err := Normalize(replacement)
	if err != nil {
		return nil, err
	}
	repl = Convert(repl, FormatOf(orig))

	dur := orig.Duration()
	startSec = math.Max(0, startSec)
	endSec = math.Min(dur, endSec)
	if endSec < startSec {
		endSec = startSec
	}

	front := orig.Slice(0, startSec)
	back := orig.Slice(endSec, dur)

	var out *Buffer
	if repl.Duration() < s.patchFadeSec*2 {
		out, err = Concat(front, repl, back)
	} else {
		out, err = Concat(
			fadeOut(front, s.patchFadeSec),
			fadeOut(fadeIn(repl, s.patchFadeSec), s.patchFadeSec),
			fadeIn(back, s.patchFadeSec),
		)
	}
	if err != nil {
		return nil, err
	}
	return out.WAV(), nil
}

// AddLeadingSilence prepends durationSec of silence at buf's own profile.
// Generated speech often starts mid-waveform; a silent lead-in gives it a
// clean attack. A non-positive duration returns a plain copy.
func (s *Splicer) AddLeadingSilence(buf *Buffer, durationSec float64) (*Buffer, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}
	if durationSec <= 0 {
		return buf.Clone(), nil
	}
	return Concat(SilenceLike(buf, durationSec), buf)
}
