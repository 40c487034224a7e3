// Package timeline maintains the sentence-level time index over a chapter's
// narration audio.
//
// A Timeline is a derived, recomputable index: the audio file is the durable
// artifact, and the index is rebuilt from transcription whenever needed. In
// between rebuilds the two re-indexing transforms in this package keep the
// index synchronized with physical audio edits analytically, without another
// transcription round trip.
//
// Both transforms are pure: they return a fresh Timeline and never touch the
// input, so a failed audio-side edit can simply discard the result.
package timeline

import (
	"errors"
	"fmt"
	"math"
)

// ErrEmptyRange is returned when a deletion range has zero or negative
// width. Callers treat it as an explicit no-op rather than corrupting the
// index with a degenerate transform.
var ErrEmptyRange = errors.New("timeline: deletion range is empty")

// Boundary jitter tolerances. Transcription timestamps and edit selections
// disagree by a few hundredths of a second; segments within the tolerance
// of a boundary count as being on its far side.
const (
	DefaultDeletionEpsilon = 0.05
	DefaultPatchEpsilon    = 0.1
)

// Segment is one sentence-level span of the index.
type Segment struct {
	// Start is the offset in seconds where the sentence begins.
	Start float64 `json:"start"`

	// End is the offset in seconds where the sentence ends. Never less
	// than Start.
	End float64 `json:"end"`

	// Text is the sentence content.
	Text string `json:"text"`
}

// Timeline is an ordered, non-overlapping sequence of segments.
type Timeline []Segment

/// Validate checks the index invariant: segments ordered by start time,
// non-overlapping, each with Start <= End and Start >= 0.
func (t Timeline) Validate() error {
	var errs []error
	for i, s := range t {
		if s.Start < 0 {
			errs = append(errs, fmt.Errorf("segment %d: negative start %.3f", i, s.Start))
		}
		if s.End < s.Start {
			errs = append(errs, fmt.Errorf("segment %d: inverted interval [%.3f, %.3f]", i, s.Start, s.End))
		}
		if i > 0 && t[i-1].End > s.Start {
			errs = append(errs, fmt.Errorf("segment %d: overlaps previous (%.3f > %.3f)", i, t[i-1].End, s.Start))
		}
	}
	return errors.Join(errs...)
}

// Clone returns a deep copy of the timeline.
func (t Timeline) Clone() Timeline {
	out := make(Timeline, len(t))
	copy(out, t)
	return out
}

// At returns the index of the segment containing the given time, or false
// when the time falls into a gap or outside the index.
func (t Timeline) At(sec float64) (int, bool) {
	for i, s := range t {
		if sec >= s.Start && sec < s.End {
			return i, true
		}
	}
	return 0, false
}

// Option adjusts the boundary tolerances of a transform.
type Option func(*tolerances)

type tolerances struct {
	deletion float64
	patch    float64
}

// WithDeletionEpsilon overrides the deletion boundary tolerance.
func WithDeletionEpsilon(sec float64) Option {
	return func(t *tolerances) { t.deletion = sec }
}

// WithPatchEpsilon overrides the patch boundary tolerance.
func WithPatchEpsilon(sec float64) Option {
	return func(t *tolerances) { t.patch = sec }
}

func applyOptions(opts []Option) tolerances {
	t := tolerances{
		deletion: DefaultDeletionEpsilon,
		patch:    DefaultPatchEpsilon,
	}
	for _, o := range opts {
		o(&t)
	}
	return t
}

// ApplyDeletion re-indexes the timeline after [delStart, delEnd) of audio
// was physically removed.
//
// Segments fully before the cut stay put. Segments fully after it (within
// the deletion tolerance of delEnd) shift left by the gap, floored at zero.
// A segment straddling the cut keeps its start and has its end pulled left,
// floored at its own start so it cannot invert.
//
// Returns the input unchanged together with [ErrEmptyRange] when the range
// has no width.
func ApplyDeletion(t Timeline, delStart, delEnd float64, opts ...Option) (Timeline, error) {
	if delEnd <= delStart {
		return t, fmt.Errorf("%w: [%.3f, %.3f)", ErrEmptyRange, delStart, delEnd)
	}
	tol := applyOptions(opts)
	gap := delEnd - delStart

	out := make(Timeline, 0, len(t))
	for _, s := range t {
		switch {
		case s.End <= delStart:
			out = append(out, s)
		case s.Start >= delEnd-tol.deletion:
			out = append(out, Segment{
				Start: math.Max(0, s.Start-gap),
				End:   math.Max(0, s.End-gap),
				Text:  s.Text,
			})
		default:
			out = append(out, Segment{
				Start: s.Start,
				End:   math.Max(s.Start, s.End-gap),
				Text:  s.Text,
			})
		}
	}
	return out, nil
}

// ApplyPatch re-indexes the timeline after [targetStart, targetEnd) of
// audio was replaced by a clip of newDuration seconds.
//
// Segments starting at or after targetEnd (within the patch tolerance)
// shift by the duration difference. A segment overlapping the patched span
// has its end adjusted by the difference and keeps its start. The overlap
// handling assumes the patched span maps onto a single segment; multi-
// segment overlap is not decomposed.
func ApplyPatch(t Timeline, targetStart, targetEnd, newDuration float64, opts ...Option) Timeline {
	tol := applyOptions(opts)
	diff := newDuration - (targetEnd - targetStart)

	out := make(Timeline, 0, len(t))
	for _, s := range t {
		switch {
		case s.Start >= targetEnd-tol.patch:
			out = append(out, Segment{Start: s.Start + diff, End: s.End + diff, Text: s.Text})
		case s.End > targetStart && s.Start < targetEnd:
			out = append(out, Segment{Start: s.Start, End: s.End + diff, Text: s.Text})
		default:
			out = append(out, s)
		}
	}
	return out
}
