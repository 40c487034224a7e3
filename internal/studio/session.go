// Package studio coordinates audio edits with their timeline updates and
// drives batch narration generation. A [Session] owns one rendered chunk of
// a chapter: its audio file on disk and the in-memory timeline derived from
// it. Every edit either commits both or changes neither.
package studio

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/librettoapp/libretto/internal/library"
	"github.com/librettoapp/libretto/internal/observe"
	"github.com/librettoapp/libretto/internal/timeline"
	"github.com/librettoapp/libretto/pkg/audio"
	"github.com/librettoapp/libretto/pkg/provider/stt"
)

// PatchLeadingSilenceSec is the silent lead-in prepended to replacement
// audio before it is spliced in. Shorter than the fresh-generation lead-in
// because the patch sits inside already-paced narration.
const PatchLeadingSilenceSec = 0.1

// Session binds one chunk's audio file to its timeline. All mutating
// operations serialize on an internal mutex; the deletion and patch
// transforms are not commutative, so concurrent commits against the same
// chunk must not interleave.
type Session struct {
	chapter     *library.Chapter
	index       int
	splicer     *audio.Splicer
	transcriber stt.Transcriber
	tlOpts      []timeline.Option
	metrics     *observe.Metrics

	mu sync.Mutex
	tl timeline.Timeline
}

// SessionOption configures a [Session].
type SessionOption func(*Session)

// WithSplicer overrides the splicer used for audio edits.
func WithSplicer(s *audio.Splicer) SessionOption {
	return func(sess *Session) {
		if s != nil {
			sess.splicer = s
		}
	}
}

// WithTranscriber supplies the transcriber used by [Session.RebuildTimeline].
func WithTranscriber(t stt.Transcriber) SessionOption {
	return func(sess *Session) {
		sess.transcriber = t
	}
}

// WithTimelineOptions forwards options to the timeline transforms.
func WithTimelineOptions(opts ...timeline.Option) SessionOption {
	return func(sess *Session) {
		sess.tlOpts = opts
	}
}

// WithMetrics attaches a metrics instance. When absent, edits are not counted.
func WithMetrics(m *observe.Metrics) SessionOption {
	return func(sess *Session) {
		sess.metrics = m
	}
}

// NewSession creates a session for the given chunk of a chapter. The
// timeline starts empty; load one with [Session.SetTimeline] or build it
// with [Session.RebuildTimeline].
func NewSession(ch *library.Chapter, index int, opts ...SessionOption) *Session {
	s := &Session{
		chapter: ch,
		index:   index,
		splicer: audio.NewSplicer(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Timeline returns a copy of the current timeline.
func (s *Session) Timeline() timeline.Timeline {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tl.Clone()
}

// SetTimeline replaces the current timeline after validating it.
func (s *Session) SetTimeline(tl timeline.Timeline) error {
	if err := tl.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.tl = tl.Clone()
	s.mu.Unlock()
	return nil
}

// DeleteRange cuts [startSec, endSec) from the chunk's audio and re-indexes
// the timeline to match. The audio file is rewritten atomically before the
// in-memory timeline is replaced; a failure at any point leaves both as
// they were. A zero-length range is rejected with [timeline.ErrEmptyRange]
// before any audio is touched.
func (s *Session) DeleteRange(ctx context.Context, startSec, endSec float64) error {
	if endSec <= startSec {
		return fmt.Errorf("studio: delete [%.3f, %.3f): %w", startSec, endSec, timeline.ErrEmptyRange)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	wav, err := s.chapter.ReadAudio(s.index)
	if err != nil {
		return fmt.Errorf("studio: read audio for chunk %d: %w", s.index, err)
	}
	buf, err := audio.Normalize(wav)
	if err != nil {
		return fmt.Errorf("studio: normalize chunk %d: %w", s.index, err)
	}

	start := time.Now()
	cut, err := s.splicer.DeleteRange(buf, startSec, endSec)
	if err != nil {
		return fmt.Errorf("studio: delete range: %w", err)
	}

	next, err := timeline.ApplyDeletion(s.tl, startSec, endSec, s.tlOpts...)
	if err != nil {
		return fmt.Errorf("studio: re-index after delete: %w", err)
	}

	if err := s.chapter.WriteAudio(s.index, cut.WAV()); err != nil {
		return fmt.Errorf("studio: commit audio for chunk %d: %w", s.index, err)
	}
	s.tl = next

	if s.metrics != nil {
		s.metrics.RecordEdit(ctx, "delete")
		s.metrics.SpliceDuration.Record(ctx, time.Since(start).Seconds())
	}
	slog.Info("deleted audio range",
		"chapter", s.chapter.Name,
		"chunk", s.index,
		"start_sec", startSec,
		"end_sec", endSec,
		"segments", len(next),
	)
	return nil
}

// PatchSegment replaces [targetStart, targetEnd) of the chunk's audio with
// the replacement clip and re-indexes the timeline by the duration
// difference. The replacement gets a short silent lead-in before splicing.
// Commit semantics match [Session.DeleteRange].
func (s *Session) PatchSegment(ctx context.Context, replacement []byte, targetStart, targetEnd float64) error {
	if targetEnd <= targetStart {
		return fmt.Errorf("studio: patch [%.3f, %.3f): %w", targetStart, targetEnd, audio.ErrInvalidRange)
	}

	// Replacement clips come from a generation call; a headerless payload
	// here means the upstream failed, not that the caller sent a raw stream.
	if audio.Classify(replacement) != audio.KindWAV {
		return fmt.Errorf("studio: replacement is not a recognised container (%d bytes): %w", len(replacement), audio.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	wav, err := s.chapter.ReadAudio(s.index)
	if err != nil {
		return fmt.Errorf("studio: read audio for chunk %d: %w", s.index, err)
	}

	repl, err := audio.Normalize(replacement)
	if err != nil {
		return fmt.Errorf("studio: normalize replacement: %w", err)
	}
	padded, err := s.splicer.AddLeadingSilence(repl, PatchLeadingSilenceSec)
	if err != nil {
		return fmt.Errorf("studio: pad replacement: %w", err)
	}
	newDuration := padded.Duration()

	start := time.Now()
	patched, err := s.splicer.PatchSegment(wav, padded.WAV(), targetStart, targetEnd)
	if err != nil {
		return fmt.Errorf("studio: patch segment: %w", err)
	}

	next := timeline.ApplyPatch(s.tl, targetStart, targetEnd, newDuration, s.tlOpts...)

	if err := s.chapter.WriteAudio(s.index, patched); err != nil {
		return fmt.Errorf("studio: commit audio for chunk %d: %w", s.index, err)
	}
	s.tl = next

	if s.metrics != nil {
		s.metrics.RecordEdit(ctx, "patch")
		s.metrics.SpliceDuration.Record(ctx, time.Since(start).Seconds())
	}
	slog.Info("patched audio segment",
		"chapter", s.chapter.Name,
		"chunk", s.index,
		"target_start", targetStart,
		"target_end", targetEnd,
		"new_duration", newDuration,
		"segments", len(next),
	)
	return nil
}

// RebuildTimeline discards the current timeline and rebuilds it from
// scratch: re-transcribe the chunk's audio and merge the fragments into
// sentence segments. Requires a transcriber.
func (s *Session) RebuildTimeline(ctx context.Context, hint stt.Hint) error {
	if s.transcriber == nil {
		return fmt.Errorf("studio: rebuild timeline for chunk %d: no transcriber configured", s.index)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	wav, err := s.chapter.ReadAudio(s.index)
	if err != nil {
		return fmt.Errorf("studio: read audio for chunk %d: %w", s.index, err)
	}
	buf, err := audio.Normalize(wav)
	if err != nil {
		return fmt.Errorf("studio: normalize chunk %d: %w", s.index, err)
	}

	start := time.Now()
	frags, err := s.transcriber.Transcribe(ctx, wav, hint)
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordProviderError(ctx, "stt", "transcribe")
		}
		return fmt.Errorf("studio: transcribe chunk %d: %w", s.index, err)
	}
	if s.metrics != nil {
		s.metrics.TranscriptionDuration.Record(ctx, time.Since(start).Seconds())
	}

	s.tl = timeline.Merge(frags, buf.Duration())
	slog.Info("rebuilt timeline",
		"chapter", s.chapter.Name,
		"chunk", s.index,
		"fragments", len(frags),
		"segments", len(s.tl),
	)
	return nil
}
