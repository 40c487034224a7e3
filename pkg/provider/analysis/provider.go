// Package analysis defines the Analyzer interface for advisory LLM-backed
// review of generated narration.
//
// All results in this package are advisory. Nothing here gates an edit or a
// commit; the studio surfaces reports and suggestions to the operator, who
// decides what to regenerate.
package analysis

import (
	"context"
	"errors"
)

// ErrUnparsableReport is returned when a model response cannot be reduced
// to a structured report.
var ErrUnparsableReport = errors.New("analysis: response not parsable as report")

// VoiceReport is the result of comparing generated narration against a
// reference voice.
type VoiceReport struct {
	// Score is the overall similarity on a 0-100 scale.
	Score float64

	// Explanation is the model's reasoning: tone, pacing and identity
	// observations.
	Explanation string
}

// Analyzer is the abstraction over any advisory analysis backend.
type Analyzer interface {
	// CompareVoices scores how closely the target narration matches the
	// reference voice.
	CompareVoices(ctx context.Context, reference, target []byte) (*VoiceReport, error)

	// SuggestStyle derives a reusable style instruction from a reference
	// voice clip, suitable for a synthesis request's StyleInstruction.
	SuggestStyle(ctx context.Context, reference []byte) (string, error)

	// SuggestCorrections reviews a transcription mismatch and proposes
	// script or regeneration fixes.
	SuggestCorrections(ctx context.Context, original, transcribed string) (string, error)
}
