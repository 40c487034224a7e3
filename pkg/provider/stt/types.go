package stt

import "fmt"

// Fragment is one timed span of recognised speech. Backends emit fragments
// at whatever granularity they natively produce (whisper segments, verbose
// transcription segments); the timeline merger regroups them into sentences.
type Fragment struct {
	// Start is the span's start offset in seconds from the beginning of
	// the audio.
	Start float64

	// End is the span's end offset in seconds. Always >= Start after
	// validation.
	End float64

	// Text is the recognised speech, whitespace-trimmed.
	Text string
}

// Valid reports whether the fragment can participate in timeline merging:
// non-negative start, end at or after start, non-empty text.
func (f Fragment) Valid() bool {
	return f.Start >= 0 && f.End >= f.Start && f.Text != ""
}

// String formats the fragment for logs.
func (f Fragment) String() string {
	return fmt.Sprintf("[%.2f-%.2f] %s", f.Start, f.End, f.Text)
}

// Hint carries advisory recognition parameters. Backends ignore fields they
// do not support.
type Hint struct {
	// Language is a BCP-47 language tag (e.g. "en", "ko"). Empty lets the
	// backend auto-detect.
	Language string

	// Prompt is free-form context for the recogniser, typically the chapter
	// script. Backends that accept an initial prompt use it to bias
	// recognition towards the expected vocabulary.
	Prompt string
}
