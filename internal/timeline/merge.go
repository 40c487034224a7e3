package timeline

import (
	"strings"

	"github.com/librettoapp/libretto/pkg/provider/stt"
)

// sentenceTerminators are the only trustworthy sentence boundary signal in
// transcription output.
const sentenceTerminators = ".?!"

// Merge coalesces raw transcription fragments into a sentence-bounded
// Timeline.
//
// Transcription services emit breath/pause-bounded fragments, not whole
// sentences. Merge accumulates consecutive fragments until the accumulated
// text ends in a sentence terminator, then closes the segment. Fragments
// with inverted times or starting past the measured audio duration are
// dropped; end times overshooting the duration are clamped. A trailing
// accumulator without a terminator is emitted anyway so un-terminated
// content is never silently lost.
func Merge(frags []stt.Fragment, totalDurationSec float64) Timeline {
	var out Timeline
	var acc *Segment

	for _, f := range frags {
		if f.Start >= f.End || f.Start >= totalDurationSec {
			continue
		}
		if f.End > totalDurationSec {
			f.End = totalDurationSec
		}

		text := strings.TrimSpace(f.Text)
		if acc == nil {
			acc = &Segment{Start: f.Start, End: f.End, Text: text}
		} else {
			acc.Text = strings.TrimSpace(acc.Text) + " " + text
			acc.End = f.End
		}

		if endsSentence(acc.Text) {
			out = append(out, *acc)
			acc = nil
		}
	}

	if acc != nil {
		out = append(out, *acc)
	}
	return out
}

// endsSentence reports whether the text's last character is a sentence
// terminator.
func endsSentence(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	return strings.ContainsRune(sentenceTerminators, rune(text[len(text)-1]))
}
