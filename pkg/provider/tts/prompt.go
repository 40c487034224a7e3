package tts

import (
	"fmt"
	"strings"

	"github.com/librettoapp/libretto/pkg/audio"
)

// narratorRole is the baseline persona sent to every backend that accepts
// free-form instructions.
const narratorRole = "You are a professional audiobook narrator and mastering engineer. " +
	"Produce high-fidelity speech that sounds like a professional broadcast recording."

// narrationGuidelines keep long-form narration uniform across segments.
// Regenerated patches must splice invisibly into audio produced hours
// earlier, so every instruction here targets consistency.
const narrationGuidelines = `Narration guidelines, follow strictly:
1. Tone: soft, calm, easy-listening book-reading tone with natural pauses.
2. Pitch: neutral and held constant from first word to last.
3. Speaking rate: slow and steady, uniform throughout.
4. Volume: consistent and balanced for the whole segment.
5. Opening: no strong intonation on the first word; start flat and stable.
6. Emphasis: none; deliver every word evenly.
7. Pauses: only short natural pauses between sentences, no long gaps.
8. Breathing: inaudible; no breath sounds inside or between sentences, and silence after the final word.
9. Sibilance: soften fricatives so they never sound sharp or harsh.
10. Consistency: identical pitch, tone, speed and style across the segment and across every regeneration.
11. Naturalness: no hesitation, stutter, distortion or robotic artifacts.
12. Quality: clean, clear, broadcast-grade output.`

// BuildInstruction assembles the full instruction text for a request:
// narrator role, narration guidelines, the caller's style direction and the
// speed adjustment. Backends that take a single instruction string pass
// this verbatim.
func BuildInstruction(style string, speedFactor float64) string {
	var b strings.Builder
	b.WriteString(narratorRole)
	b.WriteString("\n\n")
	b.WriteString(narrationGuidelines)

	if style = strings.TrimSpace(style); style != "" {
		b.WriteString("\n\nStyle instruction:\n")
		b.WriteString(style)
	}

	if speedFactor > 0 && speedFactor != 1.0 {
		fmt.Fprintf(&b, "\n\nSpeed control:\nThe base rate is slow per the guidelines. Apply a speed multiplier of %.2fx to that base rate.", speedFactor)
	}

	return b.String()
}

// ApplyVolume applies the request's VolumeDelta to finished WAV bytes.
// A zero delta returns the input unchanged. Backends call this after
// synthesis so the gain stage behaves identically regardless of provider.
func ApplyVolume(wav []byte, db float64) ([]byte, error) {
	if db == 0 {
		return wav, nil
	}
	buf, err := audio.Normalize(wav)
	if err != nil {
		return nil, fmt.Errorf("tts: volume adjust: %w", err)
	}
	return audio.Gain(buf, db).WAV(), nil
}
