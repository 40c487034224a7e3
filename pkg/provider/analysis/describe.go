package analysis

import (
	"fmt"
	"math"
	"strings"

	"github.com/librettoapp/libretto/pkg/audio"
)

// describeAudio reduces an audio payload to a textual feature summary that
// can travel inside a plain-text prompt. Text-only completion backends
// cannot carry waveforms, so the comparison works from measured features
// instead.
func describeAudio(label string, payload []byte) (string, error) {
	buf, err := audio.Normalize(payload)
	if err != nil {
		return "", fmt.Errorf("analysis: describe %s: %w", label, err)
	}

	rms, peak := levels(buf)
	var b strings.Builder
	fmt.Fprintf(&b, "[%s]\n", label)
	fmt.Fprintf(&b, "Duration: %.2f s\n", buf.Duration())
	fmt.Fprintf(&b, "Sample rate: %d Hz, channels: %d, width: %d bit\n", buf.SampleRate, buf.Channels, buf.SampleWidth*8)
	fmt.Fprintf(&b, "RMS level: %.1f dBFS\n", rms)
	fmt.Fprintf(&b, "Peak level: %.1f dBFS\n", peak)
	return b.String(), nil
}

// levels returns the RMS and peak level of a buffer in dBFS. Non-16-bit
// buffers report silence; the pipeline never produces them.
func levels(b *audio.Buffer) (rms, peak float64) {
	if b.SampleWidth != 2 || len(b.Data) < 2 {
		return -96, -96
	}

	var sumSquares float64
	var maxAbs float64
	n := len(b.Data) / 2
	for i := range n {
		s := float64(int16(b.Data[i*2]) | int16(b.Data[i*2+1])<<8)
		sumSquares += s * s
		if a := math.Abs(s); a > maxAbs {
			maxAbs = a
		}
	}

	toDB := func(v float64) float64 {
		if v <= 0 {
			return -96
		}
		return 20 * math.Log10(v/32768.0)
	}
	return toDB(math.Sqrt(sumSquares / float64(n))), toDB(maxAbs)
}
