package audio

import "math"

// Gain returns a copy of b with a uniform gain of db decibels applied.
// Positive values amplify, negative attenuate; samples clamp at the int16
// range. Zero dB and non-16-bit widths return a plain copy.
func Gain(b *Buffer, db float64) *Buffer {
	out := b.Clone()
	if db == 0 || b.SampleWidth != 2 {
		return out
	}

	scale := math.Pow(10, db/20)
	for f := range out.Frames() {
		scaleFrame16(out, f, scale)
	}
	return out
}
