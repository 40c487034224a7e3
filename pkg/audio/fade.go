package audio

// Fade helpers operate on 16-bit PCM only, which is the profile every
// generation backend produces. Buffers with other widths pass through
// unchanged; the splicer falls back to plain concatenation for them rather
// than distorting samples it cannot scale safely.

// fadeIn returns a copy of b whose first durationSec ramps linearly from
// silence to full gain. The fade window is clamped to the buffer length.
func fadeIn(b *Buffer, durationSec float64) *Buffer {
	return applyRamp(b, durationSec, true)
}

// fadeOut returns a copy of b whose last durationSec ramps linearly from
// full gain to silence.
func fadeOut(b *Buffer, durationSec float64) *Buffer {
	return applyRamp(b, durationSec, false)
}

func applyRamp(b *Buffer, durationSec float64, in bool) *Buffer {
	if b.SampleWidth != 2 || durationSec <= 0 {
		return b.Clone()
	}

	out := b.Clone()
	frames := out.Frames()
	rampFrames := int(durationSec * float64(out.SampleRate))
	if rampFrames > frames {
		rampFrames = frames
	}
	if rampFrames == 0 {
		return out
	}

	for f := range rampFrames {
		gain := float64(f) / float64(rampFrames)
		frame := f
		if !in {
			frame = frames - 1 - f
		}
		scaleFrame16(out, frame, gain)
	}
	return out
}

// crossfade joins a and b with an overlap of durationSec: a's tail fades out
// while b's head fades in, and the two are mixed sample-by-sample. Both
// buffers must share a profile. When either side is shorter than the overlap
// (or the width is not 16-bit) the buffers are concatenated without a seam.
func crossfade(a, b *Buffer, durationSec float64) (*Buffer, error) {
	overlap := int(durationSec * float64(a.SampleRate))
	if a.SampleWidth != 2 || overlap <= 0 || a.Frames() < overlap || b.Frames() < overlap {
		return Concat(a, b)
	}
	if a.Channels != b.Channels || a.SampleWidth != b.SampleWidth || a.SampleRate != b.SampleRate {
		return Concat(a, b) // Concat reports the profile mismatch
	}

	frameSize := a.FrameSize()
	aKeep := a.Frames() - overlap

	out := &Buffer{
		Data:        make([]byte, 0, aKeep*frameSize+len(b.Data)),
		Channels:    a.Channels,
		SampleWidth: a.SampleWidth,
		SampleRate:  a.SampleRate,
	}
	out.Data = append(out.Data, a.Data[:aKeep*frameSize]...)

	// Mixed overlap region.
	for f := range overlap {
		gainOut := 1 - float64(f)/float64(overlap)
		gainIn := float64(f) / float64(overlap)
		for c := range a.Channels {
			off := (aKeep+f)*frameSize + c*2
			sa := float64(int16(a.Data[off]) | int16(a.Data[off+1])<<8)
			boff := f*frameSize + c*2
			sb := float64(int16(b.Data[boff]) | int16(b.Data[boff+1])<<8)
			mixed := sample16Bytes(sa*gainOut + sb*gainIn)
			out.Data = append(out.Data, mixed[0], mixed[1])
		}
	}

	out.Data = append(out.Data, b.Data[overlap*frameSize:]...)
	return out, nil
}

// scaleFrame16 multiplies every channel sample of the given frame by gain.
func scaleFrame16(b *Buffer, frame int, gain float64) {
	frameSize := b.FrameSize()
	for c := range b.Channels {
		off := frame*frameSize + c*2
		s := float64(int16(b.Data[off]) | int16(b.Data[off+1])<<8)
		sb := sample16Bytes(s * gain)
		b.Data[off] = sb[0]
		b.Data[off+1] = sb[1]
	}
}

// sample16Bytes clamps a float sample to the int16 range and returns its
// little-endian encoding.
func sample16Bytes(v float64) [2]byte {
	if v > 32767 {
		v = 32767
	} else if v < -32768 {
		v = -32768
	}
	s := int16(v)
	return [2]byte{byte(s), byte(s >> 8)}
}
