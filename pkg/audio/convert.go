package audio

import "log/slog"

// Format describes the target profile for a conversion.
type Format struct {
	SampleRate  int
	Channels    int
	SampleWidth int
}

// FormatOf returns the buffer's format triple.
func FormatOf(b *Buffer) Format {
	return Format{SampleRate: b.SampleRate, Channels: b.Channels, SampleWidth: b.SampleWidth}
}

// Convert returns a copy of b converted to the target format. When the
// source already matches the target the original buffer is returned
// unchanged (zero allocation).
//
// Conversion runs on a 16-bit intermediate: width is normalised to 16-bit
// first, then the sample rate, then the channel layout, and finally the
// target width is applied. Width conversion covers the profiles the pipeline
// actually produces (8-bit unsigned, 16-bit and 32-bit signed little-endian
// PCM).
func Convert(b *Buffer, target Format) *Buffer {
	if b.SampleRate == target.SampleRate && b.Channels == target.Channels && b.SampleWidth == target.SampleWidth {
		return b
	}

	slog.Debug("audio: converting format",
		"fromRate", b.SampleRate, "fromChannels", b.Channels, "fromWidth", b.SampleWidth,
		"toRate", target.SampleRate, "toChannels", target.Channels, "toWidth", target.SampleWidth,
	)

	work := toWidth16(b.Data, b.SampleWidth)

	if b.SampleRate != target.SampleRate {
		if b.Channels == 1 {
			work = ResampleMono16(work, b.SampleRate, target.SampleRate)
		} else {
			work = ResampleStereo16(work, b.SampleRate, target.SampleRate)
		}
	}

	if b.Channels != target.Channels {
		if b.Channels == 1 && target.Channels == 2 {
			work = MonoToStereo(work)
		} else if b.Channels == 2 && target.Channels == 1 {
			work = StereoToMono(work)
		}
	}

	return &Buffer{
		Data:        convertWidth16(work, target.SampleWidth),
		Channels:    target.Channels,
		SampleWidth: target.SampleWidth,
		SampleRate:  target.SampleRate,
	}
}

// toWidth16 widens or narrows PCM samples of the given width to 16-bit
// signed little-endian. 8-bit input is treated as unsigned per the WAV
// convention; 32-bit input is signed.
func toWidth16(pcm []byte, width int) []byte {
	switch width {
	case 2:
		return pcm
	case 1:
		out := make([]byte, len(pcm)*2)
		for i, s := range pcm {
			v := (int16(s) - 128) << 8
			out[i*2] = byte(v)
			out[i*2+1] = byte(v >> 8)
		}
		return out
	case 4:
		n := len(pcm) / 4
		out := make([]byte, n*2)
		for i := range n {
			v := int32(pcm[i*4]) | int32(pcm[i*4+1])<<8 | int32(pcm[i*4+2])<<16 | int32(pcm[i*4+3])<<24
			s := int16(v >> 16)
			out[i*2] = byte(s)
			out[i*2+1] = byte(s >> 8)
		}
		return out
	default:
		return pcm
	}
}

// convertWidth16 converts 16-bit signed PCM to the given output width.
func convertWidth16(pcm []byte, width int) []byte {
	switch width {
	case 2:
		return pcm
	case 1:
		n := len(pcm) / 2
		out := make([]byte, n)
		for i := range n {
			v := int16(pcm[i*2]) | int16(pcm[i*2+1])<<8
			out[i] = byte((v >> 8) + 128)
		}
		return out
	case 4:
		n := len(pcm) / 2
		out := make([]byte, n*4)
		for i := range n {
			v := int32(int16(pcm[i*2])|int16(pcm[i*2+1])<<8) << 16
			out[i*4] = byte(v)
			out[i*4+1] = byte(v >> 8)
			out[i*4+2] = byte(v >> 16)
			out[i*4+3] = byte(v >> 24)
		}
		return out
	default:
		return pcm
	}
}

// MonoToStereo duplicates each int16 mono sample into a stereo L+R pair.
// Input must be little-endian int16 PCM (2 bytes per sample).
func MonoToStereo(pcm []byte) []byte {
	out := make([]byte, (len(pcm)/2)*4)
	for i := 0; i+1 < len(pcm); i += 2 {
		lo, hi := pcm[i], pcm[i+1]
		j := i * 2
		out[j] = lo
		out[j+1] = hi
		out[j+2] = lo
		out[j+3] = hi
	}
	return out
}

// StereoToMono averages L+R per stereo frame (4 bytes) to produce mono
// output. Uses int32 arithmetic to prevent overflow and clamps to the int16
// range.
func StereoToMono(pcm []byte) []byte {
	frames := len(pcm) / 4
	out := make([]byte, frames*2)
	for i := range frames {
		lSample := int32(int16(pcm[i*4]) | int16(pcm[i*4+1])<<8)
		rSample := int32(int16(pcm[i*4+2]) | int16(pcm[i*4+3])<<8)
		avg := (lSample + rSample) / 2

		if avg > 32767 {
			avg = 32767
		} else if avg < -32768 {
			avg = -32768
		}

		out[i*2] = byte(avg)
		out[i*2+1] = byte(avg >> 8)
	}
	return out
}

// ResampleMono16 resamples 16-bit mono PCM from srcRate to dstRate using
// linear interpolation. The input must be little-endian int16 samples.
// If srcRate == dstRate, the input is returned unchanged.
func ResampleMono16(pcm []byte, srcRate, dstRate int) []byte {
	if srcRate <= 0 || dstRate <= 0 {
		return pcm
	}
	if srcRate == dstRate || len(pcm) < 2 {
		return pcm
	}
	srcSamples := len(pcm) / 2
	dstSamples := int(int64(srcSamples) * int64(dstRate) / int64(srcRate))
	if dstSamples == 0 {
		return nil
	}

	out := make([]byte, dstSamples*2)
	ratio := float64(srcRate) / float64(dstRate)

	for i := range dstSamples {
		srcPos := float64(i) * ratio
		srcIdx := int(srcPos)
		frac := srcPos - float64(srcIdx)

		s0 := int16(pcm[srcIdx*2]) | int16(pcm[srcIdx*2+1])<<8
		var s1 int16
		if srcIdx+1 < srcSamples {
			s1 = int16(pcm[(srcIdx+1)*2]) | int16(pcm[(srcIdx+1)*2+1])<<8
		} else {
			s1 = s0
		}

		interpolated := int16(float64(s0)*(1-frac) + float64(s1)*frac)
		out[i*2] = byte(interpolated)
		out[i*2+1] = byte(interpolated >> 8)
	}
	return out
}

// ResampleStereo16 resamples 16-bit stereo PCM from srcRate to dstRate using
// linear interpolation. Each stereo frame is 4 bytes (L+R interleaved).
// If srcRate == dstRate, the input is returned unchanged.
func ResampleStereo16(pcm []byte, srcRate, dstRate int) []byte {
	if srcRate <= 0 || dstRate <= 0 {
		return pcm
	}
	if srcRate == dstRate || len(pcm) < 4 {
		return pcm
	}
	srcFrames := len(pcm) / 4
	dstFrames := int(int64(srcFrames) * int64(dstRate) / int64(srcRate))
	if dstFrames == 0 {
		return nil
	}

	out := make([]byte, dstFrames*4)
	ratio := float64(srcRate) / float64(dstRate)

	for i := range dstFrames {
		srcPos := float64(i) * ratio
		srcIdx := int(srcPos)
		frac := srcPos - float64(srcIdx)

		l0 := int16(pcm[srcIdx*4]) | int16(pcm[srcIdx*4+1])<<8
		r0 := int16(pcm[srcIdx*4+2]) | int16(pcm[srcIdx*4+3])<<8

		var l1, r1 int16
		if srcIdx+1 < srcFrames {
			l1 = int16(pcm[(srcIdx+1)*4]) | int16(pcm[(srcIdx+1)*4+1])<<8
			r1 = int16(pcm[(srcIdx+1)*4+2]) | int16(pcm[(srcIdx+1)*4+3])<<8
		} else {
			l1 = l0
			r1 = r0
		}

		lInterp := int16(float64(l0)*(1-frac) + float64(l1)*frac)
		rInterp := int16(float64(r0)*(1-frac) + float64(r1)*frac)

		out[i*4] = byte(lInterp)
		out[i*4+1] = byte(lInterp >> 8)
		out[i*4+2] = byte(rInterp)
		out[i*4+3] = byte(rInterp >> 8)
	}
	return out
}
