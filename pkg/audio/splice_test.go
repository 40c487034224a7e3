package audio_test

import (
	"errors"
	"testing"

	"github.com/librettoapp/libretto/pkg/audio"
)

// monoBuffer returns a mono 16-bit buffer of the given duration at the
// default sample rate.
func monoBuffer(durationSec float64) *audio.Buffer {
	frames := int(float64(audio.DefaultSampleRate) * durationSec)
	return &audio.Buffer{
		Data:        tonePCM(frames),
		Channels:    1,
		SampleWidth: 2,
		SampleRate:  audio.DefaultSampleRate,
	}
}

func TestSplicer_DeleteRange(t *testing.T) {
	t.Parallel()

	s := audio.NewSplicer()
	buf := monoBuffer(10)

	out, err := s.DeleteRange(buf, 2, 4)
	if err != nil {
		t.Fatalf("DeleteRange: %v", err)
	}

	// Two seconds removed, minus the crossfade overlap at the seam.
	wantFrames := buf.Frames() - 2*audio.DefaultSampleRate - int(audio.DefaultSeamCrossfadeSec*audio.DefaultSampleRate)
	if got := out.Frames(); got != wantFrames {
		t.Errorf("frames after delete = %d, want %d", got, wantFrames)
	}
}

func TestSplicer_DeleteRange_ClampsBounds(t *testing.T) {
	t.Parallel()

	s := audio.NewSplicer(audio.WithSeamCrossfade(0))
	buf := monoBuffer(5)

	// Bounds wildly outside the buffer clamp to [0, 5): everything goes.
	out, err := s.DeleteRange(buf, -10, 100)
	if err != nil {
		t.Fatalf("DeleteRange: %v", err)
	}
	if out.Frames() != 0 {
		t.Errorf("frames after full-range delete = %d, want 0", out.Frames())
	}
}

func TestSplicer_DeleteRange_EmptyRange(t *testing.T) {
	t.Parallel()

	s := audio.NewSplicer()
	buf := monoBuffer(5)

	for _, tc := range []struct {
		name       string
		start, end float64
	}{
		{"inverted", 4, 2},
		{"zero width", 3, 3},
		{"entirely past the end", 6, 9},
	} {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if _, err := s.DeleteRange(buf, tc.start, tc.end); !errors.Is(err, audio.ErrInvalidRange) {
				t.Errorf("DeleteRange(%f, %f) err = %v, want ErrInvalidRange", tc.start, tc.end, err)
			}
		})
	}
}

func TestSplicer_PatchSegment_ShortReplacementConcatsDirectly(t *testing.T) {
	t.Parallel()

	s := audio.NewSplicer()
	orig := monoBuffer(4)
	// 60 ms replacement: shorter than twice the 50 ms fade window, so the
	// splicer must concatenate without touching a single sample.
	repl := monoBuffer(0.060)

	out, err := s.PatchSegment(orig.WAV(), repl.WAV(), 1, 2)
	if err != nil {
		t.Fatalf("PatchSegment: %v", err)
	}
	got, err := audio.Normalize(out)
	if err != nil {
		t.Fatalf("Normalize(output): %v", err)
	}

	front := orig.Slice(0, 1)
	back := orig.Slice(2, orig.Duration())
	if want := front.Frames() + repl.Frames() + back.Frames(); got.Frames() != want {
		t.Errorf("output frames = %d, want %d (front+replacement+back)", got.Frames(), want)
	}
}

func TestSplicer_PatchSegment_LongReplacementKeepsLength(t *testing.T) {
	t.Parallel()

	s := audio.NewSplicer()
	orig := monoBuffer(4)
	repl := monoBuffer(1.5)

	out, err := s.PatchSegment(orig.WAV(), repl.WAV(), 1, 2)
	if err != nil {
		t.Fatalf("PatchSegment: %v", err)
	}
	got, err := audio.Normalize(out)
	if err != nil {
		t.Fatalf("Normalize(output): %v", err)
	}

	// Fades attenuate in place; they never add or drop frames.
	front := orig.Slice(0, 1)
	back := orig.Slice(2, orig.Duration())
	if want := front.Frames() + repl.Frames() + back.Frames(); got.Frames() != want {
		t.Errorf("output frames = %d, want %d", got.Frames(), want)
	}
}

func TestSplicer_PatchSegment_ConvertsReplacementProfile(t *testing.T) {
	t.Parallel()

	s := audio.NewSplicer()
	orig := monoBuffer(3)
	repl := &audio.Buffer{
		Data:        tonePCM(44100 * 2), // one second of stereo at 44.1 kHz
		Channels:    2,
		SampleWidth: 2,
		SampleRate:  44100,
	}

	out, err := s.PatchSegment(orig.WAV(), repl.WAV(), 1, 2)
	if err != nil {
		t.Fatalf("PatchSegment: %v", err)
	}
	got, err := audio.Normalize(out)
	if err != nil {
		t.Fatalf("Normalize(output): %v", err)
	}
	if got.SampleRate != orig.SampleRate || got.Channels != orig.Channels {
		t.Errorf("output profile = %dch/%dHz, want original %dch/%dHz",
			got.Channels, got.SampleRate, orig.Channels, orig.SampleRate)
	}
}

func TestSplicer_PatchSegment_RejectsHeaderlessInput(t *testing.T) {
	t.Parallel()

	s := audio.NewSplicer()
	orig := monoBuffer(2)
	raw := tonePCM(24000)

	if _, err := s.PatchSegment(raw, monoBuffer(1).WAV(), 0, 1); !errors.Is(err, audio.ErrInvalidInput) {
		t.Errorf("headerless original err = %v, want ErrInvalidInput", err)
	}
	if _, err := s.PatchSegment(orig.WAV(), raw, 0, 1); !errors.Is(err, audio.ErrInvalidInput) {
		t.Errorf("headerless replacement err = %v, want ErrInvalidInput", err)
	}
}

func TestSplicer_AddLeadingSilence(t *testing.T) {
	t.Parallel()

	s := audio.NewSplicer()
	buf := monoBuffer(1)

	out, err := s.AddLeadingSilence(buf, 0.5)
	if err != nil {
		t.Fatalf("AddLeadingSilence: %v", err)
	}
	if want := buf.Frames() + audio.DefaultSampleRate/2; out.Frames() != want {
		t.Errorf("frames = %d, want %d", out.Frames(), want)
	}
	for i, b := range out.Data[:audio.DefaultSampleRate] {
		if b != 0 {
			t.Fatalf("lead-in byte %d = %#x, want silence", i, b)
		}
	}
}

func TestSplicer_AddLeadingSilence_NonPositiveIsCopy(t *testing.T) {
	t.Parallel()

	s := audio.NewSplicer()
	buf := monoBuffer(1)

	out, err := s.AddLeadingSilence(buf, 0)
	if err != nil {
		t.Fatalf("AddLeadingSilence: %v", err)
	}
	if out.Frames() != buf.Frames() {
		t.Errorf("frames = %d, want %d", out.Frames(), buf.Frames())
	}
	if &out.Data[0] == &buf.Data[0] {
		t.Error("output aliases the input payload")
	}
}
