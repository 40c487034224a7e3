// Package whisper implements stt.Transcriber over the whisper.cpp CGO
// bindings. The whisper.cpp static library (libwhisper.a) and headers
// (whisper.h) must be available at link time via LIBRARY_PATH and
// C_INCLUDE_PATH environment variables.
package whisper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	whisperlib "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"

	"github.com/librettoapp/libretto/pkg/audio"
	"github.com/librettoapp/libretto/pkg/provider/stt"
)

// whisper.cpp accepts 16 kHz mono float32 input only.
const inferenceSampleRate = 16000

const defaultLanguage = "en"

// Compile-time assertion that Transcriber satisfies stt.Transcriber.
var _ stt.Transcriber = (*Transcriber)(nil)

// Transcriber runs local inference through the whisper.cpp Go bindings,
// eliminating network overhead entirely. The model is loaded once at
// construction and shared across all Transcribe calls; each call creates
// its own whisper context, so concurrent calls do not interfere.
type Transcriber struct {
	model    whisperlib.Model
	language string

	// mu serializes context creation. Model context allocation in
	// whisper.cpp is not documented as thread-safe.
	mu sync.Mutex
}

// Option is a functional option for configuring a Transcriber.
type Option func(*Transcriber)

// WithLanguage sets the default BCP-47 language code used when the
// per-call hint does not carry one. Defaults to "en".
func WithLanguage(lang string) Option {
	return func(t *Transcriber) { t.language = lang }
}

// New creates a Transcriber that loads the whisper.cpp model from the given
// file path. The caller must call Close when the transcriber is no longer
// needed.
func New(modelPath string, opts ...Option) (*Transcriber, error) {
	if modelPath == "" {
		return nil, errors.New("whisper: modelPath must not be empty")
	}
	model, err := whisperlib.New(modelPath)
	if err != nil {
		return nil, fmt.Errorf("whisper: load model %q: %w", modelPath, err)
	}

	t := &Transcriber{
		model:    model,
		language: defaultLanguage,
	}
	for _, o := range opts {
		o(t)
	}
	return t, nil
}

// Close releases the whisper model.
func (t *Transcriber) Close() error {
	if t.model != nil {
		return t.model.Close()
	}
	return nil
}

// Transcribe recognises the full payload and returns one fragment per
// whisper segment, timed in seconds from the start of the audio. The
// payload is normalized and converted to 16 kHz mono before inference.
func (t *Transcriber) Transcribe(ctx context.Context, payload []byte, hint stt.Hint) ([]stt.Fragment, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("whisper: context already cancelled: %w", err)
	}

	buf, err := audio.Normalize(payload)
	if err != nil {
		return nil, fmt.Errorf("whisper: %w", err)
	}
	buf = audio.Convert(buf, audio.Format{
		SampleRate:  inferenceSampleRate,
		Channels:    1,
		SampleWidth: 2,
	})
	samples := pcmToFloat32(buf.Data)

	lang := hint.Language
	if lang == "" {
		lang = t.language
	}

	t.mu.Lock()
	wctx, err := t.model.NewContext()
	t.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("whisper: create context: %w", err)
	}

	if err := wctx.SetLanguage(lang); err != nil {
		slog.Warn("whisper: failed to set language, using model default", "language", lang, "error", err)
	}

	if err := wctx.Process(samples, nil, nil, nil); err != nil {
		return nil, fmt.Errorf("whisper: process audio: %w", err)
	}

	var frags []stt.Fragment
	for {
		segment, err := wctx.NextSegment()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("whisper: read segment: %w", err)
		}
		f := stt.Fragment{
			Start: segment.Start.Seconds(),
			End:   segment.End.Seconds(),
			Text:  trimSegmentText(segment.Text),
		}
		if f.Valid() {
			frags = append(frags, f)
		}
	}

	slog.Debug("whisper: transcription complete",
		"fragments", len(frags), "audioSeconds", buf.Duration())
	return frags, nil
}
