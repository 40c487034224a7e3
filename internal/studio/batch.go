package studio

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/librettoapp/libretto/internal/library"
	"github.com/librettoapp/libretto/internal/observe"
	"github.com/librettoapp/libretto/pkg/audio"
	"github.com/librettoapp/libretto/pkg/provider/tts"
)

// Generator renders a chapter's script chunks to audio, one synthesis call
// at a time. The loop is deliberately sequential with a fixed pause between
// calls; providers rate-limit aggressively and a chapter render is not
// latency sensitive.
type Generator struct {
	tts      tts.Provider
	splicer  *audio.Splicer
	leadIn   float64
	metrics  *observe.Metrics
	instruct string

	mu    sync.Mutex
	delay time.Duration
}

// GeneratorOption configures a [Generator].
type GeneratorOption func(*Generator)

// WithRequestDelay sets the pause between consecutive synthesis calls.
// The default is 5 seconds.
func WithRequestDelay(d time.Duration) GeneratorOption {
	return func(g *Generator) {
		if d >= 0 {
			g.delay = d
		}
	}
}

// WithLeadingSilence sets the silent lead-in prepended to each rendered
// chunk. The default is 0.5 seconds.
func WithLeadingSilence(sec float64) GeneratorOption {
	return func(g *Generator) {
		if sec >= 0 {
			g.leadIn = sec
		}
	}
}

// WithStyleInstruction sets the default delivery description used when a
// chapter's settings carry no prompt of their own.
func WithStyleInstruction(s string) GeneratorOption {
	return func(g *Generator) {
		g.instruct = s
	}
}

// WithGeneratorMetrics attaches a metrics instance.
func WithGeneratorMetrics(m *observe.Metrics) GeneratorOption {
	return func(g *Generator) {
		g.metrics = m
	}
}

// NewGenerator creates a batch generator backed by the given TTS provider.
func NewGenerator(provider tts.Provider, opts ...GeneratorOption) *Generator {
	g := &Generator{
		tts:     provider,
		splicer: audio.NewSplicer(),
		leadIn:  0.5,
		delay:   5 * time.Second,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// SetRequestDelay adjusts the inter-call pause for subsequent chunks. Safe
// to call while a generation run is in progress; the config watcher uses
// this to apply pacing changes without a restart.
func (g *Generator) SetRequestDelay(d time.Duration) {
	if d < 0 {
		return
	}
	g.mu.Lock()
	g.delay = d
	g.mu.Unlock()
}

func (g *Generator) requestDelay() time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.delay
}

// GenerateChapter renders every script chunk of ch that has no audio yet
// (all of them when force is true). The chapter's settings are persisted
// before the first synthesis call so a later resume uses the same voice.
// The run halts on the first hard failure; a half-rendered chapter is
// resumable, a chapter rendered past a bad chunk is not trustworthy.
func (g *Generator) GenerateChapter(ctx context.Context, ch *library.Chapter, settings library.Settings, force bool) error {
	scripts, err := ch.Scripts()
	if err != nil {
		return fmt.Errorf("studio: list scripts for %s: %w", ch.Name, err)
	}
	if len(scripts) == 0 {
		return fmt.Errorf("studio: chapter %s has no scripts", ch.Name)
	}

	if err := ch.SaveSettings(settings); err != nil {
		return fmt.Errorf("studio: persist settings for %s: %w", ch.Name, err)
	}

	if g.metrics != nil {
		g.metrics.ActiveGenerations.Add(ctx, 1)
		defer g.metrics.ActiveGenerations.Add(ctx, -1)
	}

	instruction := settings.Prompt
	if instruction == "" {
		instruction = g.instruct
	}

	rendered := 0
	for _, script := range scripts {
		if !force {
			if _, err := os.Stat(ch.AudioPath(script.Index)); err == nil {
				slog.Debug("chunk already rendered, skipping",
					"chapter", ch.Name, "chunk", script.Index)
				continue
			}
		}

		if rendered > 0 {
			if err := sleepCtx(ctx, g.requestDelay()); err != nil {
				return err
			}
		}

		if err := g.renderChunk(ctx, ch, script, settings, instruction); err != nil {
			if g.metrics != nil {
				g.metrics.RecordChunkRendered(ctx, ch.Name, "error")
			}
			return fmt.Errorf("studio: chunk %d of %s: %w", script.Index, ch.Name, err)
		}
		if g.metrics != nil {
			g.metrics.RecordChunkRendered(ctx, ch.Name, "ok")
		}
		rendered++
	}

	slog.Info("chapter generation finished",
		"chapter", ch.Name,
		"rendered", rendered,
		"total", len(scripts),
	)
	return nil
}

// renderChunk synthesizes one script chunk, pads it with the silent
// lead-in, and writes the canonical WAV container to the chapter.
func (g *Generator) renderChunk(ctx context.Context, ch *library.Chapter, script library.Script, settings library.Settings, instruction string) error {
	req := tts.Request{
		Text:             script.Text,
		StyleInstruction: instruction,
		Voice:            tts.VoiceProfile{ID: settings.Voice},
		Temperature:      settings.Temperature,
		SpeedFactor:      settings.Speed,
	}

	start := time.Now()
	wav, err := g.tts.Synthesize(ctx, req)
	if err != nil {
		if g.metrics != nil {
			g.metrics.RecordProviderError(ctx, "tts", "synthesize")
		}
		return fmt.Errorf("synthesize: %w", err)
	}
	if g.metrics != nil {
		g.metrics.SynthesisDuration.Record(ctx, time.Since(start).Seconds())
	}

	buf, err := audio.Normalize(wav)
	if err != nil {
		return fmt.Errorf("normalize: %w", err)
	}
	padded, err := g.splicer.AddLeadingSilence(buf, g.leadIn)
	if err != nil {
		return fmt.Errorf("pad: %w", err)
	}

	if err := ch.WriteAudio(script.Index, padded.WAV()); err != nil {
		return fmt.Errorf("write audio: %w", err)
	}

	slog.Info("rendered chunk",
		"chapter", ch.Name,
		"chunk", script.Index,
		"chars", len(script.Text),
		"duration_sec", padded.Duration(),
		"elapsed", time.Since(start),
	)
	return nil
}

// sleepCtx pauses for d or until ctx is cancelled, whichever comes first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
