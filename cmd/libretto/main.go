// Command libretto is the narration studio CLI: it splits book scripts into
// chapters, renders them to speech, and keeps audio and timeline in sync
// through edits.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	anyllmlib "github.com/mozilla-ai/any-llm-go"
	oai "github.com/openai/openai-go"

	"github.com/librettoapp/libretto/internal/config"
	"github.com/librettoapp/libretto/internal/library"
	"github.com/librettoapp/libretto/internal/observe"
	"github.com/librettoapp/libretto/internal/studio"
	"github.com/librettoapp/libretto/internal/timeline"
	"github.com/librettoapp/libretto/internal/verify"
	"github.com/librettoapp/libretto/pkg/audio"
	"github.com/librettoapp/libretto/pkg/provider/analysis"
	"github.com/librettoapp/libretto/pkg/provider/stt"
	sttopenai "github.com/librettoapp/libretto/pkg/provider/stt/openai"
	"github.com/librettoapp/libretto/pkg/provider/stt/whisper"
	"github.com/librettoapp/libretto/pkg/provider/tts"
	"github.com/librettoapp/libretto/pkg/provider/tts/elevenlabs"
	ttsopenai "github.com/librettoapp/libretto/pkg/provider/tts/openai"
)

const usage = `usage: libretto <command> [flags]

commands:
  split       clean a raw script and split it into a new chapter
  chapters    list chapters and their render progress
  generate    render a chapter's script chunks to speech
  transcribe  transcribe a rendered chunk and print its timeline
  edit        cut or re-record part of a rendered chunk
  verify      score a rendered chunk against its script
  voices      list the configured TTS provider's voices

run "libretto <command> -h" for command flags
`

func main() {
	os.Exit(run())
}

func run() int {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var err error
	switch os.Args[1] {
	case "split":
		err = cmdSplit(ctx, os.Args[2:])
	case "chapters":
		err = cmdChapters(ctx, os.Args[2:])
	case "generate":
		err = cmdGenerate(ctx, os.Args[2:])
	case "transcribe":
		err = cmdTranscribe(ctx, os.Args[2:])
	case "edit":
		err = cmdEdit(ctx, os.Args[2:])
	case "verify":
		err = cmdVerify(ctx, os.Args[2:])
	case "voices":
		err = cmdVoices(ctx, os.Args[2:])
	case "-h", "--help", "help":
		fmt.Print(usage)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "libretto: unknown command %q\n\n%s", os.Args[1], usage)
		return 2
	}

	if err != nil {
		if errors.Is(err, context.Canceled) {
			slog.Info("interrupted")
			return 130
		}
		fmt.Fprintf(os.Stderr, "libretto: %v\n", err)
		return 1
	}
	return 0
}

// ── Commands ──────────────────────────────────────────────────────────────────

func cmdSplit(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("split", flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "path to the YAML configuration file")
	title := fs.String("title", "", "chapter title (required)")
	input := fs.String("input", "", "script text file; reads stdin when omitted")
	_ = fs.Parse(args)

	cfg, store, err := openStore(*configPath)
	if err != nil {
		return err
	}
	if *title == "" {
		return errors.New("split: -title is required")
	}

	raw, err := readInput(*input)
	if err != nil {
		return err
	}

	cleaned := library.CleanScript(string(raw))
	ch, err := store.CreateChapter(*title, cleaned, cfg.Synthesis.MaxChunkChars)
	if err != nil {
		return err
	}

	scripts, err := ch.Scripts()
	if err != nil {
		return err
	}
	fmt.Printf("created chapter %s with %d chunks\n", ch.Name, len(scripts))
	return nil
}

func cmdChapters(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("chapters", flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "path to the YAML configuration file")
	_ = fs.Parse(args)

	_, store, err := openStore(*configPath)
	if err != nil {
		return err
	}

	infos, err := store.Scan()
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		fmt.Println("no chapters yet; start with \"libretto split\"")
		return nil
	}
	for _, info := range infos {
		marker := " "
		if info.AudioCount == info.ScriptCount && info.ScriptCount > 0 {
			marker = "*"
		}
		fmt.Printf("%s %-40s %d/%d rendered\n", marker, info.Name, info.AudioCount, info.ScriptCount)
	}
	return nil
}

func cmdGenerate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "path to the YAML configuration file")
	chapter := fs.String("chapter", "", "chapter name (required)")
	force := fs.Bool("force", false, "re-render chunks that already have audio")
	voice := fs.String("voice", "", "override the configured voice")
	prompt := fs.String("prompt", "", "override the configured style instruction")
	metricsAddr := fs.String("metrics-addr", "", "serve /metrics on this address during the run")
	_ = fs.Parse(args)

	cfg, store, err := openStore(*configPath)
	if err != nil {
		return err
	}
	if *chapter == "" {
		return errors.New("generate: -chapter is required")
	}
	ch, err := store.Chapter(*chapter)
	if err != nil {
		return err
	}

	provider, err := buildTTS(cfg)
	if err != nil {
		return err
	}

	settings := chapterSettings(cfg, ch)
	if *voice != "" {
		settings.Voice = *voice
	}
	if *prompt != "" {
		settings.Prompt = *prompt
	}
	if settings.Voice == "" {
		return errors.New("generate: no voice configured; set synthesis.voice or pass -voice")
	}

	shutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{ServiceName: "libretto"})
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(flushCtx); err != nil {
			slog.Warn("telemetry shutdown failed", "err", err)
		}
	}()

	metrics := observe.DefaultMetrics()
	gen := studio.NewGenerator(provider,
		studio.WithRequestDelay(secsDuration(cfg.Synthesis.RequestDelaySec)),
		studio.WithLeadingSilence(cfg.Synthesis.LeadingSilenceSec),
		studio.WithStyleInstruction(cfg.Synthesis.StyleInstruction),
		studio.WithGeneratorMetrics(metrics),
	)

	// A long run should pick up pacing and log-level edits without a restart.
	watcher, err := config.NewWatcher(*configPath, func(old, new *config.Config) {
		d := config.Diff(old, new)
		if d.LogLevelChanged {
			slog.SetDefault(newLogger(new.Log))
			slog.Info("log level changed", "level", d.NewLogLevel)
		}
		if d.PacingChanged {
			gen.SetRequestDelay(secsDuration(d.NewRequestDelay))
			slog.Info("request delay changed", "delay_sec", d.NewRequestDelay)
		}
	})
	if err != nil {
		return err
	}
	defer watcher.Stop()

	if *metricsAddr != "" {
		go func() {
			if err := observe.ServeMetrics(ctx, *metricsAddr); err != nil {
				slog.Warn("metrics endpoint failed", "addr", *metricsAddr, "err", err)
			}
		}()
	}

	printGenerateSummary(cfg, ch.Name, settings)
	return gen.GenerateChapter(ctx, ch, settings, *force)
}

func cmdTranscribe(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("transcribe", flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "path to the YAML configuration file")
	chapter := fs.String("chapter", "", "chapter name (required)")
	chunk := fs.Int("chunk", 1, "chunk index")
	language := fs.String("language", "", "transcription language hint")
	_ = fs.Parse(args)

	cfg, store, err := openStore(*configPath)
	if err != nil {
		return err
	}
	if *chapter == "" {
		return errors.New("transcribe: -chapter is required")
	}
	ch, err := store.Chapter(*chapter)
	if err != nil {
		return err
	}

	transcriber, closeFn, err := buildSTT(cfg)
	if err != nil {
		return err
	}
	defer closeFn()

	sess := studio.NewSession(ch, *chunk, studio.WithTranscriber(transcriber))
	hint := stt.Hint{Language: *language}
	if script, err := ch.Script(*chunk); err == nil {
		hint.Prompt = script.Text
	}
	if err := sess.RebuildTimeline(ctx, hint); err != nil {
		return err
	}
	return printTimeline(sess)
}

func cmdEdit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("edit", flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "path to the YAML configuration file")
	chapter := fs.String("chapter", "", "chapter name (required)")
	chunk := fs.Int("chunk", 1, "chunk index")
	op := fs.String("op", "", "edit operation: delete or patch")
	start := fs.Float64("start", -1, "edit range start in seconds")
	end := fs.Float64("end", -1, "edit range end in seconds")
	text := fs.String("text", "", "replacement narration for -op patch")
	_ = fs.Parse(args)

	cfg, store, err := openStore(*configPath)
	if err != nil {
		return err
	}
	if *chapter == "" {
		return errors.New("edit: -chapter is required")
	}
	if *start < 0 || *end < 0 {
		return errors.New("edit: -start and -end are required")
	}
	ch, err := store.Chapter(*chapter)
	if err != nil {
		return err
	}

	splicer := audio.NewSplicer(
		audio.WithSeamCrossfade(cfg.Editing.SeamCrossfadeSec),
		audio.WithPatchFade(cfg.Editing.PatchFadeSec),
	)
	opts := []studio.SessionOption{
		studio.WithSplicer(splicer),
		studio.WithTimelineOptions(
			timeline.WithDeletionEpsilon(cfg.Editing.DeletionEpsilon),
			timeline.WithPatchEpsilon(cfg.Editing.PatchEpsilon),
		),
		studio.WithMetrics(observe.DefaultMetrics()),
	}

	// With a transcriber available the timeline is rebuilt first so the edit
	// can report the re-indexed segments; without one only audio is edited.
	transcriber, closeFn, sttErr := buildSTT(cfg)
	if sttErr == nil {
		defer closeFn()
		opts = append(opts, studio.WithTranscriber(transcriber))
	}

	sess := studio.NewSession(ch, *chunk, opts...)
	if sttErr == nil {
		if err := sess.RebuildTimeline(ctx, stt.Hint{}); err != nil {
			return err
		}
	}

	switch *op {
	case "delete":
		if err := sess.DeleteRange(ctx, *start, *end); err != nil {
			return err
		}
	case "patch":
		if *text == "" {
			return errors.New("edit: -op patch requires -text")
		}
		provider, err := buildTTS(cfg)
		if err != nil {
			return err
		}
		settings := chapterSettings(cfg, ch)
		replacement, err := provider.Synthesize(ctx, tts.Request{
			Text:             *text,
			StyleInstruction: settings.Prompt,
			Voice:            tts.VoiceProfile{ID: settings.Voice},
			Temperature:      settings.Temperature,
			SpeedFactor:      settings.Speed,
		})
		if err != nil {
			return fmt.Errorf("edit: synthesize replacement: %w", err)
		}
		if err := sess.PatchSegment(ctx, replacement, *start, *end); err != nil {
			return err
		}
	default:
		return fmt.Errorf("edit: unknown -op %q (want delete or patch)", *op)
	}

	if sttErr == nil {
		return printTimeline(sess)
	}
	return nil
}

func cmdVerify(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "path to the YAML configuration file")
	chapter := fs.String("chapter", "", "chapter name (required)")
	chunk := fs.Int("chunk", 1, "chunk index")
	suggest := fs.Bool("suggest", false, "ask the analysis provider for correction suggestions")
	_ = fs.Parse(args)

	cfg, store, err := openStore(*configPath)
	if err != nil {
		return err
	}
	if *chapter == "" {
		return errors.New("verify: -chapter is required")
	}
	ch, err := store.Chapter(*chapter)
	if err != nil {
		return err
	}
	script, err := ch.Script(*chunk)
	if err != nil {
		return err
	}
	wav, err := ch.ReadAudio(*chunk)
	if err != nil {
		return err
	}

	transcriber, closeFn, err := buildSTT(cfg)
	if err != nil {
		return err
	}
	defer closeFn()

	frags, err := transcriber.Transcribe(ctx, wav, stt.Hint{Prompt: script.Text})
	if err != nil {
		return err
	}
	var parts []string
	for _, f := range frags {
		parts = append(parts, f.Text)
	}
	transcribed := strings.Join(parts, " ")

	report := verify.Compare(script.Text, transcribed)
	fmt.Printf("similarity: %.1f%%\n", report.Similarity)
	for _, span := range report.Mismatches() {
		fmt.Printf("  %-8s script=%q heard=%q", span.Kind, span.Original, span.Transcribed)
		if span.Kind == verify.SpanReplace {
			fmt.Printf(" confidence=%.2f", span.Confidence)
		}
		fmt.Println()
	}

	if *suggest && len(report.Mismatches()) > 0 {
		analyzer, err := buildAnalysis(cfg)
		if err != nil {
			return err
		}
		suggestion, err := analyzer.SuggestCorrections(ctx, script.Text, transcribed)
		if err != nil {
			return err
		}
		fmt.Printf("\nsuggestions:\n%s\n", suggestion)
	}
	return nil
}

func cmdVoices(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("voices", flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "path to the YAML configuration file")
	_ = fs.Parse(args)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	provider, err := buildTTS(cfg)
	if err != nil {
		return err
	}

	voices, err := provider.ListVoices(ctx)
	if err != nil {
		return err
	}
	for _, v := range voices {
		fmt.Printf("%-24s %s (%s)\n", v.ID, v.Name, v.Provider)
	}
	return nil
}

// ── Provider wiring ───────────────────────────────────────────────────────────

// registerBuiltinProviders wires all built-in provider factories into reg.
func registerBuiltinProviders(reg *config.Registry) {
	// ── TTS ───────────────────────────────────────────────────────────────────

	reg.RegisterTTS("openai", func(entry config.ProviderEntry) (tts.Provider, error) {
		var opts []ttsopenai.Option
		if entry.BaseURL != "" {
			opts = append(opts, ttsopenai.WithBaseURL(entry.BaseURL))
		}
		if entry.Model != "" {
			opts = append(opts, ttsopenai.WithModel(oai.SpeechModel(entry.Model)))
		}
		return ttsopenai.New(entry.APIKey, opts...)
	})

	reg.RegisterTTS("elevenlabs", func(entry config.ProviderEntry) (tts.Provider, error) {
		var opts []elevenlabs.Option
		if entry.Model != "" {
			opts = append(opts, elevenlabs.WithModel(entry.Model))
		}
		return elevenlabs.New(entry.APIKey, opts...)
	})

	// ── STT ───────────────────────────────────────────────────────────────────

	reg.RegisterSTT("openai", func(entry config.ProviderEntry) (stt.Transcriber, error) {
		var opts []sttopenai.Option
		if entry.BaseURL != "" {
			opts = append(opts, sttopenai.WithBaseURL(entry.BaseURL))
		}
		if entry.Model != "" {
			opts = append(opts, sttopenai.WithModel(oai.AudioModel(entry.Model)))
		}
		return sttopenai.New(entry.APIKey, opts...)
	})

	reg.RegisterSTT("whisper", func(entry config.ProviderEntry) (stt.Transcriber, error) {
		var opts []whisper.Option
		if lang := optString(entry.Options, "language"); lang != "" {
			opts = append(opts, whisper.WithLanguage(lang))
		}
		return whisper.New(entry.ModelPath, opts...)
	})

	// ── Analysis ──────────────────────────────────────────────────────────────
	// openai, anthropic, gemini share the pattern: optional APIKey + BaseURL.
	// ollama is a local server and only takes a BaseURL.

	for _, providerName := range []string{"openai", "anthropic", "gemini", "ollama"} {
		reg.RegisterAnalysis(providerName, func(entry config.ProviderEntry) (analysis.Analyzer, error) {
			var opts []anyllmlib.Option
			if entry.APIKey != "" {
				opts = append(opts, anyllmlib.WithAPIKey(entry.APIKey))
			}
			if entry.BaseURL != "" {
				opts = append(opts, anyllmlib.WithBaseURL(entry.BaseURL))
			}
			return analysis.New(providerName, entry.Model, opts...)
		})
	}
}

func newRegistry() *config.Registry {
	reg := config.NewRegistry()
	registerBuiltinProviders(reg)
	return reg
}

func buildTTS(cfg *config.Config) (tts.Provider, error) {
	entry := cfg.Providers.TTS
	if entry.Name == "" {
		return nil, errors.New("no TTS provider configured; set providers.tts.name")
	}
	p, err := newRegistry().CreateTTS(entry)
	if err != nil {
		return nil, fmt.Errorf("create tts provider %q: %w", entry.Name, err)
	}
	slog.Info("provider created", "kind", "tts", "name", entry.Name)
	return p, nil
}

// buildSTT returns the transcriber and a close function for backends that
// hold local model resources.
func buildSTT(cfg *config.Config) (stt.Transcriber, func(), error) {
	entry := cfg.Providers.STT
	if entry.Name == "" {
		return nil, nil, errors.New("no STT provider configured; set providers.stt.name")
	}
	p, err := newRegistry().CreateSTT(entry)
	if err != nil {
		return nil, nil, fmt.Errorf("create stt provider %q: %w", entry.Name, err)
	}
	slog.Info("provider created", "kind", "stt", "name", entry.Name)

	closeFn := func() {}
	if c, ok := p.(interface{ Close() error }); ok {
		closeFn = func() { _ = c.Close() }
	}
	return p, closeFn, nil
}

func buildAnalysis(cfg *config.Config) (analysis.Analyzer, error) {
	entry := cfg.Providers.Analysis
	if entry.Name == "" {
		return nil, errors.New("no analysis provider configured; set providers.analysis.name")
	}
	p, err := newRegistry().CreateAnalysis(entry)
	if err != nil {
		return nil, fmt.Errorf("create analysis provider %q: %w", entry.Name, err)
	}
	slog.Info("provider created", "kind", "analysis", "name", entry.Name)
	return p, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config file %q not found", path)
		}
		return nil, err
	}
	slog.SetDefault(newLogger(cfg.Log))
	return cfg, nil
}

func openStore(path string) (*config.Config, *library.Store, error) {
	cfg, err := loadConfig(path)
	if err != nil {
		return nil, nil, err
	}
	store, err := library.Open(cfg.Library.ScriptsRoot, cfg.Library.AudioRoot)
	if err != nil {
		return nil, nil, err
	}
	return cfg, store, nil
}

// chapterSettings resolves the chapter's saved settings, falling back to the
// synthesis defaults from the config.
func chapterSettings(cfg *config.Config, ch *library.Chapter) library.Settings {
	if saved, err := ch.LoadSettings(); err == nil {
		return *saved
	}
	return library.Settings{
		Voice:       cfg.Synthesis.Voice,
		Speed:       cfg.Synthesis.SpeedFactor,
		Temperature: cfg.Synthesis.Temperature,
		Prompt:      cfg.Synthesis.StyleInstruction,
	}
}

func readInput(path string) ([]byte, error) {
	if path == "" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func printTimeline(sess *studio.Session) error {
	tl := sess.Timeline()
	out, err := json.MarshalIndent(tl, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func printGenerateSummary(cfg *config.Config, chapter string, settings library.Settings) {
	fmt.Println("╔══════════════════════════════════════════╗")
	fmt.Println("║         Libretto generation run          ║")
	fmt.Println("╠══════════════════════════════════════════╣")
	printRow("Chapter", chapter)
	printRow("TTS", cfg.Providers.TTS.Name)
	printRow("Voice", settings.Voice)
	printRow("Speed", fmt.Sprintf("%.2f", settings.Speed))
	printRow("Delay", fmt.Sprintf("%.0fs", cfg.Synthesis.RequestDelaySec))
	fmt.Println("╚══════════════════════════════════════════╝")
}

func printRow(key, value string) {
	if value == "" {
		value = "(not set)"
	}
	if len(value) > 22 {
		value = value[:19] + "…"
	}
	fmt.Printf("║  %-13s : %-22s ║\n", key, value)
}

func newLogger(lc config.LogConfig) *slog.Logger {
	var lvl slog.Level
	switch lc.Level {
	case config.LogDebug:
		lvl = slog.LevelDebug
	case config.LogWarn:
		lvl = slog.LevelWarn
	case config.LogError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if lc.JSON {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func secsDuration(sec float64) time.Duration {
	return time.Duration(sec * float64(time.Second))
}

// optString extracts a string value from a provider Options map[string]any.
// Returns "" if the map is nil, the key is absent, or the value is not a string.
func optString(opts map[string]any, key string) string {
	if opts == nil {
		return ""
	}
	v, ok := opts[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return s
}
