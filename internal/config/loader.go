package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// ValidProviderNames lists known provider names per provider kind.
// Used by [Validate] to warn about unrecognised provider names.
var ValidProviderNames = map[string][]string{
	"tts":      {"openai", "elevenlabs"},
	"stt":      {"openai", "whisper"},
	"analysis": {"openai", "anthropic", "gemini", "ollama"},
}

// Default returns a [Config] populated with the values used when a field is
// absent from the YAML file.
func Default() *Config {
	return &Config{
		Log: LogConfig{Level: LogInfo},
		Library: LibraryConfig{
			ScriptsRoot: "book_scripts",
			AudioRoot:   "book_audio",
		},
		Synthesis: SynthesisConfig{
			LeadingSilenceSec: 0.5,
			RequestDelaySec:   5,
			MaxChunkChars:     1600,
		},
		Editing: EditingConfig{
			DeletionEpsilon:  0.05,
			PatchEpsilon:     0.1,
			SeamCrossfadeSec: 0.02,
			PatchFadeSec:     0.05,
		},
	}
}

// Load reads the YAML configuration file at path and returns a validated [Config].
// It is a convenience wrapper around [LoadFromReader] and [Validate].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r, fills in defaults, and
// validates the result. Useful in tests where configs are constructed from
// string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	// Logging
	if cfg.Log.Level != "" && !cfg.Log.Level.IsValid() {
		errs = append(errs, fmt.Errorf("log.level %q is invalid; valid values: debug, info, warn, error", cfg.Log.Level))
	}

	// Library roots
	if cfg.Library.ScriptsRoot == "" {
		errs = append(errs, errors.New("library.scripts_root is required"))
	}
	if cfg.Library.AudioRoot == "" {
		errs = append(errs, errors.New("library.audio_root is required"))
	}

	// Provider name validation warns instead of failing so that third-party
	// providers registered at runtime still load.
	validateProviderName("tts", cfg.Providers.TTS.Name)
	validateProviderName("stt", cfg.Providers.STT.Name)
	validateProviderName("analysis", cfg.Providers.Analysis.Name)

	if cfg.Providers.STT.Name == "whisper" && cfg.Providers.STT.ModelPath == "" {
		errs = append(errs, errors.New("providers.stt.model_path is required when providers.stt.name is whisper"))
	}

	// Synthesis defaults
	if cfg.Synthesis.SpeedFactor != 0 {
		if cfg.Synthesis.SpeedFactor < 0.5 || cfg.Synthesis.SpeedFactor > 2.0 {
			errs = append(errs, fmt.Errorf("synthesis.speed_factor %.2f is out of range [0.5, 2.0]", cfg.Synthesis.SpeedFactor))
		}
	}
	if cfg.Synthesis.Temperature < 0 || cfg.Synthesis.Temperature > 2 {
		errs = append(errs, fmt.Errorf("synthesis.temperature %.2f is out of range [0, 2]", cfg.Synthesis.Temperature))
	}
	if cfg.Synthesis.LeadingSilenceSec < 0 {
		errs = append(errs, fmt.Errorf("synthesis.leading_silence_sec %.2f must not be negative", cfg.Synthesis.LeadingSilenceSec))
	}
	if cfg.Synthesis.RequestDelaySec < 0 {
		errs = append(errs, fmt.Errorf("synthesis.request_delay_sec %.2f must not be negative", cfg.Synthesis.RequestDelaySec))
	}
	if cfg.Synthesis.MaxChunkChars < 0 {
		errs = append(errs, fmt.Errorf("synthesis.max_chunk_chars %d must not be negative", cfg.Synthesis.MaxChunkChars))
	}

	// Editing tolerances
	if cfg.Editing.DeletionEpsilon < 0 {
		errs = append(errs, fmt.Errorf("editing.deletion_epsilon %.3f must not be negative", cfg.Editing.DeletionEpsilon))
	}
	if cfg.Editing.PatchEpsilon < 0 {
		errs = append(errs, fmt.Errorf("editing.patch_epsilon %.3f must not be negative", cfg.Editing.PatchEpsilon))
	}
	if cfg.Editing.SeamCrossfadeSec < 0 {
		errs = append(errs, fmt.Errorf("editing.seam_crossfade_sec %.3f must not be negative", cfg.Editing.SeamCrossfadeSec))
	}
	if cfg.Editing.PatchFadeSec < 0 {
		errs = append(errs, fmt.Errorf("editing.patch_fade_sec %.3f must not be negative", cfg.Editing.PatchFadeSec))
	}

	return errors.Join(errs...)
}

// validateProviderName logs a warning if name is non-empty and not found in
// the [ValidProviderNames] list for the given kind.
func validateProviderName(kind, name string) {
	if name == "" {
		return
	}
	known, ok := ValidProviderNames[kind]
	if !ok {
		return
	}
	if slices.Contains(known, name) {
		return
	}
	slog.Warn("unknown provider name, may be a typo or third-party provider",
		"kind", kind,
		"name", name,
		"known", known,
	)
}
