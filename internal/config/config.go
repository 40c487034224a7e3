// Package config provides the configuration schema, loader, and provider
// registry for the Libretto narration studio.
package config

// LogLevel controls log verbosity for the Libretto CLI.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Config is the root configuration structure for Libretto.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	Log       LogConfig       `yaml:"log"`
	Library   LibraryConfig   `yaml:"library"`
	Providers ProvidersConfig `yaml:"providers"`
	Synthesis SynthesisConfig `yaml:"synthesis"`
	Editing   EditingConfig   `yaml:"editing"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level controls verbosity.
	Level LogLevel `yaml:"level"`

	// JSON switches the handler to JSON output. Text output is the default.
	JSON bool `yaml:"json"`
}

// LibraryConfig locates the on-disk chapter library.
type LibraryConfig struct {
	// ScriptsRoot is the directory holding per-chapter script folders.
	ScriptsRoot string `yaml:"scripts_root"`

	// AudioRoot is the directory holding per-chapter rendered audio.
	AudioRoot string `yaml:"audio_root"`
}

// ProvidersConfig declares which provider implementation to use for each
// pipeline stage. Each field selects a named provider registered in the
// [Registry].
type ProvidersConfig struct {
	TTS      ProviderEntry `yaml:"tts"`
	STT      ProviderEntry `yaml:"stt"`
	Analysis ProviderEntry `yaml:"analysis"`
}

// ProviderEntry is the common configuration block shared by all provider types.
// The Name field is used to look up the constructor in the [Registry].
type ProviderEntry struct {
	// Name selects the registered provider implementation (e.g., "openai", "elevenlabs").
	Name string `yaml:"name"`

	// APIKey is the authentication key for the provider's API if any.
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the provider's default API endpoint.
	// Leave empty to use the provider's built-in default.
	BaseURL string `yaml:"base_url"`

	// Model selects a specific model within the provider
	// (e.g., "gpt-4o-mini-tts", "whisper-1").
	Model string `yaml:"model"`

	// ModelPath is the filesystem path to a local model file. Only used by
	// providers that run inference in-process (e.g., "whisper").
	ModelPath string `yaml:"model_path"`

	// Options holds provider-specific configuration values not covered by the
	// standard fields above. Values may be strings, numbers, booleans, or nested maps.
	Options map[string]any `yaml:"options"`
}

// SynthesisConfig holds defaults applied to every narration request unless a
// chapter's own settings override them.
type SynthesisConfig struct {
	// Voice is the default provider voice identifier.
	Voice string `yaml:"voice"`

	// SpeedFactor adjusts speaking rate in the range [0.5, 2.0]. 0 means default.
	SpeedFactor float64 `yaml:"speed_factor"`

	// Temperature adjusts synthesis variability in the range [0, 2]. 0 means default.
	Temperature float64 `yaml:"temperature"`

	// StyleInstruction is a free-text delivery description prepended to the
	// narration guidelines sent to the TTS provider.
	StyleInstruction string `yaml:"style_instruction"`

	// LeadingSilenceSec is the silence prepended to each rendered chunk.
	LeadingSilenceSec float64 `yaml:"leading_silence_sec"`

	// RequestDelaySec is the pause between consecutive synthesis calls
	// during batch generation.
	RequestDelaySec float64 `yaml:"request_delay_sec"`

	// MaxChunkChars caps the script chunk size at sentence boundaries.
	MaxChunkChars int `yaml:"max_chunk_chars"`
}

// EditingConfig tunes the timeline transforms and audio seam treatment.
type EditingConfig struct {
	// DeletionEpsilon is the tolerance used when deciding whether a segment
	// sits past a deleted range.
	DeletionEpsilon float64 `yaml:"deletion_epsilon"`

	// PatchEpsilon is the tolerance used when deciding whether a segment sits
	// past a patched range.
	PatchEpsilon float64 `yaml:"patch_epsilon"`

	// SeamCrossfadeSec is the crossfade applied where audio is cut.
	SeamCrossfadeSec float64 `yaml:"seam_crossfade_sec"`

	// PatchFadeSec is the fade applied to both ends of replacement audio.
	PatchFadeSec float64 `yaml:"patch_fade_sec"`
}
