package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/librettoapp/libretto/internal/config"
)

const fullYAML = `
log:
  level: debug
  json: true
library:
  scripts_root: /data/scripts
  audio_root: /data/audio
providers:
  tts:
    name: elevenlabs
    api_key: el-key
    model: eleven_multilingual_v2
  stt:
    name: whisper
    model_path: /models/ggml-base.bin
  analysis:
    name: anthropic
    api_key: ant-key
    model: claude-sonnet-4-20250514
synthesis:
  voice: alloy
  speed_factor: 1.2
  temperature: 0.8
  style_instruction: "warm and unhurried"
  leading_silence_sec: 0.5
  request_delay_sec: 8
  max_chunk_chars: 1200
editing:
  deletion_epsilon: 0.05
  patch_epsilon: 0.1
  seam_crossfade_sec: 0.02
  patch_fade_sec: 0.05
`

func TestLoadFromReader_FullConfig(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadFromReader(strings.NewReader(fullYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Log.Level != config.LogDebug {
		t.Errorf("log.level: got %q, want debug", cfg.Log.Level)
	}
	if !cfg.Log.JSON {
		t.Error("log.json: got false, want true")
	}
	if cfg.Library.ScriptsRoot != "/data/scripts" {
		t.Errorf("scripts_root: got %q", cfg.Library.ScriptsRoot)
	}
	if cfg.Providers.TTS.Name != "elevenlabs" || cfg.Providers.TTS.APIKey != "el-key" {
		t.Errorf("tts entry: got %+v", cfg.Providers.TTS)
	}
	if cfg.Providers.STT.ModelPath != "/models/ggml-base.bin" {
		t.Errorf("stt model_path: got %q", cfg.Providers.STT.ModelPath)
	}
	if cfg.Synthesis.Voice != "alloy" || cfg.Synthesis.SpeedFactor != 1.2 {
		t.Errorf("synthesis: got %+v", cfg.Synthesis)
	}
	if cfg.Editing.SeamCrossfadeSec != 0.02 {
		t.Errorf("seam_crossfade_sec: got %v", cfg.Editing.SeamCrossfadeSec)
	}
}

func TestLoadFromReader_DefaultsFillAbsentFields(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadFromReader(strings.NewReader("providers:\n  tts:\n    name: openai\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Log.Level != config.LogInfo {
		t.Errorf("default log level: got %q, want info", cfg.Log.Level)
	}
	if cfg.Library.ScriptsRoot != "book_scripts" || cfg.Library.AudioRoot != "book_audio" {
		t.Errorf("default library roots: got %+v", cfg.Library)
	}
	if cfg.Synthesis.LeadingSilenceSec != 0.5 {
		t.Errorf("default leading silence: got %v", cfg.Synthesis.LeadingSilenceSec)
	}
	if cfg.Synthesis.RequestDelaySec != 5 {
		t.Errorf("default request delay: got %v", cfg.Synthesis.RequestDelaySec)
	}
	if cfg.Synthesis.MaxChunkChars != 1600 {
		t.Errorf("default max chunk chars: got %d", cfg.Synthesis.MaxChunkChars)
	}
	if cfg.Editing.DeletionEpsilon != 0.05 || cfg.Editing.PatchEpsilon != 0.1 {
		t.Errorf("default epsilons: got %+v", cfg.Editing)
	}
}

func TestLoadFromReader_UnknownFieldRejected(t *testing.T) {
	t.Parallel()

	_, err := config.LoadFromReader(strings.NewReader("bogus_section:\n  x: 1\n"))
	if err == nil {
		t.Fatal("expected error for unknown field, got nil")
	}
}

func TestLoadFromReader_MalformedYAML(t *testing.T) {
	t.Parallel()

	_, err := config.LoadFromReader(strings.NewReader("log: [unclosed"))
	if err == nil {
		t.Fatal("expected error for malformed yaml, got nil")
	}
}

func TestLoad_File(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(fullYAML), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Providers.Analysis.Name != "anthropic" {
		t.Errorf("analysis provider: got %q", cfg.Providers.Analysis.Name)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := config.Load("/nonexistent/config.yaml")
	if err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
}
