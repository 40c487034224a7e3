package config_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/librettoapp/libretto/internal/config"
	"github.com/librettoapp/libretto/pkg/provider/stt"
	sttmock "github.com/librettoapp/libretto/pkg/provider/stt/mock"
	"github.com/librettoapp/libretto/pkg/provider/tts"
	ttsmock "github.com/librettoapp/libretto/pkg/provider/tts/mock"
)

func TestLogLevel_IsValid(t *testing.T) {
	t.Parallel()

	for _, l := range []config.LogLevel{config.LogDebug, config.LogInfo, config.LogWarn, config.LogError} {
		if !l.IsValid() {
			t.Errorf("%q should be valid", l)
		}
	}
	for _, l := range []config.LogLevel{"", "trace", "INFO"} {
		if l.IsValid() {
			t.Errorf("%q should be invalid", l)
		}
	}
}

func TestValidate_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantSub string
	}{
		{
			name:    "bad log level",
			mutate:  func(c *config.Config) { c.Log.Level = "verbose" },
			wantSub: "log.level",
		},
		{
			name:    "missing scripts root",
			mutate:  func(c *config.Config) { c.Library.ScriptsRoot = "" },
			wantSub: "library.scripts_root",
		},
		{
			name:    "missing audio root",
			mutate:  func(c *config.Config) { c.Library.AudioRoot = "" },
			wantSub: "library.audio_root",
		},
		{
			name:    "whisper without model path",
			mutate:  func(c *config.Config) { c.Providers.STT.Name = "whisper" },
			wantSub: "model_path",
		},
		{
			name:    "speed factor too fast",
			mutate:  func(c *config.Config) { c.Synthesis.SpeedFactor = 3 },
			wantSub: "speed_factor",
		},
		{
			name:    "speed factor too slow",
			mutate:  func(c *config.Config) { c.Synthesis.SpeedFactor = 0.2 },
			wantSub: "speed_factor",
		},
		{
			name:    "temperature out of range",
			mutate:  func(c *config.Config) { c.Synthesis.Temperature = 2.5 },
			wantSub: "temperature",
		},
		{
			name:    "negative request delay",
			mutate:  func(c *config.Config) { c.Synthesis.RequestDelaySec = -1 },
			wantSub: "request_delay_sec",
		},
		{
			name:    "negative deletion epsilon",
			mutate:  func(c *config.Config) { c.Editing.DeletionEpsilon = -0.01 },
			wantSub: "deletion_epsilon",
		},
		{
			name:    "negative patch fade",
			mutate:  func(c *config.Config) { c.Editing.PatchFadeSec = -0.05 },
			wantSub: "patch_fade_sec",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := config.Default()
			tt.mutate(cfg)
			err := config.Validate(cfg)
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("error %q does not mention %q", err, tt.wantSub)
			}
		})
	}
}

func TestValidate_CollectsAllFailures(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Log.Level = "loud"
	cfg.Synthesis.SpeedFactor = 9
	cfg.Editing.PatchEpsilon = -1

	err := config.Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}
	for _, sub := range []string{"log.level", "speed_factor", "patch_epsilon"} {
		if !strings.Contains(err.Error(), sub) {
			t.Errorf("joined error missing %q: %v", sub, err)
		}
	}
}

func TestValidate_DefaultIsValid(t *testing.T) {
	t.Parallel()

	if err := config.Validate(config.Default()); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

func TestRegistry_CreateRegistered(t *testing.T) {
	t.Parallel()

	reg := config.NewRegistry()
	reg.RegisterTTS("mock", func(entry config.ProviderEntry) (tts.Provider, error) {
		return &ttsmock.Provider{}, nil
	})
	reg.RegisterSTT("mock", func(entry config.ProviderEntry) (stt.Transcriber, error) {
		return &sttmock.Transcriber{}, nil
	})

	if _, err := reg.CreateTTS(config.ProviderEntry{Name: "mock"}); err != nil {
		t.Errorf("CreateTTS: %v", err)
	}
	if _, err := reg.CreateSTT(config.ProviderEntry{Name: "mock"}); err != nil {
		t.Errorf("CreateSTT: %v", err)
	}
}

func TestRegistry_CreateUnregistered(t *testing.T) {
	t.Parallel()

	reg := config.NewRegistry()
	if _, err := reg.CreateTTS(config.ProviderEntry{Name: "nope"}); !errors.Is(err, config.ErrProviderNotRegistered) {
		t.Errorf("CreateTTS err = %v, want ErrProviderNotRegistered", err)
	}
	if _, err := reg.CreateAnalysis(config.ProviderEntry{Name: "nope"}); !errors.Is(err, config.ErrProviderNotRegistered) {
		t.Errorf("CreateAnalysis err = %v, want ErrProviderNotRegistered", err)
	}
}
