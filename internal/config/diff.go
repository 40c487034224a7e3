package config

// ConfigDiff describes what changed between two configs.
// Only fields that can be safely hot-reloaded are tracked.
type ConfigDiff struct {
	// LogLevelChanged is true when the log level differs; NewLogLevel holds
	// the value to switch to.
	LogLevelChanged bool
	NewLogLevel     LogLevel

	// SynthesisChanged is true when any synthesis default differs. A running
	// batch generation picks the new defaults up for subsequent chunks.
	SynthesisChanged bool

	// PacingChanged is true when request_delay_sec differs. Tracked
	// separately so a long run can stretch or tighten its schedule without
	// re-reading every synthesis field.
	PacingChanged   bool
	NewRequestDelay float64
}

// Diff compares old and new configs and returns what changed.
// Only tracks changes that are safe to apply without restart; provider and
// library changes require one.
func Diff(old, new *Config) ConfigDiff {
	d := ConfigDiff{}

	if old.Log.Level != new.Log.Level {
		d.LogLevelChanged = true
		d.NewLogLevel = new.Log.Level
	}

	if old.Synthesis != new.Synthesis {
		d.SynthesisChanged = true
	}

	if old.Synthesis.RequestDelaySec != new.Synthesis.RequestDelaySec {
		d.PacingChanged = true
		d.NewRequestDelay = new.Synthesis.RequestDelaySec
	}

	return d
}
