package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for Quell.
type Config struct {
	// Limiters maps limiter names to their definitions.
	Limiters map[string]LimiterConfig `yaml:"limiters"`

	// Bundles maps bundle names to operation-name -> limiter-name pairs.
	// Every referenced limiter name must exist in Limiters.
	Bundles map[string]map[string]string `yaml:"bundles"`

	// Journal configures the optional admission journal.
	Journal JournalConfig `yaml:"journal"`
}

// LimiterConfig defines one limiter: its criteria and admission options.
type LimiterConfig struct {
	// Rates lists constant-pace criteria. At least one rate or limit is
	// required per limiter.
	Rates []RateConfig `yaml:"rates"`

	// Limits lists trailing-window criteria.
	Limits []LimitConfig `yaml:"limits"`

	// SafeStart pre-fills the history at construction so the first call is
	// already subject to the full configured delay.
	// Default: false
	SafeStart bool `yaml:"safe_start"`

	// ThrowOnLimit returns an error carrying the computed wait instead of
	// sleeping.
	// Default: false
	ThrowOnLimit bool `yaml:"throw_on_limit"`

	// Variation is a signed offset added to every computed wait.
	// Default: 0s
	Variation Duration `yaml:"variation"`

	// ConcurrentWait releases the waiter queue before sleeping, letting
	// the next context-aware caller compute its wait immediately.
	// Default: false
	ConcurrentWait bool `yaml:"concurrent_wait"`
}

// RateConfig defines a constant-pace criterion.
type RateConfig struct {
	// Calls is the number of admissions per Period. Fractional values are
	// allowed.
	Calls float64 `yaml:"calls"`

	// Period is the span Calls is measured against (e.g. "1s").
	// Default: 1s
	Period Duration `yaml:"period"`
}

// LimitConfig defines a trailing-window criterion.
type LimitConfig struct {
	// Calls is the maximum number of admissions inside the window.
	Calls int `yaml:"calls"`

	// Window is the trailing window length (e.g. "10s").
	Window Duration `yaml:"window"`
}

// JournalConfig configures the admission journal.
type JournalConfig struct {
	// Backend selects the journal implementation: "none", "memory" or
	// "sqlite".
	// Default: "none"
	Backend string `yaml:"backend"`

	// Path is the SQLite database file (sqlite backend only).
	// Default: "quell.db"
	Path string `yaml:"path"`

	// MaxEntries bounds the memory backend's ring.
	// Default: 10000
	MaxEntries int `yaml:"max_entries"`

	// RetentionDays is how long journal entries are kept when pruning
	// runs (see PruneSchedule).
	// Default: 30
	RetentionDays int `yaml:"retention_days"`

	// PruneSchedule is a cron expression for scheduled pruning. Empty
	// disables the scheduler.
	PruneSchedule string `yaml:"prune_schedule"`
}

// Duration wraps time.Duration so YAML values can be written in the usual
// Go syntax ("250ms", "1.5s", "10s") rather than integer nanoseconds.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler. It accepts duration strings
// and bare numbers (interpreted as seconds).
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil {
		// Fall back to bare seconds ("period: 1").
		var secs float64
		if ferr := value.Decode(&secs); ferr != nil {
			return fmt.Errorf("invalid duration %q: %w", raw, err)
		}
		parsed = time.Duration(secs * float64(time.Second))
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}
