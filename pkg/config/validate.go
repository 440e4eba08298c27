package config

import (
	"fmt"
)

// Validate checks the configuration for errors.
//
// The checks mirror the construction invariants of pkg/ratelimit (every
// limiter needs at least one criterion, all criterion parameters positive)
// plus cross-references: every limiter a bundle names must be defined.
// A configuration that validates cleanly will also construct cleanly.
func Validate(cfg *Config) error {
	for name, lc := range cfg.Limiters {
		if err := validateLimiter(name, lc); err != nil {
			return err
		}
	}

	for bundleName, ops := range cfg.Bundles {
		if len(ops) == 0 {
			return fmt.Errorf("bundle %q: no operations defined", bundleName)
		}
		for op, limiterName := range ops {
			if _, ok := cfg.Limiters[limiterName]; !ok {
				return fmt.Errorf("bundle %q: operation %q references undefined limiter %q",
					bundleName, op, limiterName)
			}
		}
	}

	return validateJournal(cfg.Journal)
}

func validateLimiter(name string, lc LimiterConfig) error {
	if len(lc.Rates)+len(lc.Limits) == 0 {
		return fmt.Errorf("limiter %q: at least one rate or limit is required", name)
	}

	for i, rc := range lc.Rates {
		if rc.Calls <= 0 {
			return fmt.Errorf("limiter %q: rates[%d]: calls must be positive, got %v", name, i, rc.Calls)
		}
		if rc.Period <= 0 {
			return fmt.Errorf("limiter %q: rates[%d]: period must be positive, got %v", name, i, rc.Period.Std())
		}
	}

	for i, lim := range lc.Limits {
		if lim.Calls <= 0 {
			return fmt.Errorf("limiter %q: limits[%d]: calls must be positive, got %d", name, i, lim.Calls)
		}
		if lim.Window <= 0 {
			return fmt.Errorf("limiter %q: limits[%d]: window must be positive, got %v", name, i, lim.Window.Std())
		}
	}

	return nil
}

func validateJournal(jc JournalConfig) error {
	switch jc.Backend {
	case "none", "memory", "sqlite":
	default:
		return fmt.Errorf("journal: unknown backend %q (want none, memory or sqlite)", jc.Backend)
	}

	if jc.Backend == "sqlite" && jc.Path == "" {
		return fmt.Errorf("journal: sqlite backend requires a path")
	}
	if jc.MaxEntries < 0 {
		return fmt.Errorf("journal: max_entries must not be negative, got %d", jc.MaxEntries)
	}
	if jc.RetentionDays < 0 {
		return fmt.Errorf("journal: retention_days must not be negative, got %d", jc.RetentionDays)
	}
	return nil
}
