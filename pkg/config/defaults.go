package config

import "time"

// Default values applied to unset fields.
const (
	// DefaultRatePeriod is used when a rate omits its period.
	DefaultRatePeriod = time.Second

	// DefaultJournalBackend is used when no journal backend is selected.
	DefaultJournalBackend = "none"

	// DefaultJournalPath is the SQLite database file.
	DefaultJournalPath = "quell.db"

	// DefaultJournalMaxEntries bounds the memory journal.
	DefaultJournalMaxEntries = 10000

	// DefaultJournalRetentionDays is how long journal entries are kept.
	DefaultJournalRetentionDays = 30
)

// ApplyDefaults fills unset configuration fields with their defaults.
// It is called by Load before validation; configurations constructed in
// code should call it explicitly.
func ApplyDefaults(cfg *Config) {
	for name, lc := range cfg.Limiters {
		for i := range lc.Rates {
			if lc.Rates[i].Period == 0 {
				lc.Rates[i].Period = Duration(DefaultRatePeriod)
			}
		}
		cfg.Limiters[name] = lc
	}

	if cfg.Journal.Backend == "" {
		cfg.Journal.Backend = DefaultJournalBackend
	}
	if cfg.Journal.Path == "" {
		cfg.Journal.Path = DefaultJournalPath
	}
	if cfg.Journal.MaxEntries == 0 {
		cfg.Journal.MaxEntries = DefaultJournalMaxEntries
	}
	if cfg.Journal.RetentionDays == 0 {
		cfg.Journal.RetentionDays = DefaultJournalRetentionDays
	}
}
