// Package config loads Quell limiter and bundle definitions from YAML.
//
// A configuration file describes named limiters (their rate and limit
// criteria plus admission options), bundles that group limiters by
// operation name, and the optional admission journal:
//
//	limiters:
//	  search:
//	    rates:
//	      - calls: 2
//	        period: 1s
//	    limits:
//	      - calls: 20
//	        window: 10s
//	    safe_start: false
//	    throw_on_limit: false
//	    variation: 0s
//	bundles:
//	  api:
//	    search: search
//	    upload: search
//	journal:
//	  backend: sqlite
//	  path: quell.db
//	  retention_days: 30
//	  prune_schedule: "0 3 * * *"
//
// Loading follows a fixed sequence: read, parse, apply defaults, validate.
// Validation mirrors the construction invariants of pkg/ratelimit, so a
// configuration that loads cleanly also constructs cleanly.
//
// Build turns a validated configuration into live limiter and bundle
// instances. Watcher re-runs that construction when the file changes on
// disk; live limiters are never mutated, a changed file simply yields a
// fresh set.
package config
