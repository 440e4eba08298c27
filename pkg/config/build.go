package config

import (
	"fmt"

	"quell-hq/quell/pkg/ratelimit"
)

// Built holds the live instances constructed from a configuration.
type Built struct {
	// Limiters maps limiter names to constructed instances.
	Limiters map[string]*ratelimit.Limiter

	// Bundles maps bundle names to constructed bundles. Bundle entries
	// reference the instances in Limiters (bundles copy on Apply by
	// default, so sharing here is safe).
	Bundles map[string]*ratelimit.Bundle
}

// BuildOption adjusts construction of every limiter, e.g. to attach shared
// metrics or a journal recorder.
type BuildOption func(name string) []ratelimit.Option

// WithLimiterOptions applies the same extra options to every constructed
// limiter.
func WithLimiterOptions(opts ...ratelimit.Option) BuildOption {
	return func(string) []ratelimit.Option {
		return opts
	}
}

// Build constructs limiters and bundles from a validated configuration.
//
// Construction is fresh every call: building twice yields fully independent
// instances. Criteria order is rates first, then limits, matching the file.
func Build(cfg *Config, opts ...BuildOption) (*Built, error) {
	built := &Built{
		Limiters: make(map[string]*ratelimit.Limiter, len(cfg.Limiters)),
		Bundles:  make(map[string]*ratelimit.Bundle, len(cfg.Bundles)),
	}

	for name, lc := range cfg.Limiters {
		rl, err := buildLimiter(name, lc, opts)
		if err != nil {
			return nil, fmt.Errorf("limiter %q: %w", name, err)
		}
		built.Limiters[name] = rl
	}

	for bundleName, ops := range cfg.Bundles {
		limiters := make(map[string]*ratelimit.Limiter, len(ops))
		for op, limiterName := range ops {
			rl, ok := built.Limiters[limiterName]
			if !ok {
				// Validate catches this; guard against unvalidated configs.
				return nil, fmt.Errorf("bundle %q: operation %q references undefined limiter %q",
					bundleName, op, limiterName)
			}
			limiters[op] = rl
		}
		built.Bundles[bundleName] = ratelimit.NewBundle(limiters)
	}

	return built, nil
}

func buildLimiter(name string, lc LimiterConfig, buildOpts []BuildOption) (*ratelimit.Limiter, error) {
	criteria := make([]ratelimit.Criterion, 0, len(lc.Rates)+len(lc.Limits))
	for _, rc := range lc.Rates {
		criteria = append(criteria, ratelimit.Rate{Calls: rc.Calls, Period: rc.Period.Std()})
	}
	for _, lim := range lc.Limits {
		criteria = append(criteria, ratelimit.Limit{Calls: lim.Calls, Window: lim.Window.Std()})
	}

	opts := []ratelimit.Option{
		ratelimit.WithName(name),
		ratelimit.WithSafeStart(lc.SafeStart),
		ratelimit.WithThrowOnLimit(lc.ThrowOnLimit),
		ratelimit.WithVariation(lc.Variation.Std()),
		ratelimit.WithConcurrentWait(lc.ConcurrentWait),
	}
	for _, bo := range buildOpts {
		opts = append(opts, bo(name)...)
	}

	return ratelimit.New(criteria, opts...)
}
