package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"quell-hq/quell/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a Quell configuration file",
	Long: `Validate loads the configuration file, applies defaults and checks every
limiter, bundle and journal setting against the same invariants limiter
construction enforces. A configuration that validates cleanly will also
construct cleanly at runtime.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		fmt.Printf("%s: OK (%d limiters, %d bundles)\n", cfgFile, len(cfg.Limiters), len(cfg.Bundles))
		for name, lc := range cfg.Limiters {
			fmt.Printf("  limiter %-20s rates=%d limits=%d safe_start=%v throw_on_limit=%v\n",
				name, len(lc.Rates), len(lc.Limits), lc.SafeStart, lc.ThrowOnLimit)
		}
		for name, ops := range cfg.Bundles {
			fmt.Printf("  bundle  %-20s operations=%d\n", name, len(ops))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
