package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"quell-hq/quell/pkg/config"
)

var (
	benchLimiter string
	benchCalls   int
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Exercise a configured limiter and print its admission schedule",
	Long: `Bench builds the named limiter from the configuration file and drives a
sequence of blocking admissions against it, printing the wall-clock gap
observed before each call. Useful for previewing how a configuration will
pace real traffic.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		built, err := config.Build(cfg)
		if err != nil {
			return err
		}

		rl, ok := built.Limiters[benchLimiter]
		if !ok {
			return fmt.Errorf("limiter %q is not defined in %s", benchLimiter, cfgFile)
		}

		fmt.Printf("driving %d admissions through limiter %q\n", benchCalls, benchLimiter)
		start := time.Now()
		prev := start
		for i := 0; i < benchCalls; i++ {
			if err := rl.Admit(); err != nil {
				return fmt.Errorf("admission %d: %w", i+1, err)
			}
			now := time.Now()
			fmt.Printf("  call %3d  t=%8.3fs  gap=%7.3fs\n",
				i+1, now.Sub(start).Seconds(), now.Sub(prev).Seconds())
			prev = now
		}
		fmt.Printf("total elapsed: %.3fs\n", time.Since(start).Seconds())
		return nil
	},
}

func init() {
	benchCmd.Flags().StringVarP(&benchLimiter, "limiter", "l", "", "limiter name to exercise (required)")
	benchCmd.Flags().IntVarP(&benchCalls, "calls", "n", 10, "number of admissions to drive")
	_ = benchCmd.MarkFlagRequired("limiter")

	rootCmd.AddCommand(benchCmd)
}
