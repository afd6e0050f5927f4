package main

import (
	"github.com/spf13/cobra"

	"github.com/junovhs/slopchop/internal/analyzer"
	"github.com/junovhs/slopchop/internal/progress"
	"github.com/junovhs/slopchop/internal/scanner"
	"github.com/junovhs/slopchop/internal/verify"
)

var checkSkipCommands bool

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Analyze the project against the code-quality laws",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		result, err := scanner.New(cfg).Scan(projectRoot)
		if err != nil {
			return err
		}

		reporter := progress.Bar("analyzing", len(result.Files))
		engine := analyzer.NewEngine(cfg)
		report := engine.Scan(result.Root, result.Files, func(string) {
			reporter.Tick()
		})
		reporter.Done()

		if err := formatter().ScanReport(report); err != nil {
			return err
		}

		failed := !report.Clean()

		if !checkSkipCommands {
			phase, err := verify.RunPhase(cfg, result.Root, "check")
			if err != nil {
				return err
			}
			if !phase.Passed {
				failed = true
			}
		}

		if failed {
			return errChecksFailed
		}
		return nil
	},
}

func init() {
	checkCmd.Flags().BoolVar(&checkSkipCommands, "no-commands", false, "Skip configured check commands")
	rootCmd.AddCommand(checkCmd)
}
