package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/junovhs/slopchop/internal/apply"
	"github.com/junovhs/slopchop/internal/clip"
	"github.com/junovhs/slopchop/pkg/models"
)

var (
	applyDryRun    bool
	applyStageOnly bool
	applyFromFile  string
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply a sigil payload from the clipboard, stdin, or a file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		var payload string
		if applyFromFile != "" {
			data, err := os.ReadFile(applyFromFile)
			if err != nil {
				return err
			}
			payload = string(data)
		} else {
			payload, err = clip.Read()
			if err != nil {
				return err
			}
		}

		ctx := &apply.Context{
			Root:        projectRoot,
			Config:      cfg,
			DryRun:      applyDryRun,
			AutoPromote: !applyStageOnly,
		}

		outcome := apply.Run(ctx, payload)
		if err := formatter().ApplyOutcome(outcome); err != nil {
			return err
		}

		if outcome.Status == models.ApplyValidationFailure && outcome.AIMessage != "" && cfg.Preferences.AutoCopy {
			if clip.Write(outcome.AIMessage) {
				fmt.Fprintln(os.Stderr, "Feedback copied to clipboard; paste it back to the AI.")
			}
		}

		if outcome.Status != models.ApplySuccess {
			return fmt.Errorf("apply did not succeed: %s", outcome.Status)
		}
		return nil
	},
}

func init() {
	applyCmd.Flags().BoolVar(&applyDryRun, "dry-run", false, "Validate only; touch nothing")
	applyCmd.Flags().BoolVar(&applyStageOnly, "stage-only", false, "Write to the stage without promoting")
	applyCmd.Flags().StringVar(&applyFromFile, "file", "", "Read the payload from a file instead of the clipboard")
	rootCmd.AddCommand(applyCmd)
}
