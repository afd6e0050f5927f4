package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/junovhs/slopchop/pkg/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter slopchop.toml for the detected project type",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := filepath.Join(projectRoot, "slopchop.toml")
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}

		content := config.GenerateTOML(projectRoot)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
