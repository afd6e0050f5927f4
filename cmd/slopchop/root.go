package main

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/junovhs/slopchop/internal/output"
	"github.com/junovhs/slopchop/pkg/config"
)

var (
	projectRoot  string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "slopchop",
	Short: "Code-integrity guard for AI-assisted repositories",
	Long: `SlopChop guards a repository against low-quality, hallucinated, or
unsafe changes produced by AI coding assistants: a structural analyzer
enforcing quantitative code-quality laws, a payload applicator with
backup-first writes, and an import-graph ranker for context packing.

Supports: Rust, Python, JavaScript, TypeScript, Go`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&projectRoot, "root", "r", ".", "Project root directory")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "text", "Output format (text, json)")
}

// loadConfig loads the project configuration once per invocation.
func loadConfig() (*config.Config, error) {
	return config.LoadProject(projectRoot)
}

// formatter builds the shared output formatter.
func formatter() *output.Formatter {
	colored := isatty.IsTerminal(os.Stdout.Fd())
	return output.NewFormatter(output.ParseFormat(outputFormat), os.Stdout, colored)
}
