package main

import (
	"github.com/spf13/cobra"

	"github.com/junovhs/slopchop/internal/graph"
	"github.com/junovhs/slopchop/internal/scanner"
)

var localityCmd = &cobra.Command{
	Use:   "locality",
	Short: "Classify import edges for topological locality",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		result, err := scanner.New(cfg).Scan(projectRoot)
		if err != nil {
			return err
		}

		edges := graph.ClassifyImports(result.Root, readContents(result.Files), cfg)
		entropy := graph.Entropy(edges)

		if err := formatter().LocalityReport(edges, entropy); err != nil {
			return err
		}

		if cfg.Rules.Locality.Mode == "enforce" {
			for i := range edges {
				if edges[i].Verdict == "fail" {
					return errChecksFailed
				}
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(localityCmd)
}
