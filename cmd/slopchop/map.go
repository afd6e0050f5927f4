package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/junovhs/slopchop/internal/graph"
	"github.com/junovhs/slopchop/internal/scanner"
)

var (
	mapAnchor string
	mapTop    int
)

var mapCmd = &cobra.Command{
	Use:   "map",
	Short: "Rank files by import-graph centrality",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		result, err := scanner.New(cfg).Scan(projectRoot)
		if err != nil {
			return err
		}

		g := graph.Build(readContents(result.Files))
		if mapAnchor != "" {
			g.FocusOn(absPath(result.Root, mapAnchor))
		}

		ranked := g.RankedFiles()
		if mapTop > 0 && len(ranked) > mapTop {
			ranked = ranked[:mapTop]
		}

		rows := make([][]string, 0, len(ranked))
		for i, rf := range ranked {
			rel, err := filepath.Rel(result.Root, rf.Path)
			if err != nil {
				rel = rf.Path
			}
			rows = append(rows, []string{
				fmt.Sprintf("%d", i+1), rel, fmt.Sprintf("%.4f", rf.Rank),
			})
		}
		if err := formatter().RankTable(rows); err != nil {
			return err
		}

		stats := g.ComputeStats()
		fmt.Printf("\n%d files, %d edges, %d components, density %.3f\n",
			stats.Nodes, stats.Edges, stats.Components, stats.Density)
		return nil
	},
}

func init() {
	mapCmd.Flags().StringVar(&mapAnchor, "anchor", "", "Bias ranking toward this file")
	mapCmd.Flags().IntVar(&mapTop, "top", 20, "Show only the top N files (0 = all)")
	rootCmd.AddCommand(mapCmd)
}

// readContents loads file contents for graph construction, skipping
// unreadable entries.
func readContents(files []string) []graph.FileContent {
	contents := make([]graph.FileContent, 0, len(files))
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		contents = append(contents, graph.FileContent{Path: path, Content: data})
	}
	return contents
}

func absPath(root, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}
