package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/junovhs/slopchop/internal/clip"
	"github.com/junovhs/slopchop/internal/pack"
	"github.com/junovhs/slopchop/internal/scanner"
)

var (
	packDepth  int
	packBudget int
	packCopy   bool
)

var packCmd = &cobra.Command{
	Use:   "pack <anchor>",
	Short: "Pack the anchor file and its graph neighborhood into one payload",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		result, err := scanner.New(cfg).Scan(projectRoot)
		if err != nil {
			return err
		}

		payload, info, err := pack.Pack(result.Files, pack.Options{
			Anchor: absPath(result.Root, args[0]),
			Depth:  packDepth,
			Budget: packBudget,
		})
		if err != nil {
			return err
		}

		if packCopy && clip.Write(payload) {
			fmt.Fprintln(os.Stderr, "Payload copied to clipboard.")
		} else {
			fmt.Print(payload)
		}

		fmt.Fprintf(os.Stderr, "%d foveal, %d peripheral, %d omitted, ~%d tokens\n",
			len(info.Foveal), len(info.Peripheral), info.Omitted, info.Tokens)
		return nil
	},
}

func init() {
	packCmd.Flags().IntVar(&packDepth, "depth", 1, "Graph expansion depth")
	packCmd.Flags().IntVar(&packBudget, "budget", 24000, "Token budget (0 = unlimited)")
	packCmd.Flags().BoolVar(&packCopy, "copy", false, "Copy the payload to the clipboard")
	rootCmd.AddCommand(packCmd)
}
