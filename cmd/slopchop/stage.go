package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/junovhs/slopchop/internal/stage"
)

var promoteCmd = &cobra.Command{
	Use:   "promote",
	Short: "Mirror staged writes and deletes into the workspace",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := stage.Open(projectRoot)
		if err != nil {
			return err
		}
		if err := st.Lock(); err != nil {
			return err
		}
		defer st.Unlock()

		result, err := st.Promote()
		if err != nil {
			return err
		}
		fmt.Printf("Promoted: %d written, %d deleted, %d preserved\n",
			result.Written, result.Deleted, result.Preserved)
		return nil
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Discard the stage worktree and clear its state",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := stage.Open(projectRoot)
		if err != nil {
			return err
		}
		if err := st.Lock(); err != nil {
			return err
		}
		defer st.Unlock()

		if err := st.Reset(); err != nil {
			return err
		}
		fmt.Println("Stage cleared.")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the stage's pending writes and deletes",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := stage.Open(projectRoot)
		if err != nil {
			return err
		}

		state := st.State()
		fmt.Printf("Stage %s (%d applies)\n", state.ID, state.ApplyCount)
		for _, path := range state.Writes {
			fmt.Printf("  staged: %s\n", path)
		}
		for _, path := range state.Deletes {
			fmt.Printf("  delete: %s\n", path)
		}
		if len(state.Writes) == 0 && len(state.Deletes) == 0 {
			fmt.Println("  nothing staged")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(promoteCmd, resetCmd, statusCmd)
}
