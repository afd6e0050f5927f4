package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/junovhs/slopchop/internal/apply"
	"github.com/junovhs/slopchop/internal/clip"
)

var promptCopy bool

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Emit the sigil-protocol instructions for an AI session",
	RunE: func(cmd *cobra.Command, args []string) error {
		text := protocolPrompt()
		if promptCopy && clip.Write(text) {
			fmt.Fprintln(os.Stderr, "Prompt copied to clipboard.")
			return nil
		}
		fmt.Print(text)
		return nil
	},
}

// protocolPrompt renders the payload format contract for the AI.
func protocolPrompt() string {
	s := apply.Sigil
	return fmt.Sprintf(`All responses must use the %[1]s sigil protocol. Do NOT use markdown code fences.

%[1]s PLAN %[1]s
Short rationale for the change.
%[1]s END %[1]s

%[1]s MANIFEST %[1]s
path/to/existing_file.rs
path/to/created_file.rs [NEW]
path/to/removed_file.rs [DELETE]
%[1]s END %[1]s

%[1]s FILE %[1]s path/to/existing_file.rs
<complete file content>
%[1]s END %[1]s

Rules:
- Every non-DELETE manifest entry needs a matching FILE block.
- Send complete files. No truncation markers, no '...' elisions.
- The %[1]s markers are the fences; never wrap code in backticks.
`, s)
}

func init() {
	promptCmd.Flags().BoolVar(&promptCopy, "copy", false, "Copy the prompt to the clipboard")
	rootCmd.AddCommand(promptCmd)
}
