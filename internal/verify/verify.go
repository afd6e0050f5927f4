// Package verify runs the configured check and fix commands.
package verify

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/junovhs/slopchop/pkg/config"
)

// ReportFile receives the last verification output in plain text.
const ReportFile = "slopchop-report.txt"

// Result summarizes one phase run.
type Result struct {
	Phase    string
	Commands []string
	Passed   bool
	Output   string
}

// RunPhase executes every command configured for a phase with inherited
// stdio, in the given directory. The first nonzero exit stops the phase.
func RunPhase(cfg *config.Config, root, phase string) (*Result, error) {
	commands := cfg.CommandList(phase)
	result := &Result{Phase: phase, Commands: commands, Passed: true}

	if len(commands) == 0 {
		return result, nil
	}

	var output strings.Builder
	for _, command := range commands {
		fields := strings.Fields(command)
		if len(fields) == 0 {
			continue
		}

		cmd := exec.Command(fields[0], fields[1:]...)
		cmd.Dir = root
		cmd.Stdin = os.Stdin

		var out bytes.Buffer
		cmd.Stdout = io.MultiWriter(os.Stdout, &out)
		cmd.Stderr = io.MultiWriter(os.Stderr, &out)

		err := cmd.Run()
		output.WriteString(fmt.Sprintf("$ %s\n%s\n", command, out.String()))

		if err != nil {
			result.Passed = false
			break
		}
	}

	result.Output = output.String()
	if err := writeReport(root, result); err != nil {
		return result, err
	}
	return result, nil
}

// writeReport persists the verification output next to the project.
func writeReport(root string, result *Result) error {
	status := "PASSED"
	if !result.Passed {
		status = "FAILED"
	}
	content := fmt.Sprintf("phase: %s\nstatus: %s\n\n%s", result.Phase, status, result.Output)
	return os.WriteFile(filepath.Join(root, ReportFile), []byte(content), 0o644)
}
