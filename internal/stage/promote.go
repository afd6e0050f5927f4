package stage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// preservedPaths are never mirrored or removed during promotion.
var preservedPaths = []string{
	".git", Root, ".slopchop_apply_backup",
	"target", "node_modules", ".vscode", ".idea",
	"__pycache__", ".venv", "venv",
	".env", ".env.local", ".env.production",
}

// isPreserved reports whether a slash-form relative path is protected.
func isPreserved(relPath string) bool {
	first := relPath
	if idx := strings.IndexByte(relPath, '/'); idx >= 0 {
		first = relPath[:idx]
	}
	for _, p := range preservedPaths {
		if first == p {
			return true
		}
	}
	return false
}

// PromoteResult summarizes a promotion.
type PromoteResult struct {
	Written   int
	Deleted   int
	Preserved int
}

// Promote mirrors the worktree into the workspace for exactly the paths in
// the state's write and delete sets, then clears the sets and increments
// the apply counter.
func (s *Stage) Promote() (*PromoteResult, error) {
	result := &PromoteResult{}

	for _, relPath := range s.state.Writes {
		if isPreserved(relPath) {
			result.Preserved++
			continue
		}

		src := filepath.Join(s.Worktree(), filepath.FromSlash(relPath))
		dest := filepath.Join(s.projectRoot, filepath.FromSlash(relPath))

		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return result, fmt.Errorf("failed to create %s: %w", filepath.Dir(dest), err)
		}
		if err := copyFile(src, dest); err != nil {
			return result, fmt.Errorf("failed to promote %s: %w", relPath, err)
		}
		result.Written++
	}

	for _, relPath := range s.state.Deletes {
		if isPreserved(relPath) {
			result.Preserved++
			continue
		}

		dest := filepath.Join(s.projectRoot, filepath.FromSlash(relPath))
		if err := os.Remove(dest); err != nil && !os.IsNotExist(err) {
			return result, fmt.Errorf("failed to delete %s: %w", relPath, err)
		}
		result.Deleted++
	}

	s.state.Writes = nil
	s.state.Deletes = nil
	s.state.ApplyCount++
	if err := s.SaveState(); err != nil {
		return result, err
	}

	return result, nil
}
