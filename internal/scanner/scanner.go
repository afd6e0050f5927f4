// Package scanner discovers the canonical source file list for a project.
package scanner

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"

	"github.com/junovhs/slopchop/pkg/config"
)

// pruneNames are directory or file names never descended into or admitted:
// build output, version-control metadata, dependency staging, lockfiles, and
// the applicator's own archive directories.
var pruneNames = map[string]bool{
	".git": true, ".svn": true, ".hg": true,
	"node_modules": true, "target": true, "dist": true, "build": true,
	"out": true, "gen": true, ".venv": true, "venv": true, ".tox": true,
	"__pycache__": true, "coverage": true, "vendor": true,
	".slopchop": true, ".slopchop_apply_backup": true, ".warden_apply_backup": true,
	"Cargo.lock": true, "package-lock.json": true, "pnpm-lock.yaml": true,
	"yarn.lock": true, "bun.lockb": true, "go.sum": true, "Gemfile.lock": true,
}

var (
	codeExtRe  = regexp.MustCompile(`(?i)\.(rs|go|py|js|jsx|ts|tsx|java|c|cpp|h|hpp|cs|php|rb|sh|sql|html|css|scss|json|toml|yaml|md)$`)
	codeBareRe = regexp.MustCompile(`(?i)(Makefile|Dockerfile|CMakeLists\.txt)$`)
)

// buildMarkers admit unknown text files that look like build-system inputs.
var buildMarkers = []string{
	"find_package", "add_executable", "target_link_libraries",
	"cmake_minimum_required", "project(", "add-apt-repository",
	"conanfile.py", "dependency", "require", "include", "import",
	"version", "dependencies",
}

// Scanner finds source files under a project root.
type Scanner struct {
	config   *config.Config
	matchers []gitignore.Matcher
}

// New creates a file scanner.
func New(cfg *config.Config) *Scanner {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Scanner{config: cfg}
}

// Result is the discovered file list plus its root.
type Result struct {
	Root  string
	Files []string
}

// Scan walks the project and returns the ordered absolute file list.
// Per-entry filesystem errors are skipped; a missing root is fatal.
func (s *Scanner) Scan(root string) (*Result, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if info, err := os.Stat(absRoot); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("project root not found: %s", absRoot)
	}

	s.loadGitignore(absRoot)

	files := make([]string, 0, 256)
	walkErr := filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}

		name := d.Name()
		if d.IsDir() {
			if path != absRoot && (pruneNames[name] || s.gitIgnored(absRoot, path, true)) {
				return filepath.SkipDir
			}
			return nil
		}

		// Symlinks are not followed.
		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}

		if pruneNames[name] || s.gitIgnored(absRoot, path, false) {
			return nil
		}

		rel, relErr := filepath.Rel(absRoot, path)
		if relErr != nil {
			rel = path
		}
		if s.config.Ignored(filepath.ToSlash(rel)) {
			return nil
		}

		if shouldKeep(path) {
			files = append(files, path)
		}
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	return &Result{Root: absRoot, Files: files}, nil
}

// loadGitignore reads all .gitignore files under root when the project is a
// git repository.
func (s *Scanner) loadGitignore(root string) {
	if _, err := os.Stat(filepath.Join(root, ".git")); err != nil {
		return
	}
	fsys := osfs.New(root)
	if patterns, err := gitignore.ReadPatterns(fsys, nil); err == nil && len(patterns) > 0 {
		s.matchers = append(s.matchers, gitignore.NewMatcher(patterns))
	}
}

func (s *Scanner) gitIgnored(root, path string, isDir bool) bool {
	if len(s.matchers) == 0 {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	parts := strings.Split(rel, string(filepath.Separator))
	for _, m := range s.matchers {
		if m.Match(parts, isDir) {
			return true
		}
	}
	return false
}

// shouldKeep applies the three admission filters in order: known code
// names, the byte-entropy gate, and the build-marker heuristic.
func shouldKeep(path string) bool {
	if isKnownCodeFile(path) {
		return true
	}

	entropy, err := fileEntropy(path)
	if err != nil {
		return false
	}
	if entropy < minTextEntropy || entropy > maxTextEntropy {
		return false
	}

	return hasBuildMarkers(path)
}

func isKnownCodeFile(path string) bool {
	return codeExtRe.MatchString(path) || codeBareRe.MatchString(path)
}

func hasBuildMarkers(path string) bool {
	content, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	lower := strings.ToLower(string(content))
	for _, marker := range buildMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
