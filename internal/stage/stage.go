// Package stage maintains the shadow worktree used as a commit-intent
// buffer for applies.
package stage

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/cespare/xxhash/v2"
)

// Fixed locations under the project root.
const (
	Root         = ".slopchop"
	stateFile    = "stage/state.json"
	worktreeName = "stage/worktree"
	lockFile     = "stage/lock"
)

// excludedDirs are never copied into the worktree: build caches,
// version-control metadata, dependency staging, the stage itself.
var excludedDirs = map[string]bool{
	Root: true, ".git": true, ".slopchop_apply_backup": true,
	".warden_apply_backup": true,
	"node_modules":         true, "target": true, "__pycache__": true,
	".venv": true, "venv": true, ".tox": true,
	"dist": true, "build": true, ".next": true, ".nuxt": true,
	"vendor": true, ".vscode": true, ".idea": true,
}

// excludedFiles are never copied into the worktree.
var excludedFiles = map[string]bool{
	".DS_Store": true, "Thumbs.db": true, "desktop.ini": true,
	".env": true, ".env.local": true, ".env.production": true,
}

// State is the on-disk record of an active stage.
type State struct {
	ID         string   `json:"id"`
	Writes     []string `json:"writes"`
	Deletes    []string `json:"deletes"`
	ApplyCount int      `json:"apply_count"`
}

// Stage is the shadow worktree for one project.
type Stage struct {
	projectRoot string
	state       *State
	locked      bool
}

// Open attaches to (or initializes) the project's stage.
func Open(projectRoot string) (*Stage, error) {
	s := &Stage{projectRoot: projectRoot}
	state, err := s.loadState()
	if err != nil {
		return nil, err
	}
	s.state = state
	return s, nil
}

// Worktree returns the shadow worktree directory.
func (s *Stage) Worktree() string {
	return filepath.Join(s.projectRoot, Root, worktreeName)
}

func (s *Stage) statePath() string {
	return filepath.Join(s.projectRoot, Root, stateFile)
}

// State returns the current stage state.
func (s *Stage) State() *State {
	return s.state
}

// Lock takes the exclusive stage lock for the duration of one apply.
// Concurrent invocations against the same project must serialize.
func (s *Stage) Lock() error {
	path := filepath.Join(s.projectRoot, Root, lockFile)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("stage is locked by another invocation (remove %s if stale)", path)
		}
		return err
	}
	f.Close()
	s.locked = true
	return nil
}

// Unlock releases the stage lock.
func (s *Stage) Unlock() {
	if s.locked {
		os.Remove(filepath.Join(s.projectRoot, Root, lockFile))
		s.locked = false
	}
}

func (s *Stage) loadState() (*State, error) {
	data, err := os.ReadFile(s.statePath())
	if err != nil {
		if os.IsNotExist(err) {
			return newState(), nil
		}
		return nil, err
	}

	state := &State{}
	if err := json.Unmarshal(data, state); err != nil {
		// A corrupt state file is unrecoverable; start clean.
		return newState(), nil
	}
	return state, nil
}

func newState() *State {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		// Zero ID still identifies a stage, just less uniquely.
		return &State{ID: "stage-00000000"}
	}
	return &State{ID: "stage-" + hex.EncodeToString(buf)}
}

// SaveState persists the state file.
func (s *Stage) SaveState() error {
	path := s.statePath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// RecordWrite schedules a path for promotion. The write set never overlaps
// the delete set.
func (s *Stage) RecordWrite(relPath string) {
	s.state.Deletes = removeString(s.state.Deletes, relPath)
	s.state.Writes = appendUnique(s.state.Writes, relPath)
}

// RecordDelete schedules a path for removal on promotion.
func (s *Stage) RecordDelete(relPath string) {
	s.state.Writes = removeString(s.state.Writes, relPath)
	s.state.Deletes = appendUnique(s.state.Deletes, relPath)
}

// Reset discards the worktree and clears the state.
func (s *Stage) Reset() error {
	if err := os.RemoveAll(s.Worktree()); err != nil {
		return err
	}
	s.state = newState()
	return s.SaveState()
}

// Refresh lazily mirrors the current workspace into the worktree: files
// whose content hash differs are copied, everything else is left alone.
// Staged writes are never clobbered by a refresh.
func (s *Stage) Refresh() error {
	worktree := s.Worktree()
	if err := os.MkdirAll(worktree, 0o755); err != nil {
		return err
	}

	staged := make(map[string]bool, len(s.state.Writes))
	for _, w := range s.state.Writes {
		staged[w] = true
	}

	return filepath.WalkDir(s.projectRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}

		name := d.Name()
		if d.IsDir() {
			if path != s.projectRoot && excludedDirs[name] {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 || excludedFiles[name] {
			return nil
		}

		rel, relErr := filepath.Rel(s.projectRoot, path)
		if relErr != nil {
			return nil
		}
		if staged[filepath.ToSlash(rel)] {
			return nil
		}

		dest := filepath.Join(worktree, rel)
		if sameContent(path, dest) {
			return nil
		}
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return nil
		}
		copyFile(path, dest)
		return nil
	})
}

// WriteFile writes content into the worktree and records the path.
func (s *Stage) WriteFile(relPath string, content []byte) error {
	dest := filepath.Join(s.Worktree(), filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(dest, content, 0o644); err != nil {
		return err
	}
	s.RecordWrite(filepath.ToSlash(relPath))
	return nil
}

// ReadFile reads a path from the worktree, falling back to the workspace
// when the worktree copy does not exist yet.
func (s *Stage) ReadFile(relPath string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.Worktree(), filepath.FromSlash(relPath)))
	if err == nil {
		return data, nil
	}
	return os.ReadFile(filepath.Join(s.projectRoot, filepath.FromSlash(relPath)))
}

// DeleteFile removes a path from the worktree and records the delete.
func (s *Stage) DeleteFile(relPath string) error {
	path := filepath.Join(s.Worktree(), filepath.FromSlash(relPath))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	s.RecordDelete(filepath.ToSlash(relPath))
	return nil
}

// sameContent compares two files by xxhash digest.
func sameContent(a, b string) bool {
	ha, errA := hashFile(a)
	hb, errB := hashFile(b)
	return errA == nil && errB == nil && ha == hb
}

func hashFile(path string) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	h := xxhash.New()
	if _, err := io.Copy(h, f); err != nil {
		return 0, err
	}
	return h.Sum64(), nil
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}

func appendUnique(list []string, item string) []string {
	for _, existing := range list {
		if existing == item {
			return list
		}
	}
	list = append(list, item)
	sort.Strings(list)
	return list
}

func removeString(list []string, item string) []string {
	out := list[:0]
	for _, existing := range list {
		if existing != item {
			out = append(out, existing)
		}
	}
	return out
}
