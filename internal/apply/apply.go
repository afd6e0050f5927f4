// Package apply parses sigil payloads, validates them, and writes them to
// the workspace through a backup-first stage discipline.
package apply

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/junovhs/slopchop/internal/stage"
	"github.com/junovhs/slopchop/pkg/config"
	"github.com/junovhs/slopchop/pkg/models"
)

// Context carries one apply invocation's settings.
type Context struct {
	Root        string
	Config      *config.Config
	DryRun      bool
	AutoPromote bool
}

// Run executes the full apply pipeline: parse, validate, write to stage,
// promote. The real workspace is unchanged unless the outcome is Success.
func Run(ctx *Context, payloadText string) models.ApplyOutcome {
	payload, err := Parse(payloadText)
	if err != nil {
		return models.ParseErrorOutcome(err.Error())
	}

	if ctx.Config.Preferences.RequirePlan && payload.Plan == "" {
		return models.ParseErrorOutcome("Payload has no PLAN block (required by configuration)")
	}

	validation := Validate(payload)
	if len(validation.SecurityErrors) > 0 {
		return models.ValidationFailureOutcome(
			validation.SecurityErrors, nil,
			FormatAIRejection(nil, validation.SecurityErrors))
	}
	if len(validation.Missing) > 0 || len(validation.ContentErrors) > 0 {
		return models.ValidationFailureOutcome(
			validation.ContentErrors, validation.Missing,
			FormatAIRejection(validation.Missing, validation.ContentErrors))
	}

	written, deleted := plannedPaths(payload)
	if ctx.DryRun {
		return models.SuccessOutcome(written, deleted, false)
	}

	return write(ctx, payload, written, deleted)
}

// plannedPaths lists the paths an apply will touch, in payload order.
func plannedPaths(payload *Payload) (written, deleted []string) {
	seen := make(map[string]bool)
	for i := range payload.Files {
		if !seen[payload.Files[i].Path] {
			seen[payload.Files[i].Path] = true
			written = append(written, payload.Files[i].Path)
		}
	}
	for i := range payload.Patches {
		if !seen[payload.Patches[i].Path] {
			seen[payload.Patches[i].Path] = true
			written = append(written, payload.Patches[i].Path)
		}
	}
	for _, entry := range payload.Manifest {
		if entry.Operation == models.OpDelete {
			deleted = append(deleted, entry.Path)
		}
	}
	return written, deleted
}

// write runs phases 3 and 4: stage writes, backups, and promotion.
func write(ctx *Context, payload *Payload, written, deleted []string) models.ApplyOutcome {
	st, err := stage.Open(ctx.Root)
	if err != nil {
		return models.WriteErrorOutcome(fmt.Sprintf("failed to open stage: %v", err))
	}
	if err := st.Lock(); err != nil {
		return models.WriteErrorOutcome(err.Error())
	}
	defer st.Unlock()

	if err := st.Refresh(); err != nil {
		return models.WriteErrorOutcome(fmt.Sprintf("failed to refresh stage: %v", err))
	}

	backup, err := NewBackupSet(ctx.Root)
	if err != nil {
		return models.WriteErrorOutcome(err.Error())
	}

	// Paths created fresh by this apply; removed again on rollback.
	var created []string

	for i := range payload.Files {
		block := &payload.Files[i]
		if exists(ctx.Root, block.Path) {
			if err := backup.Add(block.Path); err != nil {
				return models.WriteErrorOutcome(err.Error())
			}
		} else {
			created = append(created, block.Path)
		}
		if err := st.WriteFile(block.Path, []byte(block.Content)); err != nil {
			return models.WriteErrorOutcome(fmt.Sprintf("failed to stage %s: %v", block.Path, err))
		}
	}

	for i := range payload.Patches {
		patch := &payload.Patches[i]
		current, err := st.ReadFile(patch.Path)
		if err != nil {
			return models.WriteErrorOutcome(fmt.Sprintf("%s: patch target not found", patch.Path))
		}
		patched, err := ApplyPatch(current, patch)
		if err != nil {
			return models.WriteErrorOutcome(err.Error())
		}
		if err := backup.Add(patch.Path); err != nil {
			return models.WriteErrorOutcome(err.Error())
		}
		if err := st.WriteFile(patch.Path, patched); err != nil {
			return models.WriteErrorOutcome(fmt.Sprintf("failed to stage %s: %v", patch.Path, err))
		}
	}

	for _, path := range deleted {
		if err := backup.Add(path); err != nil {
			return models.WriteErrorOutcome(err.Error())
		}
		if err := st.DeleteFile(path); err != nil {
			return models.WriteErrorOutcome(fmt.Sprintf("failed to stage delete of %s: %v", path, err))
		}
	}

	if err := st.SaveState(); err != nil {
		return models.WriteErrorOutcome(fmt.Sprintf("failed to save stage state: %v", err))
	}

	if err := PruneBackups(ctx.Root, ctx.Config.Preferences.BackupRetention); err != nil {
		return models.WriteErrorOutcome(fmt.Sprintf("failed to prune backups: %v", err))
	}

	if ctx.AutoPromote {
		if _, err := st.Promote(); err != nil {
			rollback(ctx.Root, backup, created)
			return models.WriteErrorOutcome(fmt.Sprintf(
				"%v (workspace restored from %s)", err, backup.Dir()))
		}
	}

	backup.Discard()
	return models.SuccessOutcome(written, deleted, backup.Count() > 0)
}

// rollback restores overwritten files from the just-created backup and
// removes files the apply created fresh.
func rollback(root string, backup *BackupSet, created []string) {
	_ = backup.Restore()
	for _, path := range created {
		os.Remove(filepath.Join(root, filepath.FromSlash(path)))
	}
}

func exists(root, relPath string) bool {
	_, err := os.Stat(filepath.Join(root, filepath.FromSlash(relPath)))
	return err == nil
}
