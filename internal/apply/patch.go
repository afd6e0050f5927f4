package apply

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/junovhs/slopchop/pkg/models"
)

// ApplyPatch applies a patch block's hunks to the current content. Failure
// of any hunk aborts the whole patch and leaves the content untouched.
func ApplyPatch(content []byte, patch *models.PatchBlock) ([]byte, error) {
	if patch.BaseSHA256 != "" {
		sum := sha256.Sum256(content)
		if !strings.EqualFold(hex.EncodeToString(sum[:]), patch.BaseSHA256) {
			return nil, fmt.Errorf("%s: Base SHA256 verification failed", patch.Path)
		}
	}

	text := string(content)
	for i, hunk := range patch.Hunks {
		updated, err := applyHunk(text, hunk)
		if err != nil {
			return nil, fmt.Errorf("%s: hunk %d: %w", patch.Path, i+1, err)
		}
		text = updated
	}

	return []byte(text), nil
}

// applyHunk replaces exactly one occurrence of the search string.
func applyHunk(text string, hunk models.PatchHunk) (string, error) {
	if hunk.Search == "" {
		return "", fmt.Errorf("empty search block")
	}

	switch strings.Count(text, hunk.Search) {
	case 0:
		return "", fmt.Errorf("No match for search block")
	case 1:
		return strings.Replace(text, hunk.Search, hunk.Replace, 1), nil
	default:
		return "", fmt.Errorf("Ambiguous search block (multiple matches)")
	}
}
