package apply

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/junovhs/slopchop/pkg/models"
)

func TestApplyPatchSingleMatch(t *testing.T) {
	content := []byte("fn main() {\n    old();\n}\n")
	patch := &models.PatchBlock{
		Path:  "src/main.rs",
		Hunks: []models.PatchHunk{{Search: "    old();", Replace: "    new();"}},
	}

	result, err := ApplyPatch(content, patch)
	require.NoError(t, err)
	assert.Equal(t, "fn main() {\n    new();\n}\n", string(result))
}

func TestApplyPatchNoMatch(t *testing.T) {
	patch := &models.PatchBlock{
		Path:  "src/main.rs",
		Hunks: []models.PatchHunk{{Search: "nonexistent", Replace: "x"}},
	}

	_, err := ApplyPatch([]byte("fn main() {}\n"), patch)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No match")
}

func TestApplyPatchAmbiguousMatch(t *testing.T) {
	patch := &models.PatchBlock{
		Path:  "src/main.rs",
		Hunks: []models.PatchHunk{{Search: "x()", Replace: "y()"}},
	}

	_, err := ApplyPatch([]byte("x()\nx()\n"), patch)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Ambiguous")
}

func TestApplyPatchBaseSHAMatch(t *testing.T) {
	content := []byte("let a = 1;\n")
	sum := sha256.Sum256(content)

	patch := &models.PatchBlock{
		Path:       "src/lib.rs",
		BaseSHA256: hex.EncodeToString(sum[:]),
		Hunks:      []models.PatchHunk{{Search: "let a = 1;", Replace: "let a = 2;"}},
	}

	result, err := ApplyPatch(content, patch)
	require.NoError(t, err)
	assert.Equal(t, "let a = 2;\n", string(result))
}

func TestApplyPatchBaseSHAMismatch(t *testing.T) {
	patch := &models.PatchBlock{
		Path:       "src/lib.rs",
		BaseSHA256: strings.Repeat("00", 32),
		Hunks:      []models.PatchHunk{{Search: "a", Replace: "b"}},
	}

	_, err := ApplyPatch([]byte("let a = 1;\n"), patch)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Base SHA256 verification failed")
}

func TestApplyPatchAbortsOnFailedHunk(t *testing.T) {
	content := []byte("one\ntwo\n")
	patch := &models.PatchBlock{
		Path: "f.txt",
		Hunks: []models.PatchHunk{
			{Search: "one", Replace: "ONE"},
			{Search: "missing", Replace: "x"},
		},
	}

	_, err := ApplyPatch(content, patch)
	require.Error(t, err)
	// Original content is untouched by the caller on error.
	assert.Equal(t, "one\ntwo\n", string(content))
}
