package apply

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/junovhs/slopchop/pkg/models"
)

func sigilBlock(kind, arg, body string) string {
	opener := Sigil + " " + kind + " " + Sigil
	if arg != "" {
		opener += " " + arg
	}
	return opener + "\n" + body + "\n" + Sigil + " END " + Sigil + "\n"
}

func TestParseEmptyInput(t *testing.T) {
	_, err := Parse("   \n\t\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Input is empty")
}

func TestParseNoBlocks(t *testing.T) {
	_, err := Parse("just some prose with no sigils")
	require.Error(t, err)
}

func TestParseFileBlock(t *testing.T) {
	input := "prose before\n" + sigilBlock("FILE", "src/main.rs", "fn main() {}") + "prose after\n"

	payload, err := Parse(input)
	require.NoError(t, err)
	require.Len(t, payload.Files, 1)
	assert.Equal(t, "src/main.rs", payload.Files[0].Path)
	assert.Equal(t, "fn main() {}", payload.Files[0].Content)
	assert.Equal(t, 1, payload.Files[0].LineCount)
}

func TestParseUnterminatedBlockDropped(t *testing.T) {
	input := Sigil + " FILE " + Sigil + " src/lost.rs\nfn main() {}\n" +
		sigilBlock("FILE", "src/kept.rs", "fn main() {}")

	payload, err := Parse(input)
	require.NoError(t, err)
	require.Len(t, payload.Files, 1)
	assert.Equal(t, "src/kept.rs", payload.Files[0].Path)
}

func TestParseManifestOperations(t *testing.T) {
	body := strings.Join([]string{
		"src/a.rs",
		"- src/b.rs [NEW]",
		"* src/c.rs [delete]",
		"1. src/d.rs",
		"<delivery>src/e.rs</delivery>",
		"",
	}, "\n")

	payload, err := Parse(sigilBlock("MANIFEST", "", body))
	require.NoError(t, err)
	require.Len(t, payload.Manifest, 5)

	assert.Equal(t, models.OpUpdate, payload.Manifest[0].Operation)
	assert.Equal(t, "src/b.rs", payload.Manifest[1].Path)
	assert.Equal(t, models.OpNew, payload.Manifest[1].Operation)
	assert.Equal(t, models.OpDelete, payload.Manifest[2].Operation)
	assert.Equal(t, "src/d.rs", payload.Manifest[3].Path)
	assert.Equal(t, "src/e.rs", payload.Manifest[4].Path)
}

func TestParseManifestOrderPreserved(t *testing.T) {
	lines := []string{"z.rs", "a.rs", "m.rs"}
	payload, err := Parse(sigilBlock("MANIFEST", "", strings.Join(lines, "\n")))
	require.NoError(t, err)

	for i, want := range lines {
		assert.Equal(t, want, payload.Manifest[i].Path)
	}
}

func TestParseManifestDuplicateRejected(t *testing.T) {
	_, err := Parse(sigilBlock("MANIFEST", "", "src/a.rs\nsrc/a.rs"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Duplicate")
}

func TestManifestEntryRoundTrip(t *testing.T) {
	cases := []string{
		"src/a.rs",
		"src/b.rs [NEW]",
		"src/c.rs [DELETE]",
	}
	for _, line := range cases {
		entry, ok := parseManifestLine(line)
		require.True(t, ok, line)
		assert.Equal(t, line, FormatManifestEntry(entry))
	}
}

func TestParsePlanAndRoadmap(t *testing.T) {
	input := sigilBlock("PLAN", "", "Refactor the widget.") +
		sigilBlock("ROADMAP", "", "done task-1") +
		sigilBlock("FILE", "a.rs", "fn main() {}")

	payload, err := Parse(input)
	require.NoError(t, err)
	assert.Equal(t, "Refactor the widget.", payload.Plan)
	assert.Equal(t, "done task-1", payload.Roadmap)
}

func TestParsePatchBlock(t *testing.T) {
	body := strings.Join([]string{
		"BASE_SHA256: abc123",
		"<<<< SEARCH",
		"let x = 1;",
		"====",
		"let x = 2;",
		">>>>",
		"<<<< SEARCH",
		"old()",
		"====",
		"new()",
		">>>>",
	}, "\n")

	payload, err := Parse(sigilBlock("PATCH", "src/lib.rs", body))
	require.NoError(t, err)
	require.Len(t, payload.Patches, 1)

	patch := payload.Patches[0]
	assert.Equal(t, "src/lib.rs", patch.Path)
	assert.Equal(t, "abc123", patch.BaseSHA256)
	require.Len(t, patch.Hunks, 2)
	assert.Equal(t, "let x = 1;", patch.Hunks[0].Search)
	assert.Equal(t, "let x = 2;", patch.Hunks[0].Replace)
	assert.Equal(t, "old()", patch.Hunks[1].Search)
}
