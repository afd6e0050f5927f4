package graph

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/junovhs/slopchop/pkg/config"
	"github.com/junovhs/slopchop/pkg/models"
)

func TestPathDistance(t *testing.T) {
	cases := []struct {
		from, to     string
		wantDistance int
		wantShared   int
	}{
		{"src/a.rs", "src/b.rs", 0, 1},
		{"src/net/a.rs", "src/b.rs", 1, 1},
		{"src/net/a.rs", "src/db/pool/b.rs", 2, 1},
		{"app/x.rs", "lib/y.rs", 1, 0},
		{"a.rs", "b.rs", 0, 0},
	}

	for _, tc := range cases {
		distance, shared := pathDistance(tc.from, tc.to)
		assert.Equal(t, tc.wantDistance, distance, "%s -> %s", tc.from, tc.to)
		assert.Equal(t, tc.wantShared, shared, "%s -> %s", tc.from, tc.to)
	}
}

func TestClassifyIdentity(t *testing.T) {
	assert.Equal(t, models.IdentitySibling, classifyIdentity(0, 1))
	assert.Equal(t, models.IdentitySibling, classifyIdentity(1, 1))
	assert.Equal(t, models.IdentityCousin, classifyIdentity(2, 1))
	assert.Equal(t, models.IdentityStranger, classifyIdentity(3, 0))
}

func TestVerdictDeterministic(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Rules.Locality.Mode = "warn"
	cfg.Rules.Locality.MaxDistance = 1

	v1, r1 := verdict(3, models.IdentityCousin, cfg)
	v2, r2 := verdict(3, models.IdentityCousin, cfg)
	assert.Equal(t, v1, v2)
	assert.Equal(t, r1, r2)
	assert.Equal(t, models.VerdictWarn, v1)
}

func TestVerdictModes(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Rules.Locality.MaxDistance = 1

	cfg.Rules.Locality.Mode = "off"
	v, _ := verdict(5, models.IdentityStranger, cfg)
	assert.Equal(t, models.VerdictPass, v)

	cfg.Rules.Locality.Mode = "warn"
	v, _ = verdict(5, models.IdentityStranger, cfg)
	assert.Equal(t, models.VerdictWarn, v)

	cfg.Rules.Locality.Mode = "enforce"
	v, _ = verdict(5, models.IdentityStranger, cfg)
	assert.Equal(t, models.VerdictFail, v)

	// Skew never changes the verdict; a distant stranger fails no matter
	// how popular the target is.
	edge := classifyEdge("/p", "/p/a/b/c/x.rs", "/p/z/y.rs",
		map[string]int{"/p/z/y.rs": 100}, 100, cfg)
	assert.Equal(t, models.VerdictFail, edge.Verdict)
	assert.Equal(t, 1.0, edge.Skew)
}

func TestClassifyImportsEndToEnd(t *testing.T) {
	root := t.TempDir()

	write := func(rel, content string) string {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}

	mainPath := write("src/main.rs", "mod util;\nuse crate::util;\nfn main() {}")
	utilPath := write("src/util.rs", "pub fn helper() {}")

	files := []FileContent{
		{Path: mainPath, Content: []byte("use crate::util;\nfn main() {}")},
		{Path: utilPath, Content: []byte("pub fn helper() {}")},
	}

	cfg := config.DefaultConfig()
	edges := ClassifyImports(root, files, cfg)
	require.Len(t, edges, 1)

	edge := edges[0]
	assert.Equal(t, "src/main.rs", edge.From)
	assert.Equal(t, "src/util.rs", edge.To)
	assert.Equal(t, 0, edge.Distance)
	assert.Equal(t, models.IdentitySibling, edge.Identity)
	assert.Equal(t, models.VerdictPass, edge.Verdict)
}

func TestUnresolvedImportsDiscarded(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "main.rs")
	require.NoError(t, os.WriteFile(path, []byte("use std::fs;\nfn main() {}"), 0o644))

	files := []FileContent{{Path: path, Content: []byte("use std::fs;\nfn main() {}")}}
	edges := ClassifyImports(root, files, config.DefaultConfig())
	assert.Empty(t, edges)
}

func TestEntropy(t *testing.T) {
	assert.Equal(t, 0.0, Entropy(nil))

	edges := []models.LocalityEdge{
		{Verdict: models.VerdictPass},
		{Verdict: models.VerdictWarn},
		{Verdict: models.VerdictFail},
		{Verdict: models.VerdictPass},
	}
	assert.InDelta(t, 0.5, Entropy(edges), 1e-9)
}
