package graph

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/junovhs/slopchop/pkg/models"
)

// fixture: util.rs defines helper(), both main.rs and lib.rs call it.
func fixtureFiles() []FileContent {
	return []FileContent{
		{Path: "src/main.rs", Content: []byte("fn main() { helper(); helper(); }")},
		{Path: "src/lib.rs", Content: []byte("fn run() { helper(); }")},
		{Path: "src/util.rs", Content: []byte("fn helper() -> i32 { 1 }")},
	}
}

func TestBuildEdges(t *testing.T) {
	g := Build(fixtureFiles())

	edges := g.Edges()
	require.NotEmpty(t, edges)

	var mainToUtil *Edge
	for i := range edges {
		if edges[i].From == "src/main.rs" && edges[i].To == "src/util.rs" {
			mainToUtil = &edges[i]
		}
		// Self-edges are suppressed.
		assert.NotEqual(t, edges[i].From, edges[i].To)
	}
	require.NotNil(t, mainToUtil, "expected main.rs -> util.rs edge, got %v", edges)
	assert.GreaterOrEqual(t, mainToUtil.Weight, 2.0, "reference count feeds the weight")
}

func TestNeighborhoodQueries(t *testing.T) {
	g := Build(fixtureFiles())

	assert.ElementsMatch(t, []string{"src/main.rs", "src/lib.rs"}, g.Dependents("src/util.rs"))
	assert.Equal(t, []string{"src/util.rs"}, g.Dependencies("src/main.rs"))
	assert.ElementsMatch(t, []string{"src/main.rs", "src/lib.rs"}, g.Neighbors("src/util.rs"))

	assert.True(t, g.IsHub("src/util.rs", 2))
	assert.False(t, g.IsHub("src/main.rs", 1))
}

func TestPageRankSumsToOne(t *testing.T) {
	g := Build(fixtureFiles())

	total := 0.0
	for _, rf := range g.RankedFiles() {
		total += rf.Rank
	}
	assert.InDelta(t, 1.0, total, 1e-6)
}

func TestDefinedFileOutranksLeaves(t *testing.T) {
	g := Build(fixtureFiles())

	ranked := g.RankedFiles()
	require.Len(t, ranked, 3)
	assert.Equal(t, "src/util.rs", ranked[0].Path, "the defining file collects rank mass")
}

func TestFocusOnReplacesRanks(t *testing.T) {
	g := Build(fixtureFiles())
	before := g.RankedFiles()

	g.FocusOn("src/main.rs")
	after := g.RankedFiles()

	require.Equal(t, len(before), len(after))

	// Focused teleport keeps the anchor's rank above the uniform share.
	var anchorRank float64
	for _, rf := range after {
		if rf.Path == "src/main.rs" {
			anchorRank = rf.Rank
		}
	}
	assert.Greater(t, anchorRank, 1.0/3.0)
}

func TestPageRankConverges(t *testing.T) {
	// A cycle plus danglers still converges within the iteration cap.
	files := []FileContent{
		{Path: "a.rs", Content: []byte("fn fa() { fb(); }")},
		{Path: "b.rs", Content: []byte("fn fb() { fc(); }")},
		{Path: "c.rs", Content: []byte("fn fc() { fa(); }")},
		{Path: "d.rs", Content: []byte("fn fd() -> i32 { 0 }")},
	}
	g := Build(files)

	total := 0.0
	for _, rf := range g.RankedFiles() {
		require.False(t, math.IsNaN(rf.Rank))
		total += rf.Rank
	}
	assert.InDelta(t, 1.0, total, 1e-4)
}

func TestDefinitionTags(t *testing.T) {
	g := Build(fixtureFiles())

	defs := g.DefinitionTags()
	names := make(map[string]bool)
	for _, tag := range defs {
		assert.Equal(t, models.TagDef, tag.Kind)
		assert.GreaterOrEqual(t, tag.Row, 1)
		names[tag.Name] = true
	}
	assert.True(t, names["helper"])
	assert.True(t, names["main"])
	assert.True(t, names["run"])
}

func TestEmptyGraph(t *testing.T) {
	g := Build(nil)
	assert.Empty(t, g.RankedFiles())
	assert.Empty(t, g.Edges())

	stats := g.ComputeStats()
	assert.Equal(t, 0, stats.Nodes)
}

func TestComputeStats(t *testing.T) {
	g := Build(fixtureFiles())
	stats := g.ComputeStats()

	assert.Equal(t, 3, stats.Nodes)
	assert.Equal(t, 1, stats.Components)
	assert.Greater(t, stats.Density, 0.0)
}
