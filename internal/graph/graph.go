// Package graph builds the import graph, ranks files by centrality, and
// classifies import edges for topological locality.
package graph

import (
	"sort"

	"github.com/junovhs/slopchop/pkg/models"
	"github.com/junovhs/slopchop/pkg/parser"
)

// FileContent pairs a path with its contents.
type FileContent struct {
	Path    string
	Content []byte
}

// Edge is a weighted directed dependency between two files.
type Edge struct {
	From   string
	To     string
	Weight float64
}

// RepoGraph is an immutable snapshot of the repository's symbol topology.
// Focusing on an anchor replaces only the rank map.
type RepoGraph struct {
	files      []string
	tags       []models.Tag
	defines    map[string]map[string]bool // symbol -> defining files
	references map[string][]string        // symbol -> referencing files (with multiplicity)
	edges      []Edge
	ranks      map[string]float64
}

// Build constructs the graph from files and their contents.
func Build(files []FileContent) *RepoGraph {
	psr := parser.New()
	defer psr.Close()

	extracted := make([]fileTags, 0, len(files))
	paths := make([]string, 0, len(files))
	for _, fc := range files {
		extracted = append(extracted, extractFileTags(psr, fc.Path, fc.Content))
		paths = append(paths, fc.Path)
	}

	defines := make(map[string]map[string]bool)
	for _, ft := range extracted {
		for _, def := range ft.defs {
			if defines[def.Name] == nil {
				defines[def.Name] = make(map[string]bool)
			}
			defines[def.Name][def.File] = true
		}
	}

	var tags []models.Tag
	references := make(map[string][]string)
	for i := range extracted {
		tags = append(tags, extracted[i].defs...)
		refs := extracted[i].refTags(defines)
		tags = append(tags, refs...)
		for _, ref := range refs {
			references[ref.Name] = append(references[ref.Name], ref.File)
		}
	}

	edges := buildEdges(defines, references)

	g := &RepoGraph{
		files:      paths,
		tags:       tags,
		defines:    defines,
		references: references,
		edges:      edges,
	}
	g.ranks = pageRank(edges, paths, "")
	return g
}

// buildEdges connects each referencing file to each defining file with
// weight equal to the reference count. Self-edges are suppressed and
// multi-edges combined additively.
func buildEdges(defines map[string]map[string]bool, references map[string][]string) []Edge {
	type pair struct{ from, to string }
	weights := make(map[pair]float64)

	for symbol, refFiles := range references {
		defFiles, ok := defines[symbol]
		if !ok {
			continue
		}
		for _, from := range refFiles {
			for to := range defFiles {
				if from == to {
					continue
				}
				weights[pair{from, to}]++
			}
		}
	}

	edges := make([]Edge, 0, len(weights))
	for p, w := range weights {
		edges = append(edges, Edge{From: p.from, To: p.to, Weight: w})
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].To < edges[j].To
	})
	return edges
}

// FocusOn re-ranks with all teleport mass on the anchor. The underlying
// edges are untouched.
func (g *RepoGraph) FocusOn(anchor string) {
	g.ranks = pageRank(g.edges, g.files, anchor)
}

// RankedFile pairs a path with its rank.
type RankedFile struct {
	Path string
	Rank float64
}

// RankedFiles returns files ordered by descending rank.
func (g *RepoGraph) RankedFiles() []RankedFile {
	ranked := make([]RankedFile, 0, len(g.ranks))
	for path, rank := range g.ranks {
		ranked = append(ranked, RankedFile{Path: path, Rank: rank})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Rank != ranked[j].Rank {
			return ranked[i].Rank > ranked[j].Rank
		}
		return ranked[i].Path < ranked[j].Path
	})
	return ranked
}

// Dependents returns files that reference a symbol defined in the anchor.
func (g *RepoGraph) Dependents(anchor string) []string {
	result := make(map[string]bool)
	for symbol, defFiles := range g.defines {
		if !defFiles[anchor] {
			continue
		}
		for _, ref := range g.references[symbol] {
			if ref != anchor {
				result[ref] = true
			}
		}
	}
	return sortedKeys(result)
}

// Dependencies returns files that define a symbol referenced by the anchor.
func (g *RepoGraph) Dependencies(anchor string) []string {
	result := make(map[string]bool)
	for symbol, refFiles := range g.references {
		referenced := false
		for _, f := range refFiles {
			if f == anchor {
				referenced = true
				break
			}
		}
		if !referenced {
			continue
		}
		for def := range g.defines[symbol] {
			if def != anchor {
				result[def] = true
			}
		}
	}
	return sortedKeys(result)
}

// Neighbors returns the union of dependents and dependencies.
func (g *RepoGraph) Neighbors(anchor string) []string {
	result := make(map[string]bool)
	for _, f := range g.Dependents(anchor) {
		result[f] = true
	}
	for _, f := range g.Dependencies(anchor) {
		result[f] = true
	}
	return sortedKeys(result)
}

// IsHub reports whether the anchor's fan-in meets the threshold.
func (g *RepoGraph) IsHub(anchor string, threshold int) bool {
	return len(g.Dependents(anchor)) >= threshold
}

// DefinitionTags returns definition tags only.
func (g *RepoGraph) DefinitionTags() []models.Tag {
	var defs []models.Tag
	for _, t := range g.tags {
		if t.Kind == models.TagDef {
			defs = append(defs, t)
		}
	}
	return defs
}

// Edges returns the weighted edge list.
func (g *RepoGraph) Edges() []Edge {
	return g.edges
}

// Files returns the file list the graph was built from.
func (g *RepoGraph) Files() []string {
	return g.files
}

// FanIn returns per-file fan-in counts over the edge set.
func (g *RepoGraph) FanIn() map[string]int {
	fanIn := make(map[string]int, len(g.files))
	for _, e := range g.edges {
		fanIn[e.To]++
	}
	return fanIn
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
