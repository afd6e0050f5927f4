// Package pack assembles a context payload around an anchor file: the
// anchor in full, graph neighbors as skeletons within a token budget.
package pack

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/junovhs/slopchop/internal/apply"
	"github.com/junovhs/slopchop/internal/graph"
	"github.com/junovhs/slopchop/pkg/parser"
	"github.com/junovhs/slopchop/pkg/tokens"
)

// Options configures one packing run.
type Options struct {
	Anchor string
	Depth  int // neighborhood expansion depth, >= 1
	Budget int // token budget for the whole payload
}

// Result reports what the packer selected.
type Result struct {
	Foveal     []string
	Peripheral []string
	Omitted    int
	Tokens     int
}

// Pack builds the concatenated payload for an anchor within the discovered
// file set.
func Pack(files []string, opts Options) (string, *Result, error) {
	contents := readAll(files)
	if _, ok := contents[opts.Anchor]; !ok {
		return "", nil, fmt.Errorf("anchor not in discovered file set: %s", opts.Anchor)
	}

	fileContents := make([]graph.FileContent, 0, len(contents))
	for _, path := range files {
		if content, ok := contents[path]; ok {
			fileContents = append(fileContents, graph.FileContent{Path: path, Content: content})
		}
	}

	g := graph.Build(fileContents)
	g.FocusOn(opts.Anchor)

	foveal := map[string]bool{opts.Anchor: true}
	peripheral := expand(g, foveal, opts.Depth)

	result := &Result{Foveal: []string{opts.Anchor}}
	var b strings.Builder

	// Foveal blocks are never omitted, even past the budget.
	for path := range foveal {
		block := renderFull(path, contents[path])
		result.Tokens += tokens.Count(block)
		b.WriteString(block)
	}

	// Peripheral files go out in rank order until the budget is spent.
	ranked := rankOrder(g, peripheral)
	psr := parser.New()
	defer psr.Close()

	for _, path := range ranked {
		block := renderSkeleton(psr, path, contents[path])
		cost := tokens.Count(block)
		if opts.Budget > 0 && result.Tokens+cost > opts.Budget {
			result.Omitted = len(ranked) - len(result.Peripheral)
			break
		}
		result.Tokens += cost
		result.Peripheral = append(result.Peripheral, path)
		b.WriteString(block)
	}

	return b.String(), result, nil
}

// expand grows the frontier through graph neighbors for depth rounds.
// Foveal and peripheral sets stay disjoint and within the discovered set.
func expand(g *graph.RepoGraph, foveal map[string]bool, depth int) map[string]bool {
	known := make(map[string]bool)
	for _, f := range g.Files() {
		known[f] = true
	}

	peripheral := make(map[string]bool)
	frontier := make(map[string]bool, len(foveal))
	for f := range foveal {
		frontier[f] = true
	}

	for range max(depth, 1) {
		next := make(map[string]bool)
		for anchor := range frontier {
			for _, neighbor := range g.Neighbors(anchor) {
				if !foveal[neighbor] && !peripheral[neighbor] && known[neighbor] {
					next[neighbor] = true
				}
			}
		}
		for f := range next {
			peripheral[f] = true
		}
		frontier = next
	}

	return peripheral
}

// rankOrder sorts a set of paths by focused rank, highest first.
func rankOrder(g *graph.RepoGraph, set map[string]bool) []string {
	ranked := g.RankedFiles()
	ordered := make([]string, 0, len(set))
	for _, rf := range ranked {
		if set[rf.Path] {
			ordered = append(ordered, rf.Path)
		}
	}
	// Anything the rank map missed still goes out, deterministically.
	if len(ordered) < len(set) {
		seen := make(map[string]bool, len(ordered))
		for _, p := range ordered {
			seen[p] = true
		}
		var rest []string
		for p := range set {
			if !seen[p] {
				rest = append(rest, p)
			}
		}
		sort.Strings(rest)
		ordered = append(ordered, rest...)
	}
	return ordered
}

// renderFull wraps verbatim content in the sigil FILE envelope.
func renderFull(path string, content []byte) string {
	return fmt.Sprintf("%s FILE %s %s\n%s\n%s END %s\n\n",
		apply.Sigil, apply.Sigil, path, strings.TrimRight(string(content), "\n"), apply.Sigil, apply.Sigil)
}

// renderSkeleton wraps an elided rendering in the sigil FILE envelope.
func renderSkeleton(psr *parser.Parser, path string, content []byte) string {
	rendered := string(content)

	lang := parser.DetectLanguage(path)
	if parser.SpecFor(lang) != nil {
		if result, err := psr.Parse(content, lang, path); err == nil {
			rendered = Skeleton(result)
		}
	}

	return fmt.Sprintf("%s FILE %s %s\n%s\n%s END %s\n\n",
		apply.Sigil, apply.Sigil, path, strings.TrimRight(rendered, "\n"), apply.Sigil, apply.Sigil)
}

func readAll(files []string) map[string][]byte {
	contents := make(map[string][]byte, len(files))
	for _, path := range files {
		if data, err := os.ReadFile(path); err == nil {
			contents[path] = data
		}
	}
	return contents
}
