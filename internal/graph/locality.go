package graph

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/junovhs/slopchop/pkg/config"
	"github.com/junovhs/slopchop/pkg/models"
	"github.com/junovhs/slopchop/pkg/parser"
)

// ClassifyImports resolves each file's imports against the project tree and
// classifies every resolved edge. Unresolved imports are discarded silently.
func ClassifyImports(root string, files []FileContent, cfg *config.Config) []models.LocalityEdge {
	psr := parser.New()
	defer psr.Close()

	// Fan-in over resolved import relations drives the skew coefficient.
	type rawEdge struct{ from, to string }
	var raw []rawEdge
	fanIn := make(map[string]int)

	for _, fc := range files {
		lang := parser.DetectLanguage(fc.Path)
		if parser.SpecFor(lang) == nil {
			continue
		}
		result, err := psr.Parse(fc.Content, lang, fc.Path)
		if err != nil {
			continue
		}
		for _, imp := range parser.ExtractImports(result) {
			target := parser.ResolveImport(root, fc.Path, imp.Path)
			if target == "" || target == fc.Path {
				continue
			}
			raw = append(raw, rawEdge{from: fc.Path, to: target})
			fanIn[target]++
		}
	}

	maxFanIn := 0
	for _, c := range fanIn {
		if c > maxFanIn {
			maxFanIn = c
		}
	}

	edges := make([]models.LocalityEdge, 0, len(raw))
	for _, r := range raw {
		edge := classifyEdge(root, r.from, r.to, fanIn, maxFanIn, cfg)
		edges = append(edges, edge)
	}
	return edges
}

// classifyEdge computes distance, identity, skew, and the verdict for one
// resolved import relation. The verdict is deterministic given the
// classifier configuration and the (distance, skew, identity) triple.
func classifyEdge(root, from, to string, fanIn map[string]int, maxFanIn int, cfg *config.Config) models.LocalityEdge {
	relFrom := relPath(root, from)
	relTo := relPath(root, to)

	distance, shared := pathDistance(relFrom, relTo)
	identity := classifyIdentity(distance, shared)

	skew := 0.0
	if maxFanIn > 0 {
		skew = float64(fanIn[to]) / float64(maxFanIn)
	}

	edge := models.LocalityEdge{
		From:     relFrom,
		To:       relTo,
		Distance: distance,
		Identity: identity,
		Skew:     skew,
	}
	edge.Verdict, edge.Reason = verdict(distance, identity, cfg)
	return edge
}

// pathDistance returns the component dissimilarity between the directories
// of two paths, plus the shared-prefix length. Zero distance means the
// target sits in the source's directory.
func pathDistance(from, to string) (distance, shared int) {
	fromDirs := dirComponents(from)
	toDirs := dirComponents(to)

	for shared < len(fromDirs) && shared < len(toDirs) && fromDirs[shared] == toDirs[shared] {
		shared++
	}

	longer := max(len(toDirs), len(fromDirs))
	return longer - shared, shared
}

func dirComponents(path string) []string {
	dir := filepath.ToSlash(filepath.Dir(path))
	if dir == "." || dir == "/" {
		return nil
	}
	return strings.Split(dir, "/")
}

func classifyIdentity(distance, shared int) models.Identity {
	switch {
	case distance <= 1:
		return models.IdentitySibling
	case shared > 0:
		return models.IdentityCousin
	default:
		return models.IdentityStranger
	}
}

// verdict combines distance and identity under the configured mode. Skew
// is reported on the edge but never decides the verdict.
func verdict(distance int, identity models.Identity, cfg *config.Config) (models.Verdict, string) {
	mode := cfg.Rules.Locality.Mode
	if mode == "off" || mode == "" {
		return models.VerdictPass, "locality checks disabled"
	}

	if distance <= cfg.Rules.Locality.MaxDistance {
		return models.VerdictPass, fmt.Sprintf("within distance %d", cfg.Rules.Locality.MaxDistance)
	}

	reason := fmt.Sprintf("%s import at distance %d (max %d)", identity, distance, cfg.Rules.Locality.MaxDistance)
	if mode == "enforce" {
		return models.VerdictFail, reason
	}
	return models.VerdictWarn, reason
}

// Entropy is the share of non-passing edges over the total.
func Entropy(edges []models.LocalityEdge) float64 {
	if len(edges) == 0 {
		return 0
	}
	failed := 0
	for i := range edges {
		if edges[i].Verdict != models.VerdictPass {
			failed++
		}
	}
	return float64(failed) / float64(len(edges))
}

func relPath(root, path string) string {
	if rel, err := filepath.Rel(root, path); err == nil {
		return filepath.ToSlash(rel)
	}
	return filepath.ToSlash(path)
}
