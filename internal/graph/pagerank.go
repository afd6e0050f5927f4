package graph

import (
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

const (
	damping       = 0.85
	tolerance     = 1e-6
	maxIterations = 50
)

// pageRank runs a sparse weighted power iteration over the edge set.
// When anchor is non-empty the teleport vector places all mass on it;
// otherwise teleport is uniform. Converges on L1 change below tolerance
// or after maxIterations.
func pageRank(edges []Edge, files []string, anchor string) map[string]float64 {
	n := len(files)
	if n == 0 {
		return map[string]float64{}
	}

	index := make(map[string]int, n)
	for i, f := range files {
		index[f] = i
	}

	type outEdge struct {
		to     int
		weight float64
	}
	outEdges := make([][]outEdge, n)
	outWeight := make([]float64, n)
	for _, e := range edges {
		from, okF := index[e.From]
		to, okT := index[e.To]
		if !okF || !okT {
			continue
		}
		outEdges[from] = append(outEdges[from], outEdge{to: to, weight: e.Weight})
		outWeight[from] += e.Weight
	}

	// Teleport vector: uniform, or all mass on the anchor.
	teleport := make([]float64, n)
	if idx, ok := index[anchor]; anchor != "" && ok {
		teleport[idx] = 1.0
	} else {
		for i := range teleport {
			teleport[i] = 1.0 / float64(n)
		}
	}

	rank := make([]float64, n)
	newRank := make([]float64, n)
	copy(rank, teleport)

	for range maxIterations {
		dangling := 0.0
		for i := range newRank {
			newRank[i] = 0
		}

		for i := range rank {
			if outWeight[i] == 0 {
				dangling += rank[i]
				continue
			}
			contrib := damping * rank[i] / outWeight[i]
			for _, e := range outEdges[i] {
				newRank[e.to] += contrib * e.weight
			}
		}

		// Dangling mass and the teleport share both follow the teleport
		// vector, so a focused rank stays centered on the anchor.
		for i := range newRank {
			newRank[i] += (1.0-damping)*teleport[i] + damping*dangling*teleport[i]
		}

		diff := 0.0
		for i := range rank {
			d := newRank[i] - rank[i]
			if d < 0 {
				d = -d
			}
			diff += d
		}

		rank, newRank = newRank, rank

		if diff < tolerance {
			break
		}
	}

	result := make(map[string]float64, n)
	for i, f := range files {
		result[f] = rank[i]
	}
	return result
}

// Stats summarizes graph shape using gonum.
type Stats struct {
	Nodes      int
	Edges      int
	Components int
	Density    float64
}

// ComputeStats converts the graph to gonum form and derives summary shape
// metrics.
func (g *RepoGraph) ComputeStats() Stats {
	stats := Stats{Nodes: len(g.files), Edges: len(g.edges)}
	if len(g.files) == 0 {
		return stats
	}

	index := make(map[string]int64, len(g.files))
	undirected := simple.NewUndirectedGraph()
	for i, f := range g.files {
		index[f] = int64(i)
		undirected.AddNode(simple.Node(int64(i)))
	}
	for _, e := range g.edges {
		from, to := index[e.From], index[e.To]
		if from != to && !undirected.HasEdgeBetween(from, to) {
			undirected.SetEdge(simple.Edge{F: simple.Node(from), T: simple.Node(to)})
		}
	}

	stats.Components = len(topo.ConnectedComponents(undirected))
	if len(g.files) > 1 {
		maxEdges := len(g.files) * (len(g.files) - 1)
		stats.Density = float64(len(g.edges)) / float64(maxEdges)
	}
	return stats
}
