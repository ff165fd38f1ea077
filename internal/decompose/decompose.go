// Package decompose partitions an assembly graph into clusters small
// enough for a bounded-variable QUBO encoding.
//
// The partition is hard: every node lands in exactly one cluster, and the
// edges crossing cluster boundaries are recorded as cut edges so that
// per-cluster paths can be stitched back together after solving
package decompose

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/mothorchids/ScaffoQA/internal/assembly"
)

// ErrInfeasible indicates that no partition can satisfy the variable
// ceiling: even a single-node cluster would exceed it
var ErrInfeasible = errors.New("decompose: no partition satisfies the variable ceiling")

// Edge is a directed edge recorded outside any single cluster
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Partition is a hard partition of a graph's nodes into clusters, plus
// the cut edges removed by the decomposition
type Partition struct {
	// Clusters are disjoint node sets covering the whole graph, each in
	// graph order
	Clusters [][]string `json:"clusters"`

	// CutEdges are exactly the edges whose endpoints lie in different
	// clusters, in graph edge order
	CutEdges []Edge `json:"cutEdges"`
}

// MaxClusterSize is the largest cluster node count allowed under a
// variable ceiling. The position-indexed encoding spends n*n variables
// on an n-node cluster, so the ceiling is floor(sqrt(maxVariables))
func MaxClusterSize(maxVariables int) int {
	if maxVariables < 1 {
		return 0
	}
	return int(math.Sqrt(float64(maxVariables)))
}

// Decompose partitions the graph so that every cluster's QUBO encoding
// stays within maxVariables.
//
// Weakly connected components already within the bound become single
// clusters. Larger components are split by deterministic greedy
// agglomeration: seed at the lowest unassigned node, then repeatedly
// admit the frontier node with the most edges into the growing cluster
// (fewest new cut edges), ties broken by lowest node order
func Decompose(g *assembly.Graph, maxVariables int) (*Partition, error) {
	ceiling := MaxClusterSize(maxVariables)
	if ceiling < 1 {
		return nil, fmt.Errorf("%w: max variables %d admits no node", ErrInfeasible, maxVariables)
	}

	order := make(map[string]int, g.NodeCount())
	for i, id := range g.Nodes() {
		order[id] = i
	}

	p := &Partition{}
	assigned := make(map[string]int, g.NodeCount())

	for _, comp := range g.Components() {
		if len(comp) <= ceiling {
			for _, id := range comp {
				assigned[id] = len(p.Clusters)
			}
			p.Clusters = append(p.Clusters, comp)
			continue
		}
		for _, cluster := range splitComponent(g, comp, ceiling, order) {
			for _, id := range cluster {
				assigned[id] = len(p.Clusters)
			}
			p.Clusters = append(p.Clusters, cluster)
		}
	}

	// record every inter-cluster edge, in graph edge order
	for _, u := range g.Nodes() {
		for _, v := range g.OutNeighbors(u) {
			if assigned[u] != assigned[v] {
				p.CutEdges = append(p.CutEdges, Edge{From: u, To: v})
			}
		}
	}
	return p, nil
}

// splitComponent greedily grows bounded clusters over one component
func splitComponent(g *assembly.Graph, comp []string, ceiling int, order map[string]int) [][]string {
	inComp := make(map[string]bool, len(comp))
	for _, id := range comp {
		inComp[id] = true
	}

	// undirected neighborhood restricted to the component
	neighbors := func(id string) []string {
		var nbs []string
		seen := make(map[string]bool)
		for _, nb := range g.OutNeighbors(id) {
			if inComp[nb] && nb != id && !seen[nb] {
				seen[nb] = true
				nbs = append(nbs, nb)
			}
		}
		for _, nb := range g.InNeighbors(id) {
			if inComp[nb] && nb != id && !seen[nb] {
				seen[nb] = true
				nbs = append(nbs, nb)
			}
		}
		return nbs
	}

	taken := make(map[string]bool, len(comp))
	var clusters [][]string

	for _, seed := range comp {
		if taken[seed] {
			continue
		}

		cluster := []string{seed}
		taken[seed] = true
		members := map[string]bool{seed: true}

		// frontier score: number of edges from the candidate into the cluster
		score := make(map[string]int)
		for _, nb := range neighbors(seed) {
			if !taken[nb] {
				score[nb]++
			}
		}

		for len(cluster) < ceiling && len(score) > 0 {
			best := ""
			for cand, s := range score {
				if best == "" || s > score[best] || (s == score[best] && order[cand] < order[best]) {
					best = cand
				}
			}

			cluster = append(cluster, best)
			taken[best] = true
			members[best] = true
			delete(score, best)

			for _, nb := range neighbors(best) {
				if !taken[nb] && !members[nb] {
					score[nb]++
				}
			}
		}

		sort.Slice(cluster, func(i, j int) bool { return order[cluster[i]] < order[cluster[j]] })
		clusters = append(clusters, cluster)
	}
	return clusters
}

// Validate checks the hard-partition invariant against a graph: clusters
// are disjoint and their union is exactly the graph's node set
func (p *Partition) Validate(g *assembly.Graph) error {
	seen := make(map[string]bool)
	for ci, cluster := range p.Clusters {
		for _, id := range cluster {
			if seen[id] {
				return fmt.Errorf("decompose: node %s appears in multiple clusters", id)
			}
			if !g.HasNode(id) {
				return fmt.Errorf("decompose: cluster %d references unknown node %s", ci, id)
			}
			seen[id] = true
		}
	}
	if len(seen) != g.NodeCount() {
		return fmt.Errorf("decompose: partition covers %d of %d nodes", len(seen), g.NodeCount())
	}
	return nil
}
