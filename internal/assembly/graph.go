// Package assembly builds the unitig overlap graph that downstream
// stages decompose, encode, and decode against.
//
// Nodes are unitigs, directed edges are exact (k-1)-base suffix/prefix
// overlaps. The graph is built once from parsed unitig records and is
// read-only afterwards: all accessors return copies, so it can be shared
// by reference across concurrent cluster encoders
package assembly

import (
	"fmt"
	"sort"

	"github.com/cespare/xxhash"
)

// Graph is an immutable assembly graph over unitigs.
// Node order is deterministic: the input record order, with a unitig's
// reverse-complement twin (when enabled) directly after its source
type Graph struct {
	k       int
	nodes   []string
	order   map[string]int
	unitigs map[string]Unitig
	out     map[string][]string
	in      map[string][]string
	edgeSet map[string]map[string]bool
	twins   map[string]bool
	edges   int
}

// Option configures graph construction
type Option func(*buildOpts)

type buildOpts struct {
	revComp   bool
	linkEdges bool
}

// WithReverseComplements adds a "c<ID>" twin node carrying the reverse
// complement of each unitig, and prunes twins left isolated after edge
// construction
func WithReverseComplements() Option {
	return func(o *buildOpts) { o.revComp = true }
}

// WithLinkEdges additionally derives edges from the L: header tags of the
// input records. Links referencing a '-' orientation are resolved against
// the reverse-complement twin and skipped when twins are disabled
func WithLinkEdges() Option {
	return func(o *buildOpts) { o.linkEdges = true }
}

// Build constructs the assembly graph from unitig records at k-mer size k.
// An edge u->v exists iff the k-1 suffix of u equals the k-1 prefix of v.
// Overlap candidates come from a hashed (k-1)-mer prefix index, so
// construction is near-linear in the number of unitigs
func Build(recs []Record, k int, opts ...Option) (*Graph, error) {
	var o buildOpts
	for _, opt := range opts {
		opt(&o)
	}

	if len(recs) == 0 {
		return nil, fmt.Errorf("%w: no unitig records", ErrInvalidSequence)
	}
	if k < 1 {
		return nil, fmt.Errorf("%w: k=%d, must be >= 1", ErrInvalidK, k)
	}
	for _, r := range recs {
		if r.Len() < k {
			return nil, fmt.Errorf("%w: k=%d exceeds length %d of unitig %s", ErrInvalidK, k, r.Len(), r.ID)
		}
	}

	g := &Graph{
		k:       k,
		order:   make(map[string]int),
		unitigs: make(map[string]Unitig),
		out:     make(map[string][]string),
		in:      make(map[string][]string),
		edgeSet: make(map[string]map[string]bool),
		twins:   make(map[string]bool),
	}

	for _, r := range recs {
		g.addNode(r.Unitig)
		if o.revComp {
			rc, err := ReverseComplement(r.Seq)
			if err != nil {
				return nil, fmt.Errorf("unitig %s: %w", r.ID, err)
			}
			cid := complementID(r.ID)
			g.addNode(Unitig{ID: cid, Seq: rc})
			g.twins[cid] = true
		}
	}

	// index each node's k-1 prefix by hash, then probe with suffixes
	overlap := k - 1
	index := make(map[uint64][]int)
	if overlap > 0 {
		for i, id := range g.nodes {
			h := xxhash.Sum64String(g.unitigs[id].Seq[:overlap])
			index[h] = append(index[h], i)
		}
	}

	for _, id := range g.nodes {
		seq := g.unitigs[id].Seq
		if overlap == 0 {
			// k=1: every ordered pair overlaps on the empty string
			for _, v := range g.nodes {
				g.addEdge(id, v)
			}
			continue
		}
		suffix := seq[len(seq)-overlap:]
		for _, j := range index[xxhash.Sum64String(suffix)] {
			v := g.nodes[j]
			// hash hit, confirm the actual bases match
			if g.unitigs[v].Seq[:overlap] == suffix {
				g.addEdge(id, v)
			}
		}
	}

	if o.linkEdges {
		g.addLinkEdges(recs, o.revComp)
	}

	if o.revComp {
		g.pruneIsolatedTwins()
	}
	return g, nil
}

// complementID names the reverse-complement twin of a unitig
func complementID(id string) string {
	return "c" + id
}

func (g *Graph) addNode(u Unitig) {
	g.order[u.ID] = len(g.nodes)
	g.nodes = append(g.nodes, u.ID)
	g.unitigs[u.ID] = u
	g.edgeSet[u.ID] = make(map[string]bool)
}

func (g *Graph) addEdge(u, v string) {
	if g.edgeSet[u][v] {
		return
	}
	g.edgeSet[u][v] = true
	g.out[u] = append(g.out[u], v)
	g.in[v] = append(g.in[v], u)
	g.edges++
}

// addLinkEdges derives edges from signed L: header tags. A '+' sign
// refers to the unitig as written, '-' to its reverse-complement twin
func (g *Graph) addLinkEdges(recs []Record, revComp bool) {
	resolve := func(id string, sign byte) (string, bool) {
		if sign == '+' {
			_, ok := g.unitigs[id]
			return id, ok
		}
		if !revComp {
			return "", false
		}
		cid := complementID(id)
		_, ok := g.unitigs[cid]
		return cid, ok
	}

	for _, r := range recs {
		for _, l := range r.Links {
			from, ok := resolve(r.ID, l.SignBegin)
			if !ok {
				continue
			}
			to, ok := resolve(l.Target, l.SignEnd)
			if !ok {
				continue
			}
			g.addEdge(from, to)
		}
	}
}

// pruneIsolatedTwins drops reverse-complement twins that picked up no
// edges. Original unitig nodes are always kept
func (g *Graph) pruneIsolatedTwins() {
	keep := g.nodes[:0]
	for _, id := range g.nodes {
		if g.twins[id] && len(g.out[id]) == 0 && len(g.in[id]) == 0 {
			delete(g.unitigs, id)
			delete(g.edgeSet, id)
			delete(g.order, id)
			delete(g.twins, id)
			continue
		}
		keep = append(keep, id)
	}
	g.nodes = keep
	for i, id := range g.nodes {
		g.order[id] = i
	}
}

// K is the k-mer size the graph was built with
func (g *Graph) K() int {
	return g.k
}

// NodeCount is the number of nodes in the graph
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount is the number of directed edges in the graph
func (g *Graph) EdgeCount() int {
	return g.edges
}

// Nodes returns all node IDs in deterministic graph order
func (g *Graph) Nodes() []string {
	return append([]string(nil), g.nodes...)
}

// HasNode reports whether the graph contains the node
func (g *Graph) HasNode(id string) bool {
	_, ok := g.unitigs[id]
	return ok
}

// HasEdge reports whether the directed edge u->v exists
func (g *Graph) HasEdge(u, v string) bool {
	return g.edgeSet[u][v]
}

// Unitig returns the unitig at a node
func (g *Graph) Unitig(id string) (Unitig, bool) {
	u, ok := g.unitigs[id]
	return u, ok
}

// OutNeighbors returns the successors of a node in insertion order
func (g *Graph) OutNeighbors(id string) []string {
	return append([]string(nil), g.out[id]...)
}

// InNeighbors returns the predecessors of a node in insertion order
func (g *Graph) InNeighbors(id string) []string {
	return append([]string(nil), g.in[id]...)
}

// Components returns the weakly connected components of the graph, each
// ordered by graph order, components ordered by their lowest member
func (g *Graph) Components() [][]string {
	visited := make(map[string]bool, len(g.nodes))
	var comps [][]string

	for _, seed := range g.nodes {
		if visited[seed] {
			continue
		}
		var comp []string
		queue := []string{seed}
		visited[seed] = true
		for len(queue) > 0 {
			n := queue[0]
			queue = queue[1:]
			comp = append(comp, n)
			for _, nb := range g.out[n] {
				if !visited[nb] {
					visited[nb] = true
					queue = append(queue, nb)
				}
			}
			for _, nb := range g.in[n] {
				if !visited[nb] {
					visited[nb] = true
					queue = append(queue, nb)
				}
			}
		}
		sort.Slice(comp, func(i, j int) bool { return g.order[comp[i]] < g.order[comp[j]] })
		comps = append(comps, comp)
	}
	return comps
}

// LargestComponent returns the induced subgraph of the largest weakly
// connected component, first-seen winning size ties
func (g *Graph) LargestComponent() *Graph {
	var largest []string
	for _, comp := range g.Components() {
		if len(comp) > len(largest) {
			largest = comp
		}
	}
	sub, _ := g.Subgraph(largest)
	return sub
}

// Subgraph returns the induced subgraph over the given nodes, preserving
// graph order and k. Unknown nodes are an error
func (g *Graph) Subgraph(ids []string) (*Graph, error) {
	sub := &Graph{
		k:       g.k,
		order:   make(map[string]int, len(ids)),
		unitigs: make(map[string]Unitig, len(ids)),
		out:     make(map[string][]string),
		in:      make(map[string][]string),
		edgeSet: make(map[string]map[string]bool, len(ids)),
		twins:   make(map[string]bool),
	}

	members := make(map[string]bool, len(ids))
	for _, id := range ids {
		if _, ok := g.unitigs[id]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
		}
		members[id] = true
	}

	ordered := append([]string(nil), ids...)
	sort.Slice(ordered, func(i, j int) bool { return g.order[ordered[i]] < g.order[ordered[j]] })
	for _, id := range ordered {
		sub.addNode(g.unitigs[id])
	}
	for _, u := range ordered {
		for _, v := range g.out[u] {
			if members[v] {
				sub.addEdge(u, v)
			}
		}
	}
	return sub, nil
}

// Reconstruct stitches the sequences along a path into one contig,
// merging consecutive nodes on their k-1 base overlap. A consecutive pair
// whose sequences do not overlap is an ErrBrokenPath
func (g *Graph) Reconstruct(path []string) (string, error) {
	if len(path) == 0 {
		return "", nil
	}

	overlap := g.k - 1
	first, ok := g.unitigs[path[0]]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNodeNotFound, path[0])
	}

	seq := first.Seq
	for _, id := range path[1:] {
		u, ok := g.unitigs[id]
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrNodeNotFound, id)
		}
		if overlap > 0 && seq[len(seq)-overlap:] != u.Seq[:overlap] {
			return "", fmt.Errorf("%w: at node %s", ErrBrokenPath, id)
		}
		seq += u.Seq[overlap:]
	}
	return seq, nil
}
