package qubo

import (
	"errors"
	"fmt"
	"sort"

	"github.com/mothorchids/ScaffoQA/internal/assembly"
)

// CandidatePath is a decoded walk through the encoded subgraph
type CandidatePath struct {
	// Nodes in path order
	Nodes []string

	// Feasible reports that every hard constraint held: each node at most
	// once, every consecutive pair joined by a real edge
	Feasible bool

	// Repaired reports that the path was truncated at a broken adjacency
	// instead of being rejected outright
	Repaired bool

	// Energy is the QUBO energy of the assignment the path came from
	Energy float64
}

// Violations counts the constraint classes broken by an assignment
type Violations struct {
	// DuplicateNode counts variable pairs selecting one node at two positions
	DuplicateNode int

	// DuplicatePosition counts variable pairs selecting two nodes at one position
	DuplicatePosition int

	// MissingEdge counts consecutive selections not joined by a real edge
	MissingEdge int
}

// Total is the combined violation count
func (v Violations) Total() int {
	return v.DuplicateNode + v.DuplicatePosition + v.MissingEdge
}

// DecodeFailure reports an assignment whose violations cannot be
// repaired into a valid path. It identifies each broken constraint class
// and by how much, which is what distinguishes an undersized penalty
// weight from poor solver convergence
type DecodeFailure struct {
	Violations Violations

	// Energy of the rejected assignment
	Energy float64
}

func (e *DecodeFailure) Error() string {
	return fmt.Sprintf("qubo: assignment is not a path: %d duplicate-node, %d duplicate-position, %d missing-edge violations",
		e.Violations.DuplicateNode, e.Violations.DuplicatePosition, e.Violations.MissingEdge)
}

// Decode maps a solver bit assignment back onto a path through the
// encoded subgraph.
//
// Duplicate-node and duplicate-position violations are unrepairable and
// return a *DecodeFailure. A broken adjacency is repaired by truncating
// the path at the first break; the result is marked Repaired. The empty
// assignment decodes to an empty feasible path
func Decode(g *assembly.Graph, p *Problem, bits []uint8) (*CandidatePath, error) {
	energy, err := p.Energy(bits)
	if err != nil {
		return nil, err
	}

	byPosition := make(map[int][]string)
	byNode := make(map[string][]int)
	for i, b := range bits {
		if b == 0 {
			continue
		}
		v := p.Vars[i]
		byPosition[v.Position] = append(byPosition[v.Position], v.Node)
		byNode[v.Node] = append(byNode[v.Node], v.Position)
	}

	var viol Violations
	for _, nodes := range byPosition {
		viol.DuplicatePosition += pairs(len(nodes))
	}
	for _, positions := range byNode {
		viol.DuplicateNode += pairs(len(positions))
	}
	if viol.DuplicateNode > 0 || viol.DuplicatePosition > 0 {
		viol.MissingEdge = countMissingEdges(g, orderedNodes(byPosition))
		return nil, &DecodeFailure{Violations: viol, Energy: energy}
	}

	nodes := orderedNodes(byPosition)
	path := &CandidatePath{Feasible: true, Energy: energy}
	for i, node := range nodes {
		if i > 0 && !g.HasEdge(nodes[i-1], node) {
			// broken adjacency: keep the valid prefix
			path.Repaired = true
			break
		}
		path.Nodes = append(path.Nodes, node)
	}
	return path, nil
}

// DecodeBest selects among several bit assignments, eg repeated solver
// samples. The lowest-energy assignment decoding to an unrepaired
// feasible path wins; failing that, the lowest-energy repaired path;
// failing that, the least-violating failure is returned as an error
// rather than a fabricated path. The second return is the index of the
// chosen assignment
func DecodeBest(g *assembly.Graph, p *Problem, assignments [][]uint8) (*CandidatePath, int, error) {
	if len(assignments) == 0 {
		return nil, -1, fmt.Errorf("%w: no assignments", ErrBadAssignment)
	}

	var best *CandidatePath
	bestIdx := -1
	var bestFail *DecodeFailure
	bestFailIdx := -1

	for i, bits := range assignments {
		path, err := Decode(g, p, bits)
		if err != nil {
			var fail *DecodeFailure
			if !errors.As(err, &fail) {
				return nil, -1, err
			}
			if bestFail == nil || less(fail, bestFail) {
				bestFail, bestFailIdx = fail, i
			}
			continue
		}
		if best == nil || pathLess(path, best) {
			best, bestIdx = path, i
		}
	}

	if best != nil {
		return best, bestIdx, nil
	}
	return nil, bestFailIdx, bestFail
}

// pathLess prefers unrepaired over repaired, then lower energy
func pathLess(a, b *CandidatePath) bool {
	if a.Repaired != b.Repaired {
		return !a.Repaired
	}
	return a.Energy < b.Energy
}

// less prefers fewer violations, then lower energy
func less(a, b *DecodeFailure) bool {
	if a.Violations.Total() != b.Violations.Total() {
		return a.Violations.Total() < b.Violations.Total()
	}
	return a.Energy < b.Energy
}

// orderedNodes flattens position->nodes into position order, node IDs
// sorted within a duplicated position for determinism
func orderedNodes(byPosition map[int][]string) []string {
	positions := make([]int, 0, len(byPosition))
	for t := range byPosition {
		positions = append(positions, t)
	}
	sort.Ints(positions)

	var nodes []string
	for _, t := range positions {
		ns := append([]string(nil), byPosition[t]...)
		sort.Strings(ns)
		nodes = append(nodes, ns...)
	}
	return nodes
}

func countMissingEdges(g *assembly.Graph, nodes []string) int {
	missing := 0
	for i := 1; i < len(nodes); i++ {
		if !g.HasEdge(nodes[i-1], nodes[i]) {
			missing++
		}
	}
	return missing
}

// pairs is n choose 2 beyond the first element
func pairs(n int) int {
	if n < 2 {
		return 0
	}
	return n * (n - 1) / 2
}
