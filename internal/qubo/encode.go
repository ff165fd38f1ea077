package qubo

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/mothorchids/ScaffoQA/internal/assembly"
)

// Weights configures the objective and constraint terms of an encoding
type Weights struct {
	// Objective scales the per-edge reward for selecting an overlap
	// between consecutive path positions
	Objective float64

	// Penalty is the requested constraint weight. The encoder enforces a
	// computed dominance floor, so values below the floor are raised to it
	Penalty float64

	// LengthWeighted rewards an edge by the bases its target adds to the
	// contig instead of rewarding every edge equally
	LengthWeighted bool
}

// DefaultWeights mirrors the objective/penalty split used in the
// command-line defaults
func DefaultWeights() Weights {
	return Weights{Objective: 1, Penalty: 0}
}

// edgeWeight is the reward for traversing u->v
func edgeWeight(g *assembly.Graph, w Weights, v string) float64 {
	if !w.LengthWeighted {
		return 1
	}
	u, _ := g.Unitig(v)
	gain := u.Len() - (g.K() - 1)
	if gain < 1 {
		gain = 1
	}
	return float64(gain)
}

// PenaltyFloor is a computed constraint weight guaranteeing that some
// feasible assignment beats every infeasible one, so the true optimum is
// always feasible.
//
// Any single variable takes part in at most 2n reward terms (one per
// selection at the two adjacent positions), each worth at most
// objective * wmax. A variable inside a violation takes part in at least
// one penalty pair. With P = 1 + 2*objective*wmax*n, dropping such a
// variable therefore removes at least P in penalties and at most P-1 in
// rewards, strictly lowering the energy. Repeatedly dropping violating
// variables reaches a feasible assignment with strictly lower energy
// than the infeasible one we started from: constraint dominance holds by
// construction, not by tuning
func PenaltyFloor(objective, wmax float64, n int) float64 {
	if n < 2 {
		return 1
	}
	return 1 + 2*objective*wmax*float64(n)
}

// Encode formulates path selection over the subgraph as a QUBO.
//
// Variables are (node, position) pairs, indexed node*n + position over
// the subgraph's deterministic node order. The objective rewards real
// edges between consecutive positions; quadratic penalties forbid a node
// at two positions, two nodes at one position, and consecutive positions
// not joined by a real edge
func Encode(g *assembly.Graph, w Weights, maxVariables int) (*Problem, error) {
	n := g.NodeCount()
	numVars := n * n
	if maxVariables > 0 && numVars > maxVariables {
		return nil, fmt.Errorf("%w: %d nodes need %d variables, ceiling is %d",
			ErrOverflow, n, numVars, maxVariables)
	}

	nodes := g.Nodes()
	p := &Problem{
		Q:    mat.NewSymDense(numVars, nil),
		Vars: make([]Var, 0, numVars),
		n:    n,
	}
	for _, node := range nodes {
		for t := 0; t < n; t++ {
			p.Vars = append(p.Vars, Var{Node: node, Position: t})
		}
	}
	idx := func(nodeOrd, t int) int { return nodeOrd*n + t }

	ord := make(map[string]int, n)
	wmax := 0.0
	for i, node := range nodes {
		ord[node] = i
		for _, v := range g.OutNeighbors(node) {
			if ew := edgeWeight(g, w, v); ew > wmax {
				wmax = ew
			}
		}
	}

	penalty := PenaltyFloor(w.Objective, wmax, n)
	if w.Penalty > penalty {
		penalty = w.Penalty
	}
	p.Penalty = penalty

	// off-diagonal coefficients are split across both triangles so that
	// x^T Q x reproduces the intended energy
	add := func(i, j int, c float64) {
		if i == j {
			p.Q.SetSym(i, i, p.Q.At(i, i)+c)
			return
		}
		p.Q.SetSym(i, j, p.Q.At(i, j)+c/2)
	}

	// objective: reward a real edge u->v across consecutive positions
	for _, u := range nodes {
		for _, v := range g.OutNeighbors(u) {
			reward := -w.Objective * edgeWeight(g, w, v)
			for t := 0; t < n-1; t++ {
				add(idx(ord[u], t), idx(ord[v], t+1), reward)
			}
		}
	}

	// penalty: a node may occupy at most one position
	for u := 0; u < n; u++ {
		for t1 := 0; t1 < n; t1++ {
			for t2 := t1 + 1; t2 < n; t2++ {
				add(idx(u, t1), idx(u, t2), penalty)
			}
		}
	}

	// penalty: a position may hold at most one node
	for t := 0; t < n; t++ {
		for u := 0; u < n; u++ {
			for v := u + 1; v < n; v++ {
				add(idx(u, t), idx(v, t), penalty)
			}
		}
	}

	// penalty: consecutive positions must follow a real edge
	for _, u := range nodes {
		for _, v := range nodes {
			if u == v || g.HasEdge(u, v) {
				continue
			}
			for t := 0; t < n-1; t++ {
				add(idx(ord[u], t), idx(ord[v], t+1), penalty)
			}
		}
	}

	return p, nil
}
