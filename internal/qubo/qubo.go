// Package qubo encodes a path-selection problem over an assembly graph
// into a symmetric QUBO matrix and decodes solver bitstrings back into
// contig paths.
//
// The encoding is position-indexed: one binary variable per (node,
// position-in-path) pair, with the cluster's node count bounding the path
// length. The matrix convention is full symmetric with halved
// off-diagonal coefficients, so the energy of an assignment x is exactly
// x^T Q x + offset
package qubo

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Sentinel errors for encoding and decoding.
var (
	// ErrOverflow indicates the subgraph needs more variables than the
	// configured ceiling allows
	ErrOverflow = errors.New("qubo: variable ceiling exceeded")

	// ErrBadAssignment indicates a bit vector whose length does not match
	// the problem's variable count
	ErrBadAssignment = errors.New("qubo: assignment length mismatch")

	// ErrUnknownNode indicates a path node absent from the encoded subgraph
	ErrUnknownNode = errors.New("qubo: node not in encoded subgraph")
)

// Var is the semantic unit behind one binary variable: node occupies
// path position
type Var struct {
	Node     string `json:"node"`
	Position int    `json:"position"`
}

// Problem is an encoded QUBO instance with its variable-index table
type Problem struct {
	// Q is the symmetric coefficient matrix; off-diagonal coefficients
	// are stored halved in both triangles
	Q *mat.SymDense

	// Offset is the constant term of the objective
	Offset float64

	// Vars maps variable index to its (node, position) meaning
	Vars []Var

	// Penalty is the constraint weight that was applied, after the
	// computed dominance floor was enforced
	Penalty float64

	n     int
	index map[Var]int
}

// NumVars is the number of binary decision variables
func (p *Problem) NumVars() int {
	n, _ := p.Q.Dims()
	return n
}

// PathBound is the maximum path length, equal to the subgraph's node count
func (p *Problem) PathBound() int {
	return p.n
}

// VarIndex returns the variable index for a (node, position) pair
func (p *Problem) VarIndex(node string, position int) (int, bool) {
	p.ensureIndex()
	i, ok := p.index[Var{Node: node, Position: position}]
	return i, ok
}

func (p *Problem) ensureIndex() {
	if p.index != nil {
		return
	}
	p.index = make(map[Var]int, len(p.Vars))
	for i, v := range p.Vars {
		p.index[v] = i
	}
}

// Energy evaluates x^T Q x + offset over a binary assignment
func (p *Problem) Energy(bits []uint8) (float64, error) {
	if len(bits) != p.NumVars() {
		return 0, fmt.Errorf("%w: got %d bits, want %d", ErrBadAssignment, len(bits), p.NumVars())
	}

	e := p.Offset
	for i, bi := range bits {
		if bi == 0 {
			continue
		}
		e += p.Q.At(i, i)
		for j := i + 1; j < len(bits); j++ {
			if bits[j] != 0 {
				e += 2 * p.Q.At(i, j)
			}
		}
	}
	return e, nil
}

// Bits encodes a node path as the binary assignment that selects it:
// path[t] occupies position t. This is the inverse of Decode on
// feasible paths
func (p *Problem) Bits(path []string) ([]uint8, error) {
	if len(path) > p.n {
		return nil, fmt.Errorf("%w: path length %d exceeds bound %d", ErrBadAssignment, len(path), p.n)
	}

	bits := make([]uint8, p.NumVars())
	for t, node := range path {
		i, ok := p.VarIndex(node, t)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownNode, node)
		}
		bits[i] = 1
	}
	return bits, nil
}
