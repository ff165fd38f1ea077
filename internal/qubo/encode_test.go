package qubo

import (
	"errors"
	"testing"

	"github.com/mothorchids/ScaffoQA/internal/assembly"
)

// cycleGraph is a 4-node cycle at k=3: A->B->C->D->A and nothing else
func cycleGraph(t *testing.T) *assembly.Graph {
	t.Helper()
	g, err := assembly.Build([]assembly.Record{
		{Unitig: assembly.Unitig{ID: "A", Seq: "GAT"}},
		{Unitig: assembly.Unitig{ID: "B", Seq: "ATC"}},
		{Unitig: assembly.Unitig{ID: "C", Seq: "TCG"}},
		{Unitig: assembly.Unitig{ID: "D", Seq: "CGA"}},
	}, 3)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

// pathGraph is a 3-node path at k=3: A->B->C only
func pathGraph(t *testing.T) *assembly.Graph {
	t.Helper()
	g, err := assembly.Build([]assembly.Record{
		{Unitig: assembly.Unitig{ID: "A", Seq: "GAT"}},
		{Unitig: assembly.Unitig{ID: "B", Seq: "ATC"}},
		{Unitig: assembly.Unitig{ID: "C", Seq: "TCG"}},
	}, 3)
	if err != nil {
		t.Fatal(err)
	}
	if g.EdgeCount() != 2 {
		t.Fatalf("path graph edge count = %d, want 2", g.EdgeCount())
	}
	return g
}

func Test_Encode_variableCount(t *testing.T) {
	g := cycleGraph(t)

	p, err := Encode(g, DefaultWeights(), 64)
	if err != nil {
		t.Fatal(err)
	}

	if p.NumVars() != 16 {
		t.Errorf("NumVars = %d, want 16 for a 4-node subgraph", p.NumVars())
	}
	if p.PathBound() != 4 {
		t.Errorf("PathBound = %d, want 4", p.PathBound())
	}
	if len(p.Vars) != 16 {
		t.Errorf("len(Vars) = %d, want 16", len(p.Vars))
	}

	// node-major layout over graph order
	if got := p.Vars[0]; got != (Var{Node: "A", Position: 0}) {
		t.Errorf("Vars[0] = %+v, want A@0", got)
	}
	if got := p.Vars[5]; got != (Var{Node: "B", Position: 1}) {
		t.Errorf("Vars[5] = %+v, want B@1", got)
	}
	if i, ok := p.VarIndex("D", 3); !ok || i != 15 {
		t.Errorf("VarIndex(D, 3) = %d, %t, want 15", i, ok)
	}
}

func Test_Encode_overflow(t *testing.T) {
	g := cycleGraph(t)

	if _, err := Encode(g, DefaultWeights(), 15); !errors.Is(err, ErrOverflow) {
		t.Errorf("Encode with ceiling 15 error = %v, want ErrOverflow", err)
	}
	if _, err := Encode(g, DefaultWeights(), 16); err != nil {
		t.Errorf("Encode with ceiling 16 should fit: %v", err)
	}
	// zero ceiling disables the check
	if _, err := Encode(g, DefaultWeights(), 0); err != nil {
		t.Errorf("Encode with no ceiling failed: %v", err)
	}
}

func Test_Encode_penaltyFloor(t *testing.T) {
	g := cycleGraph(t)

	p, err := Encode(g, DefaultWeights(), 64)
	if err != nil {
		t.Fatal(err)
	}
	// unit edge weights, objective 1, n=4
	if want := PenaltyFloor(1, 1, 4); p.Penalty != want {
		t.Errorf("Penalty = %v, want floor %v", p.Penalty, want)
	}

	// a requested penalty above the floor is kept as is
	p, err = Encode(g, Weights{Objective: 1, Penalty: 100}, 64)
	if err != nil {
		t.Fatal(err)
	}
	if p.Penalty != 100 {
		t.Errorf("Penalty = %v, want requested 100", p.Penalty)
	}

	// a requested penalty below the floor is raised to it
	p, err = Encode(g, Weights{Objective: 1, Penalty: 2}, 64)
	if err != nil {
		t.Fatal(err)
	}
	if p.Penalty < PenaltyFloor(1, 1, 4) {
		t.Errorf("Penalty = %v, below the dominance floor", p.Penalty)
	}
}

func Test_PenaltyFloor(t *testing.T) {
	if got := PenaltyFloor(1, 1, 1); got != 1 {
		t.Errorf("PenaltyFloor(1,1,1) = %v, want 1", got)
	}
	if got := PenaltyFloor(1, 1, 4); got != 9 {
		t.Errorf("PenaltyFloor(1,1,4) = %v, want 9", got)
	}
	if got := PenaltyFloor(2, 3, 5); got != 61 {
		t.Errorf("PenaltyFloor(2,3,5) = %v, want 61", got)
	}
}

func Test_Encode_pathEnergy(t *testing.T) {
	g := cycleGraph(t)

	p, err := Encode(g, DefaultWeights(), 64)
	if err != nil {
		t.Fatal(err)
	}

	// a Hamiltonian path collects one unit reward per traversed edge and
	// no penalties
	bits, err := p.Bits([]string{"A", "B", "C", "D"})
	if err != nil {
		t.Fatal(err)
	}
	e, err := p.Energy(bits)
	if err != nil {
		t.Fatal(err)
	}
	if e != -3 {
		t.Errorf("Hamiltonian path energy = %v, want -3", e)
	}

	// the empty assignment is feasible at energy 0
	e, err = p.Energy(make([]uint8, p.NumVars()))
	if err != nil {
		t.Fatal(err)
	}
	if e != 0 {
		t.Errorf("empty assignment energy = %v, want 0", e)
	}
}

func Test_Encode_lengthWeighted(t *testing.T) {
	// B contributes len(B)-(k-1) = 4-2 = 2 bases beyond the overlap
	g, err := assembly.Build([]assembly.Record{
		{Unitig: assembly.Unitig{ID: "A", Seq: "GAT"}},
		{Unitig: assembly.Unitig{ID: "B", Seq: "ATCC"}},
	}, 3)
	if err != nil {
		t.Fatal(err)
	}

	p, err := Encode(g, Weights{Objective: 1, LengthWeighted: true}, 64)
	if err != nil {
		t.Fatal(err)
	}

	bits, err := p.Bits([]string{"A", "B"})
	if err != nil {
		t.Fatal(err)
	}
	e, err := p.Energy(bits)
	if err != nil {
		t.Fatal(err)
	}
	if e != -2 {
		t.Errorf("length-weighted edge energy = %v, want -2", e)
	}
}

// every assignment with a constraint violation must score strictly worse
// than the best violation-free assignment, over the full 2^9 space of a
// 3-node subgraph
func Test_Encode_dominance(t *testing.T) {
	g := pathGraph(t)

	p, err := Encode(g, DefaultWeights(), 64)
	if err != nil {
		t.Fatal(err)
	}
	nv := p.NumVars()
	if nv != 9 {
		t.Fatalf("NumVars = %d, want 9", nv)
	}

	minFeasible := 0.0
	var infeasible []float64
	for mask := 0; mask < 1<<nv; mask++ {
		bits := make([]uint8, nv)
		for i := 0; i < nv; i++ {
			if mask&(1<<i) != 0 {
				bits[i] = 1
			}
		}

		e, err := p.Energy(bits)
		if err != nil {
			t.Fatal(err)
		}

		path, derr := Decode(g, p, bits)
		switch {
		case derr != nil:
			infeasible = append(infeasible, e)
		case path.Repaired:
			infeasible = append(infeasible, e)
		default:
			if e < minFeasible {
				minFeasible = e
			}
		}
	}

	if minFeasible != -2 {
		t.Errorf("best feasible energy = %v, want -2 for path A-B-C", minFeasible)
	}
	for _, e := range infeasible {
		if e <= minFeasible {
			t.Fatalf("infeasible assignment at energy %v beats best feasible %v", e, minFeasible)
		}
	}
}
