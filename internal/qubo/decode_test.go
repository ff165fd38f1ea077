package qubo

import (
	"errors"
	"reflect"
	"testing"
)

// selectVars flips on the given (node, position) pairs
func selectVars(t *testing.T, p *Problem, vars ...Var) []uint8 {
	t.Helper()
	bits := make([]uint8, p.NumVars())
	for _, v := range vars {
		i, ok := p.VarIndex(v.Node, v.Position)
		if !ok {
			t.Fatalf("no variable for %s@%d", v.Node, v.Position)
		}
		bits[i] = 1
	}
	return bits
}

func Test_Decode_feasiblePath(t *testing.T) {
	g := pathGraph(t)
	p, err := Encode(g, DefaultWeights(), 64)
	if err != nil {
		t.Fatal(err)
	}

	bits := selectVars(t, p, Var{"A", 0}, Var{"B", 1}, Var{"C", 2})
	path, err := Decode(g, p, bits)
	if err != nil {
		t.Fatal(err)
	}

	if !path.Feasible || path.Repaired {
		t.Errorf("path feasible=%t repaired=%t, want clean feasible", path.Feasible, path.Repaired)
	}
	if !reflect.DeepEqual(path.Nodes, []string{"A", "B", "C"}) {
		t.Errorf("path = %v, want [A B C]", path.Nodes)
	}
	if path.Energy != -2 {
		t.Errorf("energy = %v, want -2", path.Energy)
	}
}

func Test_Decode_emptyAssignment(t *testing.T) {
	g := pathGraph(t)
	p, err := Encode(g, DefaultWeights(), 64)
	if err != nil {
		t.Fatal(err)
	}

	path, err := Decode(g, p, make([]uint8, p.NumVars()))
	if err != nil {
		t.Fatal(err)
	}
	if !path.Feasible || len(path.Nodes) != 0 {
		t.Errorf("empty assignment decoded to %+v, want empty feasible path", path)
	}
}

func Test_Decode_duplicatePosition(t *testing.T) {
	g := pathGraph(t)
	p, err := Encode(g, DefaultWeights(), 64)
	if err != nil {
		t.Fatal(err)
	}

	bits := selectVars(t, p, Var{"A", 1}, Var{"B", 1})
	_, err = Decode(g, p, bits)

	var fail *DecodeFailure
	if !errors.As(err, &fail) {
		t.Fatalf("Decode error = %v, want *DecodeFailure", err)
	}
	if fail.Violations.DuplicatePosition != 1 {
		t.Errorf("DuplicatePosition = %d, want 1", fail.Violations.DuplicatePosition)
	}
	if fail.Violations.DuplicateNode != 0 {
		t.Errorf("DuplicateNode = %d, want 0", fail.Violations.DuplicateNode)
	}
}

func Test_Decode_duplicateNode(t *testing.T) {
	g := pathGraph(t)
	p, err := Encode(g, DefaultWeights(), 64)
	if err != nil {
		t.Fatal(err)
	}

	bits := selectVars(t, p, Var{"B", 0}, Var{"B", 2})
	_, err = Decode(g, p, bits)

	var fail *DecodeFailure
	if !errors.As(err, &fail) {
		t.Fatalf("Decode error = %v, want *DecodeFailure", err)
	}
	if fail.Violations.DuplicateNode != 1 {
		t.Errorf("DuplicateNode = %d, want 1", fail.Violations.DuplicateNode)
	}
}

func Test_Decode_repairsBrokenAdjacency(t *testing.T) {
	g := pathGraph(t)
	p, err := Encode(g, DefaultWeights(), 64)
	if err != nil {
		t.Fatal(err)
	}

	bits := selectVars(t, p, Var{"A", 0}, Var{"B", 1}, Var{"A", 2})
	if _, derr := Decode(g, p, bits); derr == nil {
		t.Fatal("A at two positions must be a DecodeFailure")
	}

	// no edge C->A, so the path is truncated after the valid prefix
	bits = selectVars(t, p, Var{"C", 0}, Var{"A", 1})
	path, err := Decode(g, p, bits)
	if err != nil {
		t.Fatal(err)
	}
	if !path.Repaired {
		t.Error("broken adjacency should mark the path repaired")
	}
	if !reflect.DeepEqual(path.Nodes, []string{"C"}) {
		t.Errorf("repaired path = %v, want [C]", path.Nodes)
	}
}

func Test_Decode_badLength(t *testing.T) {
	g := pathGraph(t)
	p, err := Encode(g, DefaultWeights(), 64)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := Decode(g, p, make([]uint8, 3)); !errors.Is(err, ErrBadAssignment) {
		t.Errorf("Decode with short bits error = %v, want ErrBadAssignment", err)
	}
}

func Test_DecodeBest(t *testing.T) {
	g := pathGraph(t)
	p, err := Encode(g, DefaultWeights(), 64)
	if err != nil {
		t.Fatal(err)
	}

	broken := selectVars(t, p, Var{"A", 0}, Var{"B", 0})
	repaired := selectVars(t, p, Var{"C", 0}, Var{"A", 1})
	clean := selectVars(t, p, Var{"A", 0}, Var{"B", 1})

	path, idx, err := DecodeBest(g, p, [][]uint8{broken, repaired, clean})
	if err != nil {
		t.Fatal(err)
	}
	if idx != 2 {
		t.Errorf("chosen index = %d, want 2", idx)
	}
	if path.Repaired || !reflect.DeepEqual(path.Nodes, []string{"A", "B"}) {
		t.Errorf("chosen path = %+v, want clean [A B]", path)
	}

	// a repaired path beats any failure
	path, idx, err = DecodeBest(g, p, [][]uint8{broken, repaired})
	if err != nil {
		t.Fatal(err)
	}
	if idx != 1 || !path.Repaired {
		t.Errorf("chosen = %+v at %d, want repaired path at 1", path, idx)
	}

	// nothing decodable: surface the least-violating failure
	worse := selectVars(t, p, Var{"A", 0}, Var{"B", 0}, Var{"C", 0})
	_, idx, err = DecodeBest(g, p, [][]uint8{worse, broken})
	var fail *DecodeFailure
	if !errors.As(err, &fail) {
		t.Fatalf("DecodeBest error = %v, want *DecodeFailure", err)
	}
	if idx != 1 {
		t.Errorf("failure index = %d, want the 1-violation assignment at 1", idx)
	}
	if fail.Violations.Total() != 1 {
		t.Errorf("violations = %d, want 1", fail.Violations.Total())
	}

	if _, _, err := DecodeBest(g, p, nil); !errors.Is(err, ErrBadAssignment) {
		t.Errorf("DecodeBest with no assignments error = %v, want ErrBadAssignment", err)
	}
}

func Test_Bits_roundTrip(t *testing.T) {
	g := pathGraph(t)
	p, err := Encode(g, DefaultWeights(), 64)
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"A", "B", "C"}
	bits, err := p.Bits(want)
	if err != nil {
		t.Fatal(err)
	}
	path, err := Decode(g, p, bits)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(path.Nodes, want) {
		t.Errorf("round trip = %v, want %v", path.Nodes, want)
	}

	if _, err := p.Bits([]string{"Z"}); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("Bits with unknown node error = %v, want ErrUnknownNode", err)
	}
	if _, err := p.Bits([]string{"A", "B", "C", "A"}); !errors.Is(err, ErrBadAssignment) {
		t.Errorf("Bits with overlong path error = %v, want ErrBadAssignment", err)
	}
}
