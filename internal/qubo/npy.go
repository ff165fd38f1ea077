package qubo

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/mat"
)

// sidecar is the JSON companion of a persisted QUBO matrix: everything
// beyond the raw coefficients needed to decode a solution
type sidecar struct {
	Vars      []Var   `json:"vars"`
	Offset    float64 `json:"offset"`
	Penalty   float64 `json:"penalty"`
	PathBound int     `json:"pathBound"`
}

// SidecarPath is the variable-table companion file of a .npy matrix
func SidecarPath(npyPath string) string {
	return strings.TrimSuffix(npyPath, ".npy") + ".vars.json"
}

// WriteProblem persists the QUBO matrix as a NumPy .npy array next to a
// JSON sidecar carrying the variable-index table. float64 coefficients
// survive the round trip exactly
func WriteProblem(npyPath string, p *Problem) error {
	f, err := os.Create(npyPath)
	if err != nil {
		return fmt.Errorf("create matrix file: %w", err)
	}

	// npyio writes dense matrices only
	if err := npyio.Write(f, mat.DenseCopyOf(p.Q)); err != nil {
		f.Close()
		return fmt.Errorf("write matrix: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write matrix: %w", err)
	}

	sc := sidecar{
		Vars:      p.Vars,
		Offset:    p.Offset,
		Penalty:   p.Penalty,
		PathBound: p.n,
	}
	b, err := json.MarshalIndent(sc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal variable table: %w", err)
	}
	if err := os.WriteFile(SidecarPath(npyPath), b, 0644); err != nil {
		return fmt.Errorf("write variable table: %w", err)
	}
	return nil
}

// ReadMatrix loads a dense QUBO matrix from a .npy file
func ReadMatrix(npyPath string) (*mat.Dense, error) {
	f, err := os.Open(npyPath)
	if err != nil {
		return nil, fmt.Errorf("open matrix file: %w", err)
	}
	defer f.Close()

	var m mat.Dense
	if err := npyio.Read(f, &m); err != nil {
		return nil, fmt.Errorf("read matrix: %w", err)
	}
	r, c := m.Dims()
	if r != c {
		return nil, fmt.Errorf("qubo: matrix is %dx%d, want square", r, c)
	}
	return &m, nil
}

// ReadProblem loads a persisted QUBO problem: the .npy matrix plus, when
// present, the sidecar variable table. Without a sidecar the problem can
// still be solved but not decoded back onto nodes
func ReadProblem(npyPath string) (*Problem, error) {
	m, err := ReadMatrix(npyPath)
	if err != nil {
		return nil, err
	}
	n, _ := m.Dims()

	sym := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			if m.At(i, j) != m.At(j, i) {
				return nil, fmt.Errorf("qubo: matrix is asymmetric at (%d,%d)", i, j)
			}
			sym.SetSym(i, j, m.At(i, j))
		}
	}
	p := &Problem{Q: sym}

	sb, err := os.ReadFile(SidecarPath(npyPath))
	if os.IsNotExist(err) {
		return p, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read variable table: %w", err)
	}

	var sc sidecar
	if err := json.Unmarshal(sb, &sc); err != nil {
		return nil, fmt.Errorf("parse variable table: %w", err)
	}
	if len(sc.Vars) != n {
		return nil, fmt.Errorf("qubo: variable table has %d entries for a %dx%d matrix", len(sc.Vars), n, n)
	}
	p.Vars = sc.Vars
	p.Offset = sc.Offset
	p.Penalty = sc.Penalty
	p.n = sc.PathBound
	return p, nil
}
