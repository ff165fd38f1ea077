package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mothorchids/ScaffoQA/config"
	"github.com/mothorchids/ScaffoQA/internal/qubo"
	"github.com/mothorchids/ScaffoQA/internal/solve"
)

// solveCmd runs a persisted QUBO matrix through a solver backend
var solveCmd = &cobra.Command{
	Use:   "solve <Q.npy>",
	Short: "Solve a QUBO matrix file and report ranked assignments",
	Long: `Load a QUBO matrix from a .npy file and search for low energy binary
assignments with a bundled backend. When the matrix's variable table
sidecar and the original unitig file are available, the best assignment
is also decoded back into a path and its contig sequence`,
	Args: cobra.ExactArgs(1),
	Run:  runSolve,
}

func init() {
	RootCmd.AddCommand(solveCmd)

	solveCmd.Flags().IntP("piter", "p", 0, "Search depth per sample (QAOA ansatz layers)")
	solveCmd.Flags().IntP("nbshot", "s", 0, "Number of samples to draw")
	solveCmd.Flags().String("backend", "", "Solver backend: anneal or exhaustive")
	solveCmd.Flags().Int64("seed", 0, "Seed for stochastic backends")
	solveCmd.Flags().String("fasta", "", "Unitig file to decode the solution against")
	solveCmd.Flags().IntP("kmer", "k", 0, "K-mer size of the encoded graph (with --fasta)")
	solveCmd.Flags().Bool("rev-comp", false, "Add reverse complement twin nodes (with --fasta)")
	solveCmd.Flags().Bool("trust-links", false, "Also derive edges from L: header tags (with --fasta)")
}

func runSolve(cmd *cobra.Command, args []string) {
	prob, err := qubo.ReadProblem(args[0])
	if err != nil {
		stderr.Fatalf("%v", err)
	}
	stderr.Printf("loaded a QUBO matrix of dimension %d", prob.NumVars())

	c := config.New()
	solverCfg := solve.Config{
		Depth: c.Solver.Depth,
		Shots: c.Solver.Shots,
		Seed:  c.Solver.Seed,
	}
	backend := c.Solver.Backend
	if cmd.Flags().Changed("piter") {
		solverCfg.Depth, _ = cmd.Flags().GetInt("piter")
	}
	if cmd.Flags().Changed("nbshot") {
		solverCfg.Shots, _ = cmd.Flags().GetInt("nbshot")
	}
	if cmd.Flags().Changed("seed") {
		solverCfg.Seed, _ = cmd.Flags().GetInt64("seed")
	}
	if cmd.Flags().Changed("backend") {
		backend, _ = cmd.Flags().GetString("backend")
	}

	solver, err := solve.New(backend)
	if err != nil {
		stderr.Fatalf("%v", err)
	}

	ctx := context.Background()
	if timeout := c.Solver.Timeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	asgs, err := solver.Solve(ctx, prob, solverCfg)
	if err != nil {
		stderr.Fatalf("solver: %v", err)
	}

	fmt.Println("energy | bitstring")
	for i, a := range asgs {
		if i >= 10 {
			break
		}
		fmt.Printf("%10.3f | %s\n", a.Energy, bitstring(a.Bits))
	}

	fasta, _ := cmd.Flags().GetString("fasta")
	if fasta == "" || len(prob.Vars) == 0 {
		return
	}
	decodeSolution(cmd, fasta, prob, asgs)
}

// decodeSolution rebuilds the encoded subgraph from the unitig file and
// maps the best assignment back onto a path
func decodeSolution(cmd *cobra.Command, fasta string, prob *qubo.Problem, asgs []solve.Assignment) {
	g := buildGraph(cmd, fasta)

	seen := make(map[string]bool)
	var nodes []string
	for _, v := range prob.Vars {
		if !seen[v.Node] {
			seen[v.Node] = true
			nodes = append(nodes, v.Node)
		}
	}
	sub, err := g.Subgraph(nodes)
	if err != nil {
		stderr.Fatalf("matrix does not match %s: %v", fasta, err)
	}

	bits := make([][]uint8, len(asgs))
	for i, a := range asgs {
		bits[i] = a.Bits
	}
	path, idx, err := qubo.DecodeBest(sub, prob, bits)
	if err != nil {
		stderr.Fatalf("%v", err)
	}

	fmt.Printf("best path (sample %d, energy %.3f, feasible %t): %v\n",
		idx, path.Energy, path.Feasible, path.Nodes)
	if seq, err := sub.Reconstruct(path.Nodes); err == nil && seq != "" {
		fmt.Printf("contig (%d bp): %s\n", len(seq), seq)
	}
}

func bitstring(bits []uint8) string {
	b := make([]byte, len(bits))
	for i, bit := range bits {
		b[i] = '0' + bit
	}
	return string(b)
}
