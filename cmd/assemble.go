package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mothorchids/ScaffoQA/config"
	"github.com/mothorchids/ScaffoQA/internal/assembly"
	"github.com/mothorchids/ScaffoQA/internal/decompose"
	"github.com/mothorchids/ScaffoQA/internal/report"
	"github.com/mothorchids/ScaffoQA/internal/solve"
)

// assembleCmd runs the whole pipeline: graph, decomposition, per-cluster
// QUBO solving, and stitching the cluster paths into contigs
var assembleCmd = &cobra.Command{
	Use:   "assemble <unitigs.fa>",
	Short: "Assemble contigs end to end through the QUBO pipeline",
	Long: `Build the assembly graph, partition it into clusters small enough for
the configured variable ceiling, encode and solve each cluster's QUBO
concurrently, decode the returned assignments into per-cluster paths,
stitch those paths across the recorded cut edges, and emit the resulting
contigs as FASTA.

A failing cluster (solver timeout, unrepairable solution) is reported
and skipped; the remaining clusters still produce contigs`,
	Args: cobra.ExactArgs(1),
	Run:  runAssemble,
}

func init() {
	RootCmd.AddCommand(assembleCmd)

	assembleCmd.Flags().IntP("kmer", "k", 0, "K-mer size used to derive overlaps")
	assembleCmd.Flags().Bool("rev-comp", false, "Add reverse complement twin nodes")
	assembleCmd.Flags().Bool("trust-links", false, "Also derive edges from L: header tags")
	assembleCmd.Flags().Int("max-vars", 0, "Variable ceiling per cluster QUBO")
	assembleCmd.Flags().Float64("objective", 0, "Objective weight per overlap edge")
	assembleCmd.Flags().Float64("penalty", 0, "Constraint penalty weight (raised to the computed floor)")
	assembleCmd.Flags().Bool("length-weighted", false, "Weight edges by contributed sequence length")
	assembleCmd.Flags().String("backend", "", "Solver backend: anneal or exhaustive")
	assembleCmd.Flags().IntP("piter", "p", 0, "Search depth per sample")
	assembleCmd.Flags().IntP("nbshot", "s", 0, "Number of samples per cluster")
	assembleCmd.Flags().Int64("seed", 0, "Seed for stochastic backends")
	assembleCmd.Flags().StringP("out", "o", "", "Output FASTA path (default stdout)")
	assembleCmd.Flags().String("dot", "", "Write the solved graph to a Graphviz DOT file")
	assembleCmd.MarkFlagRequired("kmer")
}

func runAssemble(cmd *cobra.Command, args []string) {
	g := buildGraph(cmd, args[0])
	stderr.Printf("graph built: %d nodes, %d edges", g.NodeCount(), g.EdgeCount())

	weights, maxVars := encodingSettings(cmd)
	part, err := decompose.Decompose(g, maxVars)
	if err != nil {
		stderr.Fatalf("%v", err)
	}
	stderr.Printf("decomposed into %d clusters with %d cut edges", len(part.Clusters), len(part.CutEdges))

	c := config.New()
	backend := c.Solver.Backend
	if cmd.Flags().Changed("backend") {
		backend, _ = cmd.Flags().GetString("backend")
	}
	solver, err := solve.New(backend)
	if err != nil {
		stderr.Fatalf("%v", err)
	}

	solverCfg := solve.Config{
		Depth: c.Solver.Depth,
		Shots: c.Solver.Shots,
		Seed:  c.Solver.Seed,
	}
	if cmd.Flags().Changed("piter") {
		solverCfg.Depth, _ = cmd.Flags().GetInt("piter")
	}
	if cmd.Flags().Changed("nbshot") {
		solverCfg.Shots, _ = cmd.Flags().GetInt("nbshot")
	}
	if cmd.Flags().Changed("seed") {
		solverCfg.Seed, _ = cmd.Flags().GetInt64("seed")
	}

	runner := &solve.Runner{
		Solver:       solver,
		Workers:      c.Solver.Workers,
		Weights:      weights,
		MaxVariables: maxVars,
		Timeout:      c.Solver.Timeout(),
	}
	results := runner.Run(context.Background(), g, part, solverCfg)

	var paths [][]string
	unresolved := 0
	for _, res := range results {
		if res.Err != nil {
			unresolved++
			stderr.Printf("unresolved %v", res.Err)
			continue
		}
		if len(res.Path.Nodes) > 0 {
			paths = append(paths, res.Path.Nodes)
		}
	}
	if unresolved > 0 {
		stderr.Printf("%d of %d clusters unresolved", unresolved, len(results))
	}

	contigs := decompose.Stitch(paths, part.CutEdges)
	writeContigs(cmd, g, contigs)

	if dot, _ := cmd.Flags().GetString("dot"); dot != "" {
		var longest []string
		for _, c := range contigs {
			if len(c) > len(longest) {
				longest = c
			}
		}
		if err := report.WriteDOT(dot, g, longest); err != nil {
			stderr.Fatalf("%v", err)
		}
		stderr.Printf("wrote %s", dot)
	}
}

// writeContigs reconstructs each stitched path's sequence and writes
// FASTA to the output flag or stdout
func writeContigs(cmd *cobra.Command, g *assembly.Graph, contigs [][]string) {
	out := os.Stdout
	if path, _ := cmd.Flags().GetString("out"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			stderr.Fatalf("create output file: %v", err)
		}
		defer f.Close()
		out = f
	}

	for i, nodes := range contigs {
		seq, err := g.Reconstruct(nodes)
		if err != nil {
			stderr.Printf("contig_%d: %v", i, err)
			continue
		}
		fmt.Fprintf(out, ">contig_%d nodes=%d length=%d\n%s\n", i, len(nodes), len(seq), seq)
	}
}
