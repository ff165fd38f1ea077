package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mothorchids/ScaffoQA/internal/assembly"
	"github.com/mothorchids/ScaffoQA/internal/report"
)

// graphCmd builds and inspects an assembly graph without encoding it
var graphCmd = &cobra.Command{
	Use:   "graph <unitigs.fa>",
	Short: "Build the unitig overlap graph and report its structure",
	Long: `Build the assembly graph from a unitig FASTA file: nodes are unitigs,
directed edges are exact k-1 base suffix/prefix overlaps. Optionally add
reverse complement twin nodes, report connectivity, and render the graph
to Graphviz DOT`,
	Args: cobra.ExactArgs(1),
	Run:  runGraph,
}

func init() {
	RootCmd.AddCommand(graphCmd)

	graphCmd.Flags().IntP("kmer", "k", 0, "K-mer size used to derive overlaps")
	graphCmd.Flags().Bool("rev-comp", false, "Add reverse complement twin nodes")
	graphCmd.Flags().Bool("trust-links", false, "Also derive edges from L: header tags")
	graphCmd.Flags().Bool("info", false, "Report connected component structure")
	graphCmd.Flags().String("dot", "", "Write the graph to a Graphviz DOT file")
	graphCmd.MarkFlagRequired("kmer")
}

func runGraph(cmd *cobra.Command, args []string) {
	g := buildGraph(cmd, args[0])

	stderr.Printf("graph built: %d nodes, %d edges (k=%d)", g.NodeCount(), g.EdgeCount(), g.K())

	if info, _ := cmd.Flags().GetBool("info"); info {
		comps := g.Components()
		largest := 0
		for _, c := range comps {
			if len(c) > largest {
				largest = len(c)
			}
		}
		stderr.Printf("weakly connected components: %d (largest: %d nodes)", len(comps), largest)
	}

	if dot, _ := cmd.Flags().GetString("dot"); dot != "" {
		if err := report.WriteDOT(dot, g, nil); err != nil {
			stderr.Fatalf("%v", err)
		}
		stderr.Printf("wrote %s", dot)
	}
}

// buildGraph parses the unitig file and builds the graph per the
// command's shared graph flags
func buildGraph(cmd *cobra.Command, path string) *assembly.Graph {
	k, _ := cmd.Flags().GetInt("kmer")

	recs, err := assembly.ReadUnitigFile(path)
	if err != nil {
		stderr.Fatalf("%v", err)
	}

	var opts []assembly.Option
	if rc, _ := cmd.Flags().GetBool("rev-comp"); rc {
		opts = append(opts, assembly.WithReverseComplements())
	}
	if tl, _ := cmd.Flags().GetBool("trust-links"); tl {
		opts = append(opts, assembly.WithLinkEdges())
	}

	g, err := assembly.Build(recs, k, opts...)
	if err != nil {
		stderr.Fatalf("%v", err)
	}
	return g
}
