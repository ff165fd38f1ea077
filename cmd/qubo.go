package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mothorchids/ScaffoQA/config"
	"github.com/mothorchids/ScaffoQA/internal/qubo"
)

// quboCmd encodes one graph (or its largest component) into a QUBO
// matrix file for an external solving stage
var quboCmd = &cobra.Command{
	Use:   "qubo <unitigs.fa>",
	Short: "Encode the assembly graph's path problem as a QUBO matrix file",
	Long: `Build the assembly graph and encode its path-selection problem as a
symmetric QUBO matrix, written as a NumPy .npy file with a JSON variable
table sidecar. The matrix can be consumed by any QUBO solver, classical
or quantum; "scaffoqa solve" runs the bundled backends on it`,
	Args: cobra.ExactArgs(1),
	Run:  runQubo,
}

func init() {
	RootCmd.AddCommand(quboCmd)

	quboCmd.Flags().IntP("kmer", "k", 0, "K-mer size used to derive overlaps")
	quboCmd.Flags().Bool("rev-comp", false, "Add reverse complement twin nodes")
	quboCmd.Flags().Bool("trust-links", false, "Also derive edges from L: header tags")
	quboCmd.Flags().Bool("largest", false, "Encode only the largest connected component")
	quboCmd.Flags().StringP("out", "o", "", "Output matrix path (default Q_graph_<k>.npy)")
	quboCmd.Flags().Float64("objective", 0, "Objective weight per overlap edge")
	quboCmd.Flags().Float64("penalty", 0, "Constraint penalty weight (raised to the computed floor)")
	quboCmd.Flags().Bool("length-weighted", false, "Weight edges by contributed sequence length")
	quboCmd.Flags().Int("max-vars", 0, "Hard ceiling on QUBO variables")
	quboCmd.MarkFlagRequired("kmer")
}

func runQubo(cmd *cobra.Command, args []string) {
	g := buildGraph(cmd, args[0])
	if largest, _ := cmd.Flags().GetBool("largest"); largest {
		g = g.LargestComponent()
	}

	weights, maxVars := encodingSettings(cmd)
	prob, err := qubo.Encode(g, weights, maxVars)
	if err != nil {
		stderr.Fatalf("%v", err)
	}

	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		k, _ := cmd.Flags().GetInt("kmer")
		out = fmt.Sprintf("Q_graph_%d.npy", k)
	}
	if err := qubo.WriteProblem(out, prob); err != nil {
		stderr.Fatalf("%v", err)
	}

	stderr.Printf("wrote a QUBO matrix of dimension %d to %s (penalty %.2f)",
		prob.NumVars(), out, prob.Penalty)
}

// encodingSettings merges the encoder settings from Viper with any
// explicitly set command flags
func encodingSettings(cmd *cobra.Command) (qubo.Weights, int) {
	c := config.New()
	w := qubo.Weights{
		Objective:      c.Encoding.Objective,
		Penalty:        c.Encoding.Penalty,
		LengthWeighted: c.Encoding.LengthWeighted,
	}
	maxVars := c.Encoding.MaxVariables

	if cmd.Flags().Changed("objective") {
		w.Objective, _ = cmd.Flags().GetFloat64("objective")
	}
	if cmd.Flags().Changed("penalty") {
		w.Penalty, _ = cmd.Flags().GetFloat64("penalty")
	}
	if cmd.Flags().Changed("length-weighted") {
		w.LengthWeighted, _ = cmd.Flags().GetBool("length-weighted")
	}
	if cmd.Flags().Changed("max-vars") {
		maxVars, _ = cmd.Flags().GetInt("max-vars")
	}
	return w, maxVars
}
