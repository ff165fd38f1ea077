package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

// docsCmd regenerates the Markdown command documentation
var docsCmd = &cobra.Command{
	Use:    "docs <dir>",
	Short:  "Generate Markdown documentation for every command",
	Hidden: true,
	Args:   cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := doc.GenMarkdownTree(RootCmd, args[0]); err != nil {
			stderr.Fatalf("generate docs: %v", err)
		}
	},
}

func init() {
	RootCmd.AddCommand(docsCmd)
}
